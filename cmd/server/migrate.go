package main

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dormhub/config"
	"dormhub/pkg/database"
	applogger "dormhub/pkg/logger"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "数据库迁移",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "应用全部未执行的迁移",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return withDB(*configPath, func(env *migrateEnv) error {
					return database.RunMigrations(env.sqlDB, env.logger)
				})
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "回退迁移，默认 1 步",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("steps 必须为整数: %w", err)
					}
					steps = n
				}
				return withDB(*configPath, func(env *migrateEnv) error {
					return database.RollbackMigrations(env.sqlDB, steps, env.logger)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "查看当前迁移版本",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(*configPath, func(env *migrateEnv) error {
					version, dirty, err := database.MigrationVersion(env.sqlDB)
					if err != nil {
						return err
					}
					cmd.Printf("version=%d dirty=%t\n", version, dirty)
					return nil
				})
			},
		},
	)
	return cmd
}

type migrateEnv struct {
	sqlDB  *sql.DB
	logger *zap.Logger
}

// withDB 迁移子命令只需要配置、日志与数据库连接
func withDB(configPath string, fn func(env *migrateEnv) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	defer sqlDB.Close()

	return fn(&migrateEnv{sqlDB: sqlDB, logger: logger})
}
