package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dormhub/config"
	"dormhub/internal/api/handler"
	"dormhub/internal/api/middleware"
	"dormhub/internal/api/router"
	"dormhub/internal/repository"
	"dormhub/internal/service"
	"dormhub/pkg/database"
	"dormhub/pkg/jwt"
	applogger "dormhub/pkg/logger"
	"dormhub/pkg/redis"
	"dormhub/pkg/storage"
)

func runServe(ctx context.Context, configPath string) error {
	// 1. 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return err
	}

	// 4. 连接 Redis（可选：失败时限流与会话吊销降级）
	var (
		limiter     middleware.RateLimiter
		revoker     service.SessionRevoker
		revocations jwt.RevocationChecker
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，限流与会话吊销将不可用", zap.Error(err))
	} else {
		defer rdb.Close()
		limiter, revoker, revocations = rdb, rdb, rdb
	}

	// 5. 身份令牌校验与对象存储
	keys := jwt.NewCertKeySource(cfg.Firebase.CertURL, cfg.Firebase.FetchTTL)
	verifier := jwt.NewVerifier(&cfg.Firebase, keys, revocations)

	uploader, err := storage.NewR2Uploader(ctx, &cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("初始化对象存储失败: %w", err)
	}

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, uploader, revoker, logger)
	h := handler.NewHandler(svc, logger)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, router.Deps{
		Verifier: verifier,
		Resolver: svc.Auth,
		Limiter:  limiter,
	}, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP 服务器异常: %w", err)
		}
	case <-ctx.Done():
		logger.Info("收到关闭信号，开始优雅关闭...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}
