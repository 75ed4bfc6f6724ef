package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
// 事务内通过 InTx 拿到绑定同一连接的 *Repository，禁止跨事务复用
type Repository struct {
	User          UserRepository
	Dormitory     DormitoryRepository
	RoomType      RoomTypeRepository
	Image         ImageRepository
	Amenity       AmenityRepository
	Contact       ContactRepository
	Zone          ZoneRepository
	MemberRequest MemberRequestRepository
	Stay          StayRepository
	Review        ReviewRepository

	Tx Transactor
}

// Transactor 事务执行器
// fn 返回 nil 时提交，返回错误或 panic 时回滚，连接在任何路径上都会归还
type Transactor interface {
	InTx(ctx context.Context, fn func(tx *Repository) error) error
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	repo := newRepository(db)
	repo.Tx = &gormTransactor{db: db}
	return repo
}

func newRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:          NewUserRepo(db),
		Dormitory:     NewDormitoryRepo(db),
		RoomType:      NewRoomTypeRepo(db),
		Image:         NewImageRepo(db),
		Amenity:       NewAmenityRepo(db),
		Contact:       NewContactRepo(db),
		Zone:          NewZoneRepo(db),
		MemberRequest: NewMemberRequestRepo(db),
		Stay:          NewStayRepo(db),
		Review:        NewReviewRepo(db),
	}
}

// InTx 在单个事务中执行 fn
func (r *Repository) InTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.Tx.InTx(ctx, fn)
}

type gormTransactor struct {
	db *gorm.DB
}

func (t *gormTransactor) InTx(ctx context.Context, fn func(tx *Repository) error) (err error) {
	tx := t.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	txRepo := newRepository(tx)
	// 事务内再次 InTx 加入当前事务，子步骤失败时由外层统一回滚
	txRepo.Tx = joinedTransactor{repo: txRepo}

	if err := fn(txRepo); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

type joinedTransactor struct {
	repo *Repository
}

func (j joinedTransactor) InTx(_ context.Context, fn func(tx *Repository) error) error {
	return fn(j.repo)
}

// ── 公共工具 ──

// ErrUnknownField 部分更新时出现字段映射表之外的字段
var ErrUnknownField = errors.New("未知字段")

// IsUniqueViolation 判断是否为唯一约束冲突（SQLSTATE 23505）
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// FieldTable 逻辑字段名 → 列名 的显式映射
type FieldTable map[string]string

// Resolve 把逻辑字段转换为列赋值，列名按字典序输出
func (t FieldTable) Resolve(fields map[string]interface{}) ([]string, []interface{}, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := t[k]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownField, k)
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return t[keys[i]] < t[keys[j]] })

	cols := make([]string, 0, len(keys))
	vals := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		cols = append(cols, t[k])
		vals = append(vals, fields[k])
	}
	return cols, vals, nil
}

// updateFields 生成并执行 UPDATE table SET c1 = ?, ... WHERE id = ?
func updateFields(ctx context.Context, db *gorm.DB, table string, t FieldTable, id int64, fields map[string]interface{}) error {
	cols, vals, err := t.Resolve(fields)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}

	sets := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, c+" = ?")
	}
	sets = append(sets, "updated_at = NOW()")

	query := "UPDATE " + table + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	return affected(db.WithContext(ctx).Exec(query, append(vals, id)...))
}

// scanOne 执行查询并扫描单行，无结果返回 gorm.ErrRecordNotFound
func scanOne[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var out T
	res := db.WithContext(ctx).Raw(query, args...).Scan(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &out, nil
}

// scanAll 执行查询并扫描多行，无结果时返回空切片
func scanAll[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) ([]T, error) {
	out := make([]T, 0)
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// affected 要求至少影响一行，否则视为目标不存在
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
