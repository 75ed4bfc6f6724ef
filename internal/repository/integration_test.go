//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dormhub/internal/model"
	"dormhub/internal/repository"
	"dormhub/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("dormhub_test"),
		tcpostgres.WithUsername("dormhub"),
		tcpostgres.WithPassword("dormhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "启动 PostgreSQL 容器失败: %v\n", err)
		os.Exit(1)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取连接串失败: %v\n", err)
		os.Exit(1)
	}

	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取连接池失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "执行迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func ptr[T any](v T) *T { return &v }

// seedOwnerAndDorm 创建房东与一个已审核宿舍
func seedOwnerAndDorm(t *testing.T, repo *repository.Repository) (*model.User, *model.Dormitory) {
	t.Helper()
	ctx := context.Background()
	suffix := time.Now().UnixNano()

	owner := &model.User{
		FirebaseUID: fmt.Sprintf("owner-%d", suffix),
		Username:    fmt.Sprintf("owner%d", suffix%1e9),
		Email:       "owner@example.com",
		FirstName:   "Owner",
		LastName:    "Test",
		MemberType:  model.MemberTypeOwner,
	}
	require.NoError(t, repo.User.Create(ctx, owner))

	contact := &model.ContactInfo{Phone: ptr("0812345678")}
	require.NoError(t, repo.Contact.Create(ctx, contact))

	dorm := &model.Dormitory{
		DormName:       "Test Dorm",
		Address:        "1 Test Road",
		ZoneID:         1,
		ApprovalStatus: model.ApprovalApproved,
		OwnerID:        owner.ID,
		ContactID:      &contact.ID,
	}
	require.NoError(t, repo.Dormitory.Create(ctx, dorm))
	return owner, dorm
}

func countRows(t *testing.T, table string, dormID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, testDB.Raw("SELECT COUNT(*) FROM "+table+" WHERE dorm_id = ?", dormID).Scan(&n).Error)
	return n
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestInTx_RollbackOnError(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	_, dorm := seedOwnerAndDorm(t, repo)

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.RoomType.Create(ctx, &model.RoomType{DormID: dorm.ID, RoomName: "A", MonthlyPrice: ptr(3000.0), IsAvailable: true}); err != nil {
			return err
		}
		if err := tx.Dormitory.RefreshPriceRange(ctx, dorm.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.EqualValues(t, 0, countRows(t, "room_types", dorm.ID))
	got, err := repo.Dormitory.GetByID(ctx, dorm.ID)
	require.NoError(t, err)
	assert.Nil(t, got.MinPrice)
}

func TestInTx_RollbackOnPanic(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	_, dorm := seedOwnerAndDorm(t, repo)

	assert.Panics(t, func() {
		_ = repo.InTx(ctx, func(tx *repository.Repository) error {
			_ = tx.Image.Create(ctx, &model.DormitoryImage{DormID: dorm.ID, ImageURL: "https://cdn/x.png", ImageType: model.ImageTypeGeneral})
			panic("unexpected")
		})
	})
	assert.EqualValues(t, 0, countRows(t, "dormitory_images", dorm.ID))
}

// ═══════════════════════════════════════════════════════════
// Test: Price range
// ═══════════════════════════════════════════════════════════

func TestRefreshPriceRange(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	_, dorm := seedOwnerAndDorm(t, repo)

	a := &model.RoomType{DormID: dorm.ID, RoomName: "A", MonthlyPrice: ptr(4500.0), IsAvailable: true}
	b := &model.RoomType{DormID: dorm.ID, RoomName: "B", MonthlyPrice: ptr(3200.0), IsAvailable: true}
	c := &model.RoomType{DormID: dorm.ID, RoomName: "C", IsAvailable: true}
	for _, rt := range []*model.RoomType{a, b, c} {
		require.NoError(t, repo.RoomType.Create(ctx, rt))
	}
	require.NoError(t, repo.Dormitory.RefreshPriceRange(ctx, dorm.ID))

	got, err := repo.Dormitory.GetByID(ctx, dorm.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MinPrice)
	assert.Equal(t, 3200.0, *got.MinPrice)
	assert.Equal(t, 4500.0, *got.MaxPrice)

	// 不可用房型不参与价格区间
	require.NoError(t, repo.RoomType.MarkAllUnavailable(ctx, dorm.ID))
	a.MonthlyPrice = ptr(5000.0)
	require.NoError(t, repo.RoomType.UpsertByName(ctx, a))
	require.NoError(t, repo.Dormitory.RefreshPriceRange(ctx, dorm.ID))

	got, err = repo.Dormitory.GetByID(ctx, dorm.ID)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, *got.MinPrice)
	assert.Equal(t, 5000.0, *got.MaxPrice)

	require.NoError(t, repo.RoomType.DeleteByDorm(ctx, dorm.ID))
	require.NoError(t, repo.Dormitory.RefreshPriceRange(ctx, dorm.ID))
	got, err = repo.Dormitory.GetByID(ctx, dorm.ID)
	require.NoError(t, err)
	assert.Nil(t, got.MinPrice)
	assert.Nil(t, got.MaxPrice)
}

// ═══════════════════════════════════════════════════════════
// Test: Constraints
// ═══════════════════════════════════════════════════════════

func TestMemberRequest_SinglePendingPerDorm(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	owner, dorm := seedOwnerAndDorm(t, repo)

	require.NoError(t, repo.MemberRequest.Create(ctx, &model.MemberRequest{UserID: owner.ID, DormID: dorm.ID}))
	err := repo.MemberRequest.Create(ctx, &model.MemberRequest{UserID: owner.ID, DormID: dorm.ID})
	assert.True(t, repository.IsUniqueViolation(err), "期望唯一约束冲突，实际: %v", err)
}

func TestStay_SingleCurrent(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	owner, dorm := seedOwnerAndDorm(t, repo)
	today := datatypes.Date(time.Now())

	require.NoError(t, repo.Stay.Create(ctx, &model.Stay{UserID: owner.ID, DormID: dorm.ID, StartDate: today, IsCurrent: true}))
	err := repo.Stay.Create(ctx, &model.Stay{UserID: owner.ID, DormID: dorm.ID, StartDate: today, IsCurrent: true})
	assert.True(t, repository.IsUniqueViolation(err))

	n, err := repo.Stay.EndCurrent(ctx, owner.ID, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, repo.Stay.Create(ctx, &model.Stay{UserID: owner.ID, DormID: dorm.ID, StartDate: today, IsCurrent: true}))

	stays, err := repo.Stay.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, stays, 2)
	assert.True(t, stays[0].IsCurrent)
	assert.False(t, stays[1].IsCurrent)
	assert.NotNil(t, stays[1].EndDate)
}

func TestUpdateFields_UnknownField(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	_, dorm := seedOwnerAndDorm(t, repo)

	err := repo.Dormitory.UpdateFields(ctx, dorm.ID, map[string]interface{}{"ownerId": 1})
	assert.ErrorIs(t, err, repository.ErrUnknownField)

	require.NoError(t, repo.Dormitory.UpdateFields(ctx, dorm.ID, map[string]interface{}{"dormName": "Renamed"}))
	got, err := repo.Dormitory.GetByID(ctx, dorm.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.DormName)
}

// ═══════════════════════════════════════════════════════════
// Test: Cascade delete
// ═══════════════════════════════════════════════════════════

func TestCascadeDelete_Statements(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	_, dorm := seedOwnerAndDorm(t, repo)

	require.NoError(t, repo.RoomType.Create(ctx, &model.RoomType{DormID: dorm.ID, RoomName: "A", IsAvailable: true}))
	require.NoError(t, repo.Image.Create(ctx, &model.DormitoryImage{DormID: dorm.ID, ImageURL: "https://cdn/a.png", ImageType: model.ImageTypeGeneral}))
	require.NoError(t, repo.Amenity.Upsert(ctx, &model.DormitoryAmenity{DormID: dorm.ID, AmenityID: 1, LocationType: "indoor"}))

	err := repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Image.DeleteByDorm(ctx, dorm.ID); err != nil {
			return err
		}
		if err := tx.RoomType.DeleteByDorm(ctx, dorm.ID); err != nil {
			return err
		}
		if err := tx.Amenity.DeleteByDorm(ctx, dorm.ID); err != nil {
			return err
		}
		contactID, err := tx.Dormitory.GetContactID(ctx, dorm.ID)
		if err != nil {
			return err
		}
		n, err := tx.Dormitory.Delete(ctx, dorm.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		_, err = tx.Contact.DeleteUnreferenced(ctx, *contactID)
		return err
	})
	require.NoError(t, err)

	for _, table := range []string{"room_types", "dormitory_images", "dormitory_amenities"} {
		assert.EqualValues(t, 0, countRows(t, table, dorm.ID), table)
	}
	_, err = repo.Contact.GetByID(ctx, *dorm.ContactID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
