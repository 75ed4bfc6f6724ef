package repository

import (
	"context"

	"gorm.io/gorm"

	"dormhub/internal/model"
)

// UserFieldColumns 资料部分更新允许的字段
// profile_image_url 只经 SetProfileImage 写入，不在此表中
var UserFieldColumns = FieldTable{
	"username":        "username",
	"firstName":       "first_name",
	"lastName":        "last_name",
	"phoneNumber":     "phone_number",
	"university":      "university",
	"studentId":       "student_id",
	"businessName":    "business_name",
	"businessPhone":   "business_phone",
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*model.User, error)
	// LockByID SELECT ... FOR UPDATE，仅在事务内调用
	LockByID(ctx context.Context, id int64) (*model.User, error)
	UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *model.User) error
	// UpdateProfile 覆盖写入基础资料与角色字段
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	SetResidence(ctx context.Context, id int64, dormID *int64) error
	SetProfileImage(ctx context.Context, id int64, url string) error
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, firebase_uid, username, email, first_name, last_name, phone_number,
	profile_image_url, member_type, university, student_id, business_name, business_phone,
	residence_dorm_id, created_at, updated_at`

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return scanOne[model.User](ctx, r.db, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (r *userRepo) GetByFirebaseUID(ctx context.Context, uid string) (*model.User, error) {
	return scanOne[model.User](ctx, r.db, "SELECT "+userColumns+" FROM users WHERE firebase_uid = ?", uid)
}

func (r *userRepo) LockByID(ctx context.Context, id int64) (*model.User, error) {
	return scanOne[model.User](ctx, r.db, "SELECT "+userColumns+" FROM users WHERE id = ? FOR UPDATE", id)
}

func (r *userRepo) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).
		Raw("SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower(?) AND id <> ?)", username, excludeID).
		Scan(&exists).Error
	return exists, err
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Raw(`
		INSERT INTO users (firebase_uid, username, email, first_name, last_name, phone_number,
			profile_image_url, member_type, university, student_id, business_name, business_phone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`,
		user.FirebaseUID, user.Username, user.Email, user.FirstName, user.LastName, user.PhoneNumber,
		user.ProfileImageURL, user.MemberType, user.University, user.StudentID, user.BusinessName, user.BusinessPhone,
	).Row().Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	return affected(r.db.WithContext(ctx).Exec(`
		UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?, phone_number = ?,
			profile_image_url = ?, member_type = ?, university = ?, student_id = ?,
			business_name = ?, business_phone = ?, residence_dorm_id = ?, updated_at = NOW()
		WHERE id = ?`,
		user.Username, user.Email, user.FirstName, user.LastName, user.PhoneNumber,
		user.ProfileImageURL, user.MemberType, user.University, user.StudentID,
		user.BusinessName, user.BusinessPhone, user.ResidenceDormID, user.ID,
	))
}

func (r *userRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return updateFields(ctx, r.db, "users", UserFieldColumns, id, fields)
}

func (r *userRepo) SetResidence(ctx context.Context, id int64, dormID *int64) error {
	return affected(r.db.WithContext(ctx).Exec(
		"UPDATE users SET residence_dorm_id = ?, updated_at = NOW() WHERE id = ?", dormID, id,
	))
}

func (r *userRepo) SetProfileImage(ctx context.Context, id int64, url string) error {
	return affected(r.db.WithContext(ctx).Exec(
		"UPDATE users SET profile_image_url = ?, updated_at = NOW() WHERE id = ?", url, id,
	))
}
