package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/datamodels/user"
)

const (
	msgUserNotFound = "User Not Found"
	msgEmailTaken   = "Email already registered"
)

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	return emailTaken(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepo) Update(ctx context.Context, u *user.User) error {
	err := r.db.WithContext(ctx).
		Model(&user.User{ID: u.ID}).
		Select("name", "email", "password", "is_admin", "updated_at").
		Updates(u).Error
	return emailTaken(err)
}

// emailTaken 唯一索引冲突转为业务 Conflict
func emailTaken(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.KindConflict, msgEmailTaken, err)
	}
	return err
}

func (r *userRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&user.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(msgUserNotFound)
	}
	return nil
}

func (r *userRepo) ListAll(ctx context.Context) ([]*user.User, error) {
	var list []*user.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
