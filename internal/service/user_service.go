package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/auth"
	"github.com/example/gostore/internal/config"
	"github.com/example/gostore/internal/datamodels/user"
)

const msgBadCredentials = "Invalid email or password"

// Session 登录/注册成功后返回给前端的用户信息与令牌
type Session struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	Token   string `json:"token"`
}

type UserService struct {
	repo     user.Repository
	jwt      *config.JWTConfig
	hashCost int
}

func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt, hashCost: bcrypt.DefaultCost}
}

// HashPassword bcrypt 哈希
func (s *UserService) HashPassword(raw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), s.hashCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (s *UserService) session(u *user.User) (*Session, error) {
	token, err := auth.GenerateToken(s.jwt, &auth.Identity{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin})
	if err != nil {
		return nil, err
	}
	return &Session{ID: u.ID, Name: u.Name, Email: u.Email, IsAdmin: u.IsAdmin, Token: token}, nil
}

// SignUp 注册并直接登录
func (s *UserService) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if strings.TrimSpace(name) == "" || email == "" || password == "" {
		return nil, apperr.Validation("Name, email and password are required")
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email already registered")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &user.User{Name: strings.TrimSpace(name), Email: email, Password: hash}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u)
}

// SignIn 校验邮箱密码并签发令牌
func (s *UserService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized(msgBadCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperr.Unauthorized(msgBadCredentials)
		}
		return nil, err
	}
	return s.session(u)
}

// UpdateProfile 修改本人资料，password 为空时保持不变；返回新令牌
func (s *UserService) UpdateProfile(ctx context.Context, id int64, name, email, password string) (*Session, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		u.Name = strings.TrimSpace(name)
	}
	if e := normalizeEmail(email); e != "" {
		u.Email = e
	}
	if password != "" {
		if u.Password, err = s.HashPassword(password); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u)
}

func (s *UserService) List(ctx context.Context) ([]*user.User, error) {
	return s.repo.ListAll(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// AdminUpdate 管理员修改用户名、邮箱与管理员标记
func (s *UserService) AdminUpdate(ctx context.Context, id int64, name, email string, isAdmin bool) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		u.Name = strings.TrimSpace(name)
	}
	if e := normalizeEmail(email); e != "" {
		u.Email = e
	}
	u.IsAdmin = isAdmin
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete 管理员账户不可删除
func (s *UserService) Delete(ctx context.Context, id int64) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin {
		return apperr.Validation("Can Not Delete Admin User")
	}
	return s.repo.Delete(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
