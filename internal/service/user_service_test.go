package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/auth"
	"github.com/example/gostore/internal/config"
	"github.com/example/gostore/internal/repository/mysql"
	"github.com/example/gostore/internal/testutil"
)

var testJWT = &config.JWTConfig{Secret: "test-secret", TTL: time.Hour}

func newUserService(t *testing.T) *UserService {
	t.Helper()
	svc := NewUserService(mysql.NewUserRepository(testutil.NewDB(t)), testJWT)
	svc.hashCost = bcrypt.MinCost
	return svc
}

func TestSignUpAndSignIn(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	s, err := svc.SignUp(ctx, "Ada", " Ada@Example.com ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", s.Email)
	assert.False(t, s.IsAdmin)

	claims, err := auth.ParseToken(testJWT, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, claims.UserID)

	_, err = svc.SignUp(ctx, "Ada 2", "ada@example.com", "other")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	in, err := svc.SignIn(ctx, "ADA@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, s.ID, in.ID)

	_, err = svc.SignIn(ctx, "ada@example.com", "wrong")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	_, err = svc.SignIn(ctx, "nobody@example.com", "secret")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, "Invalid email or password", apperr.MessageOf(err))
}

func TestSignUpValidation(t *testing.T) {
	svc := newUserService(t)
	_, err := svc.SignUp(context.Background(), "", "ada@example.com", "secret")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateProfile(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	s, err := svc.SignUp(ctx, "Ada", "ada@example.com", "secret")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, s.ID, "Ada Lovelace", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email)

	// 未修改密码时旧密码仍可登录
	_, err = svc.SignIn(ctx, "ada@example.com", "secret")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, s.ID, "", "", "new-secret")
	require.NoError(t, err)
	_, err = svc.SignIn(ctx, "ada@example.com", "new-secret")
	require.NoError(t, err)
}

func TestAdminUpdateAndDelete(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	s, err := svc.SignUp(ctx, "Ada", "ada@example.com", "secret")
	require.NoError(t, err)

	u, err := svc.AdminUpdate(ctx, s.ID, "", "", true)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.Equal(t, "Ada", u.Name)

	err = svc.Delete(ctx, s.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Can Not Delete Admin User", apperr.MessageOf(err))

	_, err = svc.AdminUpdate(ctx, s.ID, "", "", false)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, s.ID))

	_, err = svc.Get(ctx, s.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
