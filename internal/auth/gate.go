package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/config"
)

const (
	MsgNoToken      = "No Token"
	MsgInvalidToken = "Invalid Token"
	MsgNotAdmin     = "Invalid Admin Token"
)

// Gate 鉴权入口：验签 + 缓存，失败统一返回 Unauthorized
type Gate struct {
	jwt   *config.JWTConfig
	cache *TokenCache
}

// NewGate 创建鉴权器，cache 可为 nil
func NewGate(jwt *config.JWTConfig, cache *TokenCache) *Gate {
	return &Gate{jwt: jwt, cache: cache}
}

// Issue 为用户签发令牌
func (g *Gate) Issue(id *Identity) (string, error) {
	return GenerateToken(g.jwt, id)
}

// Authenticate 解析 Authorization 头（"Bearer <token>" 或裸令牌）
func (g *Gate) Authenticate(ctx context.Context, header string) (*Identity, error) {
	token := bearerToken(header)
	if token == "" {
		return nil, apperr.Unauthorized(MsgNoToken)
	}

	if id, ok, err := g.cache.Lookup(ctx, token); err != nil {
		zap.L().Warn("token cache lookup failed", zap.Error(err))
	} else if ok {
		return id, nil
	}

	claims, err := ParseToken(g.jwt, token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, MsgInvalidToken, err)
	}
	id := claims.Identity()
	if claims.ExpiresAt != nil {
		if err := g.cache.Remember(ctx, token, id, claims.ExpiresAt.Time); err != nil {
			zap.L().Warn("token cache write failed", zap.Error(err))
		}
	}
	return id, nil
}

// RequireAdmin 身份不是管理员时返回 Forbidden
func RequireAdmin(id *Identity) error {
	if id == nil || !id.IsAdmin {
		return apperr.Forbidden(MsgNotAdmin)
	}
	return nil
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
