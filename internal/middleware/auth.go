package middleware

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/auth"
)

const identityKey = "identity"

// Authenticated 校验 Bearer 令牌并把身份写入请求上下文
func Authenticated(gate *auth.Gate) iris.Handler {
	return func(ctx iris.Context) {
		id, err := gate.Authenticate(ctx.Request().Context(), ctx.GetHeader("Authorization"))
		if err != nil {
			Abort(ctx, err)
			return
		}
		ctx.Values().Set(identityKey, id)
		ctx.Next()
	}
}

// AdminOnly 必须挂在 Authenticated 之后
func AdminOnly() iris.Handler {
	return func(ctx iris.Context) {
		if err := auth.RequireAdmin(IdentityFrom(ctx)); err != nil {
			Abort(ctx, err)
			return
		}
		ctx.Next()
	}
}

// IdentityFrom 读取已鉴权的身份，未鉴权时为 nil
func IdentityFrom(ctx iris.Context) *auth.Identity {
	id, _ := ctx.Values().Get(identityKey).(*auth.Identity)
	return id
}

// Abort 按错误类别输出 {"message": ...} 并终止处理链
func Abort(ctx iris.Context, err error) {
	status := apperr.StatusOf(err)
	if status >= iris.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Error(err))
	}
	ctx.StopWithJSON(status, iris.Map{"message": apperr.MessageOf(err)})
}
