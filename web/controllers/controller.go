// Package controllers 实现 /api 下各资源的 HTTP 处理函数。
package controllers

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/middleware"
)

// idParam 读取 {id:uint64} 路径参数
func idParam(ctx iris.Context) int64 {
	id, _ := ctx.Params().GetUint64("id")
	return int64(id)
}

// readJSON 解析失败时已写出 400
func readJSON(ctx iris.Context, v interface{}) bool {
	if err := ctx.ReadJSON(v); err != nil {
		middleware.Abort(ctx, apperr.Wrap(apperr.KindValidation, "Invalid request body", err))
		return false
	}
	return true
}

func reply(ctx iris.Context, status int, v interface{}) {
	ctx.StatusCode(status)
	if err := ctx.JSON(v); err != nil {
		zap.L().Warn("write response failed", zap.String("path", ctx.Path()), zap.Error(err))
	}
}

func ok(ctx iris.Context, v interface{}) {
	reply(ctx, iris.StatusOK, v)
}
