package server

import (
	"github.com/kataras/iris/v12"

	"github.com/example/gostore/internal/middleware"
)

// RegisterAdminRoutes 注册需要管理员身份的路由，authed 必须先于 AdminOnly 执行
func RegisterAdminRoutes(api iris.Party, h *handlers, authed iris.Handler) {
	guard := []iris.Handler{authed, middleware.AdminOnly()}

	// ---------- 商品管理 ----------
	products := api.Party("/products", guard...)
	products.Get("/admin", h.products.AdminList)
	products.Post("/", h.products.Create)
	products.Put("/{id:uint64}", h.products.Update)
	products.Delete("/{id:uint64}", h.products.Delete)

	// ---------- 订单管理 ----------
	orders := api.Party("/orders", guard...)
	orders.Get("/", h.orders.List)
	orders.Get("/summary", h.orders.Summary)
	orders.Put("/{id:uint64}/deliver", h.orders.Deliver)
	orders.Delete("/{id:uint64}", h.orders.Delete)

	// ---------- 用户管理 ----------
	users := api.Party("/users", guard...)
	users.Get("/", h.users.List)
	users.Get("/{id:uint64}", h.users.ByID)
	users.Put("/{id:uint64}", h.users.Update)
	users.Delete("/{id:uint64}", h.users.Delete)
}
