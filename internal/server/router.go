package server

import (
	"net/http"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/gostore/internal/auth"
	"github.com/example/gostore/internal/config"
	"github.com/example/gostore/internal/middleware"
	"github.com/example/gostore/internal/service"
	"github.com/example/gostore/web/controllers"
)

// Deps 路由依赖，由 cmd/server 组装
type Deps struct {
	Config   *config.Config
	Gate     *auth.Gate
	Products *service.ProductService
	Users    *service.UserService
	Orders   *service.OrderService
	Metrics  prometheus.Gatherer
}

type handlers struct {
	products *controllers.ProductController
	orders   *controllers.OrderController
	users    *controllers.UserController
	keys     *controllers.KeysController
}

// New 创建应用并注册全部路由
func New(d *Deps) *iris.Application {
	app := iris.New()
	app.UseRouter(recover.New())
	app.Use(middleware.Tracing(), middleware.AccessLog())
	app.OnAnyErrorCode(errorBody)
	RegisterRoutes(app, d)
	return app
}

// errorBody 未匹配路由等框架层错误同样返回 {"message"}，业务错误已由控制器写出
func errorBody(ctx iris.Context) {
	_ = ctx.JSON(iris.Map{"message": http.StatusText(ctx.GetStatusCode())})
}

// RegisterRoutes 注册前台与后台 HTTP 路由
func RegisterRoutes(app *iris.Application, d *Deps) {
	h := &handlers{
		products: controllers.NewProductController(d.Products),
		orders:   controllers.NewOrderController(d.Orders),
		users:    controllers.NewUserController(d.Users),
		keys:     controllers.NewKeysController(d.Config.Keys),
	}
	authed := middleware.Authenticated(d.Gate)

	if d.Metrics != nil {
		app.Get("/metrics", iris.FromStd(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		_ = ctx.JSON(iris.Map{"status": "ok"})
	})

	api.Get("/keys/paypal", h.keys.PayPal)
	api.Get("/keys/google", h.keys.Google)

	// ---------- 商品 ----------
	products := api.Party("/products")
	products.Get("/", h.products.List)
	products.Get("/search", h.products.Search)
	products.Get("/categories", h.products.Categories)
	products.Get("/slug/{slug:string}", h.products.BySlug)
	products.Get("/{id:uint64}", h.products.ByID)
	products.Post("/{id:uint64}/reviews", authed, h.products.AddReview)

	// ---------- 用户 ----------
	users := api.Party("/users")
	limit := middleware.SignInRateLimit()
	users.Post("/signup", limit, h.users.SignUp)
	users.Post("/signin", limit, h.users.SignIn)
	users.Put("/profile", authed, h.users.Profile)

	// ---------- 订单 ----------
	orders := api.Party("/orders", authed)
	orders.Post("/", h.orders.Create)
	orders.Get("/mine", h.orders.Mine)
	orders.Get("/{id:uint64}", h.orders.ByID)
	orders.Put("/{id:uint64}/pay", h.orders.Pay)

	RegisterAdminRoutes(api, h, authed)
}
