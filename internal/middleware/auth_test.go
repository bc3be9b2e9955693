package middleware

import (
	"testing"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	"github.com/stretchr/testify/require"

	"github.com/example/gostore/internal/auth"
	"github.com/example/gostore/internal/config"
)

func newGuardedApp(t *testing.T) (*iris.Application, *auth.Gate) {
	t.Helper()
	gate := auth.NewGate(&config.JWTConfig{Secret: "mw-secret", TTL: time.Hour}, nil)

	app := iris.New()
	app.Get("/me", Authenticated(gate), func(ctx iris.Context) {
		_ = ctx.JSON(IdentityFrom(ctx))
	})
	app.Get("/admin", Authenticated(gate), AdminOnly(), func(ctx iris.Context) {
		ctx.StatusCode(iris.StatusNoContent)
	})
	return app, gate
}

func TestAuthenticatedGuard(t *testing.T) {
	app, gate := newGuardedApp(t)
	e := httptest.New(t, app)

	e.GET("/me").Expect().Status(iris.StatusUnauthorized).
		Body().Contains("No Token")
	e.GET("/me").WithHeader("Authorization", "Bearer garbage").Expect().
		Status(iris.StatusUnauthorized).Body().Contains("Invalid Token")

	tok, err := gate.Issue(&auth.Identity{ID: 4, Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	e.GET("/me").WithHeader("Authorization", "Bearer "+tok).Expect().
		Status(iris.StatusOK).Body().Contains(`"email":"ada@example.com"`)
}

func TestAdminOnlyGuard(t *testing.T) {
	app, gate := newGuardedApp(t)
	e := httptest.New(t, app)

	userTok, err := gate.Issue(&auth.Identity{ID: 1, Name: "Ada"})
	require.NoError(t, err)
	adminTok, err := gate.Issue(&auth.Identity{ID: 2, Name: "Root", IsAdmin: true})
	require.NoError(t, err)

	e.GET("/admin").WithHeader("Authorization", "Bearer "+userTok).Expect().
		Status(iris.StatusForbidden).Body().Contains("Invalid Admin Token")
	e.GET("/admin").WithHeader("Authorization", "Bearer "+adminTok).Expect().
		Status(iris.StatusNoContent)
}

func TestRateLimitMiddleware(t *testing.T) {
	app := iris.New()
	app.Get("/limited", RateLimit(NewClientLimiter(1, 0)), func(ctx iris.Context) {
		ctx.StatusCode(iris.StatusNoContent)
	})
	e := httptest.New(t, app)

	e.GET("/limited").Expect().Status(iris.StatusNoContent)
	e.GET("/limited").Expect().Status(iris.StatusTooManyRequests).
		Body().Contains("Too many requests")
}
