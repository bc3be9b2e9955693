package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/gostore/internal/middleware"
	"github.com/example/gostore/internal/service"
)

// UserController 注册登录、个人资料与后台用户管理
type UserController struct {
	users *service.UserService
}

func NewUserController(users *service.UserService) *UserController {
	return &UserController{users: users}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp POST /api/users/signup
func (c *UserController) SignUp(ctx iris.Context) {
	var req credentials
	if !readJSON(ctx, &req) {
		return
	}
	s, err := c.users.SignUp(ctx.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	reply(ctx, iris.StatusCreated, s)
}

// SignIn POST /api/users/signin
func (c *UserController) SignIn(ctx iris.Context) {
	var req credentials
	if !readJSON(ctx, &req) {
		return
	}
	s, err := c.users.SignIn(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, s)
}

// Profile PUT /api/users/profile
func (c *UserController) Profile(ctx iris.Context) {
	var req credentials
	if !readJSON(ctx, &req) {
		return
	}
	s, err := c.users.UpdateProfile(ctx.Request().Context(), middleware.IdentityFrom(ctx).ID, req.Name, req.Email, req.Password)
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, s)
}

// List GET /api/users
func (c *UserController) List(ctx iris.Context) {
	list, err := c.users.List(ctx.Request().Context())
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, list)
}

// ByID GET /api/users/{id}
func (c *UserController) ByID(ctx iris.Context) {
	u, err := c.users.Get(ctx.Request().Context(), idParam(ctx))
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, u)
}

type adminUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Update PUT /api/users/{id}
func (c *UserController) Update(ctx iris.Context) {
	var req adminUserRequest
	if !readJSON(ctx, &req) {
		return
	}
	u, err := c.users.AdminUpdate(ctx.Request().Context(), idParam(ctx), req.Name, req.Email, req.IsAdmin)
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, iris.Map{"message": "User Updated", "user": u})
}

// Delete DELETE /api/users/{id}
func (c *UserController) Delete(ctx iris.Context) {
	if err := c.users.Delete(ctx.Request().Context(), idParam(ctx)); err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, iris.Map{"message": "User Deleted"})
}
