package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/gostore/internal/datamodels/product"
	"github.com/example/gostore/internal/middleware"
	"github.com/example/gostore/internal/service"
)

// ProductController 商品目录与评价
type ProductController struct {
	products *service.ProductService
}

func NewProductController(products *service.ProductService) *ProductController {
	return &ProductController{products: products}
}

// List GET /api/products
func (c *ProductController) List(ctx iris.Context) {
	list, err := c.products.ListAll(ctx.Request().Context())
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, list)
}

// Search GET /api/products/search?query&category&brand&price&rating&order&page&pageSize
func (c *ProductController) Search(ctx iris.Context) {
	page, pageSize := product.ParsePaging(ctx.URLParam("page"), ctx.URLParam("pageSize"), c.products.PageSize())
	q := product.Query{
		Filter: product.ParseFilter(
			ctx.URLParam("query"),
			ctx.URLParam("category"),
			ctx.URLParam("brand"),
			ctx.URLParam("price"),
			ctx.URLParam("rating"),
		),
		Sort:     product.ParseSort(ctx.URLParam("order")),
		Page:     page,
		PageSize: pageSize,
	}
	res, err := c.products.Search(ctx.Request().Context(), q)
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, res)
}

// AdminList GET /api/products/admin?page&pageSize
func (c *ProductController) AdminList(ctx iris.Context) {
	page, pageSize := product.ParsePaging(ctx.URLParam("page"), ctx.URLParam("pageSize"), c.products.PageSize())
	res, err := c.products.AdminList(ctx.Request().Context(), page, pageSize)
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, res)
}

// Categories GET /api/products/categories
func (c *ProductController) Categories(ctx iris.Context) {
	list, err := c.products.Categories(ctx.Request().Context())
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, list)
}

// BySlug GET /api/products/slug/{slug}
func (c *ProductController) BySlug(ctx iris.Context) {
	p, err := c.products.GetBySlug(ctx.Request().Context(), ctx.Params().Get("slug"))
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, p)
}

// ByID GET /api/products/{id}
func (c *ProductController) ByID(ctx iris.Context) {
	p, err := c.products.GetByID(ctx.Request().Context(), idParam(ctx))
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, p)
}

// Create POST /api/products，插入占位商品
func (c *ProductController) Create(ctx iris.Context) {
	p, err := c.products.CreateSample(ctx.Request().Context())
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, iris.Map{"message": "Product Created", "product": p})
}

// Update PUT /api/products/{id}
func (c *ProductController) Update(ctx iris.Context) {
	var f product.Fields
	if !readJSON(ctx, &f) {
		return
	}
	p, err := c.products.Update(ctx.Request().Context(), idParam(ctx), f)
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, iris.Map{"message": "Product Updated", "product": p})
}

// Delete DELETE /api/products/{id}
func (c *ProductController) Delete(ctx iris.Context) {
	if err := c.products.Delete(ctx.Request().Context(), idParam(ctx)); err != nil {
		middleware.Abort(ctx, err)
		return
	}
	ok(ctx, iris.Map{"message": "Product Deleted"})
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AddReview POST /api/products/{id}/reviews，作者取当前用户名
func (c *ProductController) AddReview(ctx iris.Context) {
	var req reviewRequest
	if !readJSON(ctx, &req) {
		return
	}
	id := middleware.IdentityFrom(ctx)
	res, err := c.products.AddReview(ctx.Request().Context(), idParam(ctx), id.Name, req.Rating, req.Comment)
	if err != nil {
		middleware.Abort(ctx, err)
		return
	}
	reply(ctx, iris.StatusCreated, iris.Map{
		"message":     "Review Created",
		"review":      res.Review,
		"num_reviews": res.NumReviews,
		"rating":      res.Rating,
	})
}
