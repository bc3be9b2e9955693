package service

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/datamodels/product"
	"github.com/example/gostore/internal/repository/mysql"
	"github.com/example/gostore/internal/testutil"
)

func newProductService(t *testing.T, products ...*product.Product) (*ProductService, *Monitor) {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.InsertProducts(t, db, products...)
	m := NewMonitor(prometheus.NewRegistry())
	return NewProductService(mysql.NewProductRepository(db), 0, m), m
}

func TestSearchDefaultsPaging(t *testing.T) {
	svc, _ := newProductService(t,
		testutil.NewProduct("Nike Slim Shirt", "Shirts", "120"),
		testutil.NewProduct("Adidas Fit Shirt", "Shirts", "100"),
		testutil.NewProduct("Lacoste Free Shirt", "Shirts", "220"),
		testutil.NewProduct("Nike Slim Pant", "Pants", "78"),
	)
	assert.Equal(t, product.DefaultPageSize, svc.PageSize())

	page, err := svc.Search(context.Background(), product.Query{})
	require.NoError(t, err)
	assert.Len(t, page.Products, 3)
	assert.Equal(t, int64(4), page.CountProducts)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Pages)

	shirts, err := svc.Search(context.Background(), product.Query{
		Filter: product.Filter{Category: "Shirts", Name: "nike"},
	})
	require.NoError(t, err)
	require.Len(t, shirts.Products, 1)
	assert.Equal(t, "Nike Slim Shirt", shirts.Products[0].Name)
}

func TestAdminList(t *testing.T) {
	svc, _ := newProductService(t,
		testutil.NewProduct("P1", "A", "1"),
		testutil.NewProduct("P2", "A", "1"),
		testutil.NewProduct("P3", "A", "1"),
	)
	page, err := svc.AdminList(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "P3", page.Products[0].Name)
	assert.Equal(t, 2, page.Pages)
}

func TestAddReview(t *testing.T) {
	p := testutil.NewProduct("Nike Slim Shirt", "Shirts", "120")
	svc, m := newProductService(t, p)
	ctx := context.Background()

	res, err := svc.AddReview(ctx, p.ID, "Ada", 5, "great")
	require.NoError(t, err)
	assert.Equal(t, 1, res.NumReviews)
	assert.Equal(t, 5.0, res.Rating)

	res, err = svc.AddReview(ctx, p.ID, "Bob", 4, "good")
	require.NoError(t, err)
	assert.Equal(t, 2, res.NumReviews)
	assert.Equal(t, 4.5, res.Rating)

	_, err = svc.AddReview(ctx, p.ID, "Ada", 1, "changed my mind")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, "You already submitted a review", apperr.MessageOf(err))

	_, err = svc.AddReview(ctx, p.ID, "Cy", 6, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.AddReview(ctx, p.ID+100, "Cy", 3, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	stored, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.NumReviews)
	assert.Len(t, stored.Reviews, 2)
	assert.Equal(t, float64(2), promtest.ToFloat64(m.reviewsCreated))
}

func TestCreateSampleAndUpdate(t *testing.T) {
	svc, _ := newProductService(t)
	ctx := context.Background()

	p, err := svc.CreateSample(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Name, "sample name "))
	assert.True(t, strings.HasPrefix(p.Slug, "sample-name-"))
	assert.Equal(t, "/images/p1.jpg", p.Image)
	assert.True(t, p.Price.IsZero())

	other, err := svc.CreateSample(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, p.Slug, other.Slug)

	updated, err := svc.Update(ctx, p.ID, product.Fields{
		Name: "Puma Shirt", Slug: "puma-shirt", Image: "/images/p5.jpg", Brand: "Puma",
		Category: "Shirts", Description: "soft", Price: decimal.RequireFromString("65"), CountInStock: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Puma Shirt", updated.Name)

	bySlug, err := svc.GetBySlug(ctx, "puma-shirt")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySlug.ID)
	assert.True(t, bySlug.Price.Equal(decimal.RequireFromString("65")))
	assert.Equal(t, int64(7), bySlug.CountInStock)

	_, err = svc.Update(ctx, p.ID, product.Fields{Price: decimal.RequireFromString("-1")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Update(ctx, p.ID+100, product.Fields{Name: "x", Slug: "x"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.GetByID(ctx, p.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCategories(t *testing.T) {
	svc, _ := newProductService(t,
		testutil.NewProduct("P1", "Shirts", "1"),
		testutil.NewProduct("P2", "Pants", "1"),
		testutil.NewProduct("P3", "Shirts", "1"),
	)
	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Pants", "Shirts"}, cats)
}
