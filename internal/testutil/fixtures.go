package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/gostore/internal/datamodels/product"
	"github.com/example/gostore/internal/datamodels/user"
)

// NewProduct 构造测试商品，slug 由名称生成
func NewProduct(name, category, price string) *product.Product {
	return &product.Product{
		Name:         name,
		Slug:         strings.ReplaceAll(strings.ToLower(name), " ", "-"),
		Image:        "/images/p1.jpg",
		Brand:        "Acme",
		Category:     category,
		Description:  name + " description",
		Price:        decimal.RequireFromString(price),
		CountInStock: 10,
	}
}

// InsertProducts 批量写入商品
func InsertProducts(t testing.TB, db *gorm.DB, list ...*product.Product) {
	t.Helper()
	for _, p := range list {
		if err := db.WithContext(context.Background()).Create(p).Error; err != nil {
			t.Fatalf("insert product %s: %v", p.Name, err)
		}
	}
}

// InsertUser 写入用户，password 为已处理后的值
func InsertUser(t testing.TB, db *gorm.DB, name, email string, isAdmin bool) *user.User {
	t.Helper()
	u := &user.User{Name: name, Email: email, Password: "x", IsAdmin: isAdmin}
	if err := db.WithContext(context.Background()).Create(u).Error; err != nil {
		t.Fatalf("insert user %s: %v", email, err)
	}
	return u
}
