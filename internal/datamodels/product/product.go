package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Product 商品模型
type Product struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Slug         string          `gorm:"size:160;uniqueIndex;not null" json:"slug"`
	Image        string          `gorm:"size:255;not null" json:"image"`
	Brand        string          `gorm:"size:64;index;not null" json:"brand"`
	Category     string          `gorm:"size:64;index;not null" json:"category"`
	Description  string          `gorm:"size:1024" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"` // 非负
	CountInStock int64           `gorm:"not null" json:"count_in_stock"`
	Rating       float64         `gorm:"not null;default:0" json:"rating"` // 0-5，评价均分
	NumReviews   int             `gorm:"not null;default:0" json:"num_reviews"`
	Featured     bool            `gorm:"index;not null;default:false" json:"featured"`
	Reviews      []Review        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"reviews"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Review 商品评价，同一作者对同一商品只能评价一次
type Review struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ProductID int64     `gorm:"uniqueIndex:idx_review_product_author;not null" json:"-"`
	Name      string    `gorm:"uniqueIndex:idx_review_product_author;size:64;not null" json:"name"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5
	Comment   string    `gorm:"size:1024" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Fields 管理端可修改的商品字段
type Fields struct {
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Image        string          `json:"image"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int64           `json:"count_in_stock"`
}

// ApplyTo 覆盖商品字段
func (f Fields) ApplyTo(p *Product) {
	p.Name = f.Name
	p.Slug = f.Slug
	p.Image = f.Image
	p.Brand = f.Brand
	p.Category = f.Category
	p.Description = f.Description
	p.Price = f.Price
	p.CountInStock = f.CountInStock
}

// ReviewResult 新增评价后的结果
type ReviewResult struct {
	Review     Review  `json:"review"`
	NumReviews int     `json:"num_reviews"`
	Rating     float64 `json:"rating"`
}

// Page 分页结果
type Page struct {
	Products      []*Product `json:"products"`
	CountProducts int64      `json:"count_products"`
	Page          int        `json:"page"`
	Pages         int        `json:"pages"`
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	List(ctx context.Context, offset, limit int) ([]*Product, int64, error)
	Search(ctx context.Context, q Query) ([]*Product, int64, error)
	Categories(ctx context.Context) ([]string, error)
	AppendReview(ctx context.Context, productID int64, r Review) (*ReviewResult, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
