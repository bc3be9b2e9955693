package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/datamodels/product"
)

const (
	msgProductNotFound = "Product Not Found"
	msgDuplicateReview = "You already submitted a review"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&p, id).Error; err != nil {
		return nil, notFound(err, msgProductNotFound)
	}
	return &p, nil
}

func (r *productRepo) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("slug = ?", slug).
		First(&p).Error; err != nil {
		return nil, notFound(err, msgProductNotFound)
	}
	return &p, nil
}

func (r *productRepo) ListAll(ctx context.Context) ([]*product.Product, error) {
	var list []*product.Product
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepo) List(ctx context.Context, offset, limit int) ([]*product.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&product.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*product.Product
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepo) Search(ctx context.Context, q product.Query) ([]*product.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, q.Filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*product.Product
	if err := r.filtered(ctx, q.Filter).
		Order(orderClause(q.Sort)).
		Offset(q.Offset()).
		Limit(q.PageSize).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// likeEscaper 使用 '!' 作为转义符，mysql 与 sqlite 对反斜杠的处理不一致
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// filtered 条件之间为 AND
func (r *productRepo) filtered(ctx context.Context, f product.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&product.Product{})
	if f.Name != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(strings.ToLower(f.Name))+"%")
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Brand != "" {
		query = query.Where("brand = ?", f.Brand)
	}
	if f.MinRating != nil {
		query = query.Where("rating >= ?", *f.MinRating)
	}
	if f.Price != nil {
		query = query.Where("price >= ? AND price <= ?", f.Price.Lo, f.Price.Hi)
	}
	return query
}

func orderClause(s product.Sort) string {
	switch s {
	case product.SortFeatured:
		return "featured DESC, id DESC"
	case product.SortLowest:
		return "price ASC, id DESC"
	case product.SortHighest:
		return "price DESC, id DESC"
	case product.SortTopRated:
		return "rating DESC, id DESC"
	case product.SortNewest:
		return "created_at DESC, id DESC"
	default:
		return "id DESC"
	}
}

func (r *productRepo) Categories(ctx context.Context) ([]string, error) {
	var list []string
	if err := r.db.WithContext(ctx).
		Model(&product.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// AppendReview 锁定商品行后追加评价并重算评分
func (r *productRepo) AppendReview(ctx context.Context, productID int64, rv product.Review) (*product.ReviewResult, error) {
	var result *product.ReviewResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p product.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, productID).Error; err != nil {
			return notFound(err, msgProductNotFound)
		}

		var reviews []product.Review
		if err := tx.Where("product_id = ?", productID).
			Order("id ASC").
			Find(&reviews).Error; err != nil {
			return err
		}
		for _, existing := range reviews {
			if existing.Name == rv.Name {
				return apperr.Conflict(msgDuplicateReview)
			}
		}

		rv.ProductID = productID
		if err := tx.Create(&rv).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Wrap(apperr.KindConflict, msgDuplicateReview, err)
			}
			return err
		}

		reviews = append(reviews, rv)
		numReviews := len(reviews)
		rating := product.AverageRating(reviews)
		if err := tx.Model(&product.Product{}).
			Where("id = ?", productID).
			Updates(map[string]interface{}{
				"num_reviews": numReviews,
				"rating":      rating,
			}).Error; err != nil {
			return err
		}

		result = &product.ReviewResult{Review: rv, NumReviews: numReviews, Rating: rating}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	return r.db.WithContext(ctx).
		Model(&product.Product{ID: p.ID}).
		Omit(clause.Associations).
		Select("name", "slug", "image", "brand", "category", "description", "price", "count_in_stock", "updated_at").
		Updates(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&product.Review{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&product.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(msgProductNotFound)
		}
		return nil
	})
}
