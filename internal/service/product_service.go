package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/gostore/internal/apperr"
	"github.com/example/gostore/internal/datamodels/product"
)

// ProductService 商品目录：检索、评价与后台维护
type ProductService struct {
	repo     product.Repository
	pageSize int
	monitor  *Monitor
}

func NewProductService(repo product.Repository, pageSize int, monitor *Monitor) *ProductService {
	if pageSize <= 0 {
		pageSize = product.DefaultPageSize
	}
	return &ProductService{repo: repo, pageSize: pageSize, monitor: monitor}
}

// PageSize 默认分页大小
func (s *ProductService) PageSize() int {
	return s.pageSize
}

func (s *ProductService) ListAll(ctx context.Context) ([]*product.Product, error) {
	return s.repo.ListAll(ctx)
}

// AdminList 管理端分页列表
func (s *ProductService) AdminList(ctx context.Context, page, pageSize int) (*product.Page, error) {
	list, total, err := s.repo.List(ctx, product.Offset(page, pageSize), pageSize)
	if err != nil {
		return nil, err
	}
	return &product.Page{Products: list, CountProducts: total, Page: page, Pages: product.Pages(total, pageSize)}, nil
}

// Search 条件检索，返回当前页与总页数
func (s *ProductService) Search(ctx context.Context, q product.Query) (*product.Page, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}
	list, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return &product.Page{Products: list, CountProducts: total, Page: q.Page, Pages: product.Pages(total, q.PageSize)}, nil
}

// Categories 当前所有商品分类（去重）
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// AddReview 同一作者只能评价一次，评分 1-5
func (s *ProductService) AddReview(ctx context.Context, productID int64, author string, rating int, comment string) (*product.ReviewResult, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("Rating must be between 1 and 5")
	}
	if strings.TrimSpace(author) == "" {
		return nil, apperr.Validation("Reviewer name is required")
	}
	res, err := s.repo.AppendReview(ctx, productID, product.Review{
		Name:    author,
		Rating:  rating,
		Comment: comment,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			s.monitor.RecordStoreError("append_review")
		}
		return nil, err
	}
	s.monitor.RecordReviewCreated()
	return res, nil
}

// CreateSample 后台“新建商品”：先插入占位商品，再由编辑页补全
func (s *ProductService) CreateSample(ctx context.Context) (*product.Product, error) {
	suffix := uuid.NewString()
	p := &product.Product{
		Name:         "sample name " + suffix,
		Slug:         "sample-name-" + suffix,
		Image:        "/images/p1.jpg",
		Price:        decimal.Zero,
		Category:     "sample category",
		Brand:        "sample brand",
		CountInStock: 0,
		Description:  "sample description",
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update 覆盖可编辑字段
func (s *ProductService) Update(ctx context.Context, id int64, f product.Fields) (*product.Product, error) {
	if f.Price.IsNegative() {
		return nil, apperr.Validation("Price must not be negative")
	}
	if f.CountInStock < 0 {
		return nil, apperr.Validation("Stock must not be negative")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	f.ApplyTo(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
