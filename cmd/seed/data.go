package main

import (
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/example/gostore/internal/datamodels/product"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	IsAdmin  bool   `yaml:"is_admin"`
}

type seedReview struct {
	Name    string `yaml:"name"`
	Rating  int    `yaml:"rating"`
	Comment string `yaml:"comment"`
}

type seedProduct struct {
	Name         string       `yaml:"name"`
	Slug         string       `yaml:"slug"`
	Category     string       `yaml:"category"`
	Image        string       `yaml:"image"`
	Price        string       `yaml:"price"`
	CountInStock int64        `yaml:"count_in_stock"`
	Brand        string       `yaml:"brand"`
	Featured     bool         `yaml:"featured"`
	Description  string       `yaml:"description"`
	Reviews      []seedReview `yaml:"reviews"`
}

type seedData struct {
	Users    []seedUser    `yaml:"users"`
	Products []seedProduct `yaml:"products"`
}

func parseSeed(raw []byte) (*seedData, error) {
	var d seedData
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (p seedProduct) model() (*product.Product, error) {
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return nil, err
	}
	reviews := make([]product.Review, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		if r.Rating < 1 || r.Rating > 5 {
			return nil, fmt.Errorf("review by %s: rating %d out of range", r.Name, r.Rating)
		}
		reviews = append(reviews, product.Review{Name: r.Name, Rating: r.Rating, Comment: r.Comment})
	}
	// 评分与评价数只由评价推导
	return &product.Product{
		Name:         p.Name,
		Slug:         p.Slug,
		Image:        p.Image,
		Brand:        p.Brand,
		Category:     p.Category,
		Description:  p.Description,
		Price:        price,
		CountInStock: p.CountInStock,
		Rating:       product.AverageRating(reviews),
		NumReviews:   len(reviews),
		Featured:     p.Featured,
		Reviews:      reviews,
	}, nil
}
