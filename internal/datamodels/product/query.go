package product

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPageSize 未指定 pageSize 时的分页大小
const DefaultPageSize = 3

// Sort 商品排序方式
type Sort string

const (
	SortFeatured Sort = "featured"
	SortLowest   Sort = "lowest"
	SortHighest  Sort = "highest"
	SortTopRated Sort = "toprated"
	SortNewest   Sort = "newest"
	SortDefault  Sort = ""
)

// ParseSort 未识别的值回退到默认排序（id 倒序）
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortFeatured, SortLowest, SortHighest, SortTopRated, SortNewest:
		return Sort(s)
	default:
		return SortDefault
	}
}

// PriceRange 闭区间价格过滤
type PriceRange struct {
	Lo decimal.Decimal
	Hi decimal.Decimal
}

// Filter 多个条件之间为 AND 关系，零值表示不过滤
type Filter struct {
	Name      string
	Category  string
	Brand     string
	MinRating *float64
	Price     *PriceRange
}

// Query 检索请求
type Query struct {
	Filter   Filter
	Sort     Sort
	Page     int
	PageSize int
}

// Offset 当前页偏移
func (q Query) Offset() int {
	return Offset(q.Page, q.PageSize)
}

// Offset 乘法溢出时返回 math.MaxInt，此时查询结果为空页
func Offset(page, pageSize int) int {
	if page <= 1 || pageSize <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// Pages ceil(total/pageSize)
func Pages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

// ParsePaging 非法或缺失的值使用默认值
func ParsePaging(page, pageSize string, defaultSize int) (int, int) {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	p, err := strconv.Atoi(page)
	if err != nil || p <= 0 {
		p = 1
	}
	ps, err := strconv.Atoi(pageSize)
	if err != nil || ps <= 0 {
		ps = defaultSize
	}
	return p, ps
}

// ParseFilter 解析检索参数，"all" 或空值表示不过滤
func ParseFilter(name, category, brand, price, rating string) Filter {
	var f Filter
	if active(name) {
		f.Name = name
	}
	if active(category) {
		f.Category = category
	}
	if active(brand) {
		f.Brand = brand
	}
	if active(rating) {
		if r, err := strconv.ParseFloat(rating, 64); err == nil {
			f.MinRating = &r
		}
	}
	if active(price) {
		f.Price = parsePriceRange(price)
	}
	return f
}

func active(v string) bool {
	return v != "" && v != "all"
}

// parsePriceRange 格式 "lo,hi"，兼容 "lo-hi"
func parsePriceRange(s string) *PriceRange {
	sep := ","
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	parts := strings.SplitN(s, sep, 2)
	if len(parts) != 2 {
		return nil
	}
	lo, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil
	}
	hi, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil
	}
	return &PriceRange{Lo: lo, Hi: hi}
}

// AverageRating 评价均分，无评价时为 0
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
