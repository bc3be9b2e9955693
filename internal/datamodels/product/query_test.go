package product

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortLowest, ParseSort("lowest"))
	assert.Equal(t, SortTopRated, ParseSort("toprated"))
	assert.Equal(t, SortDefault, ParseSort("cheapest-first"))
	assert.Equal(t, SortDefault, ParseSort(""))
}

func TestParsePaging(t *testing.T) {
	tests := []struct {
		name, page, size string
		wantPage, wantSz int
	}{
		{"absent", "", "", 1, 3},
		{"non numeric", "abc", "x", 1, 3},
		{"negative", "-2", "0", 1, 3},
		{"explicit", "4", "25", 4, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ps := ParsePaging(tt.page, tt.size, DefaultPageSize)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.wantSz, ps)
		})
	}
}

func TestParseFilter(t *testing.T) {
	f := ParseFilter("shirt", "all", "Nike", "10,50", "4")

	assert.Equal(t, "shirt", f.Name)
	assert.Empty(t, f.Category)
	assert.Equal(t, "Nike", f.Brand)
	require.NotNil(t, f.MinRating)
	assert.Equal(t, 4.0, *f.MinRating)
	require.NotNil(t, f.Price)
	assert.True(t, f.Price.Lo.Equal(decimal.NewFromInt(10)))
	assert.True(t, f.Price.Hi.Equal(decimal.NewFromInt(50)))
}

func TestParseFilterIgnoresMalformedValues(t *testing.T) {
	f := ParseFilter("all", "", "", "cheap", "high")

	assert.Empty(t, f.Name)
	assert.Nil(t, f.MinRating)
	assert.Nil(t, f.Price)
}

func TestPages(t *testing.T) {
	assert.Equal(t, 0, Pages(0, 3))
	assert.Equal(t, 1, Pages(3, 3))
	assert.Equal(t, 2, Pages(4, 3))
	assert.Equal(t, 0, Pages(10, 0))
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.InDelta(t, 3.5, AverageRating([]Review{{Rating: 3}, {Rating: 4}}), 1e-9)
}

func TestQueryOffset(t *testing.T) {
	assert.Equal(t, 0, Query{Page: 1, PageSize: 3}.Offset())
	assert.Equal(t, 6, Query{Page: 3, PageSize: 3}.Offset())
	assert.Equal(t, 0, Query{Page: 0, PageSize: 3}.Offset())

	// 超大页码不回绕成负数
	assert.Equal(t, math.MaxInt, Query{Page: 1537228672809129302, PageSize: 12}.Offset())
	assert.Equal(t, math.MaxInt, Offset(math.MaxInt, 2))
}
