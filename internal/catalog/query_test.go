package catalog_test

import (
	"encoding/json"
	"math"
	"testing"

	"nursery/internal/catalog"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decimalComparer() cmp.Option {
	return cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
}

func TestCompose_SentinelsApplyNoPredicate(t *testing.T) {
	cfg := catalog.Config{
		Page:      1,
		PageSize:  12,
		Category:  catalog.AllCategories,
		Type:      catalog.AllTypes,
		CareLevel: catalog.AllLevels,
		Size:      catalog.AllSizes,
		MaxPrice:  catalog.PriceBound(math.Inf(1)),
	}

	q := catalog.Compose(cfg)
	assert.Empty(t, q.Predicates)
	assert.Empty(t, q.Search)
	assert.Equal(t, catalog.Order{Column: catalog.ColumnName}, q.Order)

	assert.Empty(t, catalog.Compose(catalog.DefaultConfig()).Predicates)
	assert.Empty(t, catalog.Compose(catalog.Config{}).Predicates, "empty values behave like sentinels")
}

func TestCompose_AllFilters(t *testing.T) {
	cfg := catalog.Config{
		Page:        3,
		PageSize:    10,
		Category:    "Herbs",
		Type:        "Herb",
		CareLevel:   "EASY",
		Size:        "Small",
		MinPrice:    5,
		MaxPrice:    catalog.PriceBound(50.5),
		InStockOnly: true,
		SearchTerm:  "  basil  ",
		SortBy:      catalog.SortPriceHigh,
	}

	want := catalog.Query{
		Predicates: []catalog.Predicate{
			{Column: catalog.ColumnCategory, Op: catalog.OpEq, Value: "Herbs"},
			{Column: catalog.ColumnType, Op: catalog.OpEq, Value: "herb"},
			{Column: catalog.ColumnCareLevel, Op: catalog.OpEq, Value: "easy"},
			{Column: catalog.ColumnSize, Op: catalog.OpEq, Value: "small"},
			{Column: catalog.ColumnPrice, Op: catalog.OpGte, Value: decimal.NewFromInt(5)},
			{Column: catalog.ColumnPrice, Op: catalog.OpLte, Value: decimal.RequireFromString("50.5")},
			{Column: catalog.ColumnInStock, Op: catalog.OpEq, Value: true},
		},
		Search: "basil",
		Order:  catalog.Order{Column: catalog.ColumnPrice, Desc: true},
		Offset: 20,
		Limit:  10,
	}

	got := catalog.Compose(cfg)
	if diff := cmp.Diff(want, got, decimalComparer()); diff != "" {
		t.Errorf("Compose() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 29, got.RangeEnd())
}

func TestCompose_SortPolicy(t *testing.T) {
	tests := []struct {
		sortBy string
		want   catalog.Order
	}{
		{"", catalog.Order{Column: catalog.ColumnName}},
		{catalog.SortName, catalog.Order{Column: catalog.ColumnName}},
		{"rating", catalog.Order{Column: catalog.ColumnName}},
		{catalog.SortPriceLow, catalog.Order{Column: catalog.ColumnPrice}},
		{catalog.SortPriceHigh, catalog.Order{Column: catalog.ColumnPrice, Desc: true}},
	}
	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.Compose(catalog.Config{SortBy: tt.sortBy}).Order)
		})
	}
}

func TestCompose_Pagination(t *testing.T) {
	q := catalog.Compose(catalog.Config{Page: 2, PageSize: 12})
	assert.Equal(t, 12, q.Offset)
	assert.Equal(t, 23, q.RangeEnd())

	q = catalog.Compose(catalog.Config{Page: 0, PageSize: 0})
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, catalog.DefaultPageSize, q.Limit)
}

func TestConfig_HasMore(t *testing.T) {
	for page := 1; page <= 5; page++ {
		for _, size := range []int{1, 7, 12} {
			for _, total := range []int64{0, 11, 12, 13, 30, 60} {
				cfg := catalog.Config{Page: page, PageSize: size}
				assert.Equal(t, int64(page*size) < total, cfg.HasMore(total), "page=%d size=%d total=%d", page, size, total)
			}
		}
	}
}

func TestDisplayPrice(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1244.17").Equal(catalog.DisplayPrice(decimal.RequireFromString("14.99"))))
}

func TestCompose_MaxPriceBound(t *testing.T) {
	tests := []struct {
		name     string
		maxPrice *float64
		want     []catalog.Predicate
	}{
		{"absent", nil, nil},
		{"infinite", catalog.PriceBound(math.Inf(1)), nil},
		{"nan", catalog.PriceBound(math.NaN()), nil},
		{"zero", catalog.PriceBound(0), []catalog.Predicate{{Column: catalog.ColumnPrice, Op: catalog.OpLte, Value: decimal.Zero}}},
		{"finite", catalog.PriceBound(12.5), []catalog.Predicate{{Column: catalog.ColumnPrice, Op: catalog.OpLte, Value: decimal.RequireFromString("12.5")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catalog.Compose(catalog.Config{MaxPrice: tt.maxPrice}).Predicates
			if diff := cmp.Diff(tt.want, got, decimalComparer()); diff != "" {
				t.Errorf("Compose() predicates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfig_Equal(t *testing.T) {
	a := catalog.Config{Category: "Herbs", MaxPrice: catalog.PriceBound(20)}
	assert.True(t, a.Equal(catalog.Config{Category: "Herbs", MaxPrice: catalog.PriceBound(20)}))
	assert.False(t, a.Equal(catalog.Config{Category: "Herbs", MaxPrice: catalog.PriceBound(0)}))
	assert.False(t, a.Equal(catalog.Config{Category: "Herbs"}))
	assert.True(t, catalog.Config{}.Equal(catalog.Config{}))
}

func TestConfig_JSON(t *testing.T) {
	data, err := json.Marshal(catalog.DefaultConfig())
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"max_price":null`)

	var back catalog.Config
	assert.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, catalog.DefaultConfig(), back.Normalize())

	data, err = json.Marshal(catalog.Config{MaxPrice: catalog.PriceBound(25)})
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"max_price":25`)

	back = catalog.DefaultConfig()
	assert.NoError(t, json.Unmarshal([]byte(`{"max_price":0}`), &back))
	assert.Len(t, catalog.Compose(back).Predicates, 1)
}
