// Package catalog turns a plant browsing configuration into a store query
// and keeps the result of the latest configuration for a viewer.
package catalog

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Sentinel values meaning "no predicate" for a filter.
const (
	AllCategories = "All"
	AllTypes      = "All Types"
	AllLevels     = "All Levels"
	AllSizes      = "All Sizes"
)

// Sort keys accepted in Config.SortBy.
const (
	SortName      = "name"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

// DefaultPageSize is the page size used when none is given.
const DefaultPageSize = 12

// Store columns a Query may reference.
const (
	ColumnCategory  = "category"
	ColumnType      = "type"
	ColumnCareLevel = "care_level"
	ColumnSize      = "size"
	ColumnPrice     = "price"
	ColumnInStock   = "in_stock"
	ColumnName      = "name"
	// ColumnSearch is the precomputed full-text field.
	ColumnSearch = "search_text"
)

// Config is what a viewer picks on the browse page.
type Config struct {
	Page        int      `json:"page" query:"page"`
	PageSize    int      `json:"page_size" query:"page_size"`
	Category    string   `json:"category" query:"category"`
	Type        string   `json:"type" query:"type"`
	CareLevel   string   `json:"care_level" query:"care_level"`
	Size        string   `json:"size" query:"size"`
	MinPrice    float64  `json:"min_price" query:"min_price"`
	MaxPrice    *float64 `json:"max_price" query:"max_price"` // nil: no upper bound
	InStockOnly bool     `json:"in_stock_only" query:"in_stock_only"`
	SearchTerm  string   `json:"search" query:"search"`
	SortBy      string   `json:"sort_by" query:"sort_by"`
}

// DefaultConfig returns the first page of every plant ordered by name.
func DefaultConfig() Config {
	return Config{
		Page:      1,
		PageSize:  DefaultPageSize,
		Category:  AllCategories,
		Type:      AllTypes,
		CareLevel: AllLevels,
		Size:      AllSizes,
		SortBy:    SortName,
	}
}

// PriceBound returns v as a MaxPrice.
func PriceBound(v float64) *float64 {
	return &v
}

// Normalize fills defaults. An infinite or NaN MaxPrice becomes nil.
func (c Config) Normalize() Config {
	if c.Page < 1 {
		c.Page = 1
	}
	if c.PageSize < 1 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxPrice != nil {
		if v := *c.MaxPrice; math.IsInf(v, 0) || math.IsNaN(v) {
			c.MaxPrice = nil
		} else {
			c.MaxPrice = PriceBound(v)
		}
	}
	if math.IsNaN(c.MinPrice) || c.MinPrice < 0 {
		c.MinPrice = 0
	}
	switch c.SortBy {
	case SortPriceLow, SortPriceHigh:
	default:
		c.SortBy = SortName
	}
	c.SearchTerm = strings.TrimSpace(c.SearchTerm)
	return c
}

// Equal reports whether c and o select the same rows. MaxPrice is compared
// by value.
func (c Config) Equal(o Config) bool {
	a, b := c.MaxPrice, o.MaxPrice
	if (a == nil) != (b == nil) || (a != nil && *a != *b) {
		return false
	}
	c.MaxPrice, o.MaxPrice = nil, nil
	return c == o
}

// HasMore reports whether rows exist past the configured page.
func (c Config) HasMore(total int64) bool {
	return int64(c.Page)*int64(c.PageSize) < total
}

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Predicate narrows the rows of a Query.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// Order is the single sort clause of a Query.
type Order struct {
	Column string
	Desc   bool
}

// Query is a store independent description of one plant listing request.
type Query struct {
	Predicates []Predicate
	Search     string
	Order      Order
	Offset     int
	Limit      int
}

// RangeEnd is the inclusive index of the last requested row.
func (q Query) RangeEnd() int {
	return q.Offset + q.Limit - 1
}

// Compose builds the Query for cfg.
func Compose(cfg Config) Query {
	cfg = cfg.Normalize()

	var q Query
	if cfg.Category != "" && cfg.Category != AllCategories {
		q.Predicates = append(q.Predicates, Predicate{ColumnCategory, OpEq, cfg.Category})
	}
	if cfg.Type != "" && cfg.Type != AllTypes {
		q.Predicates = append(q.Predicates, Predicate{ColumnType, OpEq, strings.ToLower(cfg.Type)})
	}
	if cfg.CareLevel != "" && cfg.CareLevel != AllLevels {
		q.Predicates = append(q.Predicates, Predicate{ColumnCareLevel, OpEq, strings.ToLower(cfg.CareLevel)})
	}
	if cfg.Size != "" && cfg.Size != AllSizes {
		q.Predicates = append(q.Predicates, Predicate{ColumnSize, OpEq, strings.ToLower(cfg.Size)})
	}
	if cfg.MinPrice > 0 {
		q.Predicates = append(q.Predicates, Predicate{ColumnPrice, OpGte, decimal.NewFromFloat(cfg.MinPrice)})
	}
	if cfg.MaxPrice != nil {
		q.Predicates = append(q.Predicates, Predicate{ColumnPrice, OpLte, decimal.NewFromFloat(*cfg.MaxPrice)})
	}
	if cfg.InStockOnly {
		q.Predicates = append(q.Predicates, Predicate{ColumnInStock, OpEq, true})
	}
	q.Search = cfg.SearchTerm

	switch cfg.SortBy {
	case SortPriceLow:
		q.Order = Order{Column: ColumnPrice}
	case SortPriceHigh:
		q.Order = Order{Column: ColumnPrice, Desc: true}
	default:
		q.Order = Order{Column: ColumnName}
	}

	q.Offset = (cfg.Page - 1) * cfg.PageSize
	q.Limit = cfg.PageSize
	return q
}

// SearchTokens splits a search term into the lower-cased words every
// matching row must contain.
func SearchTokens(term string) []string {
	return strings.Fields(strings.ToLower(term))
}

// DisplayRate converts stored prices into the displayed currency.
var DisplayRate = decimal.NewFromInt(83)

// DisplayPrice returns price in the displayed currency, rounded to paise.
func DisplayPrice(price decimal.Decimal) decimal.Decimal {
	return price.Mul(DisplayRate).Round(2)
}
