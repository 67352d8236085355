package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Plant types, care levels, light, water and size values stored on a Plant.
const (
	TypePlant  = "plant"
	TypeHerb   = "herb"
	TypeFlower = "flower"

	CareEasy   = "easy"
	CareMedium = "medium"
	CareExpert = "expert"

	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// PlantSearchVector is the Postgres full-text expression over search_text.
// Queries must use it verbatim to hit the GIN index built on it.
const PlantSearchVector = "to_tsvector('english', search_text)"

// Plant is a product sold by the nursery.
type Plant struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string          `json:"name" gorm:"index" validate:"required,min=2,max=100"`
	Description   string          `json:"description" validate:"omitempty,max=1000"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(10,2);index"`
	ImageURL      string          `json:"image_url" validate:"omitempty,url"`
	Category      string          `json:"category" gorm:"index" validate:"required"`
	Type          string          `json:"type" gorm:"index" validate:"required,oneof=plant herb flower"`
	CareLevel     string          `json:"care_level" gorm:"index" validate:"required,oneof=easy medium expert"`
	Sunlight      string          `json:"sunlight" validate:"required,oneof=full partial shade"`
	Water         string          `json:"water" validate:"required,oneof=low moderate high"`
	InStock       bool            `json:"in_stock" gorm:"index"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	Size          string          `json:"size" gorm:"index" validate:"required,oneof=small medium large"`
	SearchText    string          `json:"-" gorm:"type:text"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BeforeSave keeps the search text column in step with the searchable fields.
func (p *Plant) BeforeSave(*gorm.DB) error {
	p.SearchText = p.BuildSearchText()
	return nil
}

// BuildSearchText returns the lower-cased text the full-text predicate runs against.
func (p *Plant) BuildSearchText() string {
	return strings.ToLower(strings.Join([]string{p.Name, p.Description, p.Category, p.Type}, " "))
}
