package models

import "time"

// WishlistItem marks a plant as wished for by a user.
// Only one row may exist per (user, plant) pair.
type WishlistItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:wishlists_user_plant_key"`
	PlantID   string    `json:"plant_id" gorm:"type:varchar(36);not null;index;uniqueIndex:wishlists_user_plant_key"`
	CreatedAt time.Time `json:"created_at"`

	Plant Plant `json:"plant" gorm:"foreignKey:PlantID"`
}

// TableName keeps the table name used by the storefront.
func (WishlistItem) TableName() string {
	return "wishlists"
}
