package repositories

import (
	"context"
	"fmt"

	"nursery/internal/apperrors"
	"nursery/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{
		db: db,
	}
}

// ListByUser retrieves a user's wishlist, oldest first.
func (r *GORMWishlistRepository) ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Plant").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist for user %s: %w", userID, err)
	}
	return items, nil
}

// Insert adds a (user, plant) row. The plant must exist.
func (r *GORMWishlistRepository) Insert(ctx context.Context, item *models.WishlistItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Plant{}).Where("id = ?", item.PlantID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to look up plant %s: %w", item.PlantID, err)
		}
		if n == 0 {
			return fmt.Errorf("plant with ID %s not found: %w", item.PlantID, apperrors.ErrNotFound)
		}
		if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("plant %s already in wishlist of user %s: %w", item.PlantID, item.UserID, apperrors.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert wishlist item: %w", err)
		}
		return nil
	})
}

// Delete removes the (user, plant) row. Removing an absent row is not an error.
func (r *GORMWishlistRepository) Delete(ctx context.Context, userID, plantID string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND plant_id = ?", userID, plantID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", res.Error)
	}
	return nil
}
