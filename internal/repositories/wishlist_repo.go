package repositories

import (
	"context"

	"nursery/internal/models"
)

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	// ListByUser returns the user's rows with the plant snapshot filled in.
	ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error)
	// Insert fails with apperrors.ErrDuplicate when the pair already exists.
	Insert(ctx context.Context, item *models.WishlistItem) error
	Delete(ctx context.Context, userID, plantID string) error
}
