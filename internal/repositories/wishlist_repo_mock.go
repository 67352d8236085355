package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"nursery/internal/apperrors"
	"nursery/internal/models"

	"github.com/google/uuid"
)

// MockWishlistRepository is an in-memory implementation of WishlistRepository.
// Plant snapshots are resolved through the given plant repository.
type MockWishlistRepository struct {
	plants PlantRepository
	items  map[string]models.WishlistItem // keyed by user_id + "/" + plant_id
	mu     sync.RWMutex
}

// NewMockWishlistRepository creates a new instance of MockWishlistRepository.
func NewMockWishlistRepository(plants PlantRepository) *MockWishlistRepository {
	return &MockWishlistRepository{
		plants: plants,
		items:  make(map[string]models.WishlistItem),
	}
}

func wishlistKey(userID, plantID string) string {
	return userID + "/" + plantID
}

// ListByUser returns the user's rows, oldest first.
func (r *MockWishlistRepository) ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.WishlistItem
	for _, item := range r.items {
		if item.UserID != userID {
			continue
		}
		if r.plants != nil {
			plant, err := r.plants.GetByID(ctx, item.PlantID)
			if err != nil {
				// The plant was deleted; its rows go with it.
				continue
			}
			item.Plant = *plant
		}
		list = append(list, item)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

// Insert adds a (user, plant) row, rejecting duplicates.
func (r *MockWishlistRepository) Insert(ctx context.Context, item *models.WishlistItem) error {
	if r.plants != nil {
		if _, err := r.plants.GetByID(ctx, item.PlantID); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := wishlistKey(item.UserID, item.PlantID)
	if _, exists := r.items[key]; exists {
		return fmt.Errorf("plant %s already in wishlist of user %s: %w", item.PlantID, item.UserID, apperrors.ErrDuplicate)
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = time.Now()
	r.items[key] = *item
	return nil
}

// Delete removes the (user, plant) row if present.
func (r *MockWishlistRepository) Delete(ctx context.Context, userID, plantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, wishlistKey(userID, plantID))
	return nil
}
