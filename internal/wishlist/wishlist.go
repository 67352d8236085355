// Package wishlist mirrors one user's wishlist rows in memory.
//
// Inserts refetch the whole list from the store; deletes patch the local
// copy. Membership is decided only by the presence of a row in the mirror.
package wishlist

import (
	"context"
	"errors"
	"sync"

	"nursery/internal/apperrors"
	"nursery/internal/models"
)

// Store is the remote wishlist table.
type Store interface {
	ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error)
	Insert(ctx context.Context, item *models.WishlistItem) error
	Delete(ctx context.Context, userID, plantID string) error
}

// Mirror is the local copy of a user's wishlist.
type Mirror struct {
	store Store

	mu      sync.RWMutex
	userID  string
	items   []models.WishlistItem
	loading bool
}

// NewMirror returns an empty mirror with no signed-in user.
func NewMirror(store Store) *Mirror {
	return &Mirror{store: store}
}

// UserID returns the user the mirror belongs to, or "" when signed out.
func (m *Mirror) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID
}

// Loading reports whether a fetch is in progress.
func (m *Mirror) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// SetUser switches the mirror to userID. The local copy is emptied and,
// for a signed-in user, fetched again from the store.
func (m *Mirror) SetUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	m.userID = userID
	m.items = nil
	m.loading = userID != ""
	m.mu.Unlock()

	if userID == "" {
		return nil
	}
	return m.refetch(ctx, userID, "wishlist.SetUser")
}

// Add puts plantID on the wishlist. Without a signed-in user it does
// nothing. Adding a plant already on the list fails with a data store
// error wrapping apperrors.ErrDuplicate.
func (m *Mirror) Add(ctx context.Context, plantID string) error {
	userID := m.UserID()
	if userID == "" {
		return nil
	}
	if err := m.store.Insert(ctx, &models.WishlistItem{UserID: userID, PlantID: plantID}); err != nil {
		return apperrors.DataStore("wishlist.Add", err)
	}
	return m.refetch(ctx, userID, "wishlist.Add")
}

// Remove takes plantID off the wishlist and drops it from the local copy
// without refetching.
func (m *Mirror) Remove(ctx context.Context, plantID string) error {
	userID := m.UserID()
	if userID == "" {
		return nil
	}
	if err := m.store.Delete(ctx, userID, plantID); err != nil {
		return apperrors.DataStore("wishlist.Remove", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userID != userID {
		return nil
	}
	kept := m.items[:0:0]
	for _, item := range m.items {
		if item.PlantID != plantID {
			kept = append(kept, item)
		}
	}
	m.items = kept
	return nil
}

// Contains reports whether plantID is in the local copy.
func (m *Mirror) Contains(plantID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.PlantID == plantID {
			return true
		}
	}
	return false
}

// Items returns a copy of the local rows.
func (m *Mirror) Items() []models.WishlistItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]models.WishlistItem, len(m.items))
	copy(items, m.items)
	return items
}

func (m *Mirror) refetch(ctx context.Context, userID, op string) error {
	items, err := m.store.ListByUser(ctx, userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userID != userID {
		// Signed out or switched user while fetching.
		return nil
	}
	m.loading = false
	if err != nil {
		return apperrors.DataStore(op, err)
	}
	m.items = items
	return nil
}

// IsDuplicate reports whether err came from adding a plant already listed.
func IsDuplicate(err error) bool {
	return errors.Is(err, apperrors.ErrDuplicate)
}
