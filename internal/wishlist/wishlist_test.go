package wishlist_test

import (
	"context"
	"errors"
	"testing"

	"nursery/internal/apperrors"
	"nursery/internal/models"
	"nursery/internal/repositories"
	"nursery/internal/wishlist"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of wishlist.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListByUser(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WishlistItem), args.Error(1)
}

func (m *MockStore) Insert(ctx context.Context, item *models.WishlistItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, userID, plantID string) error {
	args := m.Called(ctx, userID, plantID)
	return args.Error(0)
}

func newBackedMirror(t *testing.T) (*wishlist.Mirror, *repositories.MockWishlistRepository) {
	t.Helper()
	plants := repositories.NewMockPlantRepository()
	for _, id := range []string{"monstera", "basil"} {
		require.NoError(t, plants.Create(context.Background(), &models.Plant{ID: id, Name: id, Price: decimal.NewFromInt(10)}))
	}
	store := repositories.NewMockWishlistRepository(plants)
	return wishlist.NewMirror(store), store
}

func TestMirror_AddThenRemove(t *testing.T) {
	ctx := context.Background()
	mirror, _ := newBackedMirror(t)
	require.NoError(t, mirror.SetUser(ctx, "user-1"))

	require.NoError(t, mirror.Add(ctx, "monstera"))
	assert.True(t, mirror.Contains("monstera"))
	items := mirror.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "monstera", items[0].Plant.Name, "refetch fills the plant snapshot")

	require.NoError(t, mirror.Remove(ctx, "monstera"))
	assert.False(t, mirror.Contains("monstera"))
}

func TestMirror_DuplicateAddIsRejected(t *testing.T) {
	ctx := context.Background()
	mirror, store := newBackedMirror(t)
	require.NoError(t, mirror.SetUser(ctx, "user-1"))

	require.NoError(t, mirror.Add(ctx, "basil"))
	err := mirror.Add(ctx, "basil")
	require.Error(t, err)
	assert.True(t, wishlist.IsDuplicate(err))
	assert.True(t, apperrors.Is(err, apperrors.KindDataStore))

	rows, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, rows, 1, "not silently duplicated")
	assert.Len(t, mirror.Items(), 1)
}

func TestMirror_AddWithoutUserIsNoop(t *testing.T) {
	store := new(MockStore)
	mirror := wishlist.NewMirror(store)

	assert.NoError(t, mirror.Add(context.Background(), "basil"))
	assert.False(t, mirror.Contains("basil"))
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestMirror_UserChangeResets(t *testing.T) {
	ctx := context.Background()
	mirror, _ := newBackedMirror(t)

	require.NoError(t, mirror.SetUser(ctx, "user-1"))
	require.NoError(t, mirror.Add(ctx, "basil"))

	require.NoError(t, mirror.SetUser(ctx, ""))
	assert.Empty(t, mirror.Items())
	assert.False(t, mirror.Loading())

	require.NoError(t, mirror.SetUser(ctx, "user-2"))
	assert.False(t, mirror.Contains("basil"))

	require.NoError(t, mirror.SetUser(ctx, "user-1"))
	assert.True(t, mirror.Contains("basil"), "fresh fetch for the signed-in user")
}

func TestMirror_RemovePatchesLocallyWithoutRefetch(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	rows := []models.WishlistItem{
		{ID: "w1", UserID: "user-1", PlantID: "basil"},
		{ID: "w2", UserID: "user-1", PlantID: "mint"},
	}
	store.On("ListByUser", ctx, "user-1").Return(rows, nil).Once()
	store.On("Delete", ctx, "user-1", "basil").Return(nil).Once()

	mirror := wishlist.NewMirror(store)
	require.NoError(t, mirror.SetUser(ctx, "user-1"))
	require.NoError(t, mirror.Remove(ctx, "basil"))

	assert.False(t, mirror.Contains("basil"))
	assert.True(t, mirror.Contains("mint"))
	store.AssertExpectations(t)
	assert.Equal(t, "basil", rows[0].PlantID, "fetched rows are not mutated")
}

func TestMirror_StoreErrors(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("permission denied for table wishlists")

	store := new(MockStore)
	store.On("ListByUser", ctx, "user-1").Return(nil, storeErr).Once()
	mirror := wishlist.NewMirror(store)

	err := mirror.SetUser(ctx, "user-1")
	assert.ErrorIs(t, err, storeErr)
	assert.True(t, apperrors.Is(err, apperrors.KindDataStore))
	assert.False(t, mirror.Loading())

	store.On("Delete", ctx, "user-1", "basil").Return(storeErr).Once()
	err = mirror.Remove(ctx, "basil")
	assert.ErrorIs(t, err, storeErr)
	store.AssertExpectations(t)
}
