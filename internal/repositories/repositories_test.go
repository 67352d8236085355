package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"nursery/internal/apperrors"
	"nursery/internal/catalog"
	"nursery/internal/database"
	"nursery/internal/models"
	"nursery/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Open(database.DriverSQLite, dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func herb(i int, inStock bool) *models.Plant {
	return &models.Plant{
		ID:            fmt.Sprintf("herb-%02d", i),
		Name:          fmt.Sprintf("Herb %02d", 31-i),
		Description:   "Fragrant kitchen herb",
		Price:         decimal.NewFromInt(int64(i)).Add(decimal.RequireFromString("0.50")),
		Category:      "Herbs",
		Type:          models.TypeHerb,
		CareLevel:     models.CareEasy,
		Sunlight:      "full",
		Water:         "moderate",
		InStock:       inStock,
		StockQuantity: 10,
		Size:          models.SizeSmall,
	}
}

// seedScenario stores 30 in-stock herbs priced 1.50..30.50 plus noise that
// the scenario filters must exclude.
func seedScenario(t *testing.T, repo repositories.PlantRepository) {
	t.Helper()
	ctx := context.Background()
	for i := 30; i >= 1; i-- {
		require.NoError(t, repo.Create(ctx, herb(i, true)))
	}
	outOfStock := herb(31, false)
	require.NoError(t, repo.Create(ctx, outOfStock))
	require.NoError(t, repo.Create(ctx, &models.Plant{
		ID: "fern-1", Name: "Boston Fern", Price: decimal.NewFromInt(3), Category: "Indoor Plants",
		Type: models.TypePlant, CareLevel: models.CareMedium, Sunlight: "shade", Water: "high",
		InStock: true, StockQuantity: 4, Size: models.SizeMedium,
	}))
}

func scenarioConfig() catalog.Config {
	return catalog.Config{Category: "Herbs", InStockOnly: true, SortBy: catalog.SortPriceLow, Page: 2, PageSize: 12}
}

func assertScenario(t *testing.T, finder catalog.Finder) {
	t.Helper()
	res, err := catalog.Search(context.Background(), finder, scenarioConfig())
	require.NoError(t, err)

	assert.Equal(t, int64(30), res.TotalCount)
	assert.True(t, res.HasMore)
	require.Len(t, res.Plants, 12)
	for i, p := range res.Plants {
		// Row 13 of the ascending price order is priced 13.50.
		want := decimal.NewFromInt(int64(13 + i)).Add(decimal.RequireFromString("0.50"))
		assert.True(t, want.Equal(p.Price), "row %d: want %s got %s", 13+i, want, p.Price)
	}
}

func TestGORMPlantRepository_Scenario(t *testing.T) {
	repo := repositories.NewGORMPlantRepository(openTestDB(t))
	seedScenario(t, repo)
	assertScenario(t, repo)
}

func TestMockPlantRepository_Scenario(t *testing.T) {
	repo := repositories.NewMockPlantRepository()
	seedScenario(t, repo)
	assertScenario(t, repo)
}

func TestPlantRepositories_FiltersAndSearch(t *testing.T) {
	impls := map[string]func(t *testing.T) repositories.PlantRepository{
		"gorm": func(t *testing.T) repositories.PlantRepository {
			return repositories.NewGORMPlantRepository(openTestDB(t))
		},
		"mock": func(*testing.T) repositories.PlantRepository { return repositories.NewMockPlantRepository() },
	}
	for name, newRepo := range impls {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			seedScenario(t, repo)
			ctx := context.Background()

			plants, total, err := repo.FindPlants(ctx, catalog.Compose(catalog.Config{Type: "Plant"}))
			require.NoError(t, err)
			assert.Equal(t, int64(1), total)
			assert.Equal(t, "fern-1", plants[0].ID)

			_, total, err = repo.FindPlants(ctx, catalog.Compose(catalog.Config{MinPrice: 10, MaxPrice: catalog.PriceBound(20)}))
			require.NoError(t, err)
			assert.Equal(t, int64(10), total, "10.50 through 19.50")

			plants, total, err = repo.FindPlants(ctx, catalog.Compose(catalog.Config{SearchTerm: "boston FERN"}))
			require.NoError(t, err)
			assert.Equal(t, int64(1), total)
			assert.Equal(t, "Boston Fern", plants[0].Name)

			plants, _, err = repo.FindPlants(ctx, catalog.Compose(catalog.Config{SortBy: catalog.SortPriceHigh, PageSize: 1}))
			require.NoError(t, err)
			assert.Equal(t, "herb-31", plants[0].ID)

			plants, _, err = repo.FindPlants(ctx, catalog.Compose(catalog.Config{PageSize: 1}))
			require.NoError(t, err)
			assert.Equal(t, "Boston Fern", plants[0].Name, "name ascending by default")

			plants, total, err = repo.FindPlants(ctx, catalog.Compose(catalog.Config{Page: 9, PageSize: 12}))
			require.NoError(t, err)
			assert.Empty(t, plants)
			assert.Equal(t, int64(32), total)
		})
	}
}

func TestPlantRepositories_TiesAndLiteralSearch(t *testing.T) {
	impls := map[string]func(t *testing.T) repositories.PlantRepository{
		"gorm": func(t *testing.T) repositories.PlantRepository {
			return repositories.NewGORMPlantRepository(openTestDB(t))
		},
		"mock": func(*testing.T) repositories.PlantRepository { return repositories.NewMockPlantRepository() },
	}
	for name, newRepo := range impls {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()
			create := func(id, name, category string) {
				require.NoError(t, repo.Create(ctx, &models.Plant{
					ID: id, Name: name, Price: decimal.NewFromInt(5), Category: category,
					Type: models.TypePlant, CareLevel: models.CareEasy, InStock: true, Size: models.SizeSmall,
				}))
			}
			for _, id := range []string{"tie-4", "tie-2", "tie-5", "tie-1", "tie-3"} {
				create(id, "Pothos", "Ties")
			}
			create("pct", "100% Peat Mix", "Soil")
			create("thousand", "1000 Leaf Fern", "Soil")
			create("under", "snake_plant", "Soil")
			create("no-under", "snakeXplant", "Soil")

			for _, sortBy := range []string{catalog.SortName, catalog.SortPriceLow, catalog.SortPriceHigh} {
				var ids []string
				for page := 1; page <= 3; page++ {
					plants, total, err := repo.FindPlants(ctx, catalog.Compose(catalog.Config{Category: "Ties", SortBy: sortBy, Page: page, PageSize: 2}))
					require.NoError(t, err)
					assert.Equal(t, int64(5), total)
					for _, p := range plants {
						ids = append(ids, p.ID)
					}
				}
				assert.Equal(t, []string{"tie-1", "tie-2", "tie-3", "tie-4", "tie-5"}, ids, sortBy)
			}

			plants, total, err := repo.FindPlants(ctx, catalog.Compose(catalog.Config{SearchTerm: "100%"}))
			require.NoError(t, err)
			assert.Equal(t, int64(1), total)
			assert.Equal(t, "pct", plants[0].ID)

			plants, total, err = repo.FindPlants(ctx, catalog.Compose(catalog.Config{SearchTerm: "snake_plant"}))
			require.NoError(t, err)
			assert.Equal(t, int64(1), total)
			assert.Equal(t, "under", plants[0].ID)
		})
	}
}

func TestGORMPlantRepository_CRUD(t *testing.T) {
	repo := repositories.NewGORMPlantRepository(openTestDB(t))
	ctx := context.Background()

	plant := herb(1, true)
	plant.ID = ""
	require.NoError(t, repo.Create(ctx, plant))
	assert.NotEmpty(t, plant.ID)

	plant.Name = "Thai Basil"
	require.NoError(t, repo.Update(ctx, plant))

	got, err := repo.GetByID(ctx, plant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thai Basil", got.Name)
	assert.Contains(t, got.SearchText, "thai basil")

	require.NoError(t, repo.Delete(ctx, plant.ID))
	_, err = repo.GetByID(ctx, plant.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, plant.ID), apperrors.ErrNotFound)
}

func TestGORMWishlistRepository(t *testing.T) {
	db := openTestDB(t)
	plants := repositories.NewGORMPlantRepository(db)
	repo := repositories.NewGORMWishlistRepository(db)
	ctx := context.Background()
	require.NoError(t, plants.Create(ctx, herb(1, true)))

	require.NoError(t, repo.Insert(ctx, &models.WishlistItem{UserID: "user-1", PlantID: "herb-01"}))
	err := repo.Insert(ctx, &models.WishlistItem{UserID: "user-1", PlantID: "herb-01"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	items, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Herb 30", items[0].Plant.Name)

	require.NoError(t, repo.Delete(ctx, "user-1", "herb-01"))
	require.NoError(t, repo.Delete(ctx, "user-1", "herb-01"))
	items, err = repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWishlistRepositories_RequireExistingPlant(t *testing.T) {
	db := openTestDB(t)
	gormPlants := repositories.NewGORMPlantRepository(db)
	mockPlants := repositories.NewMockPlantRepository()

	tests := []struct {
		name   string
		plants repositories.PlantRepository
		repo   repositories.WishlistRepository
	}{
		{"gorm", gormPlants, repositories.NewGORMWishlistRepository(db)},
		{"mock", mockPlants, repositories.NewMockWishlistRepository(mockPlants)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, tt.plants.Create(ctx, herb(1, true)))

			err := tt.repo.Insert(ctx, &models.WishlistItem{UserID: "user-1", PlantID: "no-such-plant"})
			assert.ErrorIs(t, err, apperrors.ErrNotFound)

			require.NoError(t, tt.repo.Insert(ctx, &models.WishlistItem{UserID: "user-1", PlantID: "herb-01"}))
			require.NoError(t, tt.plants.Delete(ctx, "herb-01"))

			items, err := tt.repo.ListByUser(ctx, "user-1")
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestGORMOrderRepository(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(openTestDB(t))
	ctx := context.Background()

	order := &models.Order{
		UserID: "user-1",
		Status: models.OrderPending,
		Total:  decimal.RequireFromString("25.98"),
		Items: []models.OrderItem{
			{PlantID: "herb-01", Name: "Basil", Quantity: 2, Price: decimal.RequireFromString("12.99")},
		},
		ShippingAddress: models.ShippingAddress{Street: "1 Green St", City: "Pune", State: "MH", Zip: "411001"},
	}
	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, decimal.RequireFromString("25.98").Equal(got.Total))
	assert.Equal(t, "Pune", got.ShippingAddress.City)

	list, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, models.OrderShipped))
	got, err = repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, got.Status)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", models.OrderShipped), apperrors.ErrNotFound)
}

func TestGORMProfileRepository_UpsertKeepsAdminFlag(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMProfileRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.UserProfile{UserID: "user-1", FirstName: "Asha", City: "Pune"}))
	require.NoError(t, db.Model(&models.UserProfile{}).Where("user_id = ?", "user-1").Update("is_admin", true).Error)

	require.NoError(t, repo.Upsert(ctx, &models.UserProfile{UserID: "user-1", FirstName: "Asha", LastName: "Rao", IsAdmin: false}))
	got, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Rao", got.LastName)
	assert.True(t, got.IsAdmin)

	list, err := repo.List(ctx, "pune")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = repo.List(ctx, "mumbai")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.GetByUserID(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGORMFeedbackRepository(t *testing.T) {
	db := openTestDB(t)
	profiles := repositories.NewGORMProfileRepository(db)
	repo := repositories.NewGORMFeedbackRepository(db)
	ctx := context.Background()

	require.NoError(t, profiles.Upsert(ctx, &models.UserProfile{UserID: "user-1", FirstName: "Asha", LastName: "Rao"}))
	require.NoError(t, repo.Create(ctx, &models.Feedback{UserID: "user-1", Content: "Lovely ferns", Rating: 5}))
	require.NoError(t, repo.Create(ctx, &models.Feedback{UserID: "user-2", Content: "Slow delivery", Rating: 2}))

	list, err := repo.List(ctx, "FERN")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Author)
	assert.Equal(t, "Asha", list[0].Author.FirstName)

	list, err = repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
