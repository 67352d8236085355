package repositories

import (
	"context"

	"nursery/internal/catalog"
	"nursery/internal/models"
)

// PlantRepository defines the interface for plant data access.
type PlantRepository interface {
	catalog.Finder
	GetAll(ctx context.Context) ([]models.Plant, error)
	GetByID(ctx context.Context, id string) (*models.Plant, error)
	Create(ctx context.Context, plant *models.Plant) error
	Update(ctx context.Context, plant *models.Plant) error
	Delete(ctx context.Context, id string) error
}
