package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nursery/internal/apperrors"
	"nursery/internal/catalog"
	"nursery/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMPlantRepository is a GORM implementation of PlantRepository.
type GORMPlantRepository struct {
	db *gorm.DB
}

// NewGORMPlantRepository creates a new instance of GORMPlantRepository.
func NewGORMPlantRepository(db *gorm.DB) *GORMPlantRepository {
	return &GORMPlantRepository{
		db: db,
	}
}

// FindPlants returns one page of plants matching q and the exact count of
// all matching plants. Rows that tie on the sort column are ordered by id.
func (r *GORMPlantRepository) FindPlants(ctx context.Context, q catalog.Query) ([]models.Plant, int64, error) {
	scoped := func() *gorm.DB {
		return r.applyFilters(r.db.WithContext(ctx).Model(&models.Plant{}), q)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count plants: %w", err)
	}

	var plants []models.Plant
	err := scoped().
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.Order.Column}, Desc: q.Order.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&plants).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query plants: %w", err)
	}
	return plants, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *GORMPlantRepository) applyFilters(tx *gorm.DB, q catalog.Query) *gorm.DB {
	for _, p := range q.Predicates {
		tx = tx.Where(clause.Expr{
			SQL:  "? " + string(p.Op) + " ?",
			Vars: []interface{}{clause.Column{Name: p.Column}, p.Value},
		})
	}
	if q.Search == "" {
		return tx
	}
	if r.db.Dialector.Name() == "postgres" {
		return tx.Where(models.PlantSearchVector+" @@ plainto_tsquery('english', ?)", q.Search)
	}
	for _, token := range catalog.SearchTokens(q.Search) {
		tx = tx.Where(`search_text LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(token)+"%")
	}
	return tx
}

// GetAll retrieves all plants ordered by name.
func (r *GORMPlantRepository) GetAll(ctx context.Context) ([]models.Plant, error) {
	var plants []models.Plant
	if err := r.db.WithContext(ctx).Order("name").Find(&plants).Error; err != nil {
		return nil, fmt.Errorf("failed to get all plants: %w", err)
	}
	return plants, nil
}

// GetByID retrieves a single plant by its ID.
func (r *GORMPlantRepository) GetByID(ctx context.Context, id string) (*models.Plant, error) {
	var plant models.Plant
	if err := r.db.WithContext(ctx).First(&plant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("plant with ID %s not found: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plant by ID %s: %w", id, err)
	}
	return &plant, nil
}

// Create creates a new plant.
func (r *GORMPlantRepository) Create(ctx context.Context, plant *models.Plant) error {
	if plant.ID == "" {
		plant.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(plant).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("plant with ID %s: %w", plant.ID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to create plant: %w", err)
	}
	return nil
}

// Update updates an existing plant.
func (r *GORMPlantRepository) Update(ctx context.Context, plant *models.Plant) error {
	res := r.db.WithContext(ctx).Model(plant).Select("*").Omit("created_at").Updates(plant)
	if res.Error != nil {
		return fmt.Errorf("failed to update plant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("plant with ID %s not found for update: %w", plant.ID, apperrors.ErrNotFound)
	}
	return nil
}

// Delete deletes a plant by its ID together with the wishlist rows that
// reference it.
func (r *GORMPlantRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Plant{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete plant: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("plant with ID %s not found for deletion: %w", id, apperrors.ErrNotFound)
		}
		if err := tx.Where("plant_id = ?", id).Delete(&models.WishlistItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete wishlist rows of plant %s: %w", id, err)
		}
		return nil
	})
}
