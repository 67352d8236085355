package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"nursery/internal/apperrors"
	"nursery/internal/catalog"
	"nursery/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockPlantRepository is an in-memory implementation of PlantRepository.
type MockPlantRepository struct {
	plants map[string]models.Plant
	mu     sync.RWMutex
}

// NewMockPlantRepository creates a new instance of MockPlantRepository.
func NewMockPlantRepository() *MockPlantRepository {
	return &MockPlantRepository{
		plants: make(map[string]models.Plant),
	}
}

// FindPlants evaluates q over the stored plants.
func (r *MockPlantRepository) FindPlants(ctx context.Context, q catalog.Query) ([]models.Plant, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Plant
	for _, p := range r.sortedByID() {
		if matchesQuery(p, q) {
			matched = append(matched, p)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		c := compareOn(q.Order.Column, a, b)
		if c == 0 {
			return a.ID < b.ID
		}
		if q.Order.Desc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return []models.Plant{}, total, nil
	}
	end := q.Offset + q.Limit
	if q.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[q.Offset:end], total, nil
}

func compareOn(column string, a, b models.Plant) int {
	if column == catalog.ColumnPrice {
		return a.Price.Cmp(b.Price)
	}
	return strings.Compare(a.Name, b.Name)
}

func matchesQuery(p models.Plant, q catalog.Query) bool {
	for _, pred := range q.Predicates {
		if !matchesPredicate(p, pred) {
			return false
		}
	}
	text := p.BuildSearchText()
	for _, token := range catalog.SearchTokens(q.Search) {
		if !strings.Contains(text, token) {
			return false
		}
	}
	return true
}

func matchesPredicate(p models.Plant, pred catalog.Predicate) bool {
	switch pred.Column {
	case catalog.ColumnCategory:
		return p.Category == pred.Value
	case catalog.ColumnType:
		return p.Type == pred.Value
	case catalog.ColumnCareLevel:
		return p.CareLevel == pred.Value
	case catalog.ColumnSize:
		return p.Size == pred.Value
	case catalog.ColumnInStock:
		return p.InStock == pred.Value
	case catalog.ColumnPrice:
		bound, ok := pred.Value.(decimal.Decimal)
		if !ok {
			return false
		}
		switch pred.Op {
		case catalog.OpGte:
			return p.Price.GreaterThanOrEqual(bound)
		case catalog.OpLte:
			return p.Price.LessThanOrEqual(bound)
		case catalog.OpEq:
			return p.Price.Equal(bound)
		}
	}
	return false
}

func (r *MockPlantRepository) sortedByID() []models.Plant {
	list := make([]models.Plant, 0, len(r.plants))
	for _, p := range r.plants {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// GetAll returns all plants ordered by name.
func (r *MockPlantRepository) GetAll(ctx context.Context) ([]models.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.sortedByID()
	sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// GetByID returns a plant by its ID.
func (r *MockPlantRepository) GetByID(ctx context.Context, id string) (*models.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plant, ok := r.plants[id]
	if !ok {
		return nil, fmt.Errorf("plant with ID %s not found: %w", id, apperrors.ErrNotFound)
	}
	return &plant, nil
}

// Create adds a new plant.
func (r *MockPlantRepository) Create(ctx context.Context, plant *models.Plant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if plant.ID == "" {
		plant.ID = uuid.New().String()
	}
	if _, exists := r.plants[plant.ID]; exists {
		return fmt.Errorf("plant with ID %s: %w", plant.ID, apperrors.ErrDuplicate)
	}
	now := time.Now()
	plant.CreatedAt, plant.UpdatedAt = now, now
	plant.SearchText = plant.BuildSearchText()
	r.plants[plant.ID] = *plant
	return nil
}

// Update modifies an existing plant.
func (r *MockPlantRepository) Update(ctx context.Context, plant *models.Plant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.plants[plant.ID]
	if !ok {
		return fmt.Errorf("plant with ID %s not found for update: %w", plant.ID, apperrors.ErrNotFound)
	}
	plant.CreatedAt = existing.CreatedAt
	plant.UpdatedAt = time.Now()
	plant.SearchText = plant.BuildSearchText()
	r.plants[plant.ID] = *plant
	return nil
}

// Delete removes a plant by its ID.
func (r *MockPlantRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plants[id]; !ok {
		return fmt.Errorf("plant with ID %s not found for deletion: %w", id, apperrors.ErrNotFound)
	}
	delete(r.plants, id)
	return nil
}
