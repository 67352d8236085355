package services

import (
	"context"

	"nursery/internal/apperrors"
	"nursery/internal/catalog"
	"nursery/internal/models"
	"nursery/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PlantService handles business logic related to plants.
type PlantService struct {
	repo     repositories.PlantRepository
	validate *validator.Validate
	log      *zap.Logger
}

// NewPlantService creates a new PlantService.
func NewPlantService(repo repositories.PlantRepository, log *zap.Logger) *PlantService {
	return &PlantService{
		repo:     repo,
		validate: validator.New(),
		log:      named(log, "plants"),
	}
}

// Finder exposes the repository as a catalog.Finder for session listings.
func (s *PlantService) Finder() catalog.Finder {
	return s.repo
}

// Search returns one page of plants matching cfg.
func (s *PlantService) Search(ctx context.Context, cfg catalog.Config) (catalog.Result, error) {
	ctx, span := tracer.Start(ctx, "plants.Search")
	defer span.End()

	cfg = cfg.Normalize()
	span.SetAttributes(
		attribute.String("catalog.category", cfg.Category),
		attribute.String("catalog.sort_by", cfg.SortBy),
		attribute.Int("catalog.page", cfg.Page),
		attribute.Int("catalog.page_size", cfg.PageSize),
	)
	res, err := catalog.Search(ctx, s.repo, cfg)
	if err != nil {
		recordError(span, err)
		return catalog.Result{}, err
	}
	span.SetAttributes(attribute.Int64("catalog.total_count", res.TotalCount))
	return res, nil
}

// GetAllPlants retrieves all plants.
func (s *PlantService) GetAllPlants(ctx context.Context) ([]models.Plant, error) {
	plants, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperrors.DataStore("plants.GetAll", err)
	}
	return plants, nil
}

// GetPlantByID retrieves a single plant by its ID.
func (s *PlantService) GetPlantByID(ctx context.Context, id string) (*models.Plant, error) {
	plant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.DataStore("plants.GetByID", err)
	}
	return plant, nil
}

// CreatePlant validates and stores a new plant.
func (s *PlantService) CreatePlant(ctx context.Context, plant *models.Plant) error {
	const op = "plants.Create"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	plant.ID = uuid.New().String()
	if err := s.check(op, plant); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, plant); err != nil {
		recordError(span, err)
		return apperrors.DataStore(op, err)
	}
	s.log.Info("plant created", zap.String("plant_id", plant.ID), zap.String("name", plant.Name))
	return nil
}

// UpdatePlant replaces the plant stored under id.
func (s *PlantService) UpdatePlant(ctx context.Context, id string, plant *models.Plant) error {
	const op = "plants.Update"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	plant.ID = id
	if err := s.check(op, plant); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, plant); err != nil {
		recordError(span, err)
		return apperrors.DataStore(op, err)
	}
	s.log.Info("plant updated", zap.String("plant_id", id))
	return nil
}

// DeletePlant deletes a plant by its ID.
func (s *PlantService) DeletePlant(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.DataStore("plants.Delete", err)
	}
	s.log.Info("plant deleted", zap.String("plant_id", id))
	return nil
}

func (s *PlantService) check(op string, plant *models.Plant) error {
	if err := s.validate.Struct(plant); err != nil {
		return apperrors.FromValidator(op, err)
	}
	if !plant.Price.IsPositive() {
		return apperrors.Validation(op, "Validation failed", map[string]string{
			"Price": "Field 'Price' failed on the 'gt' tag",
		})
	}
	return nil
}
