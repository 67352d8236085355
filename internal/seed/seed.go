// Package seed loads the starter plant catalogue.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"nursery/internal/apperrors"
	"nursery/internal/models"
	"nursery/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed plants.yaml
var catalogue []byte

// namespace derives stable plant ids from plant names, so seeding twice
// finds the rows of the first run.
var namespace = uuid.MustParse("9b0e6c6e-3f0a-4c38-9d0f-6f1d1c2a7e51")

type plantRecord struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Price         string `yaml:"price"`
	ImageURL      string `yaml:"image_url"`
	Category      string `yaml:"category"`
	Type          string `yaml:"type"`
	CareLevel     string `yaml:"care_level"`
	Sunlight      string `yaml:"sunlight"`
	Water         string `yaml:"water"`
	InStock       bool   `yaml:"in_stock"`
	StockQuantity int    `yaml:"stock_quantity"`
	Size          string `yaml:"size"`
}

// PlantID returns the id the catalogue assigns to a plant name.
func PlantID(name string) string {
	return uuid.NewSHA1(namespace, []byte(name)).String()
}

// Plants decodes a YAML catalogue. A nil data reads the embedded one.
func Plants(data []byte) ([]models.Plant, error) {
	if data == nil {
		data = catalogue
	}
	var records []plantRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode plant catalogue: %w", err)
	}
	plants := make([]models.Plant, 0, len(records))
	for _, r := range records {
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return nil, fmt.Errorf("plant %q: invalid price %q: %w", r.Name, r.Price, err)
		}
		plants = append(plants, models.Plant{
			ID:            PlantID(r.Name),
			Name:          r.Name,
			Description:   r.Description,
			Price:         price,
			ImageURL:      r.ImageURL,
			Category:      r.Category,
			Type:          r.Type,
			CareLevel:     r.CareLevel,
			Sunlight:      r.Sunlight,
			Water:         r.Water,
			InStock:       r.InStock,
			StockQuantity: r.StockQuantity,
			Size:          r.Size,
		})
	}
	return plants, nil
}

// Seed creates every catalogue plant missing from repo and returns how
// many were created.
func Seed(ctx context.Context, repo repositories.PlantRepository, log *zap.Logger) (int, error) {
	plants, err := Plants(nil)
	if err != nil {
		return 0, err
	}
	created := 0
	for i := range plants {
		p := &plants[i]
		_, err := repo.GetByID(ctx, p.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return created, fmt.Errorf("failed to look up plant %s: %w", p.Name, err)
		}
		if err := repo.Create(ctx, p); err != nil {
			return created, fmt.Errorf("failed to seed plant %s: %w", p.Name, err)
		}
		created++
		log.Debug("seeded plant", zap.String("plant_id", p.ID), zap.String("name", p.Name))
	}
	log.Info("plant catalogue seeded", zap.Int("created", created), zap.Int("total", len(plants)))
	return created, nil
}
