package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"nursery/internal/apperrors"
	"nursery/internal/models"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

// PlantSheetHeaders is the header row of the plant spreadsheet.
var PlantSheetHeaders = []string{
	"ID", "Name", "Description", "Price", "ImageURL", "Category", "Type",
	"CareLevel", "Sunlight", "Water", "InStock", "StockQuantity", "Size",
}

// ImportReport counts the rows of an imported spreadsheet.
type ImportReport struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// ExportPlants writes every plant as an xlsx workbook to w.
func (s *PlantService) ExportPlants(ctx context.Context, w io.Writer) error {
	const op = "plants.Export"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	plants, err := s.repo.GetAll(ctx)
	if err != nil {
		recordError(span, err)
		return apperrors.DataStore(op, err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Plants")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	headerRow := sheet.AddRow()
	for _, h := range PlantSheetHeaders {
		headerRow.AddCell().SetValue(h)
	}
	for _, p := range plants {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.ImageURL)
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Type)
		row.AddCell().SetValue(p.CareLevel)
		row.AddCell().SetValue(p.Sunlight)
		row.AddCell().SetValue(p.Water)
		row.AddCell().SetValue(strconv.FormatBool(p.InStock))
		row.AddCell().SetValue(p.StockQuantity)
		row.AddCell().SetValue(p.Size)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	s.log.Info("plants exported", zap.Int("rows", len(plants)))
	return nil
}

// ImportPlants reads a workbook in the ExportPlants layout. Rows with a
// known ID update that plant, other rows create one. Rows that fail
// parsing or validation are skipped.
func (s *PlantService) ImportPlants(ctx context.Context, data []byte) (ImportReport, error) {
	const op = "plants.Import"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	var report ImportReport
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return report, apperrors.Validation(op, "file is not a valid xlsx workbook", nil)
	}
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) < 2 {
		return report, apperrors.Validation(op, "workbook is empty or missing header row", nil)
	}

	for i, row := range file.Sheets[0].Rows {
		if i == 0 {
			continue
		}
		plant, ok := plantFromRow(row)
		if !ok {
			report.Skipped++
			continue
		}
		if plant.ID != "" {
			if _, err := s.repo.GetByID(ctx, plant.ID); err == nil {
				if err := s.UpdatePlant(ctx, plant.ID, plant); err != nil {
					s.log.Warn("import row skipped", zap.Int("row", i+1), zap.Error(err))
					report.Skipped++
					continue
				}
				report.Updated++
				continue
			}
		}
		if err := s.CreatePlant(ctx, plant); err != nil {
			if apperrors.Is(err, apperrors.KindDataStore) {
				recordError(span, err)
				return report, err
			}
			s.log.Warn("import row skipped", zap.Int("row", i+1), zap.Error(err))
			report.Skipped++
			continue
		}
		report.Created++
	}
	s.log.Info("plants imported", zap.Int("created", report.Created), zap.Int("updated", report.Updated), zap.Int("skipped", report.Skipped))
	return report, nil
}

func plantFromRow(row *xlsx.Row) (*models.Plant, bool) {
	get := func(index int) string {
		if index < len(row.Cells) {
			return strings.TrimSpace(row.Cells[index].String())
		}
		return ""
	}
	if get(1) == "" {
		return nil, false
	}
	price, err := decimal.NewFromString(get(3))
	if err != nil {
		return nil, false
	}
	inStock, _ := strconv.ParseBool(get(10))
	stock, err := strconv.Atoi(get(11))
	if err != nil {
		stock = 0
	}
	return &models.Plant{
		ID:            get(0),
		Name:          get(1),
		Description:   get(2),
		Price:         price,
		ImageURL:      get(4),
		Category:      get(5),
		Type:          strings.ToLower(get(6)),
		CareLevel:     strings.ToLower(get(7)),
		Sunlight:      strings.ToLower(get(8)),
		Water:         strings.ToLower(get(9)),
		InStock:       inStock,
		StockQuantity: stock,
		Size:          strings.ToLower(get(12)),
	}, true
}
