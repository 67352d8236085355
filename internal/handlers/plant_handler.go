package handlers

import (
	"nursery/internal/catalog"
	"nursery/internal/models"
	"nursery/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// PlantHandler serves the public catalog.
type PlantHandler struct {
	service *services.PlantService
}

// NewPlantHandler creates a new PlantHandler.
func NewPlantHandler(service *services.PlantService) *PlantHandler {
	return &PlantHandler{service: service}
}

// RegisterRoutes registers the plant routes with the Fiber app.
func (h *PlantHandler) RegisterRoutes(router fiber.Router) {
	plantRoutes := router.Group("/plants")
	plantRoutes.Get("/", h.HandleListPlants)
	plantRoutes.Get("/:id", h.HandleGetPlantByID)
}

type plantView struct {
	models.Plant
	DisplayPrice decimal.Decimal `json:"display_price"`
}

func viewPlants(plants []models.Plant) []plantView {
	views := make([]plantView, len(plants))
	for i, p := range plants {
		views[i] = plantView{Plant: p, DisplayPrice: catalog.DisplayPrice(p.Price)}
	}
	return views
}

// HandleListPlants returns one page of the catalog. Query parameters map
// onto catalog.Config.
func (h *PlantHandler) HandleListPlants(c *fiber.Ctx) error {
	cfg := catalog.DefaultConfig()
	if err := c.QueryParser(&cfg); err != nil {
		return WriteError(c, badBody(err))
	}

	res, err := h.service.Search(c.UserContext(), cfg)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(fiber.Map{
		"plants":      viewPlants(res.Plants),
		"total_count": res.TotalCount,
		"has_more":    res.HasMore,
		"page":        res.Page,
		"page_size":   res.PageSize,
	})
}

// HandleGetPlantByID retrieves a single plant by its ID.
func (h *PlantHandler) HandleGetPlantByID(c *fiber.Ctx) error {
	plant, err := h.service.GetPlantByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(plantView{Plant: *plant, DisplayPrice: catalog.DisplayPrice(plant.Price)})
}
