package handlers

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"nursery/internal/apperrors"
	"nursery/internal/models"
	"nursery/internal/services"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves the back-office routes.
type AdminHandler struct {
	plants   *services.PlantService
	orders   *services.OrderService
	profiles *services.ProfileService
	feedback *services.FeedbackService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(plants *services.PlantService, orders *services.OrderService, profiles *services.ProfileService, feedback *services.FeedbackService) *AdminHandler {
	return &AdminHandler{
		plants:   plants,
		orders:   orders,
		profiles: profiles,
		feedback: feedback,
	}
}

// RegisterRoutes registers the admin routes. router must already require
// an authenticated admin.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/users", h.HandleListUsers)
	router.Get("/feedback", h.HandleListFeedback)

	plantRoutes := router.Group("/plants")
	plantRoutes.Get("/export", h.HandleExportPlants)
	plantRoutes.Post("/import", h.HandleImportPlants)
	plantRoutes.Post("/", h.HandleCreatePlant)
	plantRoutes.Put("/:id", h.HandleUpdatePlant)
	plantRoutes.Delete("/:id", h.HandleDeletePlant)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleListUsers lists user profiles matching ?search=.
func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	profiles, err := h.profiles.ListProfiles(c.UserContext(), c.Query("search"))
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(profiles)
}

// HandleListFeedback lists feedback matching ?search=.
func (h *AdminHandler) HandleListFeedback(c *fiber.Ctx) error {
	list, err := h.feedback.List(c.UserContext(), c.Query("search"))
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(list)
}

// HandleCreatePlant adds a plant to the catalog.
func (h *AdminHandler) HandleCreatePlant(c *fiber.Ctx) error {
	var plant models.Plant
	if err := c.BodyParser(&plant); err != nil {
		return WriteError(c, badBody(err))
	}
	if err := h.plants.CreatePlant(c.UserContext(), &plant); err != nil {
		return WriteError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plant)
}

// HandleUpdatePlant replaces an existing plant.
func (h *AdminHandler) HandleUpdatePlant(c *fiber.Ctx) error {
	var plant models.Plant
	if err := c.BodyParser(&plant); err != nil {
		return WriteError(c, badBody(err))
	}
	if err := h.plants.UpdatePlant(c.UserContext(), c.Params("id"), &plant); err != nil {
		return WriteError(c, err)
	}
	return c.JSON(plant)
}

// HandleDeletePlant removes a plant.
func (h *AdminHandler) HandleDeletePlant(c *fiber.Ctx) error {
	if err := h.plants.DeletePlant(c.UserContext(), c.Params("id")); err != nil {
		return WriteError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleExportPlants downloads the catalog as an xlsx workbook.
func (h *AdminHandler) HandleExportPlants(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.plants.ExportPlants(c.UserContext(), &buf); err != nil {
		return WriteError(c, err)
	}
	filename := fmt.Sprintf("plants_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(buf.Bytes())
}

// HandleImportPlants reads an uploaded workbook from the "file" form field.
func (h *AdminHandler) HandleImportPlants(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return WriteError(c, apperrors.Validation("plants.Import", "file is required", map[string]string{"file": "This field is required"}))
	}
	f, err := fh.Open()
	if err != nil {
		return WriteError(c, badBody(err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return WriteError(c, badBody(err))
	}

	report, err := h.plants.ImportPlants(c.UserContext(), data)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(report)
}

// HandleGetOrders lists every order.
func (h *AdminHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.orders.GetAllOrders(c.UserContext())
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(orders)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *AdminHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var updateData struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return WriteError(c, badBody(err))
	}
	if updateData.Status == "" {
		return WriteError(c, apperrors.Validation("orders.UpdateStatus", "status is required", map[string]string{"status": "This field is required"}))
	}

	order, err := h.orders.UpdateOrderStatus(c.UserContext(), c.Params("id"), updateData.Status)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(order)
}
