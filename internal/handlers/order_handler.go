package handlers

import (
	"nursery/internal/middleware"
	"nursery/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for a shopper's own orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
}

// HandleGetOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	orders, err := h.service.ListUserOrders(c.UserContext(), id.UserID)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves one of the caller's orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	order, err := h.service.GetUserOrder(c.UserContext(), id.UserID, c.Params("id"))
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(order)
}
