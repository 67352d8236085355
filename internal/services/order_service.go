package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nursery/internal/apperrors"
	"nursery/internal/checkout"
	"nursery/internal/models"
	"nursery/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Order event routing.
const (
	OrderExchange          = "orders"
	OrderCreatedRoutingKey = "order.created"
	OrderStatusRoutingKey  = "order.status_changed"
)

// EventPublisher sends a message to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte) error
}

// OrderEvent is the body of the order events.
type OrderEvent struct {
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	Email     string          `json:"email,omitempty"`
	At        time.Time       `json:"at"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher EventPublisher // nil when no broker is configured
	log       *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, publisher EventPublisher, log *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		log:       named(log, "orders"),
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, apperrors.DataStore("orders.GetAll", err)
	}
	return orders, nil
}

// ListUserOrders returns the orders of userID, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.DataStore("orders.ListByUser", err)
	}
	return orders, nil
}

// GetUserOrder returns one of userID's orders. Orders of other users are
// reported as not found.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, id string) (*models.Order, error) {
	const op = "orders.GetByID"
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.DataStore(op, err)
	}
	if order.UserID != userID {
		return nil, apperrors.DataStore(op, fmt.Errorf("order with ID %s: %w", id, apperrors.ErrNotFound))
	}
	return order, nil
}

// PlaceOrder snapshots the cart lines into a pending order, stores it and
// publishes an order.created event.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, shipping checkout.ShippingInfo, items []models.CartItem) (*models.Order, error) {
	const op = "orders.Place"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if len(items) == 0 {
		return nil, apperrors.Validation(op, "cart is empty", nil)
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		Status:        models.OrderPending,
		RecipientName: strings.TrimSpace(shipping.FirstName + " " + shipping.LastName),
		Email:         shipping.Email,
		ShippingAddress: models.ShippingAddress{
			Street: shipping.Address,
			City:   shipping.City,
			State:  shipping.State,
			Zip:    shipping.ZipCode,
		},
	}
	total := decimal.Zero
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			PlantID:  item.ID,
			Name:     item.Name,
			ImageURL: item.ImageURL,
			Quantity: item.Quantity,
			Price:    item.Price, // Price at the time of order
		})
		total = total.Add(item.Subtotal())
	}
	order.Total = total
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int("order.items", len(order.Items)),
		attribute.String("order.total", total.StringFixed(2)),
	)

	if err := s.orderRepo.Create(ctx, order); err != nil {
		recordError(span, err)
		return nil, apperrors.DataStore(op, err)
	}
	s.log.Info("order placed", zap.String("order_id", order.ID), zap.String("user_id", userID), zap.String("total", total.StringFixed(2)))

	s.publish(ctx, OrderCreatedRoutingKey, order)
	return order, nil
}

// UpdateOrderStatus updates the status of an existing order.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	const op = "orders.UpdateStatus"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if !models.ValidOrderStatus(status) {
		return nil, apperrors.Validation(op, fmt.Sprintf("invalid order status: %s", status), map[string]string{
			"status": fmt.Sprintf("must be one of %s, %s, %s, %s", models.OrderPending, models.OrderProcessing, models.OrderShipped, models.OrderDelivered),
		})
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		recordError(span, err)
		return nil, apperrors.DataStore(op, err)
	}
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.DataStore(op, err)
	}
	s.publish(ctx, OrderStatusRoutingKey, order)
	return order, nil
}

// publish sends the event for order. Broker failures are logged only.
func (s *OrderService) publish(ctx context.Context, routingKey string, order *models.Order) {
	if s.publisher == nil {
		s.log.Debug("no broker configured, skipping event", zap.String("routing_key", routingKey))
		return
	}
	body, err := json.Marshal(OrderEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Status:    order.Status,
		Total:     order.Total,
		ItemCount: len(order.Items),
		Email:     order.Email,
		At:        time.Now().UTC(),
	})
	if err != nil {
		s.log.Error("failed to marshal order event", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, OrderExchange, routingKey, body); err != nil {
		s.log.Warn("failed to publish order event", zap.String("order_id", order.ID), zap.String("routing_key", routingKey), zap.Error(err))
	}
}

// HandleOrderEvent consumes an order event from the broker. It stands in
// for the customer notification: the event is decoded and logged.
func (s *OrderService) HandleOrderEvent(ctx context.Context, routingKey string, body []byte) error {
	_, span := tracer.Start(ctx, "orders.HandleEvent")
	defer span.End()

	var event OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		recordError(span, err)
		return fmt.Errorf("failed to decode order event: %w", err)
	}
	if event.OrderID == "" {
		return fmt.Errorf("order event without order_id")
	}
	s.log.Info("order notification",
		zap.String("routing_key", routingKey),
		zap.String("order_id", event.OrderID),
		zap.String("status", event.Status),
		zap.String("email", event.Email),
		zap.String("total", event.Total.StringFixed(2)))
	return nil
}
