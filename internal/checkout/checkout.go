// Package checkout implements the three step checkout of a session cart:
// shipping details, simulated payment, then a completed order.
package checkout

import (
	"context"
	"sync"

	"nursery/internal/apperrors"
	"nursery/internal/cart"
	"nursery/internal/models"

	"github.com/go-playground/validator/v10"
)

// Step is a checkout state.
type Step int

const (
	StepShipping Step = iota
	StepPayment
	StepCompleted
)

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "shipping_info"
	case StepPayment:
		return "payment_info"
	case StepCompleted:
		return "completed"
	}
	return "unknown"
}

// MarshalText renders the step by name in JSON.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ShippingInfo is the delivery address form. Every field is required.
type ShippingInfo struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zip_code" validate:"required"`
}

// PaymentInfo is the card form. It is checked for presence only and never
// stored.
type PaymentInfo struct {
	CardNumber string `json:"card_number" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"`
	CVV        string `json:"cvv" validate:"required"`
}

// OrderPlacer records the order for a completed checkout.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, userID string, shipping ShippingInfo, items []models.CartItem) (*models.Order, error)
}

// State is what the checkout view renders.
type State struct {
	Step     Step          `json:"step"`
	Shipping ShippingInfo  `json:"shipping"`
	Order    *models.Order `json:"order,omitempty"`
}

// Flow is one user's checkout over their session cart.
type Flow struct {
	userID   string
	cart     *cart.Cart
	placer   OrderPlacer
	validate *validator.Validate

	mu       sync.Mutex
	step     Step
	shipping ShippingInfo
	order    *models.Order
	placing  bool
}

// NewFlow starts a checkout at the shipping step.
func NewFlow(userID string, c *cart.Cart, placer OrderPlacer) *Flow {
	return &Flow{
		userID:   userID,
		cart:     c,
		placer:   placer,
		validate: validator.New(),
	}
}

// State returns a snapshot of the flow.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{Step: f.step, Shipping: f.shipping, Order: f.order}
}

// SubmitShipping stores the shipping details and moves to the payment
// step. It is also accepted from the payment step to edit the details.
func (f *Flow) SubmitShipping(info ShippingInfo) (State, error) {
	if err := f.validate.Struct(info); err != nil {
		return f.State(), apperrors.FromValidator("checkout.SubmitShipping", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepCompleted || f.placing {
		return f.stateLocked(), apperrors.Validation("checkout.SubmitShipping", "checkout is already completed", nil)
	}
	f.shipping = info
	f.step = StepPayment
	return f.stateLocked(), nil
}

// Back returns from the payment step to the shipping step. Shipping data
// is kept.
func (f *Flow) Back() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == StepPayment && !f.placing {
		f.step = StepShipping
	}
	return f.stateLocked()
}

// SubmitPayment checks the card form, places the order and empties the
// cart. The flow completes at most once; on a placement failure it stays
// at the payment step with the cart untouched.
func (f *Flow) SubmitPayment(ctx context.Context, info PaymentInfo) (State, error) {
	const op = "checkout.SubmitPayment"

	f.mu.Lock()
	switch {
	case f.step == StepCompleted:
		f.mu.Unlock()
		return f.State(), apperrors.Validation(op, "checkout is already completed", nil)
	case f.placing:
		f.mu.Unlock()
		return f.State(), apperrors.Validation(op, "payment is already being processed", nil)
	case f.step != StepPayment:
		f.mu.Unlock()
		return f.State(), apperrors.Validation(op, "shipping information is required first", nil)
	}
	if err := f.validate.Struct(info); err != nil {
		f.mu.Unlock()
		return f.State(), apperrors.FromValidator(op, err)
	}
	items := f.cart.Items()
	if len(items) == 0 {
		f.mu.Unlock()
		return f.State(), apperrors.Validation(op, "cart is empty", nil)
	}
	f.placing = true
	shipping := f.shipping
	f.mu.Unlock()

	order, err := f.placer.PlaceOrder(ctx, f.userID, shipping, items)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.placing = false
	if err != nil {
		if apperrors.KindOf(err) == 0 {
			err = apperrors.DataStore(op, err)
		}
		return f.stateLocked(), err
	}
	f.cart.Subtract(items)
	f.order = order
	f.step = StepCompleted
	return f.stateLocked(), nil
}

// Reset discards the flow and starts again at the shipping step.
func (f *Flow) Reset() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.placing {
		return f.stateLocked()
	}
	f.step = StepShipping
	f.shipping = ShippingInfo{}
	f.order = nil
	return f.stateLocked()
}

func (f *Flow) stateLocked() State {
	return State{Step: f.step, Shipping: f.shipping, Order: f.order}
}
