package handlers

import (
	"nursery/internal/apperrors"
	"nursery/internal/catalog"
	"nursery/internal/checkout"
	"nursery/internal/middleware"
	"nursery/internal/models"
	"nursery/internal/services"
	"nursery/internal/session"
	"nursery/internal/wishlist"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ShopHandler serves the per-session containers: the plant listing, the
// cart, the wishlist mirror and the checkout flow.
type ShopHandler struct {
	plants *services.PlantService
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(plants *services.PlantService) *ShopHandler {
	return &ShopHandler{plants: plants}
}

// RegisterRoutes registers the session routes. router must already require
// authentication.
func (h *ShopHandler) RegisterRoutes(router fiber.Router) {
	listing := router.Group("/shop/listing")
	listing.Get("/", h.HandleGetListing)
	listing.Post("/", h.HandleLoadListing)
	listing.Post("/refresh", h.HandleRefreshListing)

	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddToCart)
	cartRoutes.Patch("/items/:id", h.HandleUpdateCartItem)
	cartRoutes.Delete("/items/:id", h.HandleRemoveCartItem)

	wishlistRoutes := router.Group("/wishlist")
	wishlistRoutes.Get("/", h.HandleGetWishlist)
	wishlistRoutes.Post("/", h.HandleAddToWishlist)
	wishlistRoutes.Get("/:plant_id", h.HandleWishlistContains)
	wishlistRoutes.Delete("/:plant_id", h.HandleRemoveFromWishlist)

	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Get("/", h.HandleGetCheckout)
	checkoutRoutes.Post("/shipping", h.HandleSubmitShipping)
	checkoutRoutes.Post("/back", h.HandleCheckoutBack)
	checkoutRoutes.Post("/payment", h.HandleSubmitPayment)
	checkoutRoutes.Post("/reset", h.HandleCheckoutReset)
}

func currentSession(c *fiber.Ctx) (*session.Session, error) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return nil, apperrors.Auth("handlers.session", "no active session", nil)
	}
	return sess, nil
}

type listingView struct {
	catalog.State
	Error string `json:"error,omitempty"`
}

func viewListing(st catalog.State) listingView {
	v := listingView{State: st}
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	return v
}

// HandleGetListing returns the session's listing state.
func (h *ShopHandler) HandleGetListing(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(viewListing(sess.Listing.State()))
}

// HandleLoadListing switches the session's listing to the posted
// configuration. Omitted fields keep their defaults.
func (h *ShopHandler) HandleLoadListing(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	cfg := catalog.DefaultConfig()
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&cfg); err != nil {
			return WriteError(c, badBody(err))
		}
	}
	st := sess.Listing.Load(c.UserContext(), cfg)
	if st.Err != nil {
		return c.Status(StatusFor(st.Err)).JSON(viewListing(st))
	}
	return c.JSON(viewListing(st))
}

// HandleRefreshListing re-runs the current configuration.
func (h *ShopHandler) HandleRefreshListing(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	st := sess.Listing.Refresh(c.UserContext())
	if st.Err != nil {
		return c.Status(StatusFor(st.Err)).JSON(viewListing(st))
	}
	return c.JSON(viewListing(st))
}

type cartLine struct {
	models.CartItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartView struct {
	Items        []cartLine      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	DisplayTotal decimal.Decimal `json:"display_total"`
	Count        int             `json:"count"`
}

func viewCart(sess *session.Session) cartView {
	items := sess.Cart.Items()
	v := cartView{Items: make([]cartLine, len(items)), Total: sess.Cart.Total(), Count: sess.Cart.Count()}
	for i, item := range items {
		v.Items[i] = cartLine{CartItem: item, Subtotal: item.Subtotal()}
	}
	v.DisplayTotal = catalog.DisplayPrice(v.Total)
	return v
}

// HandleGetCart returns the session's cart.
func (h *ShopHandler) HandleGetCart(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(viewCart(sess))
}

// HandleAddToCart adds one unit of a plant to the cart.
func (h *ShopHandler) HandleAddToCart(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req struct {
		PlantID string `json:"plant_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return WriteError(c, badBody(err))
	}
	if req.PlantID == "" {
		return WriteError(c, apperrors.Validation("cart.Add", "plant_id is required", map[string]string{"plant_id": "This field is required"}))
	}
	plant, err := h.plants.GetPlantByID(c.UserContext(), req.PlantID)
	if err != nil {
		return WriteError(c, err)
	}
	sess.Cart.Add(*plant)
	return c.Status(fiber.StatusCreated).JSON(viewCart(sess))
}

// HandleUpdateCartItem sets the quantity of a cart line. Zero removes it.
func (h *ShopHandler) HandleUpdateCartItem(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return WriteError(c, badBody(err))
	}
	if req.Quantity == nil {
		return WriteError(c, apperrors.Validation("cart.UpdateQuantity", "quantity is required", map[string]string{"quantity": "This field is required"}))
	}
	sess.Cart.UpdateQuantity(c.Params("id"), *req.Quantity)
	return c.JSON(viewCart(sess))
}

// HandleRemoveCartItem removes a cart line.
func (h *ShopHandler) HandleRemoveCartItem(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	sess.Cart.Remove(c.Params("id"))
	return c.JSON(viewCart(sess))
}

// HandleClearCart empties the cart.
func (h *ShopHandler) HandleClearCart(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	sess.Cart.Clear()
	return c.JSON(viewCart(sess))
}

func wishlistBody(m *wishlist.Mirror) fiber.Map {
	return fiber.Map{"items": m.Items(), "loading": m.Loading()}
}

// HandleGetWishlist returns the mirrored wishlist rows.
func (h *ShopHandler) HandleGetWishlist(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(wishlistBody(sess.Wishlist))
}

// HandleAddToWishlist inserts a wishlist row for the caller.
func (h *ShopHandler) HandleAddToWishlist(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var req struct {
		PlantID string `json:"plant_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return WriteError(c, badBody(err))
	}
	if req.PlantID == "" {
		return WriteError(c, apperrors.Validation("wishlist.Add", "plant_id is required", map[string]string{"plant_id": "This field is required"}))
	}
	if _, err := h.plants.GetPlantByID(c.UserContext(), req.PlantID); err != nil {
		return WriteError(c, err)
	}
	if err := sess.Wishlist.Add(c.UserContext(), req.PlantID); err != nil {
		return WriteError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(wishlistBody(sess.Wishlist))
}

// HandleRemoveFromWishlist deletes the caller's row for a plant.
func (h *ShopHandler) HandleRemoveFromWishlist(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	if err := sess.Wishlist.Remove(c.UserContext(), c.Params("plant_id")); err != nil {
		return WriteError(c, err)
	}
	return c.JSON(wishlistBody(sess.Wishlist))
}

// HandleWishlistContains reports whether a plant is on the wishlist.
func (h *ShopHandler) HandleWishlistContains(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	plantID := c.Params("plant_id")
	return c.JSON(fiber.Map{"plant_id": plantID, "in_wishlist": sess.Wishlist.Contains(plantID)})
}

// HandleGetCheckout returns the checkout state.
func (h *ShopHandler) HandleGetCheckout(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(sess.Checkout.State())
}

// HandleSubmitShipping validates shipping details and moves to payment.
func (h *ShopHandler) HandleSubmitShipping(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var info checkout.ShippingInfo
	if err := c.BodyParser(&info); err != nil {
		return WriteError(c, badBody(err))
	}
	st, err := sess.Checkout.SubmitShipping(info)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(st)
}

// HandleCheckoutBack returns to the shipping step.
func (h *ShopHandler) HandleCheckoutBack(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(sess.Checkout.Back())
}

// HandleSubmitPayment places the order for the cart.
func (h *ShopHandler) HandleSubmitPayment(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	var info checkout.PaymentInfo
	if err := c.BodyParser(&info); err != nil {
		return WriteError(c, badBody(err))
	}
	st, err := sess.Checkout.SubmitPayment(c.UserContext(), info)
	if err != nil {
		return WriteError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(st)
}

// HandleCheckoutReset starts a new checkout.
func (h *ShopHandler) HandleCheckoutReset(c *fiber.Ctx) error {
	sess, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(sess.Checkout.Reset())
}
