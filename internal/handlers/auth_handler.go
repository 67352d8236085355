package handlers

import (
	"nursery/internal/middleware"
	"nursery/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/sign-up", h.HandleSignUp)
	authRoutes.Post("/sign-in", h.HandleSignIn)
	authRoutes.Post("/sign-out", authRequired, h.HandleSignOut)
}

// HandleSignUp handles new user registration.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req services.Credentials
	if err := c.BodyParser(&req); err != nil {
		return WriteError(c, badBody(err))
	}

	user, err := h.authService.SignUp(c.UserContext(), req)
	if err != nil {
		h.log.Info("sign-up rejected", zap.String("email", req.Email), zap.Error(err))
		return WriteError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// HandleSignIn handles user login and issues a JWT token.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req services.Credentials
	if err := c.BodyParser(&req); err != nil {
		return WriteError(c, badBody(err))
	}

	token, sess, err := h.authService.SignIn(c.UserContext(), req)
	if err != nil {
		h.log.Info("sign-in rejected", zap.String("email", req.Email), zap.Error(err))
		return WriteError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Login successful",
		"token":      token,
		"session_id": sess.ID,
		"user_id":    sess.UserID,
	})
}

// HandleSignOut closes the caller's session.
func (h *AuthHandler) HandleSignOut(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	if err := h.authService.SignOut(c.UserContext(), id); err != nil {
		return WriteError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}
