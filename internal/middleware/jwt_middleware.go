package middleware

import (
	"context"
	"strings"

	"nursery/internal/apperrors"
	"nursery/internal/session"

	"github.com/gofiber/fiber/v2"
)

const (
	localIdentity = "identity"
	localSession  = "session"
)

// Authenticator resolves a bearer token to its identity and live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (session.Identity, *session.Session, error)
}

// AdminChecker reports whether a user may use the admin routes.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token whose
// session is still open.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperrors.Auth("middleware.AuthRequired", "Authorization header is required", nil)
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return apperrors.Auth("middleware.AuthRequired", "Authorization header format must be 'Bearer <token>'", nil)
		}

		id, sess, err := auth.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			return err
		}

		// Store identity and session in Fiber context for subsequent handlers
		c.Locals("user_id", id.UserID)
		c.Locals(localIdentity, id)
		c.Locals(localSession, sess)
		return c.Next()
	}
}

// AdminRequired rejects callers whose profile lacks the admin flag. It
// must run after AuthRequired.
func AdminRequired(admins AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return apperrors.Auth("middleware.AdminRequired", "authentication required", nil)
		}
		isAdmin, err := admins.IsAdmin(c.UserContext(), id.UserID)
		if err != nil {
			return err
		}
		if !isAdmin {
			return apperrors.Authorization("middleware.AdminRequired", "admin access required")
		}
		return c.Next()
	}
}

// CurrentIdentity returns the identity stored by AuthRequired.
func CurrentIdentity(c *fiber.Ctx) (session.Identity, bool) {
	id, ok := c.Locals(localIdentity).(session.Identity)
	return id, ok
}

// CurrentSession returns the session stored by AuthRequired.
func CurrentSession(c *fiber.Ctx) (*session.Session, bool) {
	sess, ok := c.Locals(localSession).(*session.Session)
	return sess, ok && sess != nil
}
