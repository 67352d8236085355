package handlers

import (
	"errors"

	"nursery/internal/apperrors"
	"nursery/internal/logging"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return fiber.StatusBadRequest
	case apperrors.KindAuth:
		if errors.Is(err, apperrors.ErrDuplicate) {
			return fiber.StatusConflict
		}
		return fiber.StatusUnauthorized
	case apperrors.KindAuthorization:
		return fiber.StatusForbidden
	}
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// WriteError writes err as the JSON error body used by every route. Server
// errors carry only a generic message; the detail goes to the request log.
func WriteError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		c.Locals(logging.ErrorLocal, err)
		return c.Status(status).JSON(fiber.Map{
			"error":   internalErrorMessage,
			"message": internalErrorMessage,
		})
	}

	body := fiber.Map{"error": err.Error()}
	var appErr *apperrors.Error
	var fe *fiber.Error
	switch {
	case errors.As(err, &appErr):
		body["message"] = appErr.Message
		if len(appErr.Fields) > 0 {
			body["errors"] = appErr.Fields
		}
	case errors.As(err, &fe):
		body["message"] = fe.Message
	}
	if status == fiber.StatusNotFound {
		body["message"] = "Resource not found"
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler is the app-wide Fiber error handler. Errors returned by
// middleware and handlers end up here.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if StatusFor(err) >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return WriteError(c, err)
	}
}

func badBody(err error) error {
	return &apperrors.Error{Kind: apperrors.KindValidation, Op: "request", Message: "Invalid request body", Err: err}
}
