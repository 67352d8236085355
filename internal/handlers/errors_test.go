package handlers_test

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"nursery/internal/apperrors"
	"nursery/internal/handlers"
	"nursery/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperrors.Validation("op", "bad", nil), fiber.StatusBadRequest},
		{"auth", apperrors.Auth("op", "no", nil), fiber.StatusUnauthorized},
		{"auth duplicate", apperrors.Auth("op", "taken", apperrors.ErrDuplicate), fiber.StatusConflict},
		{"not found", fmt.Errorf("plant x: %w", apperrors.ErrNotFound), fiber.StatusNotFound},
		{"duplicate", fmt.Errorf("row: %w", apperrors.ErrDuplicate), fiber.StatusConflict},
		{"fiber", fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, handlers.StatusFor(tt.err))
		})
	}
}

func TestWriteError_ServerErrorsHideDetail(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(zap.NewNop())})
	app.Use(logging.RequestLogger(log))

	dbErr := fmt.Errorf("failed to query plants: %w", errors.New(`pq: relation "plants_secret" does not exist`))
	app.Get("/written", func(c *fiber.Ctx) error { return handlers.WriteError(c, dbErr) })
	app.Get("/returned", func(c *fiber.Ctx) error { return apperrors.DataStore("plants.Find", dbErr) })

	for _, path := range []string{"/written", "/returned"} {
		t.Run(path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
			assert.NotContains(t, string(raw), "plants_secret")
			assert.JSONEq(t, `{"error":"Internal server error","message":"Internal server error"}`, string(raw))
		})
	}

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, zapcore.ErrorLevel, e.Level)
		assert.Contains(t, e.ContextMap()["error"], "plants_secret")
	}
}

func TestWriteError_NotFoundMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return handlers.WriteError(c, fmt.Errorf("plant with ID x not found: %w", apperrors.ErrNotFound))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"plant with ID x not found: record not found","message":"Resource not found"}`, string(raw))
}
