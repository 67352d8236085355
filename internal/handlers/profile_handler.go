package handlers

import (
	"nursery/internal/middleware"
	"nursery/internal/models"
	"nursery/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves the caller's profile and feedback form.
type ProfileHandler struct {
	profiles *services.ProfileService
	feedback *services.FeedbackService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *services.ProfileService, feedback *services.FeedbackService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, feedback: feedback}
}

// RegisterRoutes registers the profile routes. router must already require
// authentication.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/profile", h.HandleGetProfile)
	router.Put("/profile", h.HandleUpdateProfile)
	router.Post("/feedback", h.HandleSubmitFeedback)
}

// HandleGetProfile returns the caller's profile.
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	profile, err := h.profiles.GetProfile(c.UserContext(), id.UserID)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(profile)
}

// HandleUpdateProfile upserts the caller's profile.
func (h *ProfileHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	var profile models.UserProfile
	if err := c.BodyParser(&profile); err != nil {
		return WriteError(c, badBody(err))
	}
	stored, err := h.profiles.UpdateProfile(c.UserContext(), id.UserID, &profile)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(stored)
}

// HandleSubmitFeedback stores a rated comment from the caller.
func (h *ProfileHandler) HandleSubmitFeedback(c *fiber.Ctx) error {
	id, _ := middleware.CurrentIdentity(c)
	var feedback models.Feedback
	if err := c.BodyParser(&feedback); err != nil {
		return WriteError(c, badBody(err))
	}
	if err := h.feedback.Submit(c.UserContext(), id.UserID, &feedback); err != nil {
		return WriteError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(feedback)
}
