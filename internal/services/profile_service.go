package services

import (
	"context"
	"errors"

	"nursery/internal/apperrors"
	"nursery/internal/models"
	"nursery/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProfileService manages user contact details and the admin flag lookup.
type ProfileService struct {
	repo     repositories.ProfileRepository
	validate *validator.Validate
	log      *zap.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(repo repositories.ProfileRepository, log *zap.Logger) *ProfileService {
	return &ProfileService{
		repo:     repo,
		validate: validator.New(),
		log:      named(log, "profiles"),
	}
}

// GetProfile returns the profile of userID, or a blank one if none exists yet.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &models.UserProfile{UserID: userID}, nil
	}
	if err != nil {
		return nil, apperrors.DataStore("profiles.Get", err)
	}
	return profile, nil
}

// UpdateProfile upserts the caller's profile and returns the stored row.
// The admin flag is never taken from the input.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, profile *models.UserProfile) (*models.UserProfile, error) {
	const op = "profiles.Update"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if err := s.validate.Struct(profile); err != nil {
		return nil, apperrors.FromValidator(op, err)
	}
	profile.UserID = userID
	profile.IsAdmin = false
	if err := s.repo.Upsert(ctx, profile); err != nil {
		recordError(span, err)
		return nil, apperrors.DataStore(op, err)
	}
	stored, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.DataStore(op, err)
	}
	return stored, nil
}

// IsAdmin reports whether userID's profile carries the admin flag.
func (s *ProfileService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.DataStore("profiles.IsAdmin", err)
	}
	return profile.IsAdmin, nil
}

// ListProfiles returns all profiles matching search, for admins.
func (s *ProfileService) ListProfiles(ctx context.Context, search string) ([]models.UserProfile, error) {
	profiles, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, apperrors.DataStore("profiles.List", err)
	}
	return profiles, nil
}
