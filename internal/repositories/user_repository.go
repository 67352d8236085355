package repositories

import (
	"context"

	"nursery/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ProfileRepository defines the interface for user profile data access.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	// Upsert inserts or updates the profile keyed by user_id. IsAdmin is never written.
	Upsert(ctx context.Context, profile *models.UserProfile) error
	// List returns profiles newest first, optionally narrowed by a search term.
	List(ctx context.Context, search string) ([]models.UserProfile, error)
}

// FeedbackRepository defines the interface for feedback data access.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	// List returns feedback newest first with author names, optionally narrowed by a search term.
	List(ctx context.Context, search string) ([]models.Feedback, error)
}
