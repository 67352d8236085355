package services

import (
	"context"

	"nursery/internal/apperrors"
	"nursery/internal/models"
	"nursery/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// FeedbackService stores customer feedback and lists it for admins.
type FeedbackService struct {
	repo     repositories.FeedbackRepository
	validate *validator.Validate
	log      *zap.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(repo repositories.FeedbackRepository, log *zap.Logger) *FeedbackService {
	return &FeedbackService{
		repo:     repo,
		validate: validator.New(),
		log:      named(log, "feedback"),
	}
}

// Submit stores feedback from userID.
func (s *FeedbackService) Submit(ctx context.Context, userID string, feedback *models.Feedback) error {
	const op = "feedback.Submit"
	feedback.ID = ""
	feedback.UserID = userID
	feedback.Author = nil
	if err := s.validate.Struct(feedback); err != nil {
		return apperrors.FromValidator(op, err)
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		return apperrors.DataStore(op, err)
	}
	s.log.Info("feedback received", zap.String("user_id", userID), zap.Int("rating", feedback.Rating))
	return nil
}

// List returns feedback matching search, newest first.
func (s *FeedbackService) List(ctx context.Context, search string) ([]models.Feedback, error) {
	list, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, apperrors.DataStore("feedback.List", err)
	}
	return list, nil
}
