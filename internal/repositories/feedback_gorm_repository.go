package repositories

import (
	"context"
	"fmt"
	"strings"

	"nursery/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMFeedbackRepository is a GORM implementation of FeedbackRepository.
type GORMFeedbackRepository struct {
	db *gorm.DB
}

// NewGORMFeedbackRepository creates a new instance of GORMFeedbackRepository.
func NewGORMFeedbackRepository(db *gorm.DB) *GORMFeedbackRepository {
	return &GORMFeedbackRepository{db: db}
}

// Create stores a feedback entry.
func (r *GORMFeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// List returns feedback newest first with the author's profile.
func (r *GORMFeedbackRepository) List(ctx context.Context, search string) ([]models.Feedback, error) {
	tx := r.db.WithContext(ctx).Preload("Author").Order("created_at DESC")
	if term := strings.TrimSpace(search); term != "" {
		tx = tx.Where("LOWER(content) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	var feedback []models.Feedback
	if err := tx.Find(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return feedback, nil
}
