package models

import "time"

// Feedback is a rated comment left by a signed-in user.
type Feedback struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index"`
	Content   string    `json:"content" validate:"required,max=2000"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	CreatedAt time.Time `json:"created_at"`

	Author *UserProfile `json:"user_profiles,omitempty" gorm:"foreignKey:UserID;references:UserID"`
}

// TableName keeps the singular table name.
func (Feedback) TableName() string {
	return "feedback"
}
