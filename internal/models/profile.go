package models

import "time"

// UserProfile holds the contact details of a user. One row per user.
type UserProfile struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	FirstName string    `json:"first_name" validate:"omitempty,max=100"`
	LastName  string    `json:"last_name" validate:"omitempty,max=100"`
	Phone     string    `json:"phone" validate:"omitempty,max=32"`
	Address   string    `json:"address" validate:"omitempty,max=255"`
	City      string    `json:"city" validate:"omitempty,max=100"`
	State     string    `json:"state" validate:"omitempty,max=100"`
	Zip       string    `json:"zip" validate:"omitempty,max=16"`
	IsAdmin   bool      `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
