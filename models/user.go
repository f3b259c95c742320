package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string     `gorm:"uniqueIndex;not null" json:"email"`
	FullName string     `json:"full_name"`
	DueDate  *time.Time `json:"due_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// TrimesterAt derives the pregnancy trimester at the given time from the
// user's due date (40 weeks gestation). Defaults to 1 when no due date is
// set.
func (u *User) TrimesterAt(at time.Time) int {
	if u.DueDate == nil {
		return 1
	}
	conception := u.DueDate.AddDate(0, 0, -40*7)
	weeks := int(at.Sub(conception).Hours() / 24 / 7)
	switch {
	case weeks < 13:
		return 1
	case weeks < 27:
		return 2
	default:
		return 3
	}
}
