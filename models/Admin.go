package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin is a separate auth realm from User; admin tokens are signed with
// their own secret and carried in the Authorization header.
type Admin struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Username  string    `json:"username" gorm:"size:100;uniqueIndex"`
	Email     string    `json:"email" gorm:"size:120;uniqueIndex"`
	Password  string    `json:"-" gorm:"size:200"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
