package models

import "time"

// ApartmentView is one deduplicated impression. UserID is nil for anonymous
// visitors, which are keyed by IP instead.
type ApartmentView struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ApartmentID uint      `json:"apartmentID" gorm:"not null;index"`
	UserID      *uint     `json:"userID" gorm:"index"`
	IPAddress   string    `json:"ipAddress" gorm:"size:45"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}
