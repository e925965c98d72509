package models

import "gorm.io/gorm"

// Favorite is unique per (user, apartment). The handlers check before
// inserting for a friendly 409; the index makes a concurrent duplicate lose
// at commit time.
type Favorite struct {
	gorm.Model
	UserID      uint `json:"userID" gorm:"not null;uniqueIndex:idx_favorite_user_apartment"`
	ApartmentID uint `json:"apartmentID" gorm:"not null;uniqueIndex:idx_favorite_user_apartment"`

	Apartment *Apartment `json:"apartment,omitempty" gorm:"foreignKey:ApartmentID"`
}
