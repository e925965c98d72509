package models

import "gorm.io/gorm"

type Review struct {
	gorm.Model
	UserID      uint   `json:"userID" gorm:"not null;uniqueIndex:idx_review_user_apartment"`
	ApartmentID uint   `json:"apartmentID" gorm:"not null;uniqueIndex:idx_review_user_apartment"`
	Rating      int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment     string `json:"comment" gorm:"type:text"`

	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Apartment *Apartment `json:"apartment,omitempty" gorm:"foreignKey:ApartmentID"`
}
