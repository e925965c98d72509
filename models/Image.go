package models

import "gorm.io/gorm"

// Image holds either a bare filename under the local uploads dir or an
// absolute Cloudinary URL.
type Image struct {
	gorm.Model
	URL         string `json:"url" gorm:"size:255;not null"`
	ApartmentID uint   `json:"apartmentID" gorm:"not null;index"`
}
