package models

import "gorm.io/gorm"

type Neighborhood struct {
	gorm.Model
	Name       string      `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Apartments []Apartment `json:"apartments,omitempty" gorm:"foreignKey:NeighborhoodID"`
}
