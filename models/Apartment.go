package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Apartment struct {
	gorm.Model
	UUID        string  `json:"uuid" gorm:"size:36;uniqueIndex"`
	Title       string  `json:"title" gorm:"size:255;not null"`
	Description string  `json:"description" gorm:"type:text"`
	Address     string  `json:"address" gorm:"size:255;not null"`
	Price       float64 `json:"price" gorm:"not null"`

	Rooms         int `json:"rooms" gorm:"not null"`
	Bathrooms     int `json:"bathrooms" gorm:"not null"`
	Kitchens      int `json:"kitchens" gorm:"not null"`
	TotalBeds     int `json:"totalBeds" gorm:"not null"`
	AvailableBeds int `json:"availableBeds" gorm:"not null"`

	ResidenceType       string `json:"residenceType" gorm:"size:50;not null"` // full apartment, room, studio, shared
	PreferredTenantType string `json:"preferredTenantType" gorm:"size:50"`    // male, female, families, any
	WhatsappNumber      string `json:"whatsappNumber" gorm:"size:20"`

	Area        *float64 `json:"area"`
	FloorNumber *int     `json:"floorNumber"`

	HasElevator       bool `json:"hasElevator" gorm:"default:false"`
	HasWifi           bool `json:"hasWifi" gorm:"default:false"`
	HasAC             bool `json:"hasAC" gorm:"default:false"`
	HasBalcony        bool `json:"hasBalcony" gorm:"default:false"`
	HasWashingMachine bool `json:"hasWashingMachine" gorm:"default:false"`
	HasOven           bool `json:"hasOven" gorm:"default:false"`
	HasGas            bool `json:"hasGas" gorm:"default:false"`
	NearTransport     bool `json:"nearTransport" gorm:"default:false"`

	IsVerified bool `json:"isVerified" gorm:"default:false"`

	OwnerID        uint `json:"ownerID" gorm:"not null;index"`
	NeighborhoodID uint `json:"neighborhoodID" gorm:"not null;index"`

	Owner        *User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Neighborhood *Neighborhood `json:"neighborhood,omitempty" gorm:"foreignKey:NeighborhoodID"`

	Images    []Image         `json:"images,omitempty" gorm:"foreignKey:ApartmentID;constraint:OnDelete:CASCADE"`
	Reviews   []Review        `json:"reviews,omitempty" gorm:"foreignKey:ApartmentID;constraint:OnDelete:CASCADE"`
	Favorites []Favorite      `json:"favorites,omitempty" gorm:"foreignKey:ApartmentID;constraint:OnDelete:CASCADE"`
	Views     []ApartmentView `json:"views,omitempty" gorm:"foreignKey:ApartmentID;constraint:OnDelete:CASCADE"`
}

func (a *Apartment) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	return nil
}

// FeatureKeys lists the amenity flags that are set, in a stable order the
// frontend renders as chips.
func (a *Apartment) FeatureKeys() []string {
	features := []string{}
	if a.HasWifi {
		features = append(features, "wifi")
	}
	if a.HasAC {
		features = append(features, "air_conditioning")
	}
	if a.HasBalcony {
		features = append(features, "balcony")
	}
	if a.HasElevator {
		features = append(features, "elevator")
	}
	if a.HasWashingMachine {
		features = append(features, "washing_machine")
	}
	if a.HasOven {
		features = append(features, "oven")
	}
	if a.HasGas {
		features = append(features, "gas")
	}
	if a.NearTransport {
		features = append(features, "near_transport")
	}
	return features
}
