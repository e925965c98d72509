package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	UUID         string      `json:"uuid" gorm:"size:36;uniqueIndex"`
	FullName     string      `json:"fullName"`
	Email        string      `json:"email" gorm:"uniqueIndex"`
	Phone        *string     `json:"phone" gorm:"uniqueIndex"`
	Password     string      `json:"-"`
	BirthDate    string      `json:"birthDate"`
	Gender       string      `json:"gender"`
	Role         string      `json:"role" gorm:"type:varchar(20);default:student;index"` // student, owner, admin
	AcademicYear string      `json:"academicYear"`
	College      string      `json:"college"`
	University   string      `json:"university"`
	Apartments   []Apartment `json:"apartments,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Reviews      []Review    `json:"reviews,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Favorites    []Favorite  `json:"favorites,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == "" {
		u.UUID = uuid.NewString()
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
