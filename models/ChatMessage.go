package models

import "gorm.io/gorm"

type ChatMessage struct {
	gorm.Model
	ConversationID uint   `json:"conversationID" gorm:"not null;index"`
	SenderID       uint   `json:"senderID" gorm:"not null;index"`
	Text           string `json:"text" gorm:"size:1000;not null"`
	IsRead         bool   `json:"isRead" gorm:"default:false"`

	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}
