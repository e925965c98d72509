package models

import "gorm.io/gorm"

// Conversation is the single chat thread between one student and one owner.
type Conversation struct {
	gorm.Model
	StudentID uint `json:"studentID" gorm:"not null;uniqueIndex:idx_conversation_student_owner"`
	OwnerID   uint `json:"ownerID" gorm:"not null;uniqueIndex:idx_conversation_student_owner"`

	Student  *User         `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Owner    *User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Messages []ChatMessage `json:"messages,omitempty" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// HasParticipant reports whether the user is one of the two parties.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.StudentID == userID || c.OwnerID == userID
}
