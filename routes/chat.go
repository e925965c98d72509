package routes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/ali545454/backend/utils"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// typingTTL is how long a typing signal stays visible after the last
// keystroke notification.
const typingTTL = 5 * time.Second

type StartConversationInput struct {
	OwnerID uint `json:"owner_id" validate:"required"`
}

type SendMessageInput struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// CheckConversation tells the frontend whether a thread with the owner
// already exists, so it can route straight to it.
func CheckConversation(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	ownerID, err := ctx.Params().GetUint("ownerID")
	if err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var conversation models.Conversation
	err = storage.DB.Where("student_id = ? AND owner_id = ?", user.ID, ownerID).First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(iris.Map{"exists": false})
		return
	}
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"exists": true, "conversation_id": conversation.ID})
}

// StartConversation fetches or creates the unique thread between the
// calling student and an owner.
func StartConversation(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	var input StartConversationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.OwnerID == user.ID {
		utils.JSONError(ctx, iris.StatusBadRequest, "Cannot start a conversation with yourself")
		return
	}

	var owner models.User
	if err := storage.DB.First(&owner, input.OwnerID).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Owner not found")
		return
	}

	var conversation models.Conversation
	err := storage.DB.Where("student_id = ? AND owner_id = ?", user.ID, owner.ID).First(&conversation).Error
	if err == nil {
		ctx.JSON(iris.Map{"conversation_id": conversation.ID, "created": false})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.CreateInternalServerError(ctx)
		return
	}

	conversation = models.Conversation{StudentID: user.ID, OwnerID: owner.ID}
	if err := storage.DB.Create(&conversation).Error; err != nil {
		// Two first messages racing: the unique pair index rejects the
		// second insert, so fall back to the surviving row.
		if err := storage.DB.Where("student_id = ? AND owner_id = ?", user.ID, owner.ID).First(&conversation).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		ctx.JSON(iris.Map{"conversation_id": conversation.ID, "created": false})
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"conversation_id": conversation.ID, "created": true})
}

// SendMessage appends a message to a thread. Only the two participants
// may write to it.
func SendMessage(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	conversation, ok := loadParticipantConversation(ctx, user.ID)
	if !ok {
		return
	}

	var input SendMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	message := models.ChatMessage{
		ConversationID: conversation.ID,
		SenderID:       user.ID,
		Text:           input.Text,
	}
	if err := storage.DB.Create(&message).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"id":         message.ID,
		"text":       message.Text,
		"sender_id":  message.SenderID,
		"created_at": message.CreatedAt,
	})
}

// GetMessages returns a thread's history, oldest first. Participants only.
func GetMessages(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	conversation, ok := loadParticipantConversation(ctx, user.ID)
	if !ok {
		return
	}

	var messages []models.ChatMessage
	storage.DB.Where("conversation_id = ?", conversation.ID).Order("created_at ASC").Find(&messages)

	list := make([]iris.Map, 0, len(messages))
	for _, message := range messages {
		list = append(list, iris.Map{
			"id":         message.ID,
			"text":       message.Text,
			"sender_id":  message.SenderID,
			"is_read":    message.IsRead,
			"is_mine":    message.SenderID == user.ID,
			"created_at": message.CreatedAt,
		})
	}
	ctx.JSON(iris.Map{"conversation_id": conversation.ID, "messages": list})
}

// MarkMessagesRead flags every message the other party sent as read.
func MarkMessagesRead(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	conversation, ok := loadParticipantConversation(ctx, user.ID)
	if !ok {
		return
	}

	result := storage.DB.Model(&models.ChatMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversation.ID, user.ID, false).
		Update("is_read", true)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"message": "Messages marked as read", "updated": result.RowsAffected})
}

// GetConversations lists the caller's threads, both as student and as
// owner, newest activity first.
func GetConversations(ctx iris.Context) {
	user := utils.UserFromContext(ctx)

	var conversations []models.Conversation
	storage.DB.Preload("Student").Preload("Owner").
		Where("student_id = ? OR owner_id = ?", user.ID, user.ID).
		Order("updated_at DESC").Find(&conversations)

	list := make([]iris.Map, 0, len(conversations))
	for _, conversation := range conversations {
		other := conversation.Owner
		if conversation.OwnerID == user.ID {
			other = conversation.Student
		}

		var lastMessage models.ChatMessage
		hasLast := storage.DB.Where("conversation_id = ?", conversation.ID).
			Order("created_at DESC").Limit(1).Find(&lastMessage).RowsAffected > 0

		var unread int64
		storage.DB.Model(&models.ChatMessage{}).
			Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversation.ID, user.ID, false).
			Count(&unread)

		entry := iris.Map{
			"conversation_id": conversation.ID,
			"unread_count":    unread,
		}
		if other != nil {
			entry["other_user"] = iris.Map{"uuid": other.UUID, "full_name": other.FullName}
		}
		if hasLast {
			entry["last_message"] = iris.Map{
				"text":       lastMessage.Text,
				"sender_id":  lastMessage.SenderID,
				"created_at": lastMessage.CreatedAt,
			}
		}
		list = append(list, entry)
	}
	ctx.JSON(iris.Map{"conversations": list})
}

// SetTyping publishes a short-lived typing signal for the thread.
func SetTyping(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	conversation, ok := loadParticipantConversation(ctx, user.ID)
	if !ok {
		return
	}

	if storage.Redis != nil {
		key := typingKey(conversation.ID, user.ID)
		storage.Redis.Set(context.Background(), key, "1", typingTTL)
	}
	ctx.JSON(iris.Map{"message": "Typing signal set"})
}

// GetTyping reports whether the other party is currently typing.
func GetTyping(ctx iris.Context) {
	user := utils.UserFromContext(ctx)
	conversation, ok := loadParticipantConversation(ctx, user.ID)
	if !ok {
		return
	}

	otherID := conversation.OwnerID
	if conversation.OwnerID == user.ID {
		otherID = conversation.StudentID
	}

	typing := false
	if storage.Redis != nil {
		if _, err := storage.Redis.Get(context.Background(), typingKey(conversation.ID, otherID)).Result(); err == nil {
			typing = true
		}
	}
	ctx.JSON(iris.Map{"typing": typing})
}

// loadParticipantConversation resolves the {id} route param and rejects
// callers that are not a party to the thread. It writes the error
// response itself when ok is false.
func loadParticipantConversation(ctx iris.Context, userID uint) (*models.Conversation, bool) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.CreateNotFound(ctx)
		return nil, false
	}

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "Conversation not found")
		return nil, false
	}
	if !conversation.HasParticipant(userID) {
		utils.CreateForbidden(ctx)
		return nil, false
	}
	return &conversation, true
}

func typingKey(conversationID, userID uint) string {
	return fmt.Sprintf("typing:%d:%d", conversationID, userID)
}
