package routes

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ali545454/backend/models"
	"github.com/ali545454/backend/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartConversationIsIdempotent(t *testing.T) {
	app := setupTestApp(t)
	owner, _ := createTestUser(t, "owner@example.com", "owner")
	_, studentToken := createTestUser(t, "student@example.com", "student")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/chat/start", map[string]interface{}{
		"owner_id": owner.ID,
	}, studentToken)
	require.Equal(t, http.StatusCreated, resp.Code)
	first := decodeBody(t, resp)

	// Starting again reuses the same thread.
	resp2 := doJSON(t, app, http.MethodPost, "/api/v1/chat/start", map[string]interface{}{
		"owner_id": owner.ID,
	}, studentToken)
	require.Equal(t, http.StatusOK, resp2.Code)
	second := decodeBody(t, resp2)

	assert.Equal(t, first["conversation_id"], second["conversation_id"])
	assert.Equal(t, false, second["created"])

	var count int64
	storage.DB.Model(&models.Conversation{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestStartConversationWithSelfRejected(t *testing.T) {
	app := setupTestApp(t)
	user, token := createTestUser(t, "solo@example.com", "owner")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/chat/start", map[string]interface{}{
		"owner_id": user.ID,
	}, token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSendMessageParticipantsOnly(t *testing.T) {
	app := setupTestApp(t)
	owner, _ := createTestUser(t, "owner@example.com", "owner")
	student, studentToken := createTestUser(t, "student@example.com", "student")
	_, outsiderToken := createTestUser(t, "outsider@example.com", "student")

	conversation := models.Conversation{StudentID: student.ID, OwnerID: owner.ID}
	require.NoError(t, storage.DB.Create(&conversation).Error)
	path := fmt.Sprintf("/api/v1/chat/%d/messages", conversation.ID)

	// A third party can neither write nor read the thread.
	resp := doJSON(t, app, http.MethodPost, path, map[string]interface{}{"text": "hello"}, outsiderToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp2 := doJSON(t, app, http.MethodGet, path, nil, outsiderToken)
	assert.Equal(t, http.StatusForbidden, resp2.Code)

	resp3 := doJSON(t, app, http.MethodPost, path, map[string]interface{}{"text": "hello"}, studentToken)
	assert.Equal(t, http.StatusCreated, resp3.Code)

	var count int64
	storage.DB.Model(&models.ChatMessage{}).Where("conversation_id = ?", conversation.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestMessagesOrderedOldestFirst(t *testing.T) {
	app := setupTestApp(t)
	owner, ownerToken := createTestUser(t, "owner@example.com", "owner")
	student, _ := createTestUser(t, "student@example.com", "student")

	conversation := models.Conversation{StudentID: student.ID, OwnerID: owner.ID}
	require.NoError(t, storage.DB.Create(&conversation).Error)
	require.NoError(t, storage.DB.Create(&models.ChatMessage{ConversationID: conversation.ID, SenderID: student.ID, Text: "first"}).Error)
	require.NoError(t, storage.DB.Create(&models.ChatMessage{ConversationID: conversation.ID, SenderID: owner.ID, Text: "second"}).Error)

	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/chat/%d/messages", conversation.ID), nil, ownerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody(t, resp)
	messages, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].(map[string]interface{})["text"])
	assert.Equal(t, "second", messages[1].(map[string]interface{})["text"])
}

func TestMarkMessagesReadOnlyOtherParty(t *testing.T) {
	app := setupTestApp(t)
	owner, ownerToken := createTestUser(t, "owner@example.com", "owner")
	student, _ := createTestUser(t, "student@example.com", "student")

	conversation := models.Conversation{StudentID: student.ID, OwnerID: owner.ID}
	require.NoError(t, storage.DB.Create(&conversation).Error)
	require.NoError(t, storage.DB.Create(&models.ChatMessage{ConversationID: conversation.ID, SenderID: student.ID, Text: "from student"}).Error)
	require.NoError(t, storage.DB.Create(&models.ChatMessage{ConversationID: conversation.ID, SenderID: owner.ID, Text: "from owner"}).Error)

	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/chat/%d/read", conversation.ID), nil, ownerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	// The owner's own message stays unread for the student.
	var studentMsg, ownerMsg models.ChatMessage
	require.NoError(t, storage.DB.Where("sender_id = ?", student.ID).First(&studentMsg).Error)
	require.NoError(t, storage.DB.Where("sender_id = ?", owner.ID).First(&ownerMsg).Error)
	assert.True(t, studentMsg.IsRead)
	assert.False(t, ownerMsg.IsRead)
}

func TestGetConversationsListsBothSides(t *testing.T) {
	app := setupTestApp(t)
	owner, ownerToken := createTestUser(t, "owner@example.com", "owner")
	student, studentToken := createTestUser(t, "student@example.com", "student")

	conversation := models.Conversation{StudentID: student.ID, OwnerID: owner.ID}
	require.NoError(t, storage.DB.Create(&conversation).Error)
	require.NoError(t, storage.DB.Create(&models.ChatMessage{ConversationID: conversation.ID, SenderID: student.ID, Text: "hi"}).Error)

	for _, token := range []string{ownerToken, studentToken} {
		resp := doJSON(t, app, http.MethodGet, "/api/v1/chat/conversations", nil, token)
		require.Equal(t, http.StatusOK, resp.Code)
		body := decodeBody(t, resp)
		conversations, ok := body["conversations"].([]interface{})
		require.True(t, ok)
		assert.Len(t, conversations, 1)
	}

	// The unread counter only counts the other party's messages.
	resp := doJSON(t, app, http.MethodGet, "/api/v1/chat/conversations", nil, ownerToken)
	body := decodeBody(t, resp)
	entry := body["conversations"].([]interface{})[0].(map[string]interface{})
	assert.EqualValues(t, 1, entry["unread_count"])
}

func TestCheckConversation(t *testing.T) {
	app := setupTestApp(t)
	owner, _ := createTestUser(t, "owner@example.com", "owner")
	student, studentToken := createTestUser(t, "student@example.com", "student")

	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/chat/check/%d", owner.ID), nil, studentToken)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, false, decodeBody(t, resp)["exists"])

	require.NoError(t, storage.DB.Create(&models.Conversation{StudentID: student.ID, OwnerID: owner.ID}).Error)

	resp2 := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/chat/check/%d", owner.ID), nil, studentToken)
	require.Equal(t, http.StatusOK, resp2.Code)
	assert.Equal(t, true, decodeBody(t, resp2)["exists"])
}
