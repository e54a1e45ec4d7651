package routes

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"leasemate-server/models"
	"leasemate-server/services"
	"leasemate-server/storage"
	"leasemate-server/utils"
)

// Chat is a plain CRUD + fan-out path: no state machine, but every message
// follows the same notification contract as the workflows (persist first,
// live delivery best-effort).

type StartConversationInput struct {
	LandlordID uint  `json:"landlordID" validate:"required"`
	UnitID     *uint `json:"unitID"`
}

// StartConversation opens (or returns) the direct thread between the caller
// and a landlord.
func StartConversation(ctx iris.Context) {
	var input StartConversationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	tenantID := utils.CallerID(ctx)
	if tenantID == input.LandlordID {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "cannot start a conversation with yourself")
		return
	}

	var conversation models.Conversation
	err := storage.DB.
		Where("tenant_id = ? AND landlord_id = ?", tenantID, input.LandlordID).
		First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		conversation = models.Conversation{
			TenantID:   tenantID,
			LandlordID: input.LandlordID,
			UnitID:     input.UnitID,
		}
		err = storage.DB.Create(&conversation).Error
	}
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(&conversation)
}

func ListConversations(ctx iris.Context) {
	callerID := utils.CallerID(ctx)
	var conversations []models.Conversation
	err := storage.DB.
		Where("tenant_id = ? OR landlord_id = ?", callerID, callerID).
		Preload("Tenant").
		Preload("Landlord").
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"conversations": conversations})
}

// getOwnConversation loads the conversation and checks the caller is a party.
func getOwnConversation(ctx iris.Context) (*models.Conversation, bool) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation", "invalid conversation id")
		return nil, false
	}

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "conversation not found")
			return nil, false
		}
		HandleServiceError(ctx, err)
		return nil, false
	}

	callerID := utils.CallerID(ctx)
	if conversation.TenantID != callerID && conversation.LandlordID != callerID {
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", "not a party of this conversation")
		return nil, false
	}
	return &conversation, true
}

// ListMessages returns the last 100 messages, oldest first.
func ListMessages(ctx iris.Context) {
	conversation, ok := getOwnConversation(ctx)
	if !ok {
		return
	}

	var messages []models.Message
	err := storage.DB.
		Where("conversation_id = ?", conversation.ID).
		Preload("Sender").
		Order("id DESC").
		Limit(100).
		Find(&messages).Error
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	ctx.JSON(iris.Map{"messages": messages})
}

type SendMessageInput struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// previewRunes caps the message excerpt carried in the push notification.
const previewRunes = 80

// messagePreview shortens a message body on a rune boundary so multi-byte
// text is never cut mid-character.
func messagePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "…"
}

func SendMessage(ctx iris.Context) {
	conversation, ok := getOwnConversation(ctx)
	if !ok {
		return
	}

	var input SendMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	callerID := utils.CallerID(ctx)
	receiverID := conversation.LandlordID
	if callerID == conversation.LandlordID {
		receiverID = conversation.TenantID
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       callerID,
		ReceiverID:     receiverID,
		Text:           input.Text,
		State:          "sent",
	}
	if err := storage.DB.Create(&message).Error; err != nil {
		HandleServiceError(ctx, err)
		return
	}
	storage.DB.Model(conversation).Update("updated_at", time.Now())

	senderName := fmt.Sprintf("User %d", callerID)
	var sender models.User
	if err := storage.DB.First(&sender, callerID).Error; err == nil {
		senderName = sender.FirstName + " " + sender.LastName
	}

	ev := services.ChatMessageEvent(receiverID, callerID, conversation.ID, senderName, messagePreview(input.Text))
	if _, err := Notifier.Notify(ctx.Request().Context(), ev); err != nil {
		log.Printf("conversation %d: notify receiver %d: %v", conversation.ID, receiverID, err)
	}

	storage.DB.Preload("Sender").First(&message, message.ID)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&message)
}

// SetTyping flags the caller as typing for a few seconds; the peer polls it.
func SetTyping(ctx iris.Context) {
	conversation, ok := getOwnConversation(ctx)
	if !ok {
		return
	}
	key := fmt.Sprintf("chat:typing:%d:%d", conversation.ID, utils.CallerID(ctx))
	storage.Redis.Set(ctx.Request().Context(), key, "1", 5*time.Second)
	ctx.JSON(iris.Map{"success": true})
}

func GetTyping(ctx iris.Context) {
	conversation, ok := getOwnConversation(ctx)
	if !ok {
		return
	}
	peerID := conversation.LandlordID
	if utils.CallerID(ctx) == conversation.LandlordID {
		peerID = conversation.TenantID
	}
	key := fmt.Sprintf("chat:typing:%d:%d", conversation.ID, peerID)
	typing := false
	if val, err := storage.Redis.Get(ctx.Request().Context(), key).Result(); err == nil && val == "1" {
		typing = true
	}
	ctx.JSON(iris.Map{"typing": typing})
}

// MarkMessagesSeen stamps every unseen message addressed to the caller.
func MarkMessagesSeen(ctx iris.Context) {
	conversation, ok := getOwnConversation(ctx)
	if !ok {
		return
	}
	now := time.Now()
	err := storage.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND state <> ?", conversation.ID, utils.CallerID(ctx), "seen").
		Updates(map[string]interface{}{"state": "seen", "seen_at": &now}).Error
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"success": true})
}
