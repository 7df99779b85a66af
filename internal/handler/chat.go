package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agency_chat/internal/domain"
	"agency_chat/internal/service"
	apperrors "agency_chat/pkg/errors"
	"agency_chat/pkg/logger"
)

type ChatHandler struct {
	chatService service.ChatService
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		log:         log,
	}
}

type SendMessageRequest struct {
	SenderID       string  `json:"sender_id" binding:"required"`
	ReceiverID     string  `json:"receiver_id"`
	ConversationID string  `json:"conversation_id"`
	Body           *string `json:"body"`
	ImageURL       *string `json:"image_url"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ErrBadRequest)
		return
	}

	input := &domain.ChatMessageInput{
		ConversationID: req.ConversationID,
		SenderID:       req.SenderID,
		ReceiverID:     req.ReceiverID,
		Body:           req.Body,
		ImageURL:       req.ImageURL,
		OriginIP:       c.ClientIP(),
	}

	message, reply, err := h.chatService.SendMessage(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	data := gin.H{"message": message}
	if reply != nil {
		data["reply"] = reply
	}

	respond(c, http.StatusCreated, "Message sent", data)
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	conversationID := c.Param("id")

	messages, err := h.chatService.History(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Messages fetched", messages)
}

func (h *ChatHandler) GetInbox(c *gin.Context) {
	summaries, err := h.chatService.Inbox(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Conversations fetched", summaries)
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	var matcher domain.ReadMatcher
	if err := c.ShouldBindJSON(&matcher); err != nil {
		respondError(c, apperrors.ErrBadRequest)
		return
	}

	affected, err := h.chatService.MarkRead(c.Request.Context(), matcher)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Messages marked as read", gin.H{"affected": affected})
}

func (h *ChatHandler) GetNotifications(c *gin.Context) {
	notifications, err := h.chatService.Notifications(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Notifications fetched", notifications)
}

func (h *ChatHandler) MarkNotificationSeen(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ErrBadRequest)
		return
	}

	if err := h.chatService.MarkNotificationSeen(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Notification marked as seen", nil)
}
