package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"agency_chat/internal/domain"
	"agency_chat/internal/relay"
	"agency_chat/internal/service"
	"agency_chat/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	hub         *relay.Hub
	chatService service.ChatService
	responder   service.Responder
	log         logger.Logger
}

func NewWebSocketHandler(hub *relay.Hub, chatService service.ChatService, responder service.Responder, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		chatService: chatService,
		responder:   responder,
		log:         log,
	}
}

func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := relay.NewClient(conn)
	h.hub.Register(client)
	go client.WritePump()

	defer h.hub.Unregister(client)

	clientIP := c.ClientIP()

	for {
		event, err := client.ReadEvent()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("Unexpected websocket close", "error", err)
			}
			break
		}

		switch event.Type {
		case domain.EventIdentify:
			h.onIdentify(client, event)
		case domain.EventMessage:
			h.onMessage(client, event, clientIP)
		default:
			h.log.Debug("Ignoring unknown event type", "type", event.Type)
		}
	}
}

// onIdentify записывает id клиента как идентификатор пользователя и,
// до переопределения, как идентификатор диалога.
func (h *WebSocketHandler) onIdentify(client *relay.Client, event *domain.ChatEvent) {
	if event.UserID == "" {
		return
	}
	client.UserID = event.UserID
	client.ConversationID = event.UserID
}

// onMessage - центральная диспетчеризация. Канонный вопрос не меняет
// сессию соединения; обычное сообщение переустанавливает активные
// user id и conversation id.
func (h *WebSocketHandler) onMessage(client *relay.Client, event *domain.ChatEvent, clientIP string) {
	if _, canned := h.responder.Match(event.Body); !canned {
		if event.SenderID != "" {
			client.UserID = event.SenderID
		}
		if event.ConversationID != "" {
			client.ConversationID = event.ConversationID
		}
	}

	input := &domain.ChatMessageInput{
		ConversationID: event.ConversationID,
		SenderID:       event.SenderID,
		ReceiverID:     event.ReceiverID,
		Body:           optional(event.Body),
		ImageURL:       optional(event.ImageURL),
		OriginIP:       clientIP,
	}
	if input.SenderID == "" {
		input.SenderID = client.UserID
	}
	if input.ConversationID == "" {
		input.ConversationID = client.ConversationID
	}

	// Рассылка уже произошла внутри SendMessage; ошибка хранения
	// логируется и не роняет соединение.
	if _, _, err := h.chatService.SendMessage(context.Background(), input); err != nil {
		h.log.Error("Failed to persist relayed message", "error", err, "conversation_id", input.ConversationID)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
