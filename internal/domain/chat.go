package domain

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id"`
	Body           *string   `json:"body,omitempty"`
	ImageURL       *string   `json:"image_url,omitempty"`
	OriginIP       string    `json:"origin_ip,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatMessageInput - данные нового сообщения до присвоения id и created_at.
type ChatMessageInput struct {
	ConversationID string  `json:"conversation_id"`
	SenderID       string  `json:"sender_id"`
	ReceiverID     string  `json:"receiver_id"`
	Body           *string `json:"body,omitempty"`
	ImageURL       *string `json:"image_url,omitempty"`
	OriginIP       string  `json:"-"`
}

// ReadMatcher описывает строки, помечаемые прочитанными: совпадение по
// conversation_id ИЛИ по паре участников в любом порядке.
type ReadMatcher struct {
	ConversationID string `json:"conversation_id,omitempty"`
	ParticipantA   string `json:"participant_a,omitempty"`
	ParticipantB   string `json:"participant_b,omitempty"`
}

func (m ReadMatcher) IsZero() bool {
	return m.ConversationID == "" && (m.ParticipantA == "" || m.ParticipantB == "")
}

// ConversationSummary - производная запись для инбокса оператора,
// не хранится в БД.
type ConversationSummary struct {
	ConversationID string       `json:"conversation_id"`
	LastMessage    *ChatMessage `json:"last_message"`
	UnreadCount    int          `json:"unread_count"`
}

const (
	EventIdentify  = "identify"
	EventMessage   = "message"
	EventBroadcast = "broadcast"
)

// ChatEvent передается по websocket в обе стороны, поле Type различает
// identify/message от клиента и broadcast от сервера.
type ChatEvent struct {
	Type           string       `json:"type"`
	UserID         string       `json:"user_id,omitempty"`
	SenderID       string       `json:"sender_id,omitempty"`
	ReceiverID     string       `json:"receiver_id,omitempty"`
	ConversationID string       `json:"conversation_id,omitempty"`
	Body           string       `json:"body,omitempty"`
	ImageURL       string       `json:"image_url,omitempty"`
	Message        *ChatMessage `json:"message,omitempty"`
}
