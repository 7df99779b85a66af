package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification - запись для оператора о новом входящем сообщении.
type Notification struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversation_id"`
	MessageID      uuid.UUID `json:"message_id"`
	SenderID       string    `json:"sender_id"`
	Seen           bool      `json:"seen"`
	CreatedAt      time.Time `json:"created_at"`
}
