package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"agency_chat/internal/domain"
	"agency_chat/pkg/logger"
)

type ChatRepository interface {
	CreateMessage(ctx context.Context, input *domain.ChatMessageInput) (*domain.ChatMessage, error)
	ListByConversation(ctx context.Context, conversationID string) ([]*domain.ChatMessage, error)
	ListAllDesc(ctx context.Context) ([]*domain.ChatMessage, error)
	MarkRead(ctx context.Context, matcher domain.ReadMatcher) (int64, error)
}

type chatRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewChatRepository(db *pgxpool.Pool, log logger.Logger) ChatRepository {
	return &chatRepository{db: db, log: log}
}

func (r *chatRepository) CreateMessage(ctx context.Context, input *domain.ChatMessageInput) (*domain.ChatMessage, error) {
	query := `
		INSERT INTO chat_messages (id, conversation_id, sender_id, receiver_id, body, image_url, origin_ip, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, now())
		RETURNING created_at
	`

	message := &domain.ChatMessage{
		ID:             uuid.New(),
		ConversationID: input.ConversationID,
		SenderID:       input.SenderID,
		ReceiverID:     input.ReceiverID,
		Body:           input.Body,
		ImageURL:       input.ImageURL,
		OriginIP:       input.OriginIP,
		IsRead:         false,
	}

	err := r.db.QueryRow(ctx, query,
		message.ID, message.ConversationID, message.SenderID, message.ReceiverID,
		message.Body, message.ImageURL, message.OriginIP,
	).Scan(&message.CreatedAt)

	if err != nil {
		r.log.Error("Failed to create message", "error", err)
		return nil, err
	}

	return message, nil
}

func (r *chatRepository) ListByConversation(ctx context.Context, conversationID string) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, conversation_id, sender_id, receiver_id, body, image_url, origin_ip, is_read, created_at
		FROM chat_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, conversationID)
	if err != nil {
		r.log.Error("Failed to list messages", "error", err, "conversation_id", conversationID)
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows, r.log)
}

func (r *chatRepository) ListAllDesc(ctx context.Context) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, conversation_id, sender_id, receiver_id, body, image_url, origin_ip, is_read, created_at
		FROM chat_messages
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list all messages", "error", err)
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows, r.log)
}

// MarkRead помечает прочитанными все строки, попавшие под matcher:
// по conversation_id либо по паре участников в обоих порядках.
func (r *chatRepository) MarkRead(ctx context.Context, matcher domain.ReadMatcher) (int64, error) {
	query := `
		UPDATE chat_messages
		SET is_read = true
		WHERE conversation_id = $1
		   OR (sender_id = $2 AND receiver_id = $3)
		   OR (sender_id = $3 AND receiver_id = $2)
	`

	tag, err := r.db.Exec(ctx, query, matcher.ConversationID, matcher.ParticipantA, matcher.ParticipantB)
	if err != nil {
		r.log.Error("Failed to mark messages read", "error", err)
		return 0, err
	}

	return tag.RowsAffected(), nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
}

func scanMessages(rows pgxRows, log logger.Logger) ([]*domain.ChatMessage, error) {
	var messages []*domain.ChatMessage
	for rows.Next() {
		message := &domain.ChatMessage{}
		var body, imageURL, originIP sql.NullString
		err := rows.Scan(
			&message.ID, &message.ConversationID, &message.SenderID, &message.ReceiverID,
			&body, &imageURL, &originIP, &message.IsRead, &message.CreatedAt,
		)
		if err != nil {
			log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		if body.Valid {
			message.Body = &body.String
		}
		if imageURL.Valid {
			message.ImageURL = &imageURL.String
		}
		if originIP.Valid {
			message.OriginIP = originIP.String
		}
		messages = append(messages, message)
	}

	return messages, nil
}
