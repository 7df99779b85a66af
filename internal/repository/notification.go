package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"agency_chat/internal/domain"
	apperrors "agency_chat/pkg/errors"
	"agency_chat/pkg/logger"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListUnseen(ctx context.Context) ([]*domain.Notification, error)
	MarkSeen(ctx context.Context, id uuid.UUID) error
}

type notificationRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, log logger.Logger) NotificationRepository {
	return &notificationRepository{db: db, log: log}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO chat_notifications (id, conversation_id, message_id, sender_id, seen, created_at)
		VALUES ($1, $2, $3, $4, false, now())
		RETURNING created_at
	`

	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		notification.ID, notification.ConversationID, notification.MessageID, notification.SenderID,
	).Scan(&notification.CreatedAt)

	if err != nil {
		r.log.Error("Failed to create notification", "error", err)
		return err
	}

	return nil
}

func (r *notificationRepository) ListUnseen(ctx context.Context) ([]*domain.Notification, error) {
	query := `
		SELECT id, conversation_id, message_id, sender_id, seen, created_at
		FROM chat_notifications
		WHERE seen = false
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list notifications", "error", err)
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		notification := &domain.Notification{}
		err := rows.Scan(
			&notification.ID, &notification.ConversationID, &notification.MessageID,
			&notification.SenderID, &notification.Seen, &notification.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan notification", "error", err)
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	return notifications, nil
}

func (r *notificationRepository) MarkSeen(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE chat_notifications
		SET seen = true
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark notification seen", "error", err)
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}

	return nil
}
