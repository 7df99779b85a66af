package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"agency_chat/pkg/logger"
)

type Repositories struct {
	Chat         ChatRepository
	Notification NotificationRepository
	RateLimit    RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		Chat:         NewChatRepository(db, log),
		Notification: NewNotificationRepository(db, log),
		RateLimit:    NewRateLimitRepository(redis, log),
	}
}
