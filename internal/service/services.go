package service

import (
	"agency_chat/internal/config"
	"agency_chat/internal/domain"
	"agency_chat/internal/relay"
	"agency_chat/internal/repository"
	"agency_chat/pkg/logger"
)

type Services struct {
	Auth      AuthService
	Chat      ChatService
	Responder Responder
	RateLimit RateLimitService
}

func NewServices(repos *repository.Repositories, broadcaster relay.Broadcaster, canned []domain.CannedQA, cfg *config.Config, log logger.Logger) *Services {
	responder := NewResponder(canned)

	return &Services{
		Auth:      NewAuthService(cfg.Chat, cfg.JWT, log),
		Chat:      NewChatService(repos.Chat, repos.Notification, responder, broadcaster, cfg.Chat.AdminID, log),
		Responder: responder,
		RateLimit: NewRateLimitService(repos.RateLimit, log),
	}
}
