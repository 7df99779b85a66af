package service

import (
	"context"

	"github.com/google/uuid"

	"agency_chat/internal/domain"
	"agency_chat/internal/relay"
	"agency_chat/internal/repository"
	apperrors "agency_chat/pkg/errors"
	"agency_chat/pkg/logger"
	"agency_chat/pkg/netutil"
)

type ChatService interface {
	// SendMessage рассылает и сохраняет сообщение; при совпадении с
	// канонным вопросом вторым значением возвращается автоответ.
	SendMessage(ctx context.Context, input *domain.ChatMessageInput) (*domain.ChatMessage, *domain.ChatMessage, error)
	History(ctx context.Context, conversationID string) ([]*domain.ChatMessage, error)
	MarkRead(ctx context.Context, matcher domain.ReadMatcher) (int64, error)
	Inbox(ctx context.Context) ([]*domain.ConversationSummary, error)
	Notifications(ctx context.Context) ([]*domain.Notification, error)
	MarkNotificationSeen(ctx context.Context, id uuid.UUID) error
}

type chatService struct {
	chatRepo  repository.ChatRepository
	notifRepo repository.NotificationRepository
	responder Responder
	relay     relay.Broadcaster
	adminID   string
	log       logger.Logger
}

func NewChatService(
	chatRepo repository.ChatRepository,
	notifRepo repository.NotificationRepository,
	responder Responder,
	broadcaster relay.Broadcaster,
	adminID string,
	log logger.Logger,
) ChatService {
	return &chatService{
		chatRepo:  chatRepo,
		notifRepo: notifRepo,
		responder: responder,
		relay:     broadcaster,
		adminID:   adminID,
		log:       log,
	}
}

// SendMessage сохраняет порядок, который видят слушатели: сначала
// рассылается исходное сообщение, после его сохранения - автоответ,
// и только затем автоответ сохраняется сам.
func (s *chatService) SendMessage(ctx context.Context, input *domain.ChatMessageInput) (*domain.ChatMessage, *domain.ChatMessage, error) {
	if (input.Body == nil || *input.Body == "") && (input.ImageURL == nil || *input.ImageURL == "") {
		return nil, nil, apperrors.ErrEmptyMessage
	}
	if input.SenderID == "" {
		return nil, nil, apperrors.ErrBadRequest
	}
	if input.ConversationID == "" {
		input.ConversationID = input.SenderID
	}
	if input.ReceiverID == "" {
		input.ReceiverID = s.adminID
	}
	input.OriginIP = netutil.MapIP(input.OriginIP)

	s.relay.Broadcast(broadcastEvent(input))

	message, err := s.chatRepo.CreateMessage(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	if message.SenderID != s.adminID {
		s.notify(ctx, message)
	}

	var reply *domain.ChatMessage
	if input.Body != nil {
		if answer, ok := s.responder.Match(*input.Body); ok {
			replyInput := &domain.ChatMessageInput{
				ConversationID: message.ConversationID,
				SenderID:       s.adminID,
				ReceiverID:     message.SenderID,
				Body:           &answer,
			}

			s.relay.Broadcast(broadcastEvent(replyInput))

			reply, err = s.chatRepo.CreateMessage(ctx, replyInput)
			if err != nil {
				return message, nil, err
			}
		}
	}

	return message, reply, nil
}

func (s *chatService) History(ctx context.Context, conversationID string) ([]*domain.ChatMessage, error) {
	if conversationID == "" {
		return nil, apperrors.ErrBadRequest
	}
	return s.chatRepo.ListByConversation(ctx, conversationID)
}

func (s *chatService) MarkRead(ctx context.Context, matcher domain.ReadMatcher) (int64, error) {
	if matcher.IsZero() {
		return 0, apperrors.ErrBadRequest
	}
	return s.chatRepo.MarkRead(ctx, matcher)
}

func (s *chatService) Inbox(ctx context.Context) ([]*domain.ConversationSummary, error) {
	messages, err := s.chatRepo.ListAllDesc(ctx)
	if err != nil {
		return nil, err
	}
	return BuildInbox(messages), nil
}

func (s *chatService) Notifications(ctx context.Context) ([]*domain.Notification, error) {
	return s.notifRepo.ListUnseen(ctx)
}

func (s *chatService) MarkNotificationSeen(ctx context.Context, id uuid.UUID) error {
	return s.notifRepo.MarkSeen(ctx, id)
}

// notify пишет запись для оператора; ошибка не прерывает доставку.
func (s *chatService) notify(ctx context.Context, message *domain.ChatMessage) {
	notification := &domain.Notification{
		ConversationID: message.ConversationID,
		MessageID:      message.ID,
		SenderID:       message.SenderID,
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		s.log.Error("Failed to create notification", "error", err, "conversation_id", message.ConversationID)
	}
}

// BuildInbox сворачивает выборку, отсортированную по created_at по
// убыванию, в сводки диалогов: первая встреченная строка группы -
// последнее сообщение, непрочитанные считаются по всей группе.
func BuildInbox(messages []*domain.ChatMessage) []*domain.ConversationSummary {
	byConversation := make(map[string]*domain.ConversationSummary)
	summaries := make([]*domain.ConversationSummary, 0)

	for _, message := range messages {
		summary, ok := byConversation[message.ConversationID]
		if !ok {
			summary = &domain.ConversationSummary{
				ConversationID: message.ConversationID,
				LastMessage:    message,
			}
			byConversation[message.ConversationID] = summary
			summaries = append(summaries, summary)
		}
		if !message.IsRead {
			summary.UnreadCount++
		}
	}

	return summaries
}

func broadcastEvent(input *domain.ChatMessageInput) *domain.ChatEvent {
	event := &domain.ChatEvent{
		Type:           domain.EventBroadcast,
		SenderID:       input.SenderID,
		ReceiverID:     input.ReceiverID,
		ConversationID: input.ConversationID,
	}
	if input.Body != nil {
		event.Body = *input.Body
	}
	if input.ImageURL != nil {
		event.ImageURL = *input.ImageURL
	}
	return event
}
