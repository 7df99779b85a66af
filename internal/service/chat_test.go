package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency_chat/internal/domain"
	apperrors "agency_chat/pkg/errors"
	"agency_chat/pkg/logger"
)

// journal фиксирует порядок рассылок и сохранений.
type journal struct {
	entries []string
}

func (j *journal) record(entry string) {
	j.entries = append(j.entries, entry)
}

type fakeChatRepo struct {
	journal    *journal
	messages   []*domain.ChatMessage
	clock      time.Time
	failCreate error
}

func newFakeChatRepo(j *journal) *fakeChatRepo {
	return &fakeChatRepo{journal: j, clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, input *domain.ChatMessageInput) (*domain.ChatMessage, error) {
	if r.journal != nil {
		r.journal.record("persist:" + input.SenderID)
	}
	if r.failCreate != nil {
		return nil, r.failCreate
	}

	r.clock = r.clock.Add(time.Second)
	message := &domain.ChatMessage{
		ID:             uuid.New(),
		ConversationID: input.ConversationID,
		SenderID:       input.SenderID,
		ReceiverID:     input.ReceiverID,
		Body:           input.Body,
		ImageURL:       input.ImageURL,
		OriginIP:       input.OriginIP,
		CreatedAt:      r.clock,
	}
	r.messages = append(r.messages, message)
	return message, nil
}

func (r *fakeChatRepo) ListByConversation(ctx context.Context, conversationID string) ([]*domain.ChatMessage, error) {
	var result []*domain.ChatMessage
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeChatRepo) ListAllDesc(ctx context.Context) ([]*domain.ChatMessage, error) {
	result := make([]*domain.ChatMessage, len(r.messages))
	copy(result, r.messages)
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *fakeChatRepo) MarkRead(ctx context.Context, matcher domain.ReadMatcher) (int64, error) {
	var affected int64
	for _, m := range r.messages {
		byConversation := matcher.ConversationID != "" && m.ConversationID == matcher.ConversationID
		byPair := (m.SenderID == matcher.ParticipantA && m.ReceiverID == matcher.ParticipantB) ||
			(m.SenderID == matcher.ParticipantB && m.ReceiverID == matcher.ParticipantA)
		if byConversation || byPair {
			m.IsRead = true
			affected++
		}
	}
	return affected, nil
}

type fakeNotificationRepo struct {
	notifications []*domain.Notification
	failCreate    error
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) ListUnseen(ctx context.Context) ([]*domain.Notification, error) {
	var result []*domain.Notification
	for _, n := range r.notifications {
		if !n.Seen {
			result = append(result, n)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) MarkSeen(ctx context.Context, id uuid.UUID) error {
	for _, n := range r.notifications {
		if n.ID == id {
			n.Seen = true
			return nil
		}
	}
	return apperrors.ErrNotificationNotFound
}

type fakeRelay struct {
	journal *journal
	events  []*domain.ChatEvent
}

func (f *fakeRelay) Broadcast(event *domain.ChatEvent) {
	if f.journal != nil {
		f.journal.record("broadcast:" + event.SenderID)
	}
	f.events = append(f.events, event)
}

func str(s string) *string { return &s }

func newTestChatService(j *journal) (ChatService, *fakeChatRepo, *fakeNotificationRepo, *fakeRelay) {
	chatRepo := newFakeChatRepo(j)
	notifRepo := &fakeNotificationRepo{}
	broadcaster := &fakeRelay{journal: j}
	svc := NewChatService(chatRepo, notifRepo, NewResponder(domain.DefaultCannedQA()), broadcaster, "admin", logger.New("error"))
	return svc, chatRepo, notifRepo, broadcaster
}

func TestSendMessagePersistsAndBroadcasts(t *testing.T) {
	svc, _, notifRepo, broadcaster := newTestChatService(nil)

	message, reply, err := svc.SendMessage(context.Background(), &domain.ChatMessageInput{
		ConversationID: "c1",
		SenderID:       "u1",
		ReceiverID:     "admin",
		Body:           str("hi, I need a quote"),
		OriginIP:       "203.0.113.5",
	})
	require.NoError(t, err)
	require.NotNil(t, message)
	assert.Nil(t, reply)

	assert.NotEqual(t, uuid.Nil, message.ID)
	assert.False(t, message.CreatedAt.IsZero())
	assert.False(t, message.IsRead)
	assert.Equal(t, "203.0.113.5", message.OriginIP)

	// Последующее чтение диалога содержит сообщение
	history, err := svc.History(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, message.ID, history[0].ID)

	require.Len(t, broadcaster.events, 1)
	assert.Equal(t, domain.EventBroadcast, broadcaster.events[0].Type)
	assert.Equal(t, "hi, I need a quote", broadcaster.events[0].Body)

	// Входящее сообщение пользователя создает запись для оператора
	require.Len(t, notifRepo.notifications, 1)
	assert.Equal(t, "c1", notifRepo.notifications[0].ConversationID)
	assert.Equal(t, message.ID, notifRepo.notifications[0].MessageID)
}

func TestSendMessageNormalizesIPv6Origin(t *testing.T) {
	svc, _, _, _ := newTestChatService(nil)

	message, _, err := svc.SendMessage(context.Background(), &domain.ChatMessageInput{
		SenderID: "u1",
		Body:     str("hello"),
		OriginIP: "2001:db8::1",
	})
	require.NoError(t, err)
	assert.NotContains(t, message.OriginIP, ":")
	assert.Regexp(t, `^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`, message.OriginIP)
}

func TestSendMessageRejectsEmptyPayload(t *testing.T) {
	svc, _, _, _ := newTestChatService(nil)

	_, _, err := svc.SendMessage(context.Background(), &domain.ChatMessageInput{SenderID: "u1"})
	assert.ErrorIs(t, err, apperrors.ErrEmptyMessage)
}

func TestSendMessageDefaultsConversationAndReceiver(t *testing.T) {
	svc, _, _, _ := newTestChatService(nil)

	message, _, err := svc.SendMessage(context.Background(), &domain.ChatMessageInput{
		SenderID: "u7",
		Body:     str("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "u7", message.ConversationID)
	assert.Equal(t, "admin", message.ReceiverID)
}

func TestSendMessageCannedReplyScenario(t *testing.T) {
	j := &journal{}
	svc, chatRepo, _, broadcaster := newTestChatService(j)

	message, reply, err := svc.SendMessage(context.Background(), &domain.ChatMessageInput{
		ConversationID: "c1",
		SenderID:       "u1",
		ReceiverID:     "admin",
		Body:           str("What types of sarees do you offer?"),
	})
	require.NoError(t, err)
	require.NotNil(t, reply)

	// Ответ атрибутирован оператору и адресован автору вопроса
	assert.Equal(t, "admin", reply.SenderID)
	assert.Equal(t, "u1", reply.ReceiverID)
	assert.Equal(t, "c1", reply.ConversationID)
	require.NotNil(t, reply.Body)
	assert.Contains(t, *reply.Body, "We offer a wide range of sarees")

	// Оба сообщения сохранены
	assert.Len(t, chatRepo.messages, 2)
	assert.True(t, reply.CreatedAt.After(message.CreatedAt))

	// Слушатели видят вопрос раньше ответа; ответ уходит только после
	// сохранения вопроса
	require.Len(t, broadcaster.events, 2)
	assert.Equal(t, "u1", broadcaster.events[0].SenderID)
	assert.Equal(t, "admin", broadcaster.events[1].SenderID)
	assert.Equal(t, []string{"broadcast:u1", "persist:u1", "broadcast:admin", "persist:admin"}, j.entries)
}

func TestSendMessageCannedReplySkippedWhenPersistFails(t *testing.T) {
	j := &journal{}
	svc, chatRepo, _, broadcaster := newTestChatService(j)
	chatRepo.failCreate = errors.New("connection refused")

	_, reply, err := svc.SendMessage(context.Background(), &domain.ChatMessageInput{
		SenderID: "u1",
		Body:     str("What types of sarees do you offer?"),
	})
	require.Error(t, err)
	assert.Nil(t, reply)

	// Вопрос уже разослан, но ответ после сбоя хранения не уходит
	require.Len(t, broadcaster.events, 1)
	assert.Equal(t, []string{"broadcast:u1", "persist:u1"}, j.entries)
}

func TestMarkReadClearsWholeThreadIdempotently(t *testing.T) {
	svc, chatRepo, _, _ := newTestChatService(nil)
	ctx := context.Background()

	_, _, err := svc.SendMessage(ctx, &domain.ChatMessageInput{ConversationID: "c1", SenderID: "u1", ReceiverID: "admin", Body: str("one")})
	require.NoError(t, err)
	_, _, err = svc.SendMessage(ctx, &domain.ChatMessageInput{ConversationID: "c1", SenderID: "admin", ReceiverID: "u1", Body: str("two")})
	require.NoError(t, err)
	_, _, err = svc.SendMessage(ctx, &domain.ChatMessageInput{ConversationID: "c2", SenderID: "u2", ReceiverID: "admin", Body: str("other thread")})
	require.NoError(t, err)

	affected, err := svc.MarkRead(ctx, domain.ReadMatcher{ConversationID: "c1", ParticipantA: "u1", ParticipantB: "admin"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, affected)

	// Обе стороны треда прочитаны, чужой тред не тронут
	for _, m := range chatRepo.messages {
		if m.ConversationID == "c1" {
			assert.True(t, m.IsRead)
		} else {
			assert.False(t, m.IsRead)
		}
	}

	// Повторный вызов помечает то же множество строк
	again, err := svc.MarkRead(ctx, domain.ReadMatcher{ConversationID: "c1", ParticipantA: "u1", ParticipantB: "admin"})
	require.NoError(t, err)
	assert.LessOrEqual(t, again, affected)
}

func TestMarkReadRejectsEmptyMatcher(t *testing.T) {
	svc, _, _, _ := newTestChatService(nil)

	_, err := svc.MarkRead(context.Background(), domain.ReadMatcher{})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestInboxOrdersByMostRecentActivity(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	messages := []*domain.ChatMessage{
		{ID: uuid.New(), ConversationID: "A", CreatedAt: base.Add(1 * time.Minute)},
		{ID: uuid.New(), ConversationID: "A", CreatedAt: base.Add(3 * time.Minute)},
		{ID: uuid.New(), ConversationID: "B", CreatedAt: base.Add(2 * time.Minute)},
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].CreatedAt.After(messages[j].CreatedAt) })

	summaries := BuildInbox(messages)

	require.Len(t, summaries, 2)
	assert.Equal(t, "A", summaries[0].ConversationID)
	assert.Equal(t, base.Add(3*time.Minute), summaries[0].LastMessage.CreatedAt)
	assert.Equal(t, "B", summaries[1].ConversationID)
	assert.Equal(t, base.Add(2*time.Minute), summaries[1].LastMessage.CreatedAt)
}

func TestInboxCountsUnread(t *testing.T) {
	svc, chatRepo, _, _ := newTestChatService(nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := svc.SendMessage(ctx, &domain.ChatMessageInput{ConversationID: "A", SenderID: "u1", Body: str("msg")})
		require.NoError(t, err)
	}
	chatRepo.messages[0].IsRead = true

	summaries, err := svc.Inbox(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].UnreadCount)
	assert.Equal(t, chatRepo.messages[2].ID, summaries[0].LastMessage.ID)
}

func TestNotificationLifecycle(t *testing.T) {
	svc, _, notifRepo, _ := newTestChatService(nil)
	ctx := context.Background()

	_, _, err := svc.SendMessage(ctx, &domain.ChatMessageInput{ConversationID: "c1", SenderID: "u1", Body: str("hello")})
	require.NoError(t, err)

	unseen, err := svc.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, unseen, 1)

	require.NoError(t, svc.MarkNotificationSeen(ctx, unseen[0].ID))

	unseen, err = svc.Notifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, unseen)

	assert.ErrorIs(t, svc.MarkNotificationSeen(ctx, uuid.New()), apperrors.ErrNotificationNotFound)

	// Сообщения оператора записей не создают
	_, _, err = svc.SendMessage(ctx, &domain.ChatMessageInput{ConversationID: "c1", SenderID: "admin", ReceiverID: "u1", Body: str("reply")})
	require.NoError(t, err)
	assert.Len(t, notifRepo.notifications, 1)
}

func TestAdminMessagesDoNotNotify(t *testing.T) {
	svc, _, notifRepo, _ := newTestChatService(nil)

	_, _, err := svc.SendMessage(context.Background(), &domain.ChatMessageInput{
		ConversationID: "c1",
		SenderID:       "admin",
		ReceiverID:     "u1",
		Body:           str("how can we help?"),
	})
	require.NoError(t, err)
	assert.Empty(t, notifRepo.notifications)
}
