package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/metrics"
	"github.com/dom/mama-respira/internal/repository"
	"go.uber.org/zap"
)

const (
	MaxMessageLength        = 2000
	DefaultConversationSize = 50
	MaxConversationSize     = 200
)

// Notifier pushes realtime events to a user's open connections.
type Notifier interface {
	Notify(ctx context.Context, userID string, eventType domain.EventType, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, domain.EventType, any) {}

type MessageService struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	notifier    Notifier
	log         *zap.Logger
	now         func() time.Time
}

func NewMessageService(userRepo repository.UserRepository, messageRepo repository.MessageRepository, notifier Notifier, log *zap.Logger) *MessageService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
	}
}

// Send stores a direct message after checking who may talk to whom: the
// coach may write to any account, premium clients only to the coach.
func (s *MessageService) Send(ctx context.Context, sender *domain.User, receiverID, content string) (*domain.DirectMessage, error) {
	if err := s.checkPairing(ctx, sender, receiverID); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, domain.ErrMessageTooLong
	}

	msg := &domain.DirectMessage{
		ID:         NewMessageID(),
		SenderID:   sender.UserID,
		ReceiverID: receiverID,
		Content:    content,
		Read:       false,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	metrics.RecordMessageSent(sender.Role.String())
	s.notifier.Notify(ctx, receiverID, domain.EventDirectMessage, msg)
	return msg, nil
}

func (s *MessageService) checkPairing(ctx context.Context, sender *domain.User, receiverID string) error {
	if sender.IsCoach() {
		if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("get receiver: %w", err)
		}
		return nil
	}

	if sender.Role != domain.RolePremium {
		return domain.ErrPremiumToSend
	}

	coach, err := s.userRepo.GetCoach(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrReceiverMustBeCoach
		}
		return fmt.Errorf("get coach: %w", err)
	}
	if receiverID != coach.UserID {
		return domain.ErrReceiverMustBeCoach
	}
	return nil
}

// GetConversation returns the first limit messages between viewer and
// otherID, oldest first, then marks the counterpart's unread
// messages as read. The returned messages show the state before marking.
func (s *MessageService) GetConversation(ctx context.Context, viewer *domain.User, otherID string, limit int) ([]*domain.DirectMessage, error) {
	limit = ClampLimit(limit, DefaultConversationSize, MaxConversationSize)

	msgs, err := s.messageRepo.ListBetween(ctx, viewer.UserID, otherID, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}

	changed, err := s.messageRepo.MarkRead(ctx, otherID, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	if changed > 0 {
		s.notifier.Notify(ctx, otherID, domain.EventMessagesRead, domain.MessagesReadPayload{
			ReaderID: viewer.UserID,
			Count:    changed,
		})
	}

	return msgs, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// NewMessageID returns a random message identifier.
func NewMessageID() string {
	return "msg_" + newHexID()
}

// ClampLimit applies def to non-positive values and caps at maxLimit.
func ClampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
