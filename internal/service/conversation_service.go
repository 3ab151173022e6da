package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
)

type ConversationService struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
}

func NewConversationService(userRepo repository.UserRepository, messageRepo repository.MessageRepository) *ConversationService {
	return &ConversationService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
	}
}

// ListClientConversations summarizes the coach's thread with every client,
// most recent activity first. Clients without messages come last in
// directory order.
//
// Each client costs two store lookups; a per-user latest-message index
// would be needed once rosters grow large.
func (s *ConversationService) ListClientConversations(ctx context.Context, coach *domain.User) ([]*domain.Conversation, error) {
	clients, err := s.userRepo.ListByRoles(ctx, domain.ClientRoles...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	convs := make([]*domain.Conversation, 0, len(clients))
	for _, client := range clients {
		conv := &domain.Conversation{
			UserID:      client.UserID,
			UserName:    client.Name,
			UserEmail:   client.Email,
			UserPicture: client.Picture,
			UserRole:    client.Role,
		}

		last, err := s.messageRepo.LatestBetween(ctx, client.UserID, coach.UserID)
		switch {
		case err == nil:
			content, at := last.Content, last.CreatedAt
			conv.LastMessage = &content
			conv.LastMessageAt = &at
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("latest message for %s: %w", client.UserID, err)
		}

		conv.UnreadCount, err = s.messageRepo.CountUnreadFrom(ctx, client.UserID, coach.UserID)
		if err != nil {
			return nil, fmt.Errorf("unread count for %s: %w", client.UserID, err)
		}

		convs = append(convs, conv)
	}

	sort.SliceStable(convs, func(i, j int) bool {
		return lastActivity(convs[i]).After(lastActivity(convs[j]))
	})
	return convs, nil
}

func lastActivity(c *domain.Conversation) time.Time {
	if c.LastMessageAt == nil {
		return time.Time{}
	}
	return *c.LastMessageAt
}
