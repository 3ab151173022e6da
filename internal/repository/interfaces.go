package repository

import (
	"context"
	"errors"

	"github.com/dom/mama-respira/internal/domain"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetCoach returns the account holding the coach role.
	GetCoach(ctx context.Context) (*domain.User, error)
	// ListByRoles returns users with any of roles, oldest account first.
	ListByRoles(ctx context.Context, roles ...domain.Role) ([]*domain.User, error)
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.DirectMessage) error
	// ListBetween returns the first limit messages exchanged by a and b,
	// oldest first.
	ListBetween(ctx context.Context, a, b string, limit int) ([]*domain.DirectMessage, error)
	// LatestBetween returns the newest message exchanged by a and b.
	LatestBetween(ctx context.Context, a, b string) (*domain.DirectMessage, error)
	// MarkRead flags unread messages from sender to receiver as read and
	// returns how many changed.
	MarkRead(ctx context.Context, senderID, receiverID string) (int64, error)
	CountUnread(ctx context.Context, receiverID string) (int64, error)
	CountUnreadFrom(ctx context.Context, senderID, receiverID string) (int64, error)
}

type BitacoraRepository interface {
	Create(ctx context.Context, b *domain.Bitacora) error
	Update(ctx context.Context, b *domain.Bitacora) error
	GetByID(ctx context.Context, id string) (*domain.Bitacora, error)
	GetByUserAndDate(ctx context.Context, userID, date string) (*domain.Bitacora, error)
	// ListByUser returns the newest entries first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Bitacora, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type CheckinRepository interface {
	Create(ctx context.Context, c *domain.Checkin) error
	// ListByUser returns the newest entries first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Checkin, error)
}

type Repositories struct {
	User     UserRepository
	Message  MessageRepository
	Bitacora BitacoraRepository
	Checkin  CheckinRepository
}
