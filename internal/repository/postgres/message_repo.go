package postgres

import (
	"context"

	"github.com/dom/mama-respira/internal/domain"
	"gorm.io/gorm"
)

const threadClause = "(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)"

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *messageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.DirectMessage) error {
	return translate(r.db.WithContext(ctx).Create(msg).Error)
}

func (r *messageRepository) ListBetween(ctx context.Context, a, b string, limit int) ([]*domain.DirectMessage, error) {
	query := r.db.WithContext(ctx).
		Where(threadClause, a, b, b, a).
		Order("created_at ASC, seq ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var msgs []*domain.DirectMessage
	if err := query.Find(&msgs).Error; err != nil {
		return nil, translate(err)
	}
	return msgs, nil
}

func (r *messageRepository) LatestBetween(ctx context.Context, a, b string) (*domain.DirectMessage, error) {
	var msg domain.DirectMessage
	err := r.db.WithContext(ctx).
		Where(threadClause, a, b, b, a).
		Order("created_at DESC, seq DESC").
		Take(&msg).Error
	if err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, senderID, receiverID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.DirectMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", senderID, receiverID, false).
		Update("read", true)
	return result.RowsAffected, translate(result.Error)
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.DirectMessage{}).
		Where("receiver_id = ? AND read = ?", receiverID, false).
		Count(&n).Error
	return n, translate(err)
}

func (r *messageRepository) CountUnreadFrom(ctx context.Context, senderID, receiverID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.DirectMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", senderID, receiverID, false).
		Count(&n).Error
	return n, translate(err)
}
