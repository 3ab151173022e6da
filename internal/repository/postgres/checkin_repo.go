package postgres

import (
	"context"

	"github.com/dom/mama-respira/internal/domain"
	"gorm.io/gorm"
)

type checkinRepository struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) *checkinRepository {
	return &checkinRepository{db: db}
}

func (r *checkinRepository) Create(ctx context.Context, c *domain.Checkin) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *checkinRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Checkin, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var list []*domain.Checkin
	if err := query.Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}
