package postgres

import (
	"context"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
	"gorm.io/gorm"
)

type bitacoraRepository struct {
	db *gorm.DB
}

func NewBitacoraRepository(db *gorm.DB) *bitacoraRepository {
	return &bitacoraRepository{db: db}
}

func (r *bitacoraRepository) Create(ctx context.Context, b *domain.Bitacora) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

// Update overwrites every column of the stored entry, zero values included.
func (r *bitacoraRepository) Update(ctx context.Context, b *domain.Bitacora) error {
	result := r.db.WithContext(ctx).Model(b).Select("*").Updates(b)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *bitacoraRepository) GetByID(ctx context.Context, id string) (*domain.Bitacora, error) {
	var b domain.Bitacora
	if err := r.db.WithContext(ctx).Take(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *bitacoraRepository) GetByUserAndDate(ctx context.Context, userID, date string) (*domain.Bitacora, error) {
	var b domain.Bitacora
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("created_at DESC").
		Take(&b).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *bitacoraRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Bitacora, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var list []*domain.Bitacora
	if err := query.Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (r *bitacoraRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Bitacora{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, translate(err)
}
