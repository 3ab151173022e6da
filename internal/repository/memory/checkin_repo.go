package memory

import (
	"context"
	"sort"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
)

type checkinRepository struct {
	s *store
}

func (r *checkinRepository) Create(ctx context.Context, c *domain.Checkin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.checkins {
		if existing.ID == c.ID {
			return repository.ErrDuplicate
		}
	}
	stored := *c
	r.s.checkins = append(r.s.checkins, &stored)
	return nil
}

func (r *checkinRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Checkin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*domain.Checkin, 0)
	for i := len(r.s.checkins) - 1; i >= 0; i-- {
		if r.s.checkins[i].UserID == userID {
			c := *r.s.checkins[i]
			list = append(list, &c)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
