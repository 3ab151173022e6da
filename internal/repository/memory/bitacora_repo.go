package memory

import (
	"context"
	"sort"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
)

type bitacoraRecord struct {
	b domain.Bitacora
}

type bitacoraRepository struct {
	s *store
}

func (r *bitacoraRepository) Create(ctx context.Context, b *domain.Bitacora) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rec := range r.s.bitacoras {
		if rec.b.ID == b.ID {
			return repository.ErrDuplicate
		}
	}
	r.s.bitacoras = append(r.s.bitacoras, &bitacoraRecord{b: cloneBitacora(b)})
	return nil
}

func (r *bitacoraRepository) Update(ctx context.Context, b *domain.Bitacora) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rec := range r.s.bitacoras {
		if rec.b.ID == b.ID {
			rec.b = cloneBitacora(b)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *bitacoraRepository) GetByID(ctx context.Context, id string) (*domain.Bitacora, error) {
	return r.find(func(b *domain.Bitacora) bool { return b.ID == id })
}

func (r *bitacoraRepository) GetByUserAndDate(ctx context.Context, userID, date string) (*domain.Bitacora, error) {
	return r.find(func(b *domain.Bitacora) bool { return b.UserID == userID && b.Date == date })
}

func (r *bitacoraRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Bitacora, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*domain.Bitacora, 0)
	for i := len(r.s.bitacoras) - 1; i >= 0; i-- {
		if r.s.bitacoras[i].b.UserID == userID {
			b := cloneBitacora(&r.s.bitacoras[i].b)
			list = append(list, &b)
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

func (r *bitacoraRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, rec := range r.s.bitacoras {
		if rec.b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *bitacoraRepository) find(match func(*domain.Bitacora) bool) (*domain.Bitacora, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.bitacoras {
		if match(&rec.b) {
			b := cloneBitacora(&rec.b)
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func cloneBitacora(b *domain.Bitacora) domain.Bitacora {
	c := *b
	c.Naps = append(c.Naps[:0:0], b.Naps...)
	c.NightWakings = append(c.NightWakings[:0:0], b.NightWakings...)
	return c
}
