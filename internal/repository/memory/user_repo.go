package memory

import (
	"context"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
)

type userRecord struct {
	user domain.User
}

type userRepository struct {
	s *store
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rec := range r.s.users {
		if rec.user.UserID == user.UserID || rec.user.Email == user.Email {
			return repository.ErrDuplicate
		}
		if user.Role == domain.RoleCoach && rec.user.Role == domain.RoleCoach {
			return repository.ErrDuplicate
		}
	}

	r.s.users = append(r.s.users, &userRecord{user: *user})
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.UserID == userID })
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *userRepository) GetCoach(ctx context.Context) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Role == domain.RoleCoach })
}

func (r *userRepository) ListByRoles(ctx context.Context, roles ...domain.Role) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]*domain.User, 0)
	for _, rec := range r.s.users {
		if rec.user.Role.In(roles...) {
			u := rec.user
			users = append(users, &u)
		}
	}
	return users, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var target *userRecord
	for _, rec := range r.s.users {
		if rec.user.UserID == userID {
			target = rec
		} else if role == domain.RoleCoach && rec.user.Role == domain.RoleCoach {
			return repository.ErrDuplicate
		}
	}
	if target == nil {
		return repository.ErrNotFound
	}

	target.user.Role = role
	return nil
}

func (r *userRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.users {
		if match(&rec.user) {
			u := rec.user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}
