// Package memory keeps every collection in process memory. It backs the
// test suite and STORE_DRIVER=memory for local runs.
package memory

import (
	"sync"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
)

type store struct {
	mu        sync.RWMutex
	users     []*userRecord
	messages  []*messageRecord
	bitacoras []*bitacoraRecord
	checkins  []*domain.Checkin
}

// NewRepositories returns repositories sharing one in-memory store.
func NewRepositories() *repository.Repositories {
	s := &store{}
	return &repository.Repositories{
		User:     &userRepository{s: s},
		Message:  &messageRepository{s: s},
		Bitacora: &bitacoraRepository{s: s},
		Checkin:  &checkinRepository{s: s},
	}
}
