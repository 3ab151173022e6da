package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dom/mama-respira/internal/auth"
	"github.com/dom/mama-respira/internal/completion"
	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
	"github.com/dom/mama-respira/internal/repository/memory"
	"github.com/dom/mama-respira/internal/service"
	"github.com/dom/mama-respira/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentEvent struct {
	UserID  string
	Type    domain.EventType
	Payload any
}

// recordingNotifier captures realtime events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) Notify(_ context.Context, userID string, eventType domain.EventType, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{UserID: userID, Type: eventType, Payload: payload})
}

func (n *recordingNotifier) Events() []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEvent(nil), n.events...)
}

type fixture struct {
	repos    *repository.Repositories
	tokens   *auth.TokenService
	services *service.Services
	notifier *recordingNotifier
}

func newFixture(t *testing.T, completer completion.Completer) *fixture {
	t.Helper()

	cfg := testutil.TestConfig()
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, time.Hour)
	require.NoError(t, err)

	repos := memory.NewRepositories()
	notifier := &recordingNotifier{}
	if completer == nil {
		completer = completion.Disabled{}
	}

	return &fixture{
		repos:    repos,
		tokens:   tokens,
		services: service.NewServices(repos, cfg, tokens, notifier, completer, zap.NewNop()),
		notifier: notifier,
	}
}

// register creates an account through the service and sets its role.
func (f *fixture) register(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()

	result, err := f.services.Auth.Register(context.Background(), service.RegisterInput{
		Email:    email,
		Password: "password123",
		Name:     "Test " + email,
	})
	require.NoError(t, err)

	user := result.User
	if role != user.Role {
		require.NoError(t, f.repos.User.UpdateRole(context.Background(), user.UserID, role))
		user.Role = role
	}
	return user
}
