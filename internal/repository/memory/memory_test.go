package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
	"github.com/dom/mama-respira/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newUser(id, email string, role domain.Role) *domain.User {
	return &domain.User{
		UserID:       id,
		Email:        email,
		Name:         id,
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    time.Now(),
	}
}

func TestUserRepository_Create(t *testing.T) {
	repos := memory.NewRepositories()
	ctx := context.Background()

	require.NoError(t, repos.User.Create(ctx, newUser("user_a", "a@x.com", domain.RoleUser)))
	require.NoError(t, repos.User.Create(ctx, newUser("user_c", "coach@x.com", domain.RoleCoach)))

	tests := []struct {
		name string
		user *domain.User
	}{
		{"duplicate email", newUser("user_b", "a@x.com", domain.RoleUser)},
		{"duplicate id", newUser("user_a", "other@x.com", domain.RoleUser)},
		{"second coach", newUser("user_d", "d@x.com", domain.RoleCoach)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repos.User.Create(ctx, tt.user)
			assert.ErrorIs(t, err, repository.ErrDuplicate)
		})
	}
}

func TestUserRepository_Lookups(t *testing.T) {
	repos := memory.NewRepositories()
	ctx := context.Background()

	_, err := repos.User.GetCoach(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repos.User.Create(ctx, newUser("user_a", "a@x.com", domain.RoleUser)))
	require.NoError(t, repos.User.Create(ctx, newUser("user_c", "coach@x.com", domain.RoleCoach)))
	require.NoError(t, repos.User.Create(ctx, newUser("user_p", "p@x.com", domain.RolePremium)))

	u, err := repos.User.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "user_a", u.UserID)

	_, err = repos.User.GetByEmail(ctx, "A@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	coach, err := repos.User.GetCoach(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user_c", coach.UserID)

	clients, err := repos.User.ListByRoles(ctx, domain.ClientRoles...)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "user_a", clients[0].UserID)
	assert.Equal(t, "user_p", clients[1].UserID)

	// returned values are copies
	u.Role = domain.RoleCoach
	again, err := repos.User.GetByID(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, again.Role)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	repos := memory.NewRepositories()
	ctx := context.Background()
	require.NoError(t, repos.User.Create(ctx, newUser("user_a", "a@x.com", domain.RoleUser)))
	require.NoError(t, repos.User.Create(ctx, newUser("user_c", "coach@x.com", domain.RoleCoach)))

	require.NoError(t, repos.User.UpdateRole(ctx, "user_a", domain.RolePremium))
	u, err := repos.User.GetByID(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, domain.RolePremium, u.Role)

	assert.ErrorIs(t, repos.User.UpdateRole(ctx, "missing", domain.RoleUser), repository.ErrNotFound)
	assert.ErrorIs(t, repos.User.UpdateRole(ctx, "user_a", domain.RoleCoach), repository.ErrDuplicate)
}

func TestMessageRepository_Thread(t *testing.T) {
	repos := memory.NewRepositories()
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	msgs := []*domain.DirectMessage{
		{ID: "m1", SenderID: "a", ReceiverID: "c", Content: "1", CreatedAt: at},
		{ID: "m2", SenderID: "c", ReceiverID: "a", Content: "2", CreatedAt: at},
		{ID: "m3", SenderID: "b", ReceiverID: "c", Content: "x", CreatedAt: at.Add(time.Minute)},
		{ID: "m4", SenderID: "a", ReceiverID: "c", Content: "3", CreatedAt: at.Add(2 * time.Minute)},
	}
	for _, m := range msgs {
		require.NoError(t, repos.Message.Create(ctx, m))
	}
	assert.ErrorIs(t, repos.Message.Create(ctx, &domain.DirectMessage{ID: "m1"}), repository.ErrDuplicate)

	thread, err := repos.Message.ListBetween(ctx, "c", "a", 0)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, []string{"m1", "m2", "m4"}, []string{thread[0].ID, thread[1].ID, thread[2].ID})

	first, err := repos.Message.ListBetween(ctx, "a", "c", 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "m1", first[0].ID)
	assert.Equal(t, "m2", first[1].ID)

	latest, err := repos.Message.LatestBetween(ctx, "a", "c")
	require.NoError(t, err)
	assert.Equal(t, "m4", latest.ID)

	_, err = repos.Message.LatestBetween(ctx, "a", "b")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMessageRepository_ReadFlags(t *testing.T) {
	repos := memory.NewRepositories()
	ctx := context.Background()
	now := time.Now()

	for i, m := range []struct{ from, to string }{{"a", "c"}, {"a", "c"}, {"b", "c"}, {"c", "a"}} {
		require.NoError(t, repos.Message.Create(ctx, &domain.DirectMessage{
			ID: string(rune('1' + i)), SenderID: m.from, ReceiverID: m.to, Content: "hi", CreatedAt: now,
		}))
	}

	n, err := repos.Message.CountUnread(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repos.Message.CountUnreadFrom(ctx, "a", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	changed, err := repos.Message.MarkRead(ctx, "a", "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	changed, err = repos.Message.MarkRead(ctx, "a", "c")
	require.NoError(t, err)
	assert.Zero(t, changed)

	n, err = repos.Message.CountUnread(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repos.Message.CountUnread(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestBitacoraRepository(t *testing.T) {
	repos := memory.NewRepositories()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	lay := "13:00"

	for i, date := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		require.NoError(t, repos.Bitacora.Create(ctx, &domain.Bitacora{
			ID:        "b" + date,
			UserID:    "user_a",
			DayNumber: i + 1,
			Date:      date,
			Naps:      datatypes.NewJSONSlice([]domain.NapEntry{{LaidDownTime: &lay}}),
			CreatedAt: at.Add(time.Duration(i) * time.Hour),
		}))
	}

	n, err := repos.Bitacora.CountByUser(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	list, err := repos.Bitacora.ListByUser(ctx, "user_a", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-03-03", list[0].Date)
	assert.Equal(t, "2026-03-02", list[1].Date)

	b, err := repos.Bitacora.GetByUserAndDate(ctx, "user_a", "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, 2, b.DayNumber)

	notes := "good day"
	b.Notes = &notes
	b.Naps[0] = domain.NapEntry{}
	got, err := repos.Bitacora.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Notes)
	assert.True(t, got.Naps[0].Recorded(), "stored naps must not alias caller slices")

	require.NoError(t, repos.Bitacora.Update(ctx, b))
	got, err = repos.Bitacora.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Notes)
	assert.Equal(t, "good day", *got.Notes)

	assert.ErrorIs(t, repos.Bitacora.Update(ctx, &domain.Bitacora{ID: "missing"}), repository.ErrNotFound)
	_, err = repos.Bitacora.GetByUserAndDate(ctx, "user_b", "2026-03-02")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCheckinRepository(t *testing.T) {
	repos := memory.NewRepositories()
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, mood := range []domain.Mood{domain.MoodLow, domain.MoodNeutral, domain.MoodGood} {
		require.NoError(t, repos.Checkin.Create(ctx, &domain.Checkin{
			ID:        fmt.Sprintf("chk_%d", i),
			UserID:    "user_a",
			Mood:      mood,
			CreatedAt: at.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repos.Checkin.Create(ctx, &domain.Checkin{ID: "chk_other", UserID: "user_b", Mood: domain.MoodGood, CreatedAt: at}))
	assert.ErrorIs(t, repos.Checkin.Create(ctx, &domain.Checkin{ID: "chk_0"}), repository.ErrDuplicate)

	list, err := repos.Checkin.ListByUser(ctx, "user_a", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "chk_2", list[0].ID)
	assert.Equal(t, "chk_1", list[1].ID)

	list[0].Mood = domain.MoodLow
	again, err := repos.Checkin.ListByUser(ctx, "user_a", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.MoodGood, again[0].Mood, "listed entries must be copies")

	none, err := repos.Checkin.ListByUser(ctx, "user_c", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
