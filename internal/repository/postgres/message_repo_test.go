package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/repository"
	"github.com/dom/mama-respira/internal/repository/postgres"
	"github.com/dom/mama-respira/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewMessageRepository(testDB.DB)
	ctx := context.Background()

	// m1 and m2 share a timestamp, insertion order must break the tie
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	msgs := []*domain.DirectMessage{
		{ID: "m1", SenderID: "client", ReceiverID: "coach", Content: "hola", CreatedAt: at},
		{ID: "m2", SenderID: "coach", ReceiverID: "client", Content: "hola!", CreatedAt: at},
		{ID: "m3", SenderID: "other", ReceiverID: "coach", Content: "buenas", CreatedAt: at.Add(time.Minute)},
		{ID: "m4", SenderID: "client", ReceiverID: "coach", Content: "gracias", CreatedAt: at.Add(2 * time.Minute)},
	}
	for _, m := range msgs {
		require.NoError(t, repo.Create(ctx, m))
	}

	t.Run("thread oldest first", func(t *testing.T) {
		got, err := repo.ListBetween(ctx, "coach", "client", 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "m1", got[0].ID)
		assert.Equal(t, "m2", got[1].ID)
		assert.Equal(t, "m4", got[2].ID)
	})

	t.Run("limit keeps oldest", func(t *testing.T) {
		got, err := repo.ListBetween(ctx, "client", "coach", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "m1", got[0].ID)
		assert.Equal(t, "m2", got[1].ID)
	})

	t.Run("latest", func(t *testing.T) {
		got, err := repo.LatestBetween(ctx, "coach", "other")
		require.NoError(t, err)
		assert.Equal(t, "m3", got.ID)

		_, err = repo.LatestBetween(ctx, "client", "other")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("read acknowledgement", func(t *testing.T) {
		n, err := repo.CountUnread(ctx, "coach")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = repo.CountUnreadFrom(ctx, "client", "coach")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		changed, err := repo.MarkRead(ctx, "client", "coach")
		require.NoError(t, err)
		assert.Equal(t, int64(2), changed)

		changed, err = repo.MarkRead(ctx, "client", "coach")
		require.NoError(t, err)
		assert.Zero(t, changed)

		n, err = repo.CountUnread(ctx, "coach")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
