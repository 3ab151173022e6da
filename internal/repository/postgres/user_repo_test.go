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

func newUser(id, email string, role domain.Role) *domain.User {
	return &domain.User{
		UserID:       id,
		Email:        email,
		Name:         "Test " + id,
		PasswordHash: "hashedpassword",
		Role:         role,
		CreatedAt:    time.Now(),
	}
}

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{
			name: "successful creation",
			user: newUser("user_000000000001", "ana@example.com", domain.RoleUser),
		},
		{
			name:    "duplicate email",
			user:    newUser("user_000000000002", "ana@example.com", domain.RoleUser),
			wantErr: repository.ErrDuplicate,
		},
		{
			name: "first coach",
			user: newUser("user_000000000003", "coach@example.com", domain.RoleCoach),
		},
		{
			name:    "second coach",
			user:    newUser("user_000000000004", "coach2@example.com", domain.RoleCoach),
			wantErr: repository.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserRepository_Queries(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	users := []*domain.User{
		newUser("user_aaaaaaaaaaaa", "a@example.com", domain.RoleUser),
		newUser("user_cccccccccccc", "c@example.com", domain.RoleCoach),
		newUser("user_pppppppppppp", "p@example.com", domain.RolePremium),
	}
	for i, u := range users {
		u.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, u))
	}

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "user_aaaaaaaaaaaa")
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", got.Email)

		_, err = repo.GetByID(ctx, "user_missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("get by email is exact", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "p@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.RolePremium, got.Role)

		_, err = repo.GetByEmail(ctx, "P@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("coach", func(t *testing.T) {
		got, err := repo.GetCoach(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user_cccccccccccc", got.UserID)
	})

	t.Run("clients oldest first", func(t *testing.T) {
		got, err := repo.ListByRoles(ctx, domain.ClientRoles...)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "user_aaaaaaaaaaaa", got[0].UserID)
		assert.Equal(t, "user_pppppppppppp", got[1].UserID)
	})

	t.Run("update role", func(t *testing.T) {
		require.NoError(t, repo.UpdateRole(ctx, "user_aaaaaaaaaaaa", domain.RolePremium))
		// unchanged value still matches the row
		require.NoError(t, repo.UpdateRole(ctx, "user_aaaaaaaaaaaa", domain.RolePremium))

		got, err := repo.GetByID(ctx, "user_aaaaaaaaaaaa")
		require.NoError(t, err)
		assert.Equal(t, domain.RolePremium, got.Role)

		assert.ErrorIs(t, repo.UpdateRole(ctx, "user_missing", domain.RoleUser), repository.ErrNotFound)
		assert.ErrorIs(t, repo.UpdateRole(ctx, "user_aaaaaaaaaaaa", domain.RoleCoach), repository.ErrDuplicate)
	})
}
