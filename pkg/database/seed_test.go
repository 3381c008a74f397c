package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"handyhub/internal/domain/user"
	"handyhub/internal/repository"
	"handyhub/internal/repository/repotest"
)

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(repotest.Open(t))
	cfg := DefaultSeedConfig()
	cfg.Password = "secret"

	first, err := Seed(ctx, store, cfg)
	require.NoError(t, err)
	require.Len(t, first.Users, 4)
	require.Equal(t, 6, first.Messages)

	second, err := Seed(ctx, store, cfg)
	require.NoError(t, err)
	require.Zero(t, second.Messages)
	for i := range first.Users {
		require.Equal(t, first.Users[i].ID, second.Users[i].ID)
	}

	require.Equal(t, user.RoleProvider, first.Users[2].Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(first.Users[0].PasswordHash), []byte("secret")))
}

func TestSeedReadState(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(repotest.Open(t))

	res, err := Seed(ctx, store, &SeedConfig{
		Password:     "secret",
		Customers:    []string{"Alice Customer"},
		Providers:    []string{"Pat Plumber"},
		WithMessages: true,
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.Messages)
	alice, pat := res.Users[0], res.Users[1]
	require.Equal(t, "alice.customer@handyhub.dev", alice.Email)

	unreadByPat, err := store.Messages().CountUnread(ctx, alice.ID, pat.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), unreadByPat)

	unreadByAlice, err := store.Messages().CountUnread(ctx, pat.ID, alice.ID)
	require.NoError(t, err)
	require.Zero(t, unreadByAlice)

	row, err := store.Conversations().Get(ctx, alice.ID, pat.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), row.UnreadFor(pat.ID))
	require.Zero(t, row.UnreadFor(alice.ID))
}

func TestSeedWithoutMessages(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(repotest.Open(t))

	cfg := DefaultSeedConfig()
	cfg.WithMessages = false
	res, err := Seed(ctx, store, cfg)
	require.NoError(t, err)
	require.Len(t, res.Users, 4)
	require.Zero(t, res.Messages)
}
