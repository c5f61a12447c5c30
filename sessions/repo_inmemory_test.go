package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/lintangjaya/go-storefront/captcha"
	"github.com/lintangjaya/go-storefront/sessions"
	"github.com/lintangjaya/go-storefront/users"
	"github.com/stretchr/testify/require"
)

func testSession(id string) sessions.Session {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return sessions.Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
}

func TestInMemoryRepoRoundtrip(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	ctx := context.Background()

	sess := testSession("sess-1")
	sess.User = &sessions.User{ID: "user-1", Email: "john@example.com", Role: users.RoleCustomer}
	require.NoError(t, repo.Upsert(ctx, sess))

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, sess, got)
}

func TestInMemoryRepoGetUnknown(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, sessions.ErrNotFound)
}

func TestInMemoryRepoUpsertOverwrites(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	ctx := context.Background()

	sess := testSession("sess-1")
	require.NoError(t, repo.Upsert(ctx, sess))

	sess.User = &sessions.User{ID: "user-1"}
	require.NoError(t, repo.Upsert(ctx, sess))

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got.User)
	require.Equal(t, "user-1", got.User.ID)
}

func TestInMemoryRepoStoresCopies(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	ctx := context.Background()

	sess := testSession("sess-1")
	sess.Captcha = &captcha.Challenge{Text: "AB3X9K", ExpiresAt: sess.ExpiresAt}
	require.NoError(t, repo.Upsert(ctx, sess))

	// Mutating the caller's copy must not leak into the store.
	sess.Captcha.Text = "MUTATE"

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "AB3X9K", got.Captcha.Text)

	// Nor must mutating a returned copy.
	got.Captcha.Text = "MUTATE"
	again, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "AB3X9K", again.Captcha.Text)
}

func TestInMemoryRepoDelete(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testSession("sess-1")))
	require.NoError(t, repo.Delete(ctx, "sess-1"))

	_, err := repo.Get(ctx, "sess-1")
	require.ErrorIs(t, err, sessions.ErrNotFound)

	// Deleting an absent session is not an error.
	require.NoError(t, repo.Delete(ctx, "sess-1"))
}

func TestInMemoryRepoRequiresID(t *testing.T) {
	repo := sessions.NewInMemoryRepo()
	ctx := context.Background()

	require.Error(t, repo.Upsert(ctx, sessions.Session{}))
	_, err := repo.Get(ctx, "")
	require.Error(t, err)
	require.Error(t, repo.Delete(ctx, ""))
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sess := testSession("sess-1")
	require.False(t, sess.Expired(now))
	require.True(t, sess.Expired(now.Add(25*time.Hour)))

	// A zero expiry never lapses.
	sess.ExpiresAt = time.Time{}
	require.False(t, sess.Expired(now))
}
