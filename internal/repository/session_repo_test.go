package repository

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mikoro-portal/internal/models"
)

func TestSessionRepositoryLifecycle(t *testing.T) {
	store := NewMemoryKeyValueStore()
	repo := NewSessionRepository(store, "", zerolog.Nop())
	ctx := context.Background()

	session, err := repo.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, session)

	require.NoError(t, repo.SetSession(ctx, models.RoleStudent, "stu-001"))
	require.NoError(t, repo.SetSession(ctx, models.RoleTeacher, "t-001"))

	session, err = repo.GetSession(ctx)
	require.NoError(t, err)
	require.Equal(t, &models.Session{Role: models.RoleTeacher, UserID: "t-001"}, session)

	require.NoError(t, repo.ClearSession(ctx))
	session, err = repo.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestSessionRepositoryUnreadableSessionIsAbsent(t *testing.T) {
	store := NewMemoryKeyValueStore()
	repo := NewSessionRepository(store, "", zerolog.Nop())
	ctx := context.Background()

	for _, payload := range []string{"garbage", `{"role":"parent","userId":"x"}`, `{"role":"teacher"}`} {
		require.NoError(t, store.Set(ctx, DefaultSessionKey, []byte(payload)))
		session, err := repo.GetSession(ctx)
		require.NoError(t, err)
		require.Nil(t, session, payload)

		// The unreadable bytes are left in place.
		raw, found, err := store.Get(ctx, DefaultSessionKey)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, payload, string(raw))
	}
}

func TestSessionAndSnapshotUseSeparateKeys(t *testing.T) {
	store := NewMemoryKeyValueStore()
	sessions := NewSessionRepository(store, "", zerolog.Nop())
	snapshots := NewSnapshotRepository(store, "", zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, snapshots.EnsureSeeded(ctx))
	require.NoError(t, sessions.SetSession(ctx, models.RoleTeacher, "t-001"))
	require.NoError(t, sessions.ClearSession(ctx))

	_, found, err := store.Get(ctx, DefaultSnapshotKey)
	require.NoError(t, err)
	require.True(t, found)
}

func TestSessionRepositoryWithoutStorage(t *testing.T) {
	repo := NewSessionRepository(nil, "", zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.SetSession(ctx, models.RoleTeacher, "t-001"))
	session, err := repo.GetSession(ctx)
	require.NoError(t, err)
	require.Nil(t, session)
	require.NoError(t, repo.ClearSession(ctx))
}
