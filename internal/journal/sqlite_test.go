package journal

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/easyblogger/internal/foundation/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_AppendAndList_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	require.NoError(t, store.Append(ctx, Entry{RunID: "r1", Command: "create", PostID: "1", Status: StatusOK}))
	require.NoError(t, store.Append(ctx, Entry{RunID: "r1", Command: "update", PostID: "2", Status: StatusOK}))
	require.NoError(t, store.Append(ctx, Entry{RunID: "r2", Command: "delete", PostID: "1", Status: StatusFailed, Error: "boom"}))

	entries, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "delete", entries[0].Command)
	require.Equal(t, StatusFailed, entries[0].Status)
	require.Equal(t, "boom", entries[0].Error)
	require.False(t, entries[0].Timestamp.IsZero())

	limited, err := store.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	forPost, err := store.List(ctx, Filter{PostID: "1"})
	require.NoError(t, err)
	require.Len(t, forPost, 2)
}

func TestSQLiteStore_LastForPost_SkipsFailures(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	at := time.UnixMilli(time.Now().UnixMilli())

	require.NoError(t, store.Append(ctx, Entry{RunID: "r1", Command: "update", PostID: "7", Fingerprint: "fp1", Status: StatusOK, Timestamp: at}))
	require.NoError(t, store.Append(ctx, Entry{RunID: "r2", Command: "update", PostID: "7", Fingerprint: "fp2", Status: StatusFailed}))

	last, err := store.LastForPost(ctx, "7")
	require.NoError(t, err)
	require.Equal(t, "fp1", last.Fingerprint)
	require.True(t, at.Equal(last.Timestamp))
}

func TestSQLiteStore_LastForPost_NoEntry(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LastForPost(t.Context(), "missing")
	require.True(t, errors.Is(err, ErrNoEntry))
}

func TestSQLiteStore_FileBacked_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), Entry{RunID: "r", Command: "create", PostID: "5", Status: StatusOK}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	entries, err := reopened.List(t.Context(), Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "5", entries[0].PostID)
}

func TestSQLiteStore_ClosedStore_ReturnsJournalError(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Append(t.Context(), Entry{RunID: "r", Command: "create", Status: StatusOK})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryJournal))
}
