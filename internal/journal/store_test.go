package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "journal.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestRecord_AssignsIDAndSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, Entry{
		InvocationID: "inv-1", Command: "create-note", TargetID: "folder-1",
		Outcome: OutcomeOK, StartedAt: start, FinishedAt: start.Add(time.Second),
	}))
	require.NoError(t, s.Record(ctx, Entry{
		InvocationID: "inv-2", Command: "delete-note", TargetID: "note-1",
		Outcome: OutcomeError, ErrorCode: "NOT_WRITABLE", StartedAt: start, FinishedAt: start,
	}))

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(2), entries[0].Seq)
	assert.Equal(t, "delete-note", entries[0].Command)
	assert.Equal(t, "NOT_WRITABLE", entries[0].ErrorCode)
	assert.Equal(t, OutcomeError, entries[0].Outcome)

	assert.Equal(t, int64(1), entries[1].Seq)
	assert.Equal(t, "folder-1", entries[1].TargetID)
	assert.True(t, entries[1].StartedAt.Equal(start))
	assert.True(t, entries[1].FinishedAt.Equal(start.Add(time.Second)))

	assert.NotEmpty(t, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestRecent_Limit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, Entry{Command: "update-note", Outcome: OutcomeOK, StartedAt: now, FinishedAt: now}))
	}

	entries, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(5), entries[0].Seq)
	assert.Equal(t, int64(4), entries[1].Seq)

	_, err = s.Recent(ctx, 0)
	assert.Error(t, err)
}

func TestRecent_Empty(t *testing.T) {
	s := openTestStore(t)

	entries, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestRecord_RejectsUnknownOutcome(t *testing.T) {
	s := openTestStore(t)
	err := s.Record(context.Background(), Entry{Command: "x", Outcome: "maybe"})
	assert.Error(t, err)
}
