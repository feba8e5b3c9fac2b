package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedBacklog(t *testing.T, s *Store, userID int64, packID string, words ...string) {
	t.Helper()
	entries := make([]BacklogEntry, len(words))
	for i, w := range words {
		entries[i] = BacklogEntry{
			UserID: userID, PackID: packID, Position: i, Word: w,
			Status: EntryPending, EstimatedDate: "2025-03-10",
		}
	}
	require.NoError(t, s.CreateBacklog(PackState{
		UserID: userID, PackID: packID, Status: PackInProgress,
		EnrolledAt: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}, entries))
}

func TestCreateBacklogReplacesPrevious(t *testing.T) {
	s := newTestStore(t)

	seedBacklog(t, s, 1, "p1", "old1", "old2", "old3")
	seedBacklog(t, s, 1, "p1", "new1")

	entries, err := s.Entries(1, "p1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new1", entries[0].Word)
}

func TestGetStateRoundTrip(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetState(1, "p1")
	assert.ErrorIs(t, err, ErrNotFound)

	seedBacklog(t, s, 1, "p1", "alpha")

	st, err := s.GetState(1, "p1")
	require.NoError(t, err)
	assert.Equal(t, PackInProgress, st.Status)
	assert.Equal(t, 0, st.AdmittedToday)
	assert.True(t, st.LastAdmission.IsZero())
	assert.Equal(t, 2025, st.EnrolledAt.Year())
}

func TestSaveState(t *testing.T) {
	s := newTestStore(t)
	seedBacklog(t, s, 1, "p1", "alpha")

	st, err := s.GetState(1, "p1")
	require.NoError(t, err)
	st.Status = PackCompleted
	st.AdmittedToday = 3
	st.CounterDate = "2025-03-11"
	st.LastAdmission = time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC)
	require.NoError(t, s.SaveState(st))

	got, err := s.GetState(1, "p1")
	require.NoError(t, err)
	assert.Equal(t, PackCompleted, got.Status)
	assert.Equal(t, 3, got.AdmittedToday)
	assert.Equal(t, "2025-03-11", got.CounterDate)
	assert.True(t, st.LastAdmission.Equal(got.LastAdmission))

	// Saving state for an unknown pack reports ErrNotFound.
	assert.ErrorIs(t, s.SaveState(&PackState{UserID: 9, PackID: "nosuch"}), ErrNotFound)
}

func TestNextPendingFollowsPosition(t *testing.T) {
	s := newTestStore(t)
	seedBacklog(t, s, 1, "p1", "zeta", "alpha", "mid")

	e, err := s.NextPending(1, "p1")
	require.NoError(t, err)
	assert.Equal(t, "zeta", e.Word, "candidate order, not lexical order")

	require.NoError(t, s.MarkActive(1, "p1", "zeta", "2025-03-10"))
	e, err = s.NextPending(1, "p1")
	require.NoError(t, err)
	assert.Equal(t, "alpha", e.Word)

	_, err = s.CancelEntry(1, "p1", "alpha")
	require.NoError(t, err)
	e, err = s.NextPending(1, "p1")
	require.NoError(t, err)
	assert.Equal(t, "mid", e.Word)

	require.NoError(t, s.MarkActive(1, "p1", "mid", "2025-03-10"))
	_, err = s.NextPending(1, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkActiveRecordsDate(t *testing.T) {
	s := newTestStore(t)
	seedBacklog(t, s, 1, "p1", "alpha")

	require.NoError(t, s.MarkActive(1, "p1", "alpha", "2025-03-10"))
	entries, err := s.Entries(1, "p1")
	require.NoError(t, err)
	assert.Equal(t, EntryActive, entries[0].Status)
	assert.Equal(t, "2025-03-10", entries[0].ActualDate)

	// Re-marking leaves the original admission date alone.
	require.NoError(t, s.MarkActive(1, "p1", "alpha", "2025-03-12"))
	entries, err = s.Entries(1, "p1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", entries[0].ActualDate)
}

func TestCancelEntryIdempotent(t *testing.T) {
	s := newTestStore(t)
	seedBacklog(t, s, 1, "p1", "alpha")

	found, err := s.CancelEntry(1, "p1", "alpha")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.CancelEntry(1, "p1", "alpha")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.CancelEntry(1, "p1", "nosuch")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCancelEntryAnyPack(t *testing.T) {
	s := newTestStore(t)
	seedBacklog(t, s, 1, "p1", "alpha", "beta")
	seedBacklog(t, s, 1, "p2", "alpha")
	seedBacklog(t, s, 2, "p1", "alpha")

	n, err := s.CancelEntryAnyPack(1, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "both of user 1's packs, not user 2's")

	n, err = s.CancelEntryAnyPack(1, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "already cancelled rows are not re-counted")

	entries, err := s.Entries(2, "p1")
	require.NoError(t, err)
	assert.Equal(t, EntryPending, entries[0].Status)
}

func TestInProgressPacks(t *testing.T) {
	s := newTestStore(t)
	seedBacklog(t, s, 1, "p1", "alpha")
	seedBacklog(t, s, 2, "p2", "beta")

	st, err := s.GetState(2, "p2")
	require.NoError(t, err)
	st.Status = PackCompleted
	require.NoError(t, s.SaveState(st))

	states, err := s.InProgressPacks()
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, int64(1), states[0].UserID)
	assert.Equal(t, "p1", states[0].PackID)
}

func TestPendingByUserSpansPacks(t *testing.T) {
	s := newTestStore(t)
	seedBacklog(t, s, 1, "p2", "beta")
	seedBacklog(t, s, 1, "p1", "alpha", "gamma")
	require.NoError(t, s.MarkActive(1, "p1", "alpha", "2025-03-10"))

	pending, err := s.PendingByUser(1)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "gamma", pending[0].Word)
	assert.Equal(t, "beta", pending[1].Word)
}
