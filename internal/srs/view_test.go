package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/vocab-trainer/internal/store"
)

func findItem(items []ViewItem, text string) (ViewItem, bool) {
	for _, it := range items {
		if it.Text == text {
			return it, true
		}
	}
	return ViewItem{}, false
}

func TestSnapshotCountsOutstandingOccurrences(t *testing.T) {
	env := newTestEnv(t, Options{
		Intervals: []time.Duration{30 * time.Millisecond, time.Hour},
	})

	_, err := env.engine.ScheduleItem(1, "apple", ProvenanceUser, 0)
	require.NoError(t, err)

	items, err := env.engine.Snapshot(1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, StatusActive, items[0].Status)
	assert.Equal(t, 2, items[0].Remaining)

	// After the first occurrence fires, the snapshot reflects the shrunken
	// sequence without any bookkeeping of its own.
	require.Eventually(t, func() bool {
		return len(env.notifier.Notifications()) == 1
	}, time.Second, 5*time.Millisecond)

	items, err = env.engine.Snapshot(1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Remaining)
}

func TestSnapshotIncludesPendingBacklog(t *testing.T) {
	env := newTestEnv(t, Options{Cooldown: time.Hour})

	_, err := env.engine.Enroll(1, "b2plus", []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)

	// alpha was admitted immediately; beta and gamma wait in the ledger.
	items, err := env.engine.Snapshot(1)
	require.NoError(t, err)
	require.Len(t, items, 3)

	alpha, ok := findItem(items, "alpha")
	require.True(t, ok)
	assert.Equal(t, StatusActive, alpha.Status)

	beta, ok := findItem(items, "beta")
	require.True(t, ok)
	assert.Equal(t, StatusPending, beta.Status)
	assert.Equal(t, "pack:b2plus", beta.Provenance)
	assert.Equal(t, len(env.engine.intervals), beta.Remaining)
	assert.Equal(t, "2025-03-10", beta.EstimatedDate)
}

func TestSnapshotActiveWinsOverPending(t *testing.T) {
	env := newTestEnv(t, Options{})

	_, err := env.engine.ScheduleItem(1, "apple", "b2plus", 0)
	require.NoError(t, err)

	// A stale pending row for the same text, as left behind by a crash
	// between timer creation and the ledger update.
	require.NoError(t, env.ledger.CreateBacklog(
		store.PackState{UserID: 1, PackID: "b2plus", Status: store.PackInProgress, EnrolledAt: env.clock.Now()},
		[]store.BacklogEntry{{UserID: 1, PackID: "b2plus", Position: 0, Word: "apple",
			Status: store.EntryPending, EstimatedDate: "2025-03-10"}},
	))

	items, err := env.engine.Snapshot(1)
	require.NoError(t, err)
	require.Len(t, items, 1, "the same text never appears twice")
	assert.Equal(t, StatusActive, items[0].Status)
}

func TestSnapshotOmitsCancelledItems(t *testing.T) {
	env := newTestEnv(t, Options{})

	_, err := env.engine.ScheduleItem(1, "apple", ProvenanceUser, 0)
	require.NoError(t, err)
	_, err = env.engine.ScheduleItem(1, "pear", ProvenanceUser, 0)
	require.NoError(t, err)

	env.engine.CancelItem(1, "apple")

	items, err := env.engine.Snapshot(1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "pear", items[0].Text)
}

func TestSnapshotIsPerUser(t *testing.T) {
	env := newTestEnv(t, Options{})

	_, err := env.engine.ScheduleItem(1, "apple", ProvenanceUser, 0)
	require.NoError(t, err)
	_, err = env.engine.ScheduleItem(2, "pear", ProvenanceUser, 0)
	require.NoError(t, err)

	items, err := env.engine.Snapshot(1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "apple", items[0].Text)
}

func TestRandomActive(t *testing.T) {
	env := newTestEnv(t, Options{})

	_, ok := env.engine.RandomActive(1)
	assert.False(t, ok, "empty active set")

	_, err := env.engine.ScheduleItem(1, "apple", ProvenanceUser, 0)
	require.NoError(t, err)

	text, ok := env.engine.RandomActive(1)
	require.True(t, ok)
	assert.Equal(t, "apple", text)
}
