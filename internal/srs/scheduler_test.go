package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/vocab-trainer/internal/store"
)

func TestScheduleItemCreatesFullSequence(t *testing.T) {
	env := newTestEnv(t, Options{})

	res, err := env.engine.ScheduleItem(1, "apple", ProvenanceUser, 0)
	require.NoError(t, err)
	assert.Equal(t, Created, res)
	assert.Equal(t, env.engine.SequenceLength(), len(env.queue.JobsByUser(1)))
}

func TestScheduleItemRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t, Options{})

	res, err := env.engine.ScheduleItem(1, "apple", ProvenanceUser, 0)
	require.NoError(t, err)
	require.Equal(t, Created, res)

	// Second call without cancellation: exactly N occurrences, never 2N.
	res, err = env.engine.ScheduleItem(1, "apple", ProvenanceUser, 0)
	require.NoError(t, err)
	assert.Equal(t, Duplicate, res)
	assert.Equal(t, env.engine.SequenceLength(), len(env.queue.JobsByUser(1)))
}

func TestScheduleItemIdentityIsExact(t *testing.T) {
	env := newTestEnv(t, Options{})

	_, err := env.engine.ScheduleItem(1, "apple", ProvenanceUser, 0)
	require.NoError(t, err)
	res, err := env.engine.ScheduleItem(1, "Apple", ProvenanceUser, 0)
	require.NoError(t, err)
	assert.Equal(t, Created, res, "identity is case-sensitive")

	// Different users never collide either.
	res, err = env.engine.ScheduleItem(2, "apple", ProvenanceUser, 0)
	require.NoError(t, err)
	assert.Equal(t, Created, res)
}

func TestScheduleItemRejectsEmptyText(t *testing.T) {
	env := newTestEnv(t, Options{})

	_, err := env.engine.ScheduleItem(1, "   ", ProvenanceUser, 0)
	assert.ErrorIs(t, err, ErrEmptyIdentity)
	assert.Empty(t, env.queue.Jobs())
}

func TestScheduleItemRepairsPackStatus(t *testing.T) {
	env := newTestEnv(t, Options{})

	// A pack row still pending while the word already has live timers: the
	// duplicate admission repairs the ledger instead of creating timers.
	_, err := env.engine.ScheduleItem(1, "apple", "b2plus", 0)
	require.NoError(t, err)

	require.NoError(t, env.ledger.CreateBacklog(
		store.PackState{UserID: 1, PackID: "b2plus", Status: store.PackInProgress, EnrolledAt: env.clock.Now()},
		[]store.BacklogEntry{{UserID: 1, PackID: "b2plus", Position: 0, Word: "apple",
			Status: store.EntryPending, EstimatedDate: "2025-03-10"}},
	))

	res, err := env.engine.ScheduleItem(1, "apple", "b2plus", 0)
	require.NoError(t, err)
	assert.Equal(t, Duplicate, res)
	assert.Equal(t, env.engine.SequenceLength(), len(env.queue.JobsByUser(1)))

	entries, err := env.ledger.Entries(1, "b2plus")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.EntryActive, entries[0].Status)
}

func TestCancelItemRemovesAllOccurrences(t *testing.T) {
	env := newTestEnv(t, Options{})

	_, err := env.engine.ScheduleItem(1, "apple", ProvenanceUser, 0)
	require.NoError(t, err)
	_, err = env.engine.ScheduleItem(1, "pear", ProvenanceUser, 0)
	require.NoError(t, err)

	n := env.engine.CancelItem(1, "apple")
	assert.Equal(t, env.engine.SequenceLength(), n)
	assert.Equal(t, env.engine.SequenceLength(), len(env.queue.JobsByUser(1)), "pear untouched")

	assert.Equal(t, 0, env.engine.CancelItem(1, "apple"), "second cancel finds nothing")
}

func TestFireDeliversNotification(t *testing.T) {
	env := newTestEnv(t, Options{
		Intervals: []time.Duration{20 * time.Millisecond, time.Hour},
	})

	_, err := env.engine.ScheduleItem(1, "apple", ProvenanceUser, 0)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(env.notifier.Notifications()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "apple", env.notifier.Notifications()[0])

	// The fired occurrence is gone; the rest of the sequence survives.
	assert.Equal(t, 1, len(env.queue.JobsByUser(1)))
}

func TestFireFallsBackOnDeliveryFailure(t *testing.T) {
	env := newTestEnv(t, Options{
		Intervals: []time.Duration{20 * time.Millisecond, time.Hour},
	})
	env.notifier.failNotify = true

	_, err := env.engine.ScheduleItem(1, "apple", ProvenanceUser, 0)
	require.NoError(t, err)

	// Primary delivery fails; the one-shot fallback plain message goes out
	// and the second occurrence's timer is unaffected.
	require.Eventually(t, func() bool {
		return len(env.notifier.Messages()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, env.notifier.Messages()[0], "apple")
	assert.Equal(t, 1, len(env.queue.JobsByUser(1)))
}
