package srs

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notexe/vocab-trainer/internal/jobqueue"
	"github.com/notexe/vocab-trainer/internal/store"
)

// fakeClock controls the engine's date and cooldown arithmetic. The timer
// facility still runs on real time; tests keep intervals long enough that
// nothing fires unless they want it to.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeNotifier records deliveries.
type fakeNotifier struct {
	mu            sync.Mutex
	notifications []string
	messages      []string
	failNotify    bool
}

func (n *fakeNotifier) SendNotification(_ int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNotify {
		return errors.New("transport down")
	}
	n.notifications = append(n.notifications, text)
	return nil
}

func (n *fakeNotifier) SendMessage(_ int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

func (n *fakeNotifier) Notifications() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notifications...)
}

func (n *fakeNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type testEnv struct {
	engine   *Engine
	queue    *jobqueue.Queue
	ledger   *store.Store
	notifier *fakeNotifier
	clock    *fakeClock
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	ledger, err := store.Open(filepath.Join(t.TempDir(), "vocab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	queue := jobqueue.New()
	t.Cleanup(queue.Close)

	clock := newFakeClock()
	notifier := &fakeNotifier{}

	if opts.Intervals == nil {
		opts.Intervals = []time.Duration{time.Hour, 24 * time.Hour}
	}
	if opts.DailyCap == 0 {
		opts.DailyCap = 5
	}
	if opts.TickPeriod == 0 {
		opts.TickPeriod = time.Hour
	}
	if opts.Now == nil {
		opts.Now = clock.Now
	}

	engine, err := New(queue, ledger, notifier, opts)
	require.NoError(t, err)

	return &testEnv{engine: engine, queue: queue, ledger: ledger, notifier: notifier, clock: clock}
}
