// Package srs implements the spaced-repetition core: the per-item reminder
// sequence, the drip-feed admission of curated pack words, and the dictionary
// view reconstructed from the live timer set.
package srs

import (
	"errors"
	"sync"
	"time"

	"github.com/notexe/vocab-trainer/internal/jobqueue"
	"github.com/notexe/vocab-trainer/internal/store"
)

// ProvenanceUser marks items the user typed in directly. Any other
// provenance value is the id of the pack the item was admitted from.
const ProvenanceUser = "user"

// Errors surfaced by the engine. None of these is fatal; each is scoped to a
// single item, enrollment, or tick.
var (
	ErrEmptyIdentity        = errors.New("srs: item text is empty")
	ErrEmptyPack            = errors.New("srs: pack has no candidates")
	ErrPackAlreadyActive    = errors.New("srs: pack enrollment already in progress")
	ErrPackAlreadyCompleted = errors.New("srs: pack already completed")
)

// ScheduleResult reports what ScheduleItem did.
type ScheduleResult int

const (
	// Created means a full reminder sequence was registered.
	Created ScheduleResult = iota
	// Duplicate means the item already had outstanding occurrences and no
	// new timers were created.
	Duplicate
)

// Occurrence is the payload of one scheduled reminder firing. Every field the
// fire handler touches is present and typed.
type Occurrence struct {
	UserID      int64     `json:"user_id"`
	Text        string    `json:"text"`
	Interval    int       `json:"interval"`
	Provenance  string    `json:"provenance"`
	AdmittedAt  time.Time `json:"admitted_at"`
	OriginMsgID int64     `json:"origin_msg_id,omitempty"`
}

// Notifier is the outbound transport the engine delivers through. Both calls
// are best effort; a failure never aborts the engine's own state changes.
type Notifier interface {
	// SendNotification delivers a reminder for one item.
	SendNotification(userID int64, text string) error
	// SendMessage delivers a plain informational message.
	SendMessage(userID int64, text string) error
}

// EnrollSummary is returned to the caller immediately after enrollment.
type EnrollSummary struct {
	PackID     string `json:"pack_id"`
	Candidates int    `json:"candidates"`
	Days       int    `json:"days"`
}

// ViewStatus tags a dictionary view item.
type ViewStatus string

const (
	// StatusActive means the item has outstanding reminder occurrences.
	StatusActive ViewStatus = "active"
	// StatusPending means the item sits in a pack backlog awaiting admission.
	StatusPending ViewStatus = "pending"
)

// ViewItem is one row of the reconciled dictionary snapshot. Derived fresh on
// every read, never stored.
type ViewItem struct {
	Text          string     `json:"text"`
	Status        ViewStatus `json:"status"`
	Provenance    string     `json:"provenance"`
	Remaining     int        `json:"remaining"`
	NextDue       time.Time  `json:"next_due,omitempty"`
	EstimatedDate string     `json:"estimated_date,omitempty"`
}

// Options configures an Engine. All fields are required except Now, which
// defaults to time.Now.
type Options struct {
	// Intervals is the reminder sequence: one occurrence per entry, due at
	// now+Intervals[i]. Must be non-empty and non-decreasing.
	Intervals []time.Duration
	// DailyCap is the maximum pack admissions per (user, pack) per calendar day.
	DailyCap int
	// Cooldown is the minimum gap between two admissions for the same pack.
	Cooldown time.Duration
	// TickPeriod is how often the admission tick polls. It should be below
	// Cooldown: the tick is a polling granularity, not the throttle.
	TickPeriod time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine owns the scheduling and admission core. All methods are safe for
// concurrent use.
type Engine struct {
	queue    *jobqueue.Queue
	ledger   *store.Store
	notifier Notifier

	intervals  []time.Duration
	dailyCap   int
	cooldown   time.Duration
	tickPeriod time.Duration
	now        func() time.Time

	// Per-(user, pack) exclusion so concurrent ticks cannot race the day
	// counter past the cap. Different packs and users do not contend.
	packMu sync.Mutex
	packs  map[string]*sync.Mutex
}

// New creates an Engine on top of the timer facility, the backlog ledger and
// the outbound transport.
func New(queue *jobqueue.Queue, ledger *store.Store, notifier Notifier, opts Options) (*Engine, error) {
	if len(opts.Intervals) == 0 {
		return nil, errors.New("srs: at least one reminder interval is required")
	}
	for i := 1; i < len(opts.Intervals); i++ {
		if opts.Intervals[i] < opts.Intervals[i-1] {
			return nil, errors.New("srs: reminder intervals must be non-decreasing")
		}
	}
	if opts.DailyCap <= 0 {
		return nil, errors.New("srs: daily cap must be positive")
	}
	if opts.TickPeriod <= 0 {
		return nil, errors.New("srs: tick period must be positive")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		queue:      queue,
		ledger:     ledger,
		notifier:   notifier,
		intervals:  opts.Intervals,
		dailyCap:   opts.DailyCap,
		cooldown:   opts.Cooldown,
		tickPeriod: opts.TickPeriod,
		now:        now,
		packs:      make(map[string]*sync.Mutex),
	}, nil
}

// SequenceLength returns the number of reminders per item.
func (e *Engine) SequenceLength() int {
	return len(e.intervals)
}

// FirstInterval returns the delay before an item's first reminder.
func (e *Engine) FirstInterval() time.Duration {
	return e.intervals[0]
}

func (e *Engine) lockPack(userID int64, packID string) func() {
	key := packKey(userID, packID)
	e.packMu.Lock()
	mu, ok := e.packs[key]
	if !ok {
		mu = &sync.Mutex{}
		e.packs[key] = mu
	}
	e.packMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
