// Package store persists the pack backlog ledgers and admission counters in
// SQLite. The set of outstanding reminder timers is deliberately not stored
// here; what is "active" is always derived from the live timer set.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Backlog entry statuses.
const (
	EntryPending   = "pending"
	EntryActive    = "active"
	EntryCancelled = "cancelled"
)

// Pack statuses.
const (
	PackInProgress = "in_progress"
	PackCompleted  = "completed"
)

// DateLayout is the calendar-day format used for bucketing and counters.
const DateLayout = "2006-01-02"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// BacklogEntry is one candidate item in a pack's ledger for one user.
type BacklogEntry struct {
	UserID        int64  `json:"user_id"`
	PackID        string `json:"pack_id"`
	Position      int    `json:"position"`
	Word          string `json:"word"`
	Status        string `json:"status"`
	EstimatedDate string `json:"estimated_date"`
	ActualDate    string `json:"actual_date,omitempty"`
}

// PackState holds the drip-feed counters for one (user, pack).
type PackState struct {
	UserID        int64     `json:"user_id"`
	PackID        string    `json:"pack_id"`
	Status        string    `json:"status"`
	AdmittedToday int       `json:"admitted_today"`
	CounterDate   string    `json:"counter_date"`
	LastAdmission time.Time `json:"last_admission"`
	EnrolledAt    time.Time `json:"enrolled_at"`
}

// Store provides SQLite-backed storage for backlogs and admission state.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at dbPath and ensures the
// schema exists.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pack_backlog (
			user_id        INTEGER NOT NULL,
			pack_id        TEXT    NOT NULL,
			position       INTEGER NOT NULL,
			word           TEXT    NOT NULL,
			status         TEXT    NOT NULL DEFAULT 'pending',
			estimated_date TEXT    NOT NULL,
			actual_date    TEXT    NOT NULL DEFAULT '',
			PRIMARY KEY (user_id, pack_id, word)
		);
		CREATE TABLE IF NOT EXISTS pack_state (
			user_id        INTEGER NOT NULL,
			pack_id        TEXT    NOT NULL,
			status         TEXT    NOT NULL DEFAULT 'in_progress',
			admitted_today INTEGER NOT NULL DEFAULT 0,
			counter_date   TEXT    NOT NULL DEFAULT '',
			last_admission TEXT    NOT NULL DEFAULT '',
			enrolled_at    TEXT    NOT NULL,
			PRIMARY KEY (user_id, pack_id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateBacklog writes a fresh ledger and admission state for (user, pack) in
// one transaction, replacing any previous enrollment of the same pack.
func (s *Store) CreateBacklog(state PackState, entries []BacklogEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pack_backlog WHERE user_id = ? AND pack_id = ?`,
		state.UserID, state.PackID); err != nil {
		return fmt.Errorf("failed to clear old backlog: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM pack_state WHERE user_id = ? AND pack_id = ?`,
		state.UserID, state.PackID); err != nil {
		return fmt.Errorf("failed to clear old state: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO pack_state (user_id, pack_id, status, admitted_today, counter_date, last_admission, enrolled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, state.UserID, state.PackID, state.Status, state.AdmittedToday, state.CounterDate,
		formatTime(state.LastAdmission), formatTime(state.EnrolledAt)); err != nil {
		return fmt.Errorf("failed to insert pack state: %w", err)
	}

	for _, e := range entries {
		if _, err := tx.Exec(`
			INSERT INTO pack_backlog (user_id, pack_id, position, word, status, estimated_date, actual_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, e.UserID, e.PackID, e.Position, e.Word, e.Status, e.EstimatedDate, e.ActualDate); err != nil {
			return fmt.Errorf("failed to insert backlog entry %q: %w", e.Word, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit backlog: %w", err)
	}
	return nil
}

// GetState returns the admission state for (user, pack), or ErrNotFound.
func (s *Store) GetState(userID int64, packID string) (*PackState, error) {
	row := s.db.QueryRow(`
		SELECT user_id, pack_id, status, admitted_today, counter_date, last_admission, enrolled_at
		FROM pack_state WHERE user_id = ? AND pack_id = ?
	`, userID, packID)

	var st PackState
	var lastAdm, enrolled string
	if err := row.Scan(&st.UserID, &st.PackID, &st.Status, &st.AdmittedToday,
		&st.CounterDate, &lastAdm, &enrolled); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pack state: %w", err)
	}
	st.LastAdmission = parseTime(lastAdm)
	st.EnrolledAt = parseTime(enrolled)
	return &st, nil
}

// SaveState overwrites the admission counters and status for (user, pack).
func (s *Store) SaveState(st *PackState) error {
	result, err := s.db.Exec(`
		UPDATE pack_state SET status = ?, admitted_today = ?, counter_date = ?, last_admission = ?
		WHERE user_id = ? AND pack_id = ?
	`, st.Status, st.AdmittedToday, st.CounterDate, formatTime(st.LastAdmission),
		st.UserID, st.PackID)
	if err != nil {
		return fmt.Errorf("failed to save pack state: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// NextPending returns the first pending backlog entry in candidate order,
// or ErrNotFound when the backlog is exhausted.
func (s *Store) NextPending(userID int64, packID string) (*BacklogEntry, error) {
	row := s.db.QueryRow(`
		SELECT user_id, pack_id, position, word, status, estimated_date, actual_date
		FROM pack_backlog
		WHERE user_id = ? AND pack_id = ? AND status = ?
		ORDER BY position ASC LIMIT 1
	`, userID, packID, EntryPending)

	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get next pending entry: %w", err)
	}
	return e, nil
}

// MarkActive advances a backlog entry to active and records the admission
// date. Marking an already-active entry again only refreshes nothing and is
// harmless.
func (s *Store) MarkActive(userID int64, packID, word, date string) error {
	_, err := s.db.Exec(`
		UPDATE pack_backlog SET status = ?, actual_date = ?
		WHERE user_id = ? AND pack_id = ? AND word = ? AND status != ?
	`, EntryActive, date, userID, packID, word, EntryActive)
	if err != nil {
		return fmt.Errorf("failed to mark entry active: %w", err)
	}
	return nil
}

// CancelEntry marks a backlog entry cancelled regardless of its current
// status. It reports whether the entry existed; cancelling an
// already-cancelled entry is a no-op, not an error.
func (s *Store) CancelEntry(userID int64, packID, word string) (bool, error) {
	result, err := s.db.Exec(`
		UPDATE pack_backlog SET status = ?
		WHERE user_id = ? AND pack_id = ? AND word = ?
	`, EntryCancelled, userID, packID, word)
	if err != nil {
		return false, fmt.Errorf("failed to cancel entry: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// CancelEntryAnyPack cancels every backlog row matching word across all of
// the user's packs and returns how many were updated. Used by the direct
// item-deletion path, which does not know which pack a word came from.
func (s *Store) CancelEntryAnyPack(userID int64, word string) (int, error) {
	result, err := s.db.Exec(`
		UPDATE pack_backlog SET status = ?
		WHERE user_id = ? AND word = ? AND status != ?
	`, EntryCancelled, userID, word, EntryCancelled)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel entry: %w", err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// InProgressPacks returns the admission state of every enrollment that is
// still in progress, across all users. Used at process start to restart the
// admission ticks the previous process was running.
func (s *Store) InProgressPacks() ([]PackState, error) {
	rows, err := s.db.Query(`
		SELECT user_id, pack_id, status, admitted_today, counter_date, last_admission, enrolled_at
		FROM pack_state WHERE status = ?
	`, PackInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to list in-progress packs: %w", err)
	}
	defer rows.Close()

	var states []PackState
	for rows.Next() {
		var st PackState
		var lastAdm, enrolled string
		if err := rows.Scan(&st.UserID, &st.PackID, &st.Status, &st.AdmittedToday,
			&st.CounterDate, &lastAdm, &enrolled); err != nil {
			return nil, fmt.Errorf("failed to scan pack state: %w", err)
		}
		st.LastAdmission = parseTime(lastAdm)
		st.EnrolledAt = parseTime(enrolled)
		states = append(states, st)
	}
	return states, rows.Err()
}

// PendingByUser returns every pending backlog entry across all of the user's
// packs, in (pack, position) order.
func (s *Store) PendingByUser(userID int64) ([]BacklogEntry, error) {
	rows, err := s.db.Query(`
		SELECT user_id, pack_id, position, word, status, estimated_date, actual_date
		FROM pack_backlog
		WHERE user_id = ? AND status = ?
		ORDER BY pack_id ASC, position ASC
	`, userID, EntryPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Entries returns the full ledger for (user, pack) in candidate order.
func (s *Store) Entries(userID int64, packID string) ([]BacklogEntry, error) {
	rows, err := s.db.Query(`
		SELECT user_id, pack_id, position, word, status, estimated_date, actual_date
		FROM pack_backlog
		WHERE user_id = ? AND pack_id = ?
		ORDER BY position ASC
	`, userID, packID)
	if err != nil {
		return nil, fmt.Errorf("failed to list backlog entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]BacklogEntry, error) {
	var entries []BacklogEntry
	for rows.Next() {
		var e BacklogEntry
		if err := rows.Scan(&e.UserID, &e.PackID, &e.Position, &e.Word,
			&e.Status, &e.EstimatedDate, &e.ActualDate); err != nil {
			return nil, fmt.Errorf("failed to scan backlog entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(row *sql.Row) (*BacklogEntry, error) {
	var e BacklogEntry
	if err := row.Scan(&e.UserID, &e.PackID, &e.Position, &e.Word,
		&e.Status, &e.EstimatedDate, &e.ActualDate); err != nil {
		return nil, err
	}
	return &e, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
