package srs

import (
	"fmt"
	"log"

	"github.com/notexe/vocab-trainer/internal/jobqueue"
	"github.com/notexe/vocab-trainer/internal/store"
)

// Enroll seeds the backlog ledger for (user, pack) and starts the recurring
// admission tick. Candidates are bucketed into calendar days at the daily cap
// to produce an estimated admission date each; re-enrolling a pack that is in
// progress or completed is rejected without state change.
func (e *Engine) Enroll(userID int64, packID string, candidates []string) (*EnrollSummary, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyPack
	}

	unlock := e.lockPack(userID, packID)
	defer unlock()

	if st, err := e.ledger.GetState(userID, packID); err == nil {
		switch st.Status {
		case store.PackCompleted:
			return nil, ErrPackAlreadyCompleted
		default:
			return nil, ErrPackAlreadyActive
		}
	} else if err != store.ErrNotFound {
		return nil, fmt.Errorf("failed to check pack state: %w", err)
	}

	now := e.now()
	entries := make([]store.BacklogEntry, 0, len(candidates))
	for i, word := range candidates {
		estimated := now.AddDate(0, 0, i/e.dailyCap).Format(store.DateLayout)
		entries = append(entries, store.BacklogEntry{
			UserID:        userID,
			PackID:        packID,
			Position:      i,
			Word:          word,
			Status:        store.EntryPending,
			EstimatedDate: estimated,
		})
	}

	state := store.PackState{
		UserID:     userID,
		PackID:     packID,
		Status:     store.PackInProgress,
		EnrolledAt: now,
	}
	if err := e.ledger.CreateBacklog(state, entries); err != nil {
		return nil, fmt.Errorf("failed to create backlog: %w", err)
	}

	name := tickJobName(userID, packID)
	if _, err := e.queue.RunRepeating(name, userID, e.tickPeriod, e.tickPeriod, packID,
		func(_ *jobqueue.Job) { e.Tick(userID, packID) }); err != nil {
		return nil, fmt.Errorf("failed to start admission tick: %w", err)
	}

	days := (len(candidates) + e.dailyCap - 1) / e.dailyCap
	log.Printf("[srs] enrolled user %d in pack %s: %d candidates over ~%d days",
		userID, packID, len(candidates), days)

	// Kick off today's batch without waiting for the first natural tick.
	// Bounded by the day's quota so we cannot race past the cap.
	for i := 0; i < e.dailyCap; i++ {
		if !e.tickLocked(userID, packID) {
			break
		}
	}

	return &EnrollSummary{PackID: packID, Candidates: len(candidates), Days: days}, nil
}

// Tick runs one admission attempt for (user, pack). At most one candidate is
// admitted per call; the daily cap and the inter-admission cooldown are the
// throttle, the tick itself only polls.
func (e *Engine) Tick(userID int64, packID string) bool {
	unlock := e.lockPack(userID, packID)
	defer unlock()
	return e.tickLocked(userID, packID)
}

// tickLocked is Tick's body; the caller holds the (user, pack) lock. It
// reports whether a candidate was admitted.
func (e *Engine) tickLocked(userID int64, packID string) bool {
	st, err := e.ledger.GetState(userID, packID)
	if err != nil {
		log.Printf("[srs] tick for pack %s (user %d): no state: %v", packID, userID, err)
		e.queue.Cancel(tickJobName(userID, packID))
		return false
	}
	if st.Status == store.PackCompleted {
		e.queue.Cancel(tickJobName(userID, packID))
		return false
	}

	now := e.now()
	today := now.Format(store.DateLayout)
	if st.CounterDate != today {
		st.CounterDate = today
		st.AdmittedToday = 0
		if err := e.ledger.SaveState(st); err != nil {
			log.Printf("[srs] failed to roll day counter for pack %s: %v", packID, err)
			return false
		}
	}

	if st.AdmittedToday >= e.dailyCap {
		return false
	}
	// Cooldown holds even across the day boundary.
	if !st.LastAdmission.IsZero() && now.Sub(st.LastAdmission) < e.cooldown {
		return false
	}

	entry, err := e.ledger.NextPending(userID, packID)
	if err == store.ErrNotFound {
		e.completePack(st)
		return false
	}
	if err != nil {
		log.Printf("[srs] tick for pack %s: %v", packID, err)
		return false
	}

	res, err := e.ScheduleItem(userID, entry.Word, packID, 0)
	if err != nil {
		// Entry stays pending; the next natural tick retries it.
		log.Printf("[srs] admission of %q from pack %s failed, will retry: %v",
			entry.Word, packID, err)
		return false
	}
	if res == Duplicate {
		// ScheduleItem already repaired the ledger row; quota is untouched
		// and the next tick moves on to the next candidate.
		return false
	}

	if err := e.ledger.MarkActive(userID, packID, entry.Word, today); err != nil {
		log.Printf("[srs] failed to record admission of %q: %v", entry.Word, err)
	}
	firstEver := st.LastAdmission.IsZero()
	st.AdmittedToday++
	st.LastAdmission = now
	if err := e.ledger.SaveState(st); err != nil {
		log.Printf("[srs] failed to save admission counters for pack %s: %v", packID, err)
	}

	// The very first admission of the pack announces the pack starting; the
	// first of each later day announces that day's batch.
	if st.AdmittedToday == 1 {
		if firstEver {
			e.sendInfo(userID, fmt.Sprintf("➕ Started adding %q from curated pack! More soon.", entry.Word))
		} else {
			e.sendInfo(userID, fmt.Sprintf("🗓️ Activating new pack words today. %q is now active!", entry.Word))
		}
	}
	log.Printf("[srs] admitted %q from pack %s for user %d (%d/%d today)",
		entry.Word, packID, userID, st.AdmittedToday, e.dailyCap)
	return true
}

// completePack performs the terminal transition. The "pack completed"
// notification fires exactly once; the recurring tick stops here.
func (e *Engine) completePack(st *store.PackState) {
	st.Status = store.PackCompleted
	if err := e.ledger.SaveState(st); err != nil {
		log.Printf("[srs] failed to mark pack %s completed: %v", st.PackID, err)
		return
	}
	e.queue.Cancel(tickJobName(st.UserID, st.PackID))
	e.sendInfo(st.UserID, "🎉 All words from the curated pack have now been activated!")
	log.Printf("[srs] pack %s completed for user %d", st.PackID, st.UserID)
}

// CancelCandidate marks the backlog entry cancelled regardless of its current
// status. Cancelling an active entry only updates the ledger; stopping its
// live timers is CancelItem's job, since the two track independent failure
// domains. Idempotent.
func (e *Engine) CancelCandidate(userID int64, packID, text string) (bool, error) {
	unlock := e.lockPack(userID, packID)
	defer unlock()

	found, err := e.ledger.CancelEntry(userID, packID, text)
	if err != nil {
		return false, fmt.Errorf("failed to cancel candidate %q: %w", text, err)
	}
	return found, nil
}

// ResumeTicks restarts the recurring admission tick for every enrollment
// still in progress in the ledger. Called once at process start, when the
// ledger has survived but the timer set has not.
func (e *Engine) ResumeTicks() error {
	states, err := e.ledger.InProgressPacks()
	if err != nil {
		return fmt.Errorf("failed to list in-progress packs: %w", err)
	}
	for _, st := range states {
		userID, packID := st.UserID, st.PackID
		name := tickJobName(userID, packID)
		if _, err := e.queue.RunRepeating(name, userID, e.tickPeriod, e.tickPeriod, packID,
			func(_ *jobqueue.Job) { e.Tick(userID, packID) }); err != nil {
			log.Printf("[srs] failed to resume tick for pack %s: %v", packID, err)
		}
	}
	if len(states) > 0 {
		log.Printf("[srs] resumed admission ticks for %d pack(s)", len(states))
	}
	return nil
}

func (e *Engine) sendInfo(userID int64, text string) {
	if err := e.notifier.SendMessage(userID, text); err != nil {
		log.Printf("[srs] info message to user %d failed: %v", userID, err)
	}
}

func tickJobName(userID int64, packID string) string {
	return fmt.Sprintf("pack_admit_%d_%s", userID, packID)
}

func packKey(userID int64, packID string) string {
	return fmt.Sprintf("%d|%s", userID, packID)
}
