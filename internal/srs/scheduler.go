package srs

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/notexe/vocab-trainer/internal/jobqueue"
	"github.com/notexe/vocab-trainer/internal/store"
)

// ScheduleItem registers the full reminder sequence for one item. If the item
// already has outstanding occurrences the call is an idempotent no-op
// returning Duplicate; when such a rejected request comes from a pack
// admission, the item's backlog row is repaired to active instead (the ledger
// lagged behind the live timers, not the other way round).
func (e *Engine) ScheduleItem(userID int64, text, provenance string, originMsgID int64) (ScheduleResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Duplicate, ErrEmptyIdentity
	}

	if e.countOutstanding(userID, text) > 0 {
		log.Printf("[srs] %q already has outstanding reminders for user %d", text, userID)
		if provenance != "" && provenance != ProvenanceUser {
			if err := e.ledger.MarkActive(userID, provenance, text, e.today()); err != nil {
				log.Printf("[srs] status repair for %q in pack %s failed: %v", text, provenance, err)
			}
		}
		return Duplicate, nil
	}

	admitted := e.now()
	batch := uuid.NewString()
	created := make([]*jobqueue.Job, 0, len(e.intervals))
	for i, interval := range e.intervals {
		occ := &Occurrence{
			UserID:      userID,
			Text:        text,
			Interval:    i,
			Provenance:  provenance,
			AdmittedAt:  admitted,
			OriginMsgID: originMsgID,
		}
		name := fmt.Sprintf("rem_%d_%s_%d", userID, batch, i)
		j, err := e.queue.RunOnce(name, userID, interval, occ, e.fire)
		if err != nil {
			// Roll back the partial sequence so a retry starts clean.
			for _, c := range created {
				c.Cancel()
			}
			return Duplicate, fmt.Errorf("failed to schedule reminder %d for %q: %w", i, text, err)
		}
		created = append(created, j)
	}

	log.Printf("[srs] scheduled %d reminders for %q (user %d, provenance %s)",
		len(created), text, userID, provenanceLabel(provenance))
	return Created, nil
}

// CancelItem cancels every outstanding occurrence for (user, text) and
// returns how many were cancelled. Backlog ledgers are not touched here;
// pack-aware callers cancel the ledger row separately.
func (e *Engine) CancelItem(userID int64, text string) int {
	text = strings.TrimSpace(text)
	cancelled := 0
	for _, j := range e.queue.JobsByUser(userID) {
		occ, ok := j.Payload().(*Occurrence)
		if !ok || occ.Text != text {
			continue
		}
		j.Cancel()
		cancelled++
	}
	if cancelled > 0 {
		log.Printf("[srs] cancelled %d reminders for %q (user %d)", cancelled, text, userID)
	}
	return cancelled
}

// CancelItemEverywhere cancels the live occurrences for (user, text) and
// opportunistically marks any matching backlog rows cancelled. This is the
// single entry point for user-initiated deletion, which does not know whether
// a word came from a pack.
func (e *Engine) CancelItemEverywhere(userID int64, text string) (timers int, ledgerRows int) {
	text = strings.TrimSpace(text)
	rows, err := e.ledger.CancelEntryAnyPack(userID, text)
	if err != nil {
		log.Printf("[srs] ledger cancel for %q failed: %v", text, err)
	}
	return e.CancelItem(userID, text), rows
}

// fire runs when one occurrence comes due. Each occurrence is an independent
// unit of failure: a failed delivery is logged, a plain fallback message is
// attempted once, and the item's remaining occurrences are unaffected.
func (e *Engine) fire(j *jobqueue.Job) {
	occ, ok := j.Payload().(*Occurrence)
	if !ok {
		log.Printf("[srs] job %s carries no occurrence payload", j.Name())
		return
	}

	if err := e.notifier.SendNotification(occ.UserID, occ.Text); err != nil {
		log.Printf("[srs] reminder delivery for %q (user %d, interval %d) failed: %v",
			occ.Text, occ.UserID, occ.Interval, err)
		if err := e.notifier.SendMessage(occ.UserID, "🔔 Reminder: "+occ.Text); err != nil {
			log.Printf("[srs] fallback delivery for %q failed: %v", occ.Text, err)
		}
	}
}

// countOutstanding counts the live, non-cancelled occurrences for one item.
func (e *Engine) countOutstanding(userID int64, text string) int {
	n := 0
	for _, j := range e.queue.JobsByUser(userID) {
		if occ, ok := j.Payload().(*Occurrence); ok && occ.Text == text {
			n++
		}
	}
	return n
}

func (e *Engine) today() string {
	return e.now().Format(store.DateLayout)
}

func provenanceLabel(p string) string {
	if p == "" || p == ProvenanceUser {
		return ProvenanceUser
	}
	return "pack:" + p
}
