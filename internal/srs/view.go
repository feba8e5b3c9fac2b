package srs

import (
	"fmt"
	"math/rand"
)

// Snapshot reconstructs the user's dictionary from the two live sources: the
// outstanding reminder occurrences and the pending backlog ledgers. There is
// no third record of "what is active"; an item is active exactly while timers
// for it are outstanding. When a text appears both as an occurrence and as a
// pending ledger row (a transient state right after admission), the active
// side wins — that is the only resolution rule.
//
// The returned slice is an unordered multiset; callers order and page it with
// Arrange.
func (e *Engine) Snapshot(userID int64) ([]ViewItem, error) {
	active := make(map[string]*ViewItem)
	for _, j := range e.queue.JobsByUser(userID) {
		occ, ok := j.Payload().(*Occurrence)
		if !ok {
			continue
		}
		item, seen := active[occ.Text]
		if !seen {
			item = &ViewItem{
				Text:       occ.Text,
				Status:     StatusActive,
				Provenance: provenanceLabel(occ.Provenance),
				NextDue:    j.Due(),
			}
			active[occ.Text] = item
		}
		item.Remaining++
		if due := j.Due(); due.Before(item.NextDue) {
			item.NextDue = due
		}
	}

	pending, err := e.ledger.PendingByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending backlog: %w", err)
	}

	items := make([]ViewItem, 0, len(active)+len(pending))
	for _, item := range active {
		items = append(items, *item)
	}
	for _, entry := range pending {
		if _, ok := active[entry.Word]; ok {
			continue
		}
		items = append(items, ViewItem{
			Text:          entry.Word,
			Status:        StatusPending,
			Provenance:    "pack:" + entry.PackID,
			Remaining:     len(e.intervals),
			EstimatedDate: entry.EstimatedDate,
		})
	}
	return items, nil
}

// RandomActive picks a random item from the user's active set, for the
// recall-prompt feature. Returns false when nothing is active.
func (e *Engine) RandomActive(userID int64) (string, bool) {
	seen := make(map[string]struct{})
	var texts []string
	for _, j := range e.queue.JobsByUser(userID) {
		occ, ok := j.Payload().(*Occurrence)
		if !ok {
			continue
		}
		if _, dup := seen[occ.Text]; dup {
			continue
		}
		seen[occ.Text] = struct{}{}
		texts = append(texts, occ.Text)
	}
	if len(texts) == 0 {
		return "", false
	}
	return texts[rand.Intn(len(texts))], true
}
