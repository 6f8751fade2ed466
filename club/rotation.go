package club

import (
	"sort"

	"github.com/mvierow/clubbot/models"
	"github.com/pkg/errors"
)

// Ledger is the fair-turn-order queue over all eligible members. Whoever
// has picked the least often is up next, ties go to the smaller user id
// so the order is stable.
type Ledger struct {
	store RotationStore
}

func NewLedger(store RotationStore) *Ledger {
	return &Ledger{store: store}
}

// NextPicker returns the member whose turn it is.
func (l *Ledger) NextPicker() (models.RotationEntry, error) {
	entries, err := l.store.All()
	if err != nil {
		return models.RotationEntry{}, errors.Wrap(err, "reading rotation")
	}
	if len(entries) == 0 {
		return models.RotationEntry{}, ErrEmptyRotation
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PickCount != entries[j].PickCount {
			return entries[i].PickCount < entries[j].PickCount
		}
		return entries[i].UserID < entries[j].UserID
	})

	return entries[0], nil
}

// Contains reports whether the member holds a rotation entry.
func (l *Ledger) Contains(userID string) (bool, error) {
	entries, err := l.store.All()
	if err != nil {
		return false, errors.Wrap(err, "reading rotation")
	}
	for _, entry := range entries {
		if entry.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

// RecordPick moves the member to the back of the queue after they picked.
// Not idempotent, callers call this exactly once per pick.
func (l *Ledger) RecordPick(userID string) error {
	return errors.Wrap(l.store.Increment(userID), "recording pick")
}

// RecordSkip has the same effect as a pick without granting a selection,
// used by admins to pass over an absent member.
func (l *Ledger) RecordSkip(userID string) error {
	return errors.Wrap(l.store.Increment(userID), "recording skip")
}

// Reconcile syncs the ledger against the authoritative eligible member
// set: newcomers enter at count zero, members who lost eligibility are
// dropped. Safe to run repeatedly, a second run with the same set
// performs no writes.
func (l *Ledger) Reconcile(eligible []string) (added int, removed int, err error) {
	entries, err := l.store.All()
	if err != nil {
		return 0, 0, errors.Wrap(err, "reading rotation")
	}

	known := make(map[string]bool, len(entries))
	for _, entry := range entries {
		known[entry.UserID] = true
	}
	want := make(map[string]bool, len(eligible))
	for _, userID := range eligible {
		want[userID] = true
	}

	for _, userID := range eligible {
		if known[userID] {
			continue
		}
		if err = l.store.Add(userID); err != nil {
			return added, removed, errors.Wrap(err, "adding rotation entry")
		}
		added++
	}

	for _, entry := range entries {
		if want[entry.UserID] {
			continue
		}
		if err = l.store.Remove(entry.UserID); err != nil {
			return added, removed, errors.Wrap(err, "removing rotation entry")
		}
		removed++
	}

	return added, removed, nil
}
