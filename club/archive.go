package club

import (
	"time"

	"github.com/mvierow/clubbot/models"
	"github.com/pkg/errors"
)

// Archiver performs the round transitions: retiring the current
// selection into history, starting a new one, and the combined close
// that book polls end with. History and current writes always happen
// before any purge so a failure can never lose the winner.
type Archiver struct {
	current     CurrentStore
	history     HistoryStore
	suggestions SuggestionStore
	votes       VoteStore
	polls       PollStore
}

func NewArchiver(current CurrentStore, history HistoryStore, suggestions SuggestionStore, votes VoteStore, polls PollStore) *Archiver {
	return &Archiver{
		current:     current,
		history:     history,
		suggestions: suggestions,
		votes:       votes,
		polls:       polls,
	}
}

// Current returns the active selection, nil when the round is between
// selections.
func (a *Archiver) Current() (*models.CurrentEntry, error) {
	entry, err := a.current.Get()
	if err != nil {
		return nil, errors.Wrap(err, "reading current selection")
	}
	return entry, nil
}

// Retire moves the current selection into history with the given end
// time and clears the active slot.
func (a *Archiver) Retire(kind models.ClubKind, now time.Time) (*models.HistoryEntry, error) {
	current, err := a.current.Get()
	if err != nil {
		return nil, errors.Wrap(err, "reading current selection")
	}
	if current == nil {
		return nil, ErrNoCurrentSelection
	}

	entry := historyFromCurrent(kind, *current, now)
	if err = a.history.Archive(entry); err != nil {
		return nil, errors.Wrap(err, "archiving current selection")
	}
	if err = a.current.Clear(); err != nil {
		return nil, &PartialFailureError{Step: "clear-current", Err: err}
	}

	return &entry, nil
}

// Start opens a new round with the nomination as the active selection.
func (a *Archiver) Start(kind models.ClubKind, nomination models.SuggestionEntry, now time.Time) (*models.CurrentEntry, error) {
	entry := currentFromNomination(kind, nomination, now)
	if err := a.current.Create(entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CloseRound promotes the poll winner to the current selection as one
// logical unit: retire the old selection if any, install the winner,
// then purge the round's nominations, votes and poll state. The purge
// only runs once the winner is safely persisted, and a failure after a
// committed step surfaces as a PartialFailureError naming the step.
func (a *Archiver) CloseRound(kind models.ClubKind, winner models.SuggestionEntry, now time.Time) (*models.CurrentEntry, error) {
	previous, err := a.current.Get()
	if err != nil {
		return nil, errors.Wrap(err, "reading current selection")
	}
	if previous != nil {
		if err = a.history.Archive(historyFromCurrent(kind, *previous, now)); err != nil {
			return nil, errors.Wrap(err, "archiving previous selection")
		}
	}

	entry := currentFromNomination(kind, winner, now)
	if err = a.current.Set(entry); err != nil {
		if previous != nil {
			return nil, &PartialFailureError{Step: "set-current", Err: err}
		}
		return nil, errors.Wrap(err, "setting current selection")
	}

	if err = a.suggestions.Clear(); err != nil {
		return &entry, &PartialFailureError{Step: "purge-suggestions", Err: err}
	}
	if err = a.votes.Clear(); err != nil {
		return &entry, &PartialFailureError{Step: "purge-votes", Err: err}
	}
	if err = a.polls.Delete(); err != nil {
		return &entry, &PartialFailureError{Step: "reset-poll", Err: err}
	}

	return &entry, nil
}

func historyFromCurrent(kind models.ClubKind, current models.CurrentEntry, now time.Time) models.HistoryEntry {
	return models.HistoryEntry{
		Kind:      kind,
		ItemRef:   current.ItemRef,
		Title:     current.Title,
		Artist:    current.Artist,
		CoverURL:  current.CoverURL,
		ItemURL:   current.ItemURL,
		PickedBy:  current.PickedBy,
		StartedAt: current.StartedAt,
		EndedAt:   now,
	}
}

func currentFromNomination(kind models.ClubKind, nomination models.SuggestionEntry, now time.Time) models.CurrentEntry {
	return models.CurrentEntry{
		ID:        string(kind),
		Kind:      kind,
		ItemRef:   nomination.ItemRef,
		Title:     nomination.Title,
		Artist:    nomination.Artist,
		CoverURL:  nomination.CoverURL,
		ItemURL:   nomination.ItemURL,
		PickedBy:  nomination.UserID,
		StartedAt: now,
	}
}
