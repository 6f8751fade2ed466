package club

import (
	"sort"
	"time"

	"github.com/mvierow/clubbot/models"
	"github.com/pkg/errors"
)

// Register holds the round's nominations, one live entry per member.
// With the Gated policy only the rotation's next picker may submit and a
// successful submission consumes their turn on the spot; without it any
// member may submit at any time (the book flow).
type Register struct {
	store   SuggestionStore
	history HistoryStore
	ledger  *Ledger
	gated   bool
}

func NewRegister(store SuggestionStore, history HistoryStore, ledger *Ledger, gated bool) *Register {
	return &Register{
		store:   store,
		history: history,
		ledger:  ledger,
		gated:   gated,
	}
}

// Gated reports whether submissions follow the rotation order.
func (r *Register) Gated() bool {
	return r.gated
}

// Submit stores the member's nomination for this round. Membership and
// turn order are checked at submit time, the unique index behind the
// store keeps two racing submissions from the same member from both
// landing.
func (r *Register) Submit(userID string, nomination models.SuggestionEntry) (models.SuggestionEntry, error) {
	if r.gated {
		next, err := r.ledger.NextPicker()
		if err != nil {
			return models.SuggestionEntry{}, err
		}
		if next.UserID != userID {
			return models.SuggestionEntry{}, ErrNotYourTurn
		}
	}

	picked, err := r.history.HasItem(nomination.ItemRef)
	if err != nil {
		return models.SuggestionEntry{}, errors.Wrap(err, "checking history")
	}
	if picked {
		return models.SuggestionEntry{}, ErrAlreadyPicked
	}

	nomination.UserID = userID
	if nomination.SubmittedAt.IsZero() {
		nomination.SubmittedAt = time.Now().UTC()
	}

	id, err := r.store.Insert(nomination)
	if err != nil {
		return models.SuggestionEntry{}, err
	}
	nomination.ID = id

	if r.gated {
		// the turn advances at suggestion time, not at archive time
		if err = r.ledger.RecordPick(userID); err != nil {
			// take the nomination back out, a stored entry that never
			// consumed a turn would block the member's next attempt
			r.store.Remove(userID)
			return models.SuggestionEntry{}, err
		}
	}

	return nomination, nil
}

// Withdraw removes the member's live nomination.
func (r *Register) Withdraw(userID string) error {
	existed, err := r.store.Remove(userID)
	if err != nil {
		return errors.Wrap(err, "withdrawing suggestion")
	}
	if !existed {
		return ErrNothingToWithdraw
	}
	return nil
}

// List returns the round's nominations in submission order.
func (r *Register) List() ([]models.SuggestionEntry, error) {
	entries, err := r.store.All()
	if err != nil {
		return nil, errors.Wrap(err, "listing suggestions")
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SubmittedAt.Before(entries[j].SubmittedAt)
	})

	return entries, nil
}
