package club

import (
	"time"

	"github.com/globalsign/mgo/bson"
	"github.com/mvierow/clubbot/models"
)

// The engine talks to persistence through these interfaces. Each method
// maps to a single conditional write or read against the store, the
// engine never does read-then-write across two calls where a uniqueness
// or state guard is required.

type RotationStore interface {
	All() ([]models.RotationEntry, error)
	// Add inserts a new entry with pick count zero. Adding a member that
	// already has an entry is a no-op.
	Add(userID string) error
	Remove(userID string) error
	// Increment adds exactly one to the member's pick count, failing if
	// the member is not in the rotation.
	Increment(userID string) error
}

type SuggestionStore interface {
	All() ([]models.SuggestionEntry, error)
	// Insert fails with ErrDuplicateSuggestion when the member already
	// has a live entry (unique index on (kind, userid)).
	Insert(entry models.SuggestionEntry) (bson.ObjectId, error)
	// Remove reports whether an entry existed.
	Remove(userID string) (bool, error)
	Clear() error
}

type VoteStore interface {
	All() ([]models.VoteEntry, error)
	// Upsert replaces the voter's live vote in a single write. It must
	// never be implemented as delete-then-insert.
	Upsert(voterID string, suggestionID bson.ObjectId, at time.Time) error
	Clear() error
}

type PollStore interface {
	// Get returns nil when no poll state exists for the club.
	Get() (*models.PollEntry, error)
	// Create fails with ErrPollAlreadyOpen when an open poll exists
	// (singleton id per club). Leftover closed state is replaced so a
	// no-votes round can never block the next poll.
	Create(entry models.PollEntry) error
	// Close flips the poll from open to closed in one conditional write
	// and returns the closed state. Only the first caller succeeds,
	// everyone else gets ErrPollClosed.
	Close(at time.Time) (*models.PollEntry, error)
	Delete() error
}

type CurrentStore interface {
	// Get returns nil when no round is active.
	Get() (*models.CurrentEntry, error)
	// Create fails with ErrRoundActive when a selection exists.
	Create(entry models.CurrentEntry) error
	// Set replaces the selection unconditionally. Used by the archiver,
	// whose retire step has already consumed the old selection.
	Set(entry models.CurrentEntry) error
	Clear() error
}

type HistoryStore interface {
	All() ([]models.HistoryEntry, error)
	// Archive upserts keyed on (kind, itemref, startedat) so that an
	// archiver retry after a partial failure cannot duplicate a row.
	Archive(entry models.HistoryEntry) error
	HasItem(itemRef string) (bool, error)
}

type RatingStore interface {
	// Rate upserts keyed on (kind, userid, itemref), a later rating
	// overwrites the earlier one.
	Rate(entry models.RatingEntry) error
	ForItem(itemRef string) ([]models.RatingEntry, error)
	All() ([]models.RatingEntry, error)
}
