package models

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

const (
	ClubRotationTable    MongoDbCollection = "club_rotation"
	ClubSuggestionsTable MongoDbCollection = "club_suggestions"
	ClubVotesTable       MongoDbCollection = "club_votes"
	ClubPollsTable       MongoDbCollection = "club_polls"
	ClubCurrentTable     MongoDbCollection = "club_current"
	ClubHistoryTable     MongoDbCollection = "club_history"
	ClubRatingsTable     MongoDbCollection = "club_ratings"
)

// ClubKind separates the book club from the music club inside the
// shared club_* collections
type ClubKind string

const (
	ClubBook  ClubKind = "book"
	ClubAlbum ClubKind = "album"
)

// RotationEntry tracks how many times a member has picked,
// one entry per eligible member
type RotationEntry struct {
	ID        bson.ObjectId `bson:"_id,omitempty"`
	Kind      ClubKind
	UserID    string
	PickCount int
}

// SuggestionEntry is a member's nomination for the current round.
// At most one live entry per (kind, userid), enforced by a unique index.
type SuggestionEntry struct {
	ID          bson.ObjectId `bson:"_id,omitempty"`
	Kind        ClubKind
	UserID      string
	ItemRef     string // catalog id, e.g. google books volume id or spotify album id
	Title       string
	Artist      string // author for books, artist for albums
	CoverURL    string
	ItemURL     string
	Comment     string
	SubmittedAt time.Time
}

// VoteEntry is a voter's single live vote in the open poll.
// At most one per (kind, voterid), re-voting overwrites.
type VoteEntry struct {
	ID           bson.ObjectId `bson:"_id,omitempty"`
	Kind         ClubKind
	VoterID      string
	SuggestionID bson.ObjectId
	CastAt       time.Time
}

// PollEntry is the singleton poll state for a club, _id is the kind
type PollEntry struct {
	ID        string `bson:"_id"`
	Kind      ClubKind
	Open      bool
	OpenedAt  time.Time
	ClosedAt  time.Time
	OpenedBy  string
	ChannelID string
	MessageID string
	// Deadline is zero when the poll only closes manually
	Deadline time.Time
	Snapshot []SuggestionEntry
}

// CurrentEntry is the active round's selection, _id is the kind
type CurrentEntry struct {
	ID        string `bson:"_id"`
	Kind      ClubKind
	ItemRef   string
	Title     string
	Artist    string
	CoverURL  string
	ItemURL   string
	PickedBy  string
	StartedAt time.Time
}

// HistoryEntry is an archived round, append-only
type HistoryEntry struct {
	ID        bson.ObjectId `bson:"_id,omitempty"`
	Kind      ClubKind
	ItemRef   string
	Title     string
	Artist    string
	CoverURL  string
	ItemURL   string
	PickedBy  string
	StartedAt time.Time
	EndedAt   time.Time
}

// RatingEntry is a member's rating of an archived item,
// upsert keyed on (kind, userid, itemref)
type RatingEntry struct {
	ID      bson.ObjectId `bson:"_id,omitempty"`
	Kind    ClubKind
	UserID  string
	ItemRef string
	Rating  int
	Comment string
	RatedAt time.Time
}
