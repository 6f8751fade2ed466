package club

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/mvierow/clubbot/helpers"
	"github.com/mvierow/clubbot/models"
	"github.com/pkg/errors"
)

// Stores bundles the mongodb-backed stores for one club. The uniqueness
// guards rely on the indexes created by the club indexes migration.
type Stores struct {
	Rotation    RotationStore
	Suggestions SuggestionStore
	Votes       VoteStore
	Polls       PollStore
	Current     CurrentStore
	History     HistoryStore
	Ratings     RatingStore
}

func NewMongoStores(kind models.ClubKind) Stores {
	return Stores{
		Rotation:    &mdbRotationStore{kind: kind},
		Suggestions: &mdbSuggestionStore{kind: kind},
		Votes:       &mdbVoteStore{kind: kind},
		Polls:       &mdbPollStore{kind: kind},
		Current:     &mdbCurrentStore{kind: kind},
		History:     &mdbHistoryStore{kind: kind},
		Ratings:     &mdbRatingStore{kind: kind},
	}
}

type mdbRotationStore struct {
	kind models.ClubKind
}

func (s *mdbRotationStore) All() (entries []models.RotationEntry, err error) {
	err = helpers.MDbIter(helpers.MdbCollection(models.ClubRotationTable).Find(
		bson.M{"kind": s.kind},
	)).All(&entries)
	return entries, err
}

func (s *mdbRotationStore) Add(userID string) error {
	_, err := helpers.MDbInsert(models.ClubRotationTable, models.RotationEntry{
		Kind:      s.kind,
		UserID:    userID,
		PickCount: 0,
	})
	if mgo.IsDup(err) {
		return nil
	}
	return err
}

func (s *mdbRotationStore) Remove(userID string) error {
	err := helpers.MdbDeleteQuery(models.ClubRotationTable,
		bson.M{"kind": s.kind, "userid": userID})
	if helpers.IsMdbNotFound(err) {
		return nil
	}
	return err
}

func (s *mdbRotationStore) Increment(userID string) error {
	err := helpers.MDbUpdateQuery(models.ClubRotationTable,
		bson.M{"kind": s.kind, "userid": userID},
		bson.M{"$inc": bson.M{"pickcount": 1}})
	if helpers.IsMdbNotFound(err) {
		return errors.Errorf("user %s is not in the %s rotation", userID, s.kind)
	}
	return err
}

type mdbSuggestionStore struct {
	kind models.ClubKind
}

func (s *mdbSuggestionStore) All() (entries []models.SuggestionEntry, err error) {
	err = helpers.MDbIter(helpers.MdbCollection(models.ClubSuggestionsTable).Find(
		bson.M{"kind": s.kind},
	)).All(&entries)
	return entries, err
}

func (s *mdbSuggestionStore) Insert(entry models.SuggestionEntry) (bson.ObjectId, error) {
	entry.Kind = s.kind
	id, err := helpers.MDbInsert(models.ClubSuggestionsTable, entry)
	if mgo.IsDup(err) {
		return "", ErrDuplicateSuggestion
	}
	return id, err
}

func (s *mdbSuggestionStore) Remove(userID string) (bool, error) {
	err := helpers.MdbDeleteQuery(models.ClubSuggestionsTable,
		bson.M{"kind": s.kind, "userid": userID})
	if helpers.IsMdbNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *mdbSuggestionStore) Clear() error {
	_, err := helpers.MdbCollection(models.ClubSuggestionsTable).RemoveAll(
		bson.M{"kind": s.kind})
	return err
}

type mdbVoteStore struct {
	kind models.ClubKind
}

func (s *mdbVoteStore) All() (entries []models.VoteEntry, err error) {
	err = helpers.MDbIter(helpers.MdbCollection(models.ClubVotesTable).Find(
		bson.M{"kind": s.kind},
	)).All(&entries)
	return entries, err
}

func (s *mdbVoteStore) Upsert(voterID string, suggestionID bson.ObjectId, at time.Time) error {
	// single atomic write, the unique index on (kind, voterid) closes the
	// race between two first-time votes from the same voter
	return helpers.MDbUpsert(models.ClubVotesTable,
		bson.M{"kind": s.kind, "voterid": voterID},
		bson.M{"$set": bson.M{"suggestionid": suggestionID, "castat": at}})
}

func (s *mdbVoteStore) Clear() error {
	_, err := helpers.MdbCollection(models.ClubVotesTable).RemoveAll(
		bson.M{"kind": s.kind})
	return err
}

type mdbPollStore struct {
	kind models.ClubKind
}

func (s *mdbPollStore) Get() (*models.PollEntry, error) {
	var entry models.PollEntry
	err := helpers.MdbOne(
		helpers.MdbCollection(models.ClubPollsTable).Find(bson.M{"_id": string(s.kind)}),
		&entry,
	)
	if helpers.IsMdbNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *mdbPollStore) Create(entry models.PollEntry) error {
	entry.ID = string(s.kind)
	entry.Kind = s.kind
	_, err := helpers.MDbInsert(models.ClubPollsTable, entry)
	if mgo.IsDup(err) {
		// leftover closed state from a round that ended without votes may
		// be replaced, a live poll may not
		err = helpers.MdbCollection(models.ClubPollsTable).Update(
			bson.M{"_id": string(s.kind), "open": false}, entry)
		if helpers.IsMdbNotFound(err) {
			return ErrPollAlreadyOpen
		}
	}
	return err
}

func (s *mdbPollStore) Close(at time.Time) (*models.PollEntry, error) {
	// conditional flip, only matches while the poll is still open
	err := helpers.MDbUpdateQuery(models.ClubPollsTable,
		bson.M{"_id": string(s.kind), "open": true},
		bson.M{"$set": bson.M{"open": false, "closedat": at}})
	if helpers.IsMdbNotFound(err) {
		return nil, ErrPollClosed
	}
	if err != nil {
		return nil, err
	}
	return s.Get()
}

func (s *mdbPollStore) Delete() error {
	err := helpers.MdbDeleteQuery(models.ClubPollsTable,
		bson.M{"_id": string(s.kind)})
	if helpers.IsMdbNotFound(err) {
		return nil
	}
	return err
}

type mdbCurrentStore struct {
	kind models.ClubKind
}

func (s *mdbCurrentStore) Get() (*models.CurrentEntry, error) {
	var entry models.CurrentEntry
	err := helpers.MdbOne(
		helpers.MdbCollection(models.ClubCurrentTable).Find(bson.M{"_id": string(s.kind)}),
		&entry,
	)
	if helpers.IsMdbNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *mdbCurrentStore) Create(entry models.CurrentEntry) error {
	entry.ID = string(s.kind)
	entry.Kind = s.kind
	_, err := helpers.MDbInsert(models.ClubCurrentTable, entry)
	if mgo.IsDup(err) {
		return ErrRoundActive
	}
	return err
}

func (s *mdbCurrentStore) Set(entry models.CurrentEntry) error {
	entry.ID = string(s.kind)
	entry.Kind = s.kind
	return helpers.MDbUpsert(models.ClubCurrentTable,
		bson.M{"_id": string(s.kind)}, entry)
}

func (s *mdbCurrentStore) Clear() error {
	err := helpers.MdbDeleteQuery(models.ClubCurrentTable,
		bson.M{"_id": string(s.kind)})
	if helpers.IsMdbNotFound(err) {
		return nil
	}
	return err
}

type mdbHistoryStore struct {
	kind models.ClubKind
}

func (s *mdbHistoryStore) All() (entries []models.HistoryEntry, err error) {
	err = helpers.MDbIter(helpers.MdbCollection(models.ClubHistoryTable).Find(
		bson.M{"kind": s.kind},
	).Sort("-endedat")).All(&entries)
	return entries, err
}

func (s *mdbHistoryStore) Archive(entry models.HistoryEntry) error {
	entry.Kind = s.kind
	// keyed upsert so an archive retry after a partial failure lands on
	// the same row instead of duplicating it
	return helpers.MDbUpsert(models.ClubHistoryTable,
		bson.M{"kind": s.kind, "itemref": entry.ItemRef, "startedat": entry.StartedAt},
		bson.M{"$set": bson.M{
			"title":    entry.Title,
			"artist":   entry.Artist,
			"coverurl": entry.CoverURL,
			"itemurl":  entry.ItemURL,
			"pickedby": entry.PickedBy,
			"endedat":  entry.EndedAt,
		}})
}

func (s *mdbHistoryStore) HasItem(itemRef string) (bool, error) {
	count, err := helpers.MdbCount(models.ClubHistoryTable,
		bson.M{"kind": s.kind, "itemref": itemRef})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type mdbRatingStore struct {
	kind models.ClubKind
}

func (s *mdbRatingStore) Rate(entry models.RatingEntry) error {
	entry.Kind = s.kind
	return helpers.MDbUpsert(models.ClubRatingsTable,
		bson.M{"kind": s.kind, "userid": entry.UserID, "itemref": entry.ItemRef},
		bson.M{"$set": bson.M{
			"rating":  entry.Rating,
			"comment": entry.Comment,
			"ratedat": entry.RatedAt,
		}})
}

func (s *mdbRatingStore) ForItem(itemRef string) (entries []models.RatingEntry, err error) {
	err = helpers.MDbIter(helpers.MdbCollection(models.ClubRatingsTable).Find(
		bson.M{"kind": s.kind, "itemref": itemRef},
	)).All(&entries)
	return entries, err
}

func (s *mdbRatingStore) All() (entries []models.RatingEntry, err error) {
	err = helpers.MDbIter(helpers.MdbCollection(models.ClubRatingsTable).Find(
		bson.M{"kind": s.kind},
	)).All(&entries)
	return entries, err
}
