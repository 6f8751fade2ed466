package club

import (
	"time"

	"github.com/globalsign/mgo/bson"
	"github.com/mvierow/clubbot/models"
)

// in-memory stores mirroring the conditional-write behaviour of the
// mongodb implementations

type memRotationStore struct {
	entries []models.RotationEntry
}

func (s *memRotationStore) All() ([]models.RotationEntry, error) {
	out := make([]models.RotationEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *memRotationStore) Add(userID string) error {
	for _, entry := range s.entries {
		if entry.UserID == userID {
			return nil
		}
	}
	s.entries = append(s.entries, models.RotationEntry{
		ID:     bson.NewObjectId(),
		UserID: userID,
	})
	return nil
}

func (s *memRotationStore) Remove(userID string) error {
	for i, entry := range s.entries {
		if entry.UserID == userID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memRotationStore) Increment(userID string) error {
	for i := range s.entries {
		if s.entries[i].UserID == userID {
			s.entries[i].PickCount++
			return nil
		}
	}
	return ErrEmptyRotation
}

type memSuggestionStore struct {
	entries []models.SuggestionEntry
}

func (s *memSuggestionStore) All() ([]models.SuggestionEntry, error) {
	out := make([]models.SuggestionEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *memSuggestionStore) Insert(entry models.SuggestionEntry) (bson.ObjectId, error) {
	for _, existing := range s.entries {
		if existing.UserID == entry.UserID {
			return "", ErrDuplicateSuggestion
		}
	}
	entry.ID = bson.NewObjectId()
	s.entries = append(s.entries, entry)
	return entry.ID, nil
}

func (s *memSuggestionStore) Remove(userID string) (bool, error) {
	for i, entry := range s.entries {
		if entry.UserID == userID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memSuggestionStore) Clear() error {
	s.entries = nil
	return nil
}

type memVoteStore struct {
	entries []models.VoteEntry
}

func (s *memVoteStore) All() ([]models.VoteEntry, error) {
	out := make([]models.VoteEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *memVoteStore) Upsert(voterID string, suggestionID bson.ObjectId, at time.Time) error {
	for i := range s.entries {
		if s.entries[i].VoterID == voterID {
			s.entries[i].SuggestionID = suggestionID
			s.entries[i].CastAt = at
			return nil
		}
	}
	s.entries = append(s.entries, models.VoteEntry{
		ID:           bson.NewObjectId(),
		VoterID:      voterID,
		SuggestionID: suggestionID,
		CastAt:       at,
	})
	return nil
}

func (s *memVoteStore) Clear() error {
	s.entries = nil
	return nil
}

type memPollStore struct {
	entry *models.PollEntry
}

func (s *memPollStore) Get() (*models.PollEntry, error) {
	if s.entry == nil {
		return nil, nil
	}
	copied := *s.entry
	return &copied, nil
}

func (s *memPollStore) Create(entry models.PollEntry) error {
	if s.entry != nil && s.entry.Open {
		return ErrPollAlreadyOpen
	}
	s.entry = &entry
	return nil
}

func (s *memPollStore) Close(at time.Time) (*models.PollEntry, error) {
	if s.entry == nil || !s.entry.Open {
		return nil, ErrPollClosed
	}
	s.entry.Open = false
	s.entry.ClosedAt = at
	copied := *s.entry
	return &copied, nil
}

func (s *memPollStore) Delete() error {
	s.entry = nil
	return nil
}

type memCurrentStore struct {
	entry *models.CurrentEntry
}

func (s *memCurrentStore) Get() (*models.CurrentEntry, error) {
	if s.entry == nil {
		return nil, nil
	}
	copied := *s.entry
	return &copied, nil
}

func (s *memCurrentStore) Create(entry models.CurrentEntry) error {
	if s.entry != nil {
		return ErrRoundActive
	}
	s.entry = &entry
	return nil
}

func (s *memCurrentStore) Set(entry models.CurrentEntry) error {
	s.entry = &entry
	return nil
}

func (s *memCurrentStore) Clear() error {
	s.entry = nil
	return nil
}

type memHistoryStore struct {
	entries []models.HistoryEntry
}

func (s *memHistoryStore) All() ([]models.HistoryEntry, error) {
	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *memHistoryStore) Archive(entry models.HistoryEntry) error {
	for i := range s.entries {
		if s.entries[i].ItemRef == entry.ItemRef && s.entries[i].StartedAt.Equal(entry.StartedAt) {
			s.entries[i] = entry
			return nil
		}
	}
	entry.ID = bson.NewObjectId()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memHistoryStore) HasItem(itemRef string) (bool, error) {
	for _, entry := range s.entries {
		if entry.ItemRef == itemRef {
			return true, nil
		}
	}
	return false, nil
}

type memRatingStore struct {
	entries []models.RatingEntry
}

func (s *memRatingStore) Rate(entry models.RatingEntry) error {
	for i := range s.entries {
		if s.entries[i].UserID == entry.UserID && s.entries[i].ItemRef == entry.ItemRef {
			s.entries[i].Rating = entry.Rating
			s.entries[i].Comment = entry.Comment
			s.entries[i].RatedAt = entry.RatedAt
			return nil
		}
	}
	entry.ID = bson.NewObjectId()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memRatingStore) ForItem(itemRef string) ([]models.RatingEntry, error) {
	var out []models.RatingEntry
	for _, entry := range s.entries {
		if entry.ItemRef == itemRef {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *memRatingStore) All() ([]models.RatingEntry, error) {
	out := make([]models.RatingEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
