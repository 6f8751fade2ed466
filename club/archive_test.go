package club

import (
	"errors"
	"testing"
	"time"

	"github.com/globalsign/mgo/bson"
	"github.com/mvierow/clubbot/models"
)

func newTestArchiver() (*Archiver, *memCurrentStore, *memHistoryStore, *memSuggestionStore, *memVoteStore, *memPollStore) {
	current := &memCurrentStore{}
	history := &memHistoryStore{}
	suggestions := &memSuggestionStore{}
	votes := &memVoteStore{}
	polls := &memPollStore{}
	return NewArchiver(current, history, suggestions, votes, polls), current, history, suggestions, votes, polls
}

func TestRetireMovesCurrentToHistory(t *testing.T) {
	archiver, current, history, _, _, _ := newTestArchiver()
	started := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	current.entry = &models.CurrentEntry{
		ItemRef:   "vol1",
		Title:     "Blood Meridian",
		PickedBy:  "100",
		StartedAt: started,
	}

	ended := started.AddDate(0, 1, 0)
	entry, err := archiver.Retire(models.ClubBook, ended)
	if err != nil {
		t.Fatal(err)
	}
	if entry.ItemRef != "vol1" || !entry.EndedAt.Equal(ended) || !entry.StartedAt.Equal(started) {
		t.Fatalf("unexpected history entry: %+v", entry)
	}

	if current.entry != nil {
		t.Fatal("expected the current slot to be cleared")
	}
	if len(history.entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history.entries))
	}
}

func TestRetireWithoutCurrent(t *testing.T) {
	archiver, _, _, _, _, _ := newTestArchiver()

	_, err := archiver.Retire(models.ClubBook, time.Now())
	if err != ErrNoCurrentSelection {
		t.Fatalf("expected ErrNoCurrentSelection, got %v", err)
	}
}

func TestStartWhileRoundActive(t *testing.T) {
	archiver, current, _, _, _, _ := newTestArchiver()
	current.entry = &models.CurrentEntry{ItemRef: "alb1"}

	_, err := archiver.Start(models.ClubAlbum, models.SuggestionEntry{ItemRef: "alb2"}, time.Now())
	if err != ErrRoundActive {
		t.Fatalf("expected ErrRoundActive, got %v", err)
	}
}

func TestCloseRoundPostconditions(t *testing.T) {
	archiver, current, history, suggestions, votes, polls := newTestArchiver()

	started := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	current.entry = &models.CurrentEntry{
		ItemRef:   "vol1",
		Title:     "Old Pick",
		StartedAt: started,
	}
	winner := models.SuggestionEntry{
		ID:      bson.NewObjectId(),
		UserID:  "200",
		ItemRef: "vol2",
		Title:   "New Pick",
	}
	suggestions.entries = []models.SuggestionEntry{winner}
	votes.entries = []models.VoteEntry{{VoterID: "1", SuggestionID: winner.ID}}
	polls.entry = &models.PollEntry{Open: false, Snapshot: suggestions.entries}

	now := started.AddDate(0, 1, 0)
	entry, err := archiver.CloseRound(models.ClubBook, winner, now)
	if err != nil {
		t.Fatal(err)
	}

	if entry.ItemRef != "vol2" || entry.PickedBy != "200" || !entry.StartedAt.Equal(now) {
		t.Fatalf("unexpected new current entry: %+v", entry)
	}
	if current.entry == nil || current.entry.ItemRef != "vol2" {
		t.Fatal("expected the winner to be the current selection")
	}
	if len(history.entries) != 1 || history.entries[0].ItemRef != "vol1" {
		t.Fatal("expected the old pick in history")
	}
	if len(suggestions.entries) != 0 {
		t.Fatal("expected nominations to be purged")
	}
	if len(votes.entries) != 0 {
		t.Fatal("expected votes to be purged")
	}
	if polls.entry != nil {
		t.Fatal("expected poll state to be reset")
	}
}

func TestCloseRoundWithoutPreviousCurrent(t *testing.T) {
	archiver, current, history, _, _, _ := newTestArchiver()
	winner := models.SuggestionEntry{ID: bson.NewObjectId(), UserID: "200", ItemRef: "vol2"}

	if _, err := archiver.CloseRound(models.ClubBook, winner, time.Now()); err != nil {
		t.Fatal(err)
	}
	if current.entry == nil || current.entry.ItemRef != "vol2" {
		t.Fatal("expected the winner to become current")
	}
	if len(history.entries) != 0 {
		t.Fatal("expected no history entry when there was no previous pick")
	}
}

type failingSuggestionStore struct {
	memSuggestionStore
	clearErr error
}

func (s *failingSuggestionStore) Clear() error {
	return s.clearErr
}

func TestCloseRoundPartialFailureKeepsWinner(t *testing.T) {
	current := &memCurrentStore{}
	suggestions := &failingSuggestionStore{clearErr: errors.New("connection reset")}
	archiver := NewArchiver(current, &memHistoryStore{}, suggestions, &memVoteStore{}, &memPollStore{})

	winner := models.SuggestionEntry{ID: bson.NewObjectId(), UserID: "200", ItemRef: "vol2"}
	entry, err := archiver.CloseRound(models.ClubBook, winner, time.Now())

	var partial *PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialFailureError, got %v", err)
	}
	if partial.Step != "purge-suggestions" {
		t.Fatalf("expected failure at purge-suggestions, got %s", partial.Step)
	}
	if entry == nil || entry.ItemRef != "vol2" {
		t.Fatal("expected the winner to be returned despite the purge failure")
	}
	if current.entry == nil || current.entry.ItemRef != "vol2" {
		t.Fatal("expected the winner to stay persisted despite the purge failure")
	}
}

func TestRetryAfterPartialFailureDoesNotDuplicateHistory(t *testing.T) {
	history := &memHistoryStore{}
	started := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ended := started.AddDate(0, 1, 0)
	entry := models.HistoryEntry{Kind: models.ClubBook, ItemRef: "vol1", StartedAt: started, EndedAt: ended}

	if err := history.Archive(entry); err != nil {
		t.Fatal(err)
	}
	if err := history.Archive(entry); err != nil {
		t.Fatal(err)
	}

	if len(history.entries) != 1 {
		t.Fatalf("expected the archive retry to upsert, got %d entries", len(history.entries))
	}
}
