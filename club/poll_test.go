package club

import (
	"testing"
	"time"

	"github.com/globalsign/mgo/bson"
	"github.com/mvierow/clubbot/models"
)

func pollSnapshot(base time.Time) []models.SuggestionEntry {
	return []models.SuggestionEntry{
		{ID: bson.NewObjectId(), UserID: "100", Title: "A", SubmittedAt: base},
		{ID: bson.NewObjectId(), UserID: "200", Title: "B", SubmittedAt: base.Add(time.Hour)},
		{ID: bson.NewObjectId(), UserID: "300", Title: "C", SubmittedAt: base.Add(2 * time.Hour)},
	}
}

func TestOpenSecondPollFails(t *testing.T) {
	poll := NewPoll(&memPollStore{}, &memVoteStore{})

	if err := poll.Open(models.PollEntry{}); err != nil {
		t.Fatal(err)
	}
	if err := poll.Open(models.PollEntry{}); err != ErrPollAlreadyOpen {
		t.Fatalf("expected ErrPollAlreadyOpen, got %v", err)
	}
}

func TestCastVoteWithoutOpenPoll(t *testing.T) {
	poll := NewPoll(&memPollStore{}, &memVoteStore{})

	err := poll.CastVote("100", bson.NewObjectId())
	if err != ErrPollClosed {
		t.Fatalf("expected ErrPollClosed, got %v", err)
	}
}

func TestCastVoteUnknownNomination(t *testing.T) {
	snapshot := pollSnapshot(time.Now())
	poll := NewPoll(&memPollStore{}, &memVoteStore{})
	if err := poll.Open(models.PollEntry{Snapshot: snapshot}); err != nil {
		t.Fatal(err)
	}

	err := poll.CastVote("100", bson.NewObjectId())
	if err != ErrUnknownNomination {
		t.Fatalf("expected ErrUnknownNomination, got %v", err)
	}
}

func TestRevoteReplacesEarlierVote(t *testing.T) {
	snapshot := pollSnapshot(time.Now())
	votes := &memVoteStore{}
	poll := NewPoll(&memPollStore{}, votes)
	if err := poll.Open(models.PollEntry{Snapshot: snapshot}); err != nil {
		t.Fatal(err)
	}

	if err := poll.CastVote("500", snapshot[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := poll.CastVote("500", snapshot[1].ID); err != nil {
		t.Fatal(err)
	}

	all, _ := votes.All()
	if len(all) != 1 {
		t.Fatalf("expected a single live vote, got %d", len(all))
	}
	if all[0].SuggestionID != snapshot[1].ID {
		t.Fatal("expected the later vote to replace the earlier one")
	}
}

func TestCastVoteAfterClose(t *testing.T) {
	snapshot := pollSnapshot(time.Now())
	poll := NewPoll(&memPollStore{}, &memVoteStore{})
	if err := poll.Open(models.PollEntry{Snapshot: snapshot}); err != nil {
		t.Fatal(err)
	}
	if _, err := poll.Close(time.Now()); err != nil {
		t.Fatal(err)
	}

	if err := poll.CastVote("100", snapshot[0].ID); err != ErrPollClosed {
		t.Fatalf("expected ErrPollClosed after close, got %v", err)
	}
}

func TestCloseTwice(t *testing.T) {
	poll := NewPoll(&memPollStore{}, &memVoteStore{})
	if err := poll.Open(models.PollEntry{}); err != nil {
		t.Fatal(err)
	}

	closed, err := poll.Close(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if closed.Open {
		t.Fatal("expected the returned poll state to be closed")
	}

	if _, err = poll.Close(time.Now()); err != ErrPollClosed {
		t.Fatalf("expected ErrPollClosed on second close, got %v", err)
	}
}

func TestReopenAfterCloseWithoutVotes(t *testing.T) {
	snapshot := pollSnapshot(time.Now())
	poll := NewPoll(&memPollStore{}, &memVoteStore{})

	if err := poll.Open(models.PollEntry{Snapshot: snapshot}); err != nil {
		t.Fatal(err)
	}
	closed, err := poll.Close(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err = Tally(closed.Snapshot, nil); err != ErrNoVotes {
		t.Fatalf("expected ErrNoVotes, got %v", err)
	}
	if err = poll.Discard(); err != nil {
		t.Fatal(err)
	}

	if err = poll.Open(models.PollEntry{Snapshot: snapshot}); err != nil {
		t.Fatalf("expected a fresh poll to open after the no-votes round, got %v", err)
	}
}

func TestOpenReplacesLeftoverClosedState(t *testing.T) {
	poll := NewPoll(&memPollStore{}, &memVoteStore{})

	if err := poll.Open(models.PollEntry{}); err != nil {
		t.Fatal(err)
	}
	if _, err := poll.Close(time.Now()); err != nil {
		t.Fatal(err)
	}

	if err := poll.Open(models.PollEntry{}); err != nil {
		t.Fatalf("expected closed leftover state to be replaced, got %v", err)
	}

	entry, err := poll.Current()
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || !entry.Open {
		t.Fatal("expected the replacement poll to be open")
	}
}

func TestTallyPlurality(t *testing.T) {
	snapshot := pollSnapshot(time.Now())
	votes := []models.VoteEntry{
		{VoterID: "1", SuggestionID: snapshot[0].ID},
		{VoterID: "2", SuggestionID: snapshot[1].ID},
		{VoterID: "3", SuggestionID: snapshot[1].ID},
	}

	winner, err := Tally(snapshot, votes)
	if err != nil {
		t.Fatal(err)
	}
	if winner.ID != snapshot[1].ID {
		t.Fatalf("expected B to win, got %s", winner.Title)
	}
}

func TestTallyTieGoesToEarlierSubmission(t *testing.T) {
	snapshot := pollSnapshot(time.Now())
	votes := []models.VoteEntry{
		{VoterID: "1", SuggestionID: snapshot[2].ID},
		{VoterID: "2", SuggestionID: snapshot[0].ID},
	}

	winner, err := Tally(snapshot, votes)
	if err != nil {
		t.Fatal(err)
	}
	if winner.ID != snapshot[0].ID {
		t.Fatalf("expected the earlier submission to win the tie, got %s", winner.Title)
	}
}

func TestTallyNoVotes(t *testing.T) {
	snapshot := pollSnapshot(time.Now())

	_, err := Tally(snapshot, nil)
	if err != ErrNoVotes {
		t.Fatalf("expected ErrNoVotes, got %v", err)
	}
}

func TestTallyIgnoresVotesOutsideSnapshot(t *testing.T) {
	snapshot := pollSnapshot(time.Now())
	votes := []models.VoteEntry{
		{VoterID: "1", SuggestionID: bson.NewObjectId()},
		{VoterID: "2", SuggestionID: bson.NewObjectId()},
	}

	_, err := Tally(snapshot, votes)
	if err != ErrNoVotes {
		t.Fatalf("expected ErrNoVotes when no vote matches the snapshot, got %v", err)
	}
}
