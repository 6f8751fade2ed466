package club

import (
	"time"

	"github.com/globalsign/mgo/bson"
	"github.com/mvierow/clubbot/models"
	"github.com/pkg/errors"
)

// Poll is the voting window over a snapshot of the round's nominations.
// There is at most one poll per club, its open/closed flip is a single
// conditional write so concurrent close attempts cannot both win.
type Poll struct {
	polls PollStore
	votes VoteStore
}

func NewPoll(polls PollStore, votes VoteStore) *Poll {
	return &Poll{polls: polls, votes: votes}
}

// Current returns the poll state, nil when none exists.
func (p *Poll) Current() (*models.PollEntry, error) {
	entry, err := p.polls.Get()
	if err != nil {
		return nil, errors.Wrap(err, "reading poll state")
	}
	return entry, nil
}

// Open starts a poll over the given nomination snapshot. The deadline is
// zero for manual-close-only polls.
func (p *Poll) Open(entry models.PollEntry) error {
	entry.Open = true
	if entry.OpenedAt.IsZero() {
		entry.OpenedAt = time.Now().UTC()
	}
	return p.polls.Create(entry)
}

// CastVote records the voter's single live vote. Voting again replaces
// the earlier vote, it never accumulates.
func (p *Poll) CastVote(voterID string, suggestionID bson.ObjectId) error {
	entry, err := p.polls.Get()
	if err != nil {
		return errors.Wrap(err, "reading poll state")
	}
	if entry == nil || !entry.Open {
		return ErrPollClosed
	}

	inSnapshot := false
	for _, nomination := range entry.Snapshot {
		if nomination.ID == suggestionID {
			inSnapshot = true
			break
		}
	}
	if !inSnapshot {
		return ErrUnknownNomination
	}

	return errors.Wrap(p.votes.Upsert(voterID, suggestionID, time.Now().UTC()), "casting vote")
}

// Close ends the poll. Exactly one of any number of concurrent callers
// (admin command, deadline task) succeeds and receives the closed state,
// the others get ErrPollClosed.
func (p *Poll) Close(at time.Time) (*models.PollEntry, error) {
	return p.polls.Close(at)
}

// Discard drops the poll state entirely. Used after a poll closed
// without a countable vote, the nominations stay and the next Open
// starts from a clean slate.
func (p *Poll) Discard() error {
	return errors.Wrap(p.polls.Delete(), "discarding poll state")
}

// Votes returns all live votes for the poll.
func (p *Poll) Votes() ([]models.VoteEntry, error) {
	votes, err := p.votes.All()
	if err != nil {
		return nil, errors.Wrap(err, "reading votes")
	}
	return votes, nil
}

// Tally computes the poll winner by plurality. Ties go to the nomination
// that was submitted first. Votes pointing outside the snapshot are
// ignored. A poll with zero countable votes yields ErrNoVotes, the
// caller decides what that means for the round.
func Tally(snapshot []models.SuggestionEntry, votes []models.VoteEntry) (models.SuggestionEntry, error) {
	counts := make(map[bson.ObjectId]int, len(snapshot))
	byID := make(map[bson.ObjectId]models.SuggestionEntry, len(snapshot))
	for _, nomination := range snapshot {
		byID[nomination.ID] = nomination
	}

	total := 0
	for _, vote := range votes {
		if _, ok := byID[vote.SuggestionID]; !ok {
			continue
		}
		counts[vote.SuggestionID]++
		total++
	}
	if total == 0 {
		return models.SuggestionEntry{}, ErrNoVotes
	}

	var winner models.SuggestionEntry
	winnerVotes := -1
	for id, count := range counts {
		nomination := byID[id]
		if count > winnerVotes {
			winner, winnerVotes = nomination, count
			continue
		}
		if count == winnerVotes && nomination.SubmittedAt.Before(winner.SubmittedAt) {
			winner = nomination
		}
	}

	return winner, nil
}
