package club

import (
	"errors"
	"fmt"
)

// Failure kinds returned by the club engine. Handlers match on these to
// pick a user-facing reply, everything else is a store failure and gets
// wrapped with context instead.
var (
	ErrEmptyRotation       = errors.New("club: rotation is empty")
	ErrNotYourTurn         = errors.New("club: not this member's turn")
	ErrDuplicateSuggestion = errors.New("club: member already has a live suggestion")
	ErrAlreadyPicked       = errors.New("club: item was already picked in a past round")
	ErrNothingToWithdraw   = errors.New("club: member has no live suggestion")
	ErrUnknownNomination   = errors.New("club: nomination is not part of the poll")
	ErrNoVotes             = errors.New("club: no votes were cast")
	ErrPollAlreadyOpen     = errors.New("club: a poll is already open")
	ErrPollClosed          = errors.New("club: poll is closed")
	ErrNoCurrentSelection  = errors.New("club: no current selection")
	ErrRoundActive         = errors.New("club: a round is already active")
)

// PartialFailureError reports that an earlier step of a multi-step write
// committed before a later step failed. It must be surfaced distinctly so
// an operator can reconcile; blind retries risk inconsistent state.
type PartialFailureError struct {
	Step string
	Err  error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("club: partial failure at step %s: %s", e.Step, e.Err.Error())
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
