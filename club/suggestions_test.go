package club

import (
	"testing"
	"time"

	"github.com/mvierow/clubbot/models"
	"github.com/pkg/errors"
)

func TestSubmitStoresNomination(t *testing.T) {
	store := &memSuggestionStore{}
	register := NewRegister(store, &memHistoryStore{}, nil, false)

	entry, err := register.Submit("100", models.SuggestionEntry{
		ItemRef: "vol1",
		Title:   "Blood Meridian",
	})
	if err != nil {
		t.Fatal(err)
	}
	if entry.ID == "" {
		t.Fatal("expected an id on the stored nomination")
	}
	if entry.UserID != "100" {
		t.Fatalf("expected submitter id on entry, got %s", entry.UserID)
	}
	if entry.SubmittedAt.IsZero() {
		t.Fatal("expected SubmittedAt to be set")
	}
}

func TestSubmitRejectsSecondNomination(t *testing.T) {
	store := &memSuggestionStore{}
	register := NewRegister(store, &memHistoryStore{}, nil, false)

	if _, err := register.Submit("100", models.SuggestionEntry{ItemRef: "vol1"}); err != nil {
		t.Fatal(err)
	}
	_, err := register.Submit("100", models.SuggestionEntry{ItemRef: "vol2"})
	if err != ErrDuplicateSuggestion {
		t.Fatalf("expected ErrDuplicateSuggestion, got %v", err)
	}
}

func TestSubmitRejectsHistoryItem(t *testing.T) {
	history := &memHistoryStore{entries: []models.HistoryEntry{
		{ItemRef: "vol1", Title: "Blood Meridian"},
	}}
	register := NewRegister(&memSuggestionStore{}, history, nil, false)

	_, err := register.Submit("100", models.SuggestionEntry{ItemRef: "vol1"})
	if err != ErrAlreadyPicked {
		t.Fatalf("expected ErrAlreadyPicked, got %v", err)
	}
}

func TestGatedSubmitOnlyForNextPicker(t *testing.T) {
	rotation := &memRotationStore{entries: []models.RotationEntry{
		{UserID: "100", PickCount: 0},
		{UserID: "200", PickCount: 1},
	}}
	ledger := NewLedger(rotation)
	register := NewRegister(&memSuggestionStore{}, &memHistoryStore{}, ledger, true)

	_, err := register.Submit("200", models.SuggestionEntry{ItemRef: "alb1"})
	if err != ErrNotYourTurn {
		t.Fatalf("expected ErrNotYourTurn for out-of-turn member, got %v", err)
	}

	if _, err = register.Submit("100", models.SuggestionEntry{ItemRef: "alb1"}); err != nil {
		t.Fatal(err)
	}
}

func TestGatedSubmitConsumesTurn(t *testing.T) {
	rotation := &memRotationStore{entries: []models.RotationEntry{
		{UserID: "100", PickCount: 0},
		{UserID: "200", PickCount: 0},
	}}
	ledger := NewLedger(rotation)
	register := NewRegister(&memSuggestionStore{}, &memHistoryStore{}, ledger, true)

	if _, err := register.Submit("100", models.SuggestionEntry{ItemRef: "alb1"}); err != nil {
		t.Fatal(err)
	}

	next, err := ledger.NextPicker()
	if err != nil {
		t.Fatal(err)
	}
	if next.UserID != "200" {
		t.Fatalf("expected turn to pass to 200 after submission, got %s", next.UserID)
	}
}

// rotation store whose increments always fail, the way a concurrent
// reconcile that dropped the member mid-submit would make them fail
type vanishingRotationStore struct {
	memRotationStore
}

func (s *vanishingRotationStore) Increment(userID string) error {
	return errors.New("rotation entry vanished")
}

func TestGatedSubmitRollsBackWhenTurnNotRecorded(t *testing.T) {
	rotation := &vanishingRotationStore{memRotationStore{entries: []models.RotationEntry{
		{UserID: "100", PickCount: 0},
	}}}
	store := &memSuggestionStore{}
	register := NewRegister(store, &memHistoryStore{}, NewLedger(rotation), true)

	if _, err := register.Submit("100", models.SuggestionEntry{ItemRef: "alb1"}); err == nil {
		t.Fatal("expected the submit to fail when the pick cannot be recorded")
	}

	entries, _ := store.All()
	if len(entries) != 0 {
		t.Fatalf("expected no leftover nomination, got %d", len(entries))
	}
}

func TestGatedSubmitEmptyRotation(t *testing.T) {
	ledger := NewLedger(&memRotationStore{})
	register := NewRegister(&memSuggestionStore{}, &memHistoryStore{}, ledger, true)

	_, err := register.Submit("100", models.SuggestionEntry{ItemRef: "alb1"})
	if err != ErrEmptyRotation {
		t.Fatalf("expected ErrEmptyRotation, got %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	store := &memSuggestionStore{}
	register := NewRegister(store, &memHistoryStore{}, nil, false)

	if _, err := register.Submit("100", models.SuggestionEntry{ItemRef: "vol1"}); err != nil {
		t.Fatal(err)
	}
	if err := register.Withdraw("100"); err != nil {
		t.Fatal(err)
	}
	if err := register.Withdraw("100"); err != ErrNothingToWithdraw {
		t.Fatalf("expected ErrNothingToWithdraw on second withdraw, got %v", err)
	}
}

func TestListSortsBySubmissionTime(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &memSuggestionStore{}
	register := NewRegister(store, &memHistoryStore{}, nil, false)

	for i, userID := range []string{"300", "100", "200"} {
		_, err := register.Submit(userID, models.SuggestionEntry{
			ItemRef:     "vol" + userID,
			SubmittedAt: base.Add(time.Duration(2-i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	entries, err := register.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"200", "100", "300"}
	for i, userID := range want {
		if entries[i].UserID != userID {
			t.Fatalf("expected %s at position %d, got %s", userID, i, entries[i].UserID)
		}
	}
}
