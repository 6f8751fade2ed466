package club

import (
	"testing"

	"github.com/mvierow/clubbot/models"
)

func TestNextPickerPrefersLowestPickCount(t *testing.T) {
	store := &memRotationStore{entries: []models.RotationEntry{
		{UserID: "300", PickCount: 2},
		{UserID: "100", PickCount: 1},
		{UserID: "200", PickCount: 3},
	}}
	ledger := NewLedger(store)

	next, err := ledger.NextPicker()
	if err != nil {
		t.Fatal(err)
	}
	if next.UserID != "100" {
		t.Fatalf("expected user 100 to be next, got %s", next.UserID)
	}
}

func TestNextPickerBreaksTiesByUserID(t *testing.T) {
	store := &memRotationStore{entries: []models.RotationEntry{
		{UserID: "222", PickCount: 1},
		{UserID: "111", PickCount: 1},
		{UserID: "333", PickCount: 1},
	}}
	ledger := NewLedger(store)

	next, err := ledger.NextPicker()
	if err != nil {
		t.Fatal(err)
	}
	if next.UserID != "111" {
		t.Fatalf("expected tie to go to user 111, got %s", next.UserID)
	}
}

func TestNextPickerEmptyRotation(t *testing.T) {
	ledger := NewLedger(&memRotationStore{})

	_, err := ledger.NextPicker()
	if err != ErrEmptyRotation {
		t.Fatalf("expected ErrEmptyRotation, got %v", err)
	}
}

func TestRecordPickMovesMemberToBack(t *testing.T) {
	store := &memRotationStore{entries: []models.RotationEntry{
		{UserID: "100", PickCount: 0},
		{UserID: "200", PickCount: 0},
	}}
	ledger := NewLedger(store)

	if err := ledger.RecordPick("100"); err != nil {
		t.Fatal(err)
	}

	next, err := ledger.NextPicker()
	if err != nil {
		t.Fatal(err)
	}
	if next.UserID != "200" {
		t.Fatalf("expected user 200 to be next after 100 picked, got %s", next.UserID)
	}
}

func TestRecordPickTwiceCountsTwice(t *testing.T) {
	store := &memRotationStore{entries: []models.RotationEntry{
		{UserID: "100", PickCount: 0},
	}}
	ledger := NewLedger(store)

	if err := ledger.RecordPick("100"); err != nil {
		t.Fatal(err)
	}
	if err := ledger.RecordPick("100"); err != nil {
		t.Fatal(err)
	}

	entries, _ := store.All()
	if entries[0].PickCount != 2 {
		t.Fatalf("expected pick count 2, got %d", entries[0].PickCount)
	}
}

func TestRecordSkipAdvancesTurn(t *testing.T) {
	store := &memRotationStore{entries: []models.RotationEntry{
		{UserID: "100", PickCount: 0},
		{UserID: "200", PickCount: 0},
	}}
	ledger := NewLedger(store)

	if err := ledger.RecordSkip("100"); err != nil {
		t.Fatal(err)
	}

	next, err := ledger.NextPicker()
	if err != nil {
		t.Fatal(err)
	}
	if next.UserID != "200" {
		t.Fatalf("expected user 200 after skipping 100, got %s", next.UserID)
	}
}

func TestContainsFollowsReconcile(t *testing.T) {
	store := &memRotationStore{}
	ledger := NewLedger(store)

	if _, _, err := ledger.Reconcile([]string{"100", "200"}); err != nil {
		t.Fatal(err)
	}
	in, err := ledger.Contains("200")
	if err != nil {
		t.Fatal(err)
	}
	if !in {
		t.Fatal("expected a member who just gained the role to be in the rotation")
	}

	if _, _, err = ledger.Reconcile([]string{"100"}); err != nil {
		t.Fatal(err)
	}
	in, err = ledger.Contains("200")
	if err != nil {
		t.Fatal(err)
	}
	if in {
		t.Fatal("expected a member who lost the role to be out of the rotation")
	}
}

func TestReconcileAddsAndRemoves(t *testing.T) {
	store := &memRotationStore{entries: []models.RotationEntry{
		{UserID: "A", PickCount: 4},
		{UserID: "B", PickCount: 1},
	}}
	ledger := NewLedger(store)

	added, removed, err := ledger.Reconcile([]string{"B", "C"})
	if err != nil {
		t.Fatal(err)
	}
	if added != 1 || removed != 1 {
		t.Fatalf("expected 1 added and 1 removed, got %d/%d", added, removed)
	}

	entries, _ := store.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, entry := range entries {
		switch entry.UserID {
		case "B":
			if entry.PickCount != 1 {
				t.Errorf("expected B to keep pick count 1, got %d", entry.PickCount)
			}
		case "C":
			if entry.PickCount != 0 {
				t.Errorf("expected C to start at zero, got %d", entry.PickCount)
			}
		default:
			t.Errorf("unexpected member %s in rotation", entry.UserID)
		}
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	store := &memRotationStore{entries: []models.RotationEntry{
		{UserID: "A", PickCount: 2},
	}}
	ledger := NewLedger(store)

	if _, _, err := ledger.Reconcile([]string{"A", "B"}); err != nil {
		t.Fatal(err)
	}
	added, removed, err := ledger.Reconcile([]string{"A", "B"})
	if err != nil {
		t.Fatal(err)
	}
	if added != 0 || removed != 0 {
		t.Fatalf("second reconcile should be a no-op, got %d/%d", added, removed)
	}
}
