package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "quicksave", []byte(`{"level":"A0"}`)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "quicksave")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"level":"A0"}` {
		t.Errorf("payload = %s", got)
	}

	// Overwrite replaces the payload.
	if err := s.Put(ctx, "quicksave", []byte(`{"level":"A1"}`)); err != nil {
		t.Fatal(err)
	}
	got, err = s.Get(ctx, "quicksave")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"level":"A1"}` {
		t.Errorf("payload after overwrite = %s", got)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := testStore(t)
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("err = %v, want ErrSlotNotFound", err)
	}
}

func TestStore_List(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	slots, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 0 {
		t.Errorf("fresh store has %d slots", len(slots))
	}

	for _, name := range []string{"a", "b"} {
		if err := s.Put(ctx, name, []byte("{}")); err != nil {
			t.Fatal(err)
		}
	}
	slots, err = s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	for _, slot := range slots {
		if slot.UpdatedAt.IsZero() {
			t.Errorf("slot %q has zero timestamp", slot.Name)
		}
	}
}

func TestStore_Delete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "tmp", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "tmp"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "tmp"); !errors.Is(err, ErrSlotNotFound) {
		t.Error("deleted slot still readable")
	}

	// Deleting a missing slot is not an error.
	if err := s.Delete(ctx, "never-existed"); err != nil {
		t.Error(err)
	}
}

func TestStore_PutValidation(t *testing.T) {
	s := testStore(t)
	if err := s.Put(context.Background(), "  ", []byte("{}")); err == nil {
		t.Error("blank slot name accepted")
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("empty path accepted")
	}
}
