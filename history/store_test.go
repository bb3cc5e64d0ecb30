package history

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pthm-cable/petri/culture"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id, line string) Record {
	return Record{
		ID:             id,
		CellLine:       line,
		InitialCells:   50,
		Duration:       48,
		DT:             0.5,
		Seed:           42,
		StartedAt:      time.Date(2026, 3, 14, 15, 9, 26, 535897932, time.UTC),
		ElapsedMS:      120,
		Snapshots:      96,
		FinalTotal:     180,
		FinalViable:    170,
		FinalViability: 94.44,
		Series: culture.Series{
			{Time: 0.5, Total: 50, Viable: 50, Viability: 100, AvgHealth: 0.95, AvgATP: 0.9},
			{Time: 48, Total: 180, Viable: 170, Viability: 94.44, AvgHealth: 0.8, AvgATP: 0.82},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := testRecord("run-1", "HeLa")
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if !got.StartedAt.Equal(want.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, want.StartedAt)
	}
	if !reflect.DeepEqual(got.Series, want.Series) {
		t.Errorf("Series = %+v, want %+v", got.Series, want.Series)
	}

	got.StartedAt, want.StartedAt = time.Time{}, time.Time{}
	got.Series, want.Series = nil, nil
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSaveRejectsDuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testRecord("run-1", "HeLa")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Save(ctx, testRecord("run-1", "A549")); err == nil {
		t.Error("Save() with duplicate id expected error, got nil")
	}
}

func TestSaveRequiresID(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save(context.Background(), testRecord("", "HeLa")); err == nil {
		t.Error("Save() with empty id expected error, got nil")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, rec := range []Record{
		testRecord("run-1", "HeLa"),
		testRecord("run-2", "A549"),
		testRecord("run-3", "HeLa"),
	} {
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save(%s) error: %v", rec.ID, err)
		}
	}

	all, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(all))
	}
	for i, wantID := range []string{"run-3", "run-2", "run-1"} {
		if all[i].ID != wantID {
			t.Errorf("List()[%d].ID = %q, want %q", i, all[i].ID, wantID)
		}
		if all[i].Series != nil {
			t.Errorf("List()[%d].Series = %v, want omitted", i, all[i].Series)
		}
	}

	hela, err := s.List(ctx, "HeLa", 0)
	if err != nil {
		t.Fatalf("List(HeLa) error: %v", err)
	}
	if len(hela) != 2 || hela[0].ID != "run-3" || hela[1].ID != "run-1" {
		t.Errorf("List(HeLa) ids = %v, want [run-3 run-1]", recordIDs(hela))
	}

	limited, err := s.List(ctx, "", 2)
	if err != nil {
		t.Fatalf("List(limit=2) error: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "run-3" || limited[1].ID != "run-2" {
		t.Errorf("List(limit=2) ids = %v, want [run-3 run-2]", recordIDs(limited))
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := s.Save(ctx, testRecord("run-1", "HeLa")); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 1 {
		t.Errorf("Count() after reopen = %d, want 1", count)
	}
}

func recordIDs(recs []Record) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids
}
