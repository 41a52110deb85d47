package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"revmatch/internal/models"
	"revmatch/internal/util"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles", "papers.db")
	s := NewFileStore(path)
	ctx := context.Background()

	records := []models.PaperRecord{
		{
			Author:  "alice",
			Paper:   "alice__deep.pdf",
			Focused: models.Embedding{Vector: []float32{0.1, 0.2}},
			Full:    models.Embedding{Vector: []float32{0.3, 0.4}},
		},
		// Absent channel and fully degraded records must survive the
		// round trip without being coerced to zero vectors.
		{
			Author: "bob",
			Paper:  "bob__partial.pdf",
			Full:   models.Embedding{Vector: []float32{0.5, 0.6}},
		},
		{Author: "carol", Paper: "carol__broken.pdf"},
	}

	if err := s.Save(ctx, records); err != nil {
		t.Fatal(err)
	}
	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(records, loaded) {
		t.Fatalf("round trip mismatch:\nsaved  %+v\nloaded %+v", records, loaded)
	}
	if loaded[1].Focused.Present() || !loaded[2].Degraded() {
		t.Fatalf("absent embeddings must stay absent: %+v", loaded)
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.db")
	s := NewFileStore(path)
	ctx := context.Background()

	if err := s.Save(ctx, []models.PaperRecord{{Author: "alice", Paper: "a.pdf"}}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, []models.PaperRecord{{Author: "bob", Paper: "b.pdf"}}); err != nil {
		t.Fatal(err)
	}
	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].Author != "bob" {
		t.Fatalf("save must replace the previous database, got %+v", loaded)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.db"))
	_, err := s.Load(context.Background())
	if !errors.Is(err, util.ErrDatabaseNotFound) {
		t.Fatalf("expected ErrDatabaseNotFound, got %v", err)
	}
}
