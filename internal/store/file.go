package store

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"revmatch/internal/models"
	"revmatch/internal/util"
)

// FileStore keeps the database as a single gob-encoded file, written
// atomically so a crashed rebuild never leaves a half-written database
// behind.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Save(ctx context.Context, records []models.PaperRecord) error {
	_ = ctx
	if err := util.EnsureDir(filepath.Dir(s.Path)); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), "tmp-*.db")
	if err != nil {
		return fmt.Errorf("create temp database: %w", err)
	}
	if err := gob.NewEncoder(tmp).Encode(records); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("encode database: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp database: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("rename temp database: %w", err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) ([]models.PaperRecord, error) {
	_ = ctx
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (run a corpus build first)", util.ErrDatabaseNotFound, s.Path)
		}
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer f.Close()

	var records []models.PaperRecord
	if err := gob.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode database %s: %w", s.Path, err)
	}
	return records, nil
}
