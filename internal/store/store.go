// Package store persists the precomputed paper database. The format is a
// boundary concern: any backend works as long as it keeps record order
// and the present/absent distinction of both embeddings intact.
package store

import (
	"context"
	"fmt"
	"strings"

	"revmatch/internal/config"
	"revmatch/internal/models"
)

// RecordStore saves and loads the full ordered record sequence. Save
// replaces the whole database; the engine never mutates what Load
// returns.
type RecordStore interface {
	Save(ctx context.Context, records []models.PaperRecord) error
	Load(ctx context.Context) ([]models.PaperRecord, error)
}

// Open picks the backend configured by REVMATCH_STORE.
func Open(ctx context.Context, cfg config.Config) (RecordStore, error) {
	switch strings.ToLower(cfg.Store) {
	case "", "file":
		return NewFileStore(cfg.DatabasePath), nil
	case "postgres":
		return NewPostgresStore(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store)
	}
}
