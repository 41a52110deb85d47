package store

import (
	"context"
	"fmt"

	"revmatch/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps records in a single table, one row per paper.
// Absent embeddings are NULL float4[] columns, so the present/absent
// distinction survives the round trip.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paper_records (
  position           INT PRIMARY KEY,
  author             TEXT NOT NULL,
  paper              TEXT NOT NULL,
  focused_embedding  FLOAT4[],
  full_embedding     FLOAT4[]
)`)
	if err != nil {
		return fmt.Errorf("ensure paper_records schema: %w", err)
	}
	return nil
}

// Save replaces the whole table inside one transaction; a rebuild either
// lands completely or not at all.
func (s *PostgresStore) Save(ctx context.Context, records []models.PaperRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM paper_records`); err != nil {
		return fmt.Errorf("clear paper_records: %w", err)
	}
	batch := &pgx.Batch{}
	for i, r := range records {
		batch.Queue(`
INSERT INTO paper_records (position, author, paper, focused_embedding, full_embedding)
VALUES ($1, $2, $3, $4, $5)`,
			i, r.Author, r.Paper, r.Focused.Vector, r.Full.Vector)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert paper_records: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]models.PaperRecord, error) {
	rows, err := s.pool.Query(ctx, `
SELECT author, paper, focused_embedding, full_embedding
FROM paper_records
ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query paper_records: %w", err)
	}
	defer rows.Close()

	out := make([]models.PaperRecord, 0)
	for rows.Next() {
		var r models.PaperRecord
		if err := rows.Scan(&r.Author, &r.Paper, &r.Focused.Vector, &r.Full.Vector); err != nil {
			return nil, fmt.Errorf("scan paper record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paper_records: %w", err)
	}
	return out, nil
}
