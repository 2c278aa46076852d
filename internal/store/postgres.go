// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/QuadKenya/growth-engine/internal/models"
)

// PostgresStore persists candidates as JSONB rows keyed by id. Schema:
//
//	CREATE TABLE candidates (
//	    id         TEXT PRIMARY KEY,
//	    record     JSONB NOT NULL,
//	    stage      TEXT NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
//
// The stage column is denormalized for operator queries; the record
// column is the source of truth.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.CandidateRecord, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM candidates WHERE id = $1`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate %s: %w", id, err)
	}

	var rec models.CandidateRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode candidate %s: %w", id, err)
	}
	return &rec, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, rec *models.CandidateRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal candidate %s: %w", rec.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidates (id, record, stage, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET record = EXCLUDED.record,
		    stage = EXCLUDED.stage,
		    updated_at = EXCLUDED.updated_at`,
		rec.ID, raw, string(rec.Stage), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert candidate %s: %w", rec.ID, err)
	}
	return nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.CandidateRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var records []*models.CandidateRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		var rec models.CandidateRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode candidate row: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete candidate %s: %w", id, err)
	}
	return nil
}
