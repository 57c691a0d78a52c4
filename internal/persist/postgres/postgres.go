// Package postgres keeps the snapshot as a single JSONB row, for shops that
// already run a database and want it instead of the JSON file.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"textilreinigung/backend/internal/domain"
)

// snapshotKey identifies the one row this application owns.
const snapshotKey = "textilreinigung-ettlingen-state"

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			key        TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure snapshots table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) (domain.PersistedState, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT doc FROM snapshots WHERE key = $1
	`, snapshotKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PersistedState{}, nil
	}
	if err != nil {
		return domain.PersistedState{}, err
	}

	var state domain.PersistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.PersistedState{}, fmt.Errorf("decode snapshot row: %w", err)
	}
	return state, nil
}

func (s *Store) Save(ctx context.Context, state domain.PersistedState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, snapshotKey, payload)
	return err
}
