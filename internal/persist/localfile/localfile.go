// Package localfile keeps the snapshot in a single JSON document on disk.
package localfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"textilreinigung/backend/internal/domain"
)

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the snapshot. A missing file yields an empty snapshot; a corrupt
// one is logged and likewise treated as empty so the shop can keep working.
func (s *Store) Load(ctx context.Context) (domain.PersistedState, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.PersistedState{}, nil
	}
	if err != nil {
		return domain.PersistedState{}, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var state domain.PersistedState
	if err := json.Unmarshal(raw, &state); err != nil {
		log.Printf("[localfile] snapshot %s is not valid JSON, starting empty: %v", s.path, err)
		return domain.PersistedState{}, nil
	}
	return state, nil
}

// Save writes the snapshot atomically via a temp file and rename.
func (s *Store) Save(ctx context.Context, state domain.PersistedState) error {
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot %s: %w", s.path, err)
	}
	return nil
}
