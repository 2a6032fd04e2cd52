package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rooclub/roobot/internal/models"
)

// FileStore keeps all guilds in one JSON file: {"<guild id>": [entries...]}.
// Each call reads or rewrites the whole file; the mutex only protects a single
// read or write, so concurrent read-modify-write cycles are last-writer-wins.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (map[string][]models.ColorRole, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string][]models.ColorRole{}, nil
		}
		return nil, fmt.Errorf("reading ledger file: %w", err)
	}

	all := map[string][]models.ColorRole{}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parsing ledger file: %w", err)
	}
	return all, nil
}

// ReadStore returns the guild's entries; unknown guilds yield an empty snapshot.
func (s *FileStore) ReadStore(_ context.Context, guildID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Roles: all[guildID]}, nil
}

// WriteStore rewrites the file with the guild's entries replaced by snap.
func (s *FileStore) WriteStore(_ context.Context, guildID string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	if len(snap.Roles) == 0 {
		delete(all, guildID)
	} else {
		all[guildID] = snap.Roles
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("writing ledger file: %w", err)
	}
	return nil
}
