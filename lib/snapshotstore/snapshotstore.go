// Package snapshotstore persists the per-clan rank/trophy history used to
// compute rank movement between recap runs. The layout is a single JSON
// file mapping clan tags to ordered snapshot lists. Writes go through a
// temp file plus rename so a crash never leaves a torn file, and history
// is bounded to the most recent entries per clan.
package snapshotstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// keepPerClan bounds per-clan history: one entry per war week for a year.
const keepPerClan = 52

type Snapshot struct {
	Timestamp string `json:"timestamp"`
	Rank      int    `json:"rank"`
	Trophies  int    `json:"trophies"`
}

type Store struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() (map[string][]Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string][]Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}

	data := map[string][]Snapshot{}
	if err := json.Unmarshal(raw, &data); err != nil {
		// a corrupt history file should not take the recap down
		return map[string][]Snapshot{}, nil
	}
	return data, nil
}

func (s *Store) save(data map[string][]Snapshot) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".snapshots-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

// Latest returns the most recent snapshot stored for the clan tag.
func (s *Store) Latest(clanTag string) (Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return Snapshot{}, false, err
	}
	entries := data[clanTag]
	if len(entries) == 0 {
		return Snapshot{}, false, nil
	}
	return entries[len(entries)-1], true, nil
}

// Append records a snapshot for the clan tag, trimming history beyond
// the retention bound.
func (s *Store) Append(clanTag string, rank, trophies int, now time.Time) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Timestamp: now.UTC().Format(time.RFC3339),
		Rank:      rank,
		Trophies:  trophies,
	}
	entries := append(data[clanTag], snap)
	if len(entries) > keepPerClan {
		entries = entries[len(entries)-keepPerClan:]
	}
	data[clanTag] = entries

	if err := s.save(data); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
