package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store persists flash run history as append-only JSON.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a Store rooted at the given directory (typically .fwload/).
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) historyDir() string {
	return filepath.Join(s.root, "history")
}

// AddFlash appends a flash record.
func (s *Store) AddFlash(r FlashRecord) error {
	return s.appendRecord("flashes.json", r)
}

// Flashes returns all flash records, oldest first.
func (s *Store) Flashes() ([]FlashRecord, error) {
	var records []FlashRecord
	err := s.loadRecords("flashes.json", &records)
	return records, err
}

func (s *Store) appendRecord(filename string, record any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.historyDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, filename)

	var records []json.RawMessage
	if data, err := os.ReadFile(path); err == nil {
		json.Unmarshal(data, &records)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	records = append(records, raw)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) loadRecords(filename string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.historyDir(), filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, dest)
}
