package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tmsentinel/market-sentinel/internal/models"
)

// ledgerFile is the on-disk shape of the JSON ledger.
type ledgerFile struct {
	Positions   []*models.Position `json:"positions"`
	LastUpdated time.Time          `json:"last_updated"`
}

// FileStore persists the ledger as a single JSON document. Every save writes
// a temp file in the same directory and renames it over the target, so a
// crash mid-write never leaves a truncated ledger behind.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed ledger store at the given path, creating
// parent directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load reads the full ledger into memory. A missing file is an empty ledger.
func (s *FileStore) Load() ([]*models.Position, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}

	var doc ledgerFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ledger file %s: %w", s.path, err)
	}
	return doc.Positions, nil
}

// Save rewrites the whole ledger via atomic replace.
func (s *FileStore) Save(positions []*models.Position) error {
	doc := ledgerFile{
		Positions:   positions,
		LastUpdated: time.Now(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write ledger temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
