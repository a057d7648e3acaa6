package queue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ifuryst/postq/internal/models"
)

// Store is the queue document on disk. Every mutation is a full Load, an
// in-memory change and a full Save; callers must make sure only one process
// mutates the document at a time.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the records in document order; a missing document is an empty queue
func (s *Store) Load() ([]models.PostRecord, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.PostRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read queue %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.PostRecord{}, nil
	}

	var records []models.PostRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse queue %s: %w", s.path, err)
	}
	if records == nil {
		records = []models.PostRecord{}
	}
	return records, nil
}

// Save replaces the whole document. The data goes to a temp file first and is
// renamed into place.
func (s *Store) Save(records []models.PostRecord) error {
	if records == nil {
		records = []models.PostRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode queue: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create queue directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".queue-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write queue: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write queue: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to write queue: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace queue %s: %w", s.path, err)
	}
	return nil
}
