// Package history keeps the capped list of statements a user submitted.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// DefaultLimit is the number of records kept.
	DefaultLimit = 100

	// DefaultStatement is what callers show when the history is empty.
	DefaultStatement = "SELECT 1 FROM DUAL"

	nameLength = 60
)

// Record is one submitted statement.
type Record struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Data      string    `json:"data"`
}

type file struct {
	Records []Record `json:"records"`
}

// Store is a capped, deduplicated statement history, oldest first.
// It is safe for concurrent use.
type Store struct {
	// saveMu orders whole Save calls so an older snapshot never replaces
	// a newer one on disk.
	saveMu sync.Mutex

	mu      sync.Mutex
	path    string
	limit   int
	records []Record
	now     func() time.Time
}

// New returns an empty in-memory Store holding at most limit records.
func New(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{limit: limit, now: time.Now}
}

// Open loads the Store persisted at path. A missing file yields an empty
// Store that Save will create.
func Open(path string) (*Store, error) {
	s := New(DefaultLimit)
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", path, err)
	}
	s.records = f.Records
	s.trim()
	return s, nil
}

// Add records statement unless the exact same text is already present.
// It reports whether a record was added. Blank statements are ignored.
func (s *Store) Add(statement string) bool {
	if strings.TrimSpace(statement) == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Data == statement {
			return false
		}
	}
	s.records = append(s.records, Record{
		Name:      recordName(statement),
		CreatedAt: s.now(),
		Data:      statement,
	})
	s.trim()
	return true
}

// Entries returns a copy of the records, oldest first.
func (s *Store) Entries() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// Latest returns the newest record.
func (s *Store) Latest() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return Record{}, false
	}
	return s.records[len(s.records)-1], true
}

// Clear drops every record.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// Save writes the Store to its file through a temporary file and a rename.
// It is a no-op for stores created with New.
func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	f := file{Records: append([]Record{}, s.records...)}
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*")
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// trim evicts the oldest records beyond the limit. Callers hold mu or own s.
func (s *Store) trim() {
	if over := len(s.records) - s.limit; over > 0 {
		s.records = append([]Record(nil), s.records[over:]...)
	}
}

// recordName derives a display name from the first non-blank line.
func recordName(statement string) string {
	var line string
	for _, l := range strings.Split(statement, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	if utf8.RuneCountInString(line) <= nameLength {
		return line
	}
	return string([]rune(line)[:nameLength-1]) + "…"
}
