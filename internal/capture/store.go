// Package capture persists raw fetched documents for offline inspection.
// Debug-capture runs write every attempt's content here so selector problems
// can be diagnosed without re-fetching.
package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Record indexes one persisted capture.
type Record struct {
	ProductID  string    `json:"product_id"`
	RegionCode string    `json:"region_code,omitempty"`
	SourceURL  string    `json:"source_url"`
	File       string    `json:"file"`
	Bytes      int       `json:"bytes"`
	CapturedAt time.Time `json:"captured_at"`
}

// Store writes capture files under a directory with a JSON index.
type Store struct {
	mu        sync.Mutex
	dir       string
	records   []Record
	indexPath string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create capture dir: %w", err)
	}

	s := &Store{
		dir:       dir,
		indexPath: filepath.Join(dir, "index.json"),
	}

	data, err := os.ReadFile(s.indexPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read capture index: %w", err)
		}
		return s, nil
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("corrupt capture index %s: %w", s.indexPath, err)
	}
	return s, nil
}

// Save persists one attempt's raw content and updates the index.
func (s *Store) Save(productID, regionCode, sourceURL, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	name := fmt.Sprintf("%s_%s_%s.html", sanitize(productID), sanitizeOr(regionCode, "default"), now.Format("20060102T150405.000"))

	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write capture: %w", err)
	}

	s.records = append(s.records, Record{
		ProductID:  productID,
		RegionCode: regionCode,
		SourceURL:  sourceURL,
		File:       name,
		Bytes:      len(content),
		CapturedAt: now,
	})
	return s.saveIndex()
}

// Records returns a copy of the index.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) saveIndex() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.indexPath, data, 0o644)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}

func sanitizeOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return sanitize(s)
}
