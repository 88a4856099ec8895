// Package memory is an in-process spreadsheet for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"jard/internal/core"
	ports "jard/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	sheets map[string][][]string
	cats   []core.CategoryEntry
	writes int
}

var (
	_ ports.MatrixWriter   = (*Store)(nil)
	_ ports.CategoryReader = (*Store)(nil)
)

func New(cats []core.CategoryEntry) *Store {
	return &Store{sheets: make(map[string][][]string), cats: append([]core.CategoryEntry(nil), cats...)}
}

// WriteMatrix replaces the named sheet and returns a synthetic range.
func (s *Store) WriteMatrix(_ context.Context, sheetTitle string, rows [][]string) (string, error) {
	if sheetTitle == "" {
		return "", errors.New("sheet title is required")
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheetTitle] = cp
	s.writes++
	return fmt.Sprintf("mem:%s!A1:R%d", sheetTitle, len(rows)), nil
}

// Sheet returns a copy of the named sheet.
func (s *Store) Sheet(title string) ([][]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.sheets[title]
	if !ok {
		return nil, false
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out, true
}

// Writes counts WriteMatrix calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Store) FetchCategories(_ context.Context) ([]core.CategoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CategoryEntry(nil), s.cats...), nil
}
