// Package memory is an in-process ledger used when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"oficina/internal/core"
	ports "oficina/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	sheets map[core.Kind]map[int64][]string
	writes int
}

var _ ports.LedgerWriter = (*Store)(nil)

func New() *Store {
	return &Store{sheets: make(map[core.Kind]map[int64][]string)}
}

// UpsertRow stores a copy of row and returns a synthetic row reference.
func (s *Store) UpsertRow(_ context.Context, kind core.Kind, recordID int64, row []string) (string, error) {
	if ports.SheetName(kind) == "" {
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
	if recordID <= 0 {
		return "", core.ErrIdentityRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sheet, ok := s.sheets[kind]
	if !ok {
		sheet = make(map[int64][]string)
		s.sheets[kind] = sheet
	}
	sheet[recordID] = append([]string(nil), row...)
	s.writes++
	return fmt.Sprintf("mem:%s:%d", kind, recordID), nil
}

// Row returns the stored row for a record.
func (s *Store) Row(kind core.Kind, recordID int64) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.sheets[kind][recordID]
	if !ok {
		return nil, false
	}
	return append([]string(nil), row...), true
}

// Rows returns every stored row of kind in ascending id order.
func (s *Store) Rows(kind core.Kind) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.sheets[kind]))
	for id := range s.sheets[kind] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([][]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, append([]string(nil), s.sheets[kind][id]...))
	}
	return out
}

// Writes counts every UpsertRow call that succeeded.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
