// Package memory is an in-process BackupWriter for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"smartbills/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows map[int64]sheets.BackupRow
}

func New() *Store {
	return &Store{rows: make(map[int64]sheets.BackupRow)}
}

// Upsert stores the row keyed by subscription ID and returns a
// synthetic reference.
func (s *Store) Upsert(_ context.Context, row sheets.BackupRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[row.ID] = row
	return fmt.Sprintf("mem:%d", row.ID), nil
}

// Row returns the stored row for a subscription ID.
func (s *Store) Row(id int64) (sheets.BackupRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	return row, ok
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
