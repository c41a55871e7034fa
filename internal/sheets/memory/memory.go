// Package memory is an in-process RowAppender for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finman/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.TransactionRow
}

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic reference.
func (s *Store) Append(_ context.Context, row sheets.TransactionRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.TransactionRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.TransactionRow(nil), s.rows...)
}
