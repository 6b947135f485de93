package repository

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/okanelab/ledgersheet/internal/sheets"
)

// fakeStore is an in-memory sheets.Store. Rows are held per sheet with index
// 0 corresponding to sheet row 2 (row 1 is the header).
type fakeStore struct {
	mu   sync.Mutex
	data map[string][][]interface{}

	failGet    error
	failAppend error
	failBatch  error
	failClear  error

	appendCalls int
	batchCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][][]interface{})}
}

func sheetOf(rng string) string {
	if i := strings.Index(rng, "!"); i != -1 {
		return rng[:i]
	}
	return rng
}

// startRow extracts the first row number from a range like "Sheet!A5:Z5".
func startRow(rng string) int {
	cell := rng[strings.Index(rng, "!")+1:]
	if i := strings.Index(cell, ":"); i != -1 {
		cell = cell[:i]
	}
	digits := strings.TrimLeft(cell, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, _ := strconv.Atoi(digits)
	return n
}

func (s *fakeStore) GetRange(ctx context.Context, rng string) ([][]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, s.failGet
	}
	rows := s.data[sheetOf(rng)]
	out := make([][]interface{}, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *fakeStore) Append(ctx context.Context, rng string, rows [][]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendCalls++
	if s.failAppend != nil {
		return s.failAppend
	}
	sheet := sheetOf(rng)
	s.data[sheet] = append(s.data[sheet], rows...)
	return nil
}

func (s *fakeStore) Update(ctx context.Context, rng string, rows [][]interface{}) error {
	return s.BatchUpdate(ctx, []sheets.RangeUpdate{{Range: rng, Rows: rows}})
}

func (s *fakeStore) BatchUpdate(ctx context.Context, updates []sheets.RangeUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchCalls++
	if s.failBatch != nil {
		return s.failBatch
	}
	for _, u := range updates {
		sheet := sheetOf(u.Range)
		idx := startRow(u.Range) - 2
		for i, row := range u.Rows {
			s.data[sheet][idx+i] = row
		}
	}
	return nil
}

func (s *fakeStore) Clear(ctx context.Context, rng string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failClear != nil {
		return s.failClear
	}
	s.data[sheetOf(rng)] = nil
	return nil
}
