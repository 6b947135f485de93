// Package sheets wraps the spreadsheet backing store behind a small
// range-oriented interface. Ranges use A1 notation over a named sheet; row 1
// of every sheet is a header and is excluded from all data ranges.
package sheets

import "context"

// RangeUpdate is one targeted write in a batched update.
type RangeUpdate struct {
	Range string
	Rows  [][]interface{}
}

// Store is the contract the repositories program against. The concrete
// implementation talks to the Google Sheets API; tests substitute an
// in-memory fake.
type Store interface {
	// GetRange reads all rows in the given range.
	GetRange(ctx context.Context, readRange string) ([][]interface{}, error)

	// Append appends rows after the last non-empty row of the range's table.
	Append(ctx context.Context, appendRange string, rows [][]interface{}) error

	// Update overwrites exactly the given range.
	Update(ctx context.Context, updateRange string, rows [][]interface{}) error

	// BatchUpdate overwrites several disjoint ranges in one request.
	BatchUpdate(ctx context.Context, updates []RangeUpdate) error

	// Clear empties the given range without removing the rows themselves.
	Clear(ctx context.Context, clearRange string) error
}
