// Package rowstore is the spreadsheet-shaped persistence layer: named sheets
// of untyped rows addressed with A1 ranges and 1-based row numbers.
//
// No backend offers transactions or row versions. Concurrent writers to the
// same rows are last-write-wins, and a row number read by one request may be
// stale by the time another request deletes rows above it.
package rowstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Store is the contract every backend implements.
type Store interface {
	// ReadRange returns rows in sheet order. Rows may be shorter than the
	// range width when trailing cells are empty.
	ReadRange(ctx context.Context, rng string) ([][]interface{}, error)

	// AppendRow adds a row after the last non-empty row of the sheet.
	AppendRow(ctx context.Context, rng string, row []interface{}) error

	// UpdateRow overwrites the cells addressed by rng starting at its
	// top-left cell.
	UpdateRow(ctx context.Context, rng string, row []interface{}) error

	// DeleteRows removes the given 1-based rows from sheet as one batch.
	// Backends apply them in descending order so earlier deletions do not
	// shift the rows still pending.
	DeleteRows(ctx context.Context, sheet string, rows []int) error
}

// Backend types accepted by ROW_STORE_TYPE.
const (
	TypeSheets   = "sheets"
	TypePostgres = "postgres"
	TypeMemory   = "memory"
)

// ErrUnknownSheet is returned by backends that track sheets explicitly.
var ErrUnknownSheet = errors.New("unknown sheet")

// DeleteRow removes a single row.
func DeleteRow(ctx context.Context, s Store, sheet string, row int) error {
	return s.DeleteRows(ctx, sheet, []int{row})
}

// Descending returns a de-duplicated copy of rows sorted high to low.
func Descending(rows []int) []int {
	seen := make(map[int]struct{}, len(rows))
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func validateRows(rows []int) error {
	for _, r := range rows {
		if r < 1 {
			return fmt.Errorf("invalid row index %d", r)
		}
	}
	return nil
}
