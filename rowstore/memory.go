package rowstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore keeps sheets in process. It mirrors the observable behavior of
// the Sheets backend closely enough to stand in for it in tests and local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string][][]interface{}
}

// NewMemoryStore creates a store with the named (empty) sheets.
func NewMemoryStore(sheets ...string) *MemoryStore {
	s := &MemoryStore{sheets: make(map[string][][]interface{})}
	for _, name := range sheets {
		s.sheets[name] = nil
	}
	return s
}

// AddSheet creates an empty sheet if it does not exist yet.
func (s *MemoryStore) AddSheet(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[name]; !ok {
		s.sheets[name] = nil
	}
}

// Seed replaces the content of a sheet, starting at row 1.
func (s *MemoryStore) Seed(sheet string, rows ...[]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([][]interface{}, len(rows))
	for i, r := range rows {
		cp[i] = append([]interface{}(nil), r...)
	}
	s.sheets[sheet] = cp
}

// Rows returns a copy of every row in the sheet, header included.
func (s *MemoryStore) Rows(sheet string) [][]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.sheets[sheet]
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = append([]interface{}(nil), r...)
	}
	return out
}

func (s *MemoryStore) ReadRange(ctx context.Context, spec string) ([][]interface{}, error) {
	rng, err := ParseRange(spec)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.sheets[rng.Sheet]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", spec, ErrUnknownSheet)
	}

	last := len(rows)
	if rng.EndRow > 0 && rng.EndRow < last {
		last = rng.EndRow
	}

	var out [][]interface{}
	for r := rng.StartRow; r <= last; r++ {
		src := rows[r-1]
		var cells []interface{}
		for c := rng.StartCol; c <= rng.EndCol && c < len(src); c++ {
			cells = append(cells, src[c])
		}
		out = append(out, trimTrailing(cells))
	}

	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (s *MemoryStore) AppendRow(ctx context.Context, spec string, row []interface{}) error {
	rng, err := ParseRange(spec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.sheets[rng.Sheet]
	if !ok {
		return fmt.Errorf("append %s: %w", spec, ErrUnknownSheet)
	}

	last := 0
	for i, r := range rows {
		if len(trimTrailing(r)) > 0 {
			last = i + 1
		}
	}
	rows = rows[:last]

	cells := make([]interface{}, rng.StartCol+len(row))
	for i := 0; i < rng.StartCol; i++ {
		cells[i] = ""
	}
	copy(cells[rng.StartCol:], row)

	s.sheets[rng.Sheet] = append(rows, cells)
	return nil
}

func (s *MemoryStore) UpdateRow(ctx context.Context, spec string, row []interface{}) error {
	rng, err := ParseRange(spec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.sheets[rng.Sheet]
	if !ok {
		return fmt.Errorf("update %s: %w", spec, ErrUnknownSheet)
	}

	for len(rows) < rng.StartRow {
		rows = append(rows, nil)
	}
	target := rows[rng.StartRow-1]
	need := rng.StartCol + len(row)
	for len(target) < need {
		target = append(target, "")
	}
	copy(target[rng.StartCol:], row)
	rows[rng.StartRow-1] = target

	s.sheets[rng.Sheet] = rows
	return nil
}

func (s *MemoryStore) DeleteRows(ctx context.Context, sheet string, indexes []int) error {
	if err := validateRows(indexes); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.sheets[sheet]
	if !ok {
		return fmt.Errorf("delete rows in %s: %w", sheet, ErrUnknownSheet)
	}

	for _, idx := range Descending(indexes) {
		if idx > len(rows) {
			continue
		}
		rows = append(rows[:idx-1], rows[idx:]...)
	}
	s.sheets[sheet] = rows
	return nil
}

func trimTrailing(cells []interface{}) []interface{} {
	end := len(cells)
	for end > 0 {
		v := cells[end-1]
		if v != nil && strings.TrimSpace(fmt.Sprint(v)) != "" {
			break
		}
		end--
	}
	return cells[:end]
}
