package rowstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a parsed A1 range such as "Clients!A2:P" or "Users!G5:G5".
// Columns are 0-based, rows are 1-based. EndRow == 0 means unbounded.
type Range struct {
	Sheet    string
	StartCol int
	EndCol   int
	StartRow int
	EndRow   int
}

// String renders the range back into A1 notation.
func (r Range) String() string {
	start := ColumnLetter(r.StartCol)
	if r.StartRow > 0 {
		start += strconv.Itoa(r.StartRow)
	}
	end := ColumnLetter(r.EndCol)
	if r.EndRow > 0 {
		end += strconv.Itoa(r.EndRow)
	}
	return fmt.Sprintf("%s!%s:%s", r.Sheet, start, end)
}

// Width is the number of columns covered by the range.
func (r Range) Width() int {
	return r.EndCol - r.StartCol + 1
}

// ParseRange parses "Sheet!A2:P", "Sheet!A:H" and "Sheet!P5:P5".
// A single cell ("Sheet!B3") is treated as B3:B3.
func ParseRange(spec string) (Range, error) {
	sheet, cells, ok := strings.Cut(spec, "!")
	if !ok || sheet == "" || cells == "" {
		return Range{}, fmt.Errorf("invalid range %q: expected Sheet!A1:B2", spec)
	}
	sheet = strings.Trim(sheet, "'")

	from, to, found := strings.Cut(cells, ":")
	if !found {
		to = from
	}

	startCol, startRow, err := parseCell(from)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", spec, err)
	}
	endCol, endRow, err := parseCell(to)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", spec, err)
	}
	if endCol < startCol {
		return Range{}, fmt.Errorf("invalid range %q: end column before start column", spec)
	}
	if startRow == 0 {
		startRow = 1
	}
	if endRow != 0 && endRow < startRow {
		return Range{}, fmt.Errorf("invalid range %q: end row before start row", spec)
	}

	return Range{
		Sheet:    sheet,
		StartCol: startCol,
		EndCol:   endCol,
		StartRow: startRow,
		EndRow:   endRow,
	}, nil
}

func parseCell(cell string) (col int, row int, err error) {
	cell = strings.ToUpper(strings.TrimSpace(cell))
	i := 0
	for i < len(cell) && cell[i] >= 'A' && cell[i] <= 'Z' {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("missing column in %q", cell)
	}
	col = ColumnIndex(cell[:i])
	if i < len(cell) {
		row, err = strconv.Atoi(cell[i:])
		if err != nil || row < 1 {
			return 0, 0, fmt.Errorf("bad row number in %q", cell)
		}
	}
	return col, row, nil
}

// ColumnIndex converts a column letter ("A", "P", "AA") to a 0-based index.
func ColumnIndex(letters string) int {
	n := 0
	for _, ch := range strings.ToUpper(letters) {
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1
}

// ColumnLetter converts a 0-based column index to its letter.
func ColumnLetter(index int) string {
	var b []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}
