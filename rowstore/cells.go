package rowstore

import (
	"fmt"
	"strconv"
	"strings"
)

// CellString returns the trimmed string form of row[i], or def when the
// cell is absent or empty.
func CellString(row []interface{}, i int, def string) string {
	if i < 0 || i >= len(row) || row[i] == nil {
		return def
	}
	s := strings.TrimSpace(fmt.Sprint(row[i]))
	if s == "" {
		return def
	}
	return s
}

// CellFloat coerces row[i] to a float64. Strings are parsed leniently
// (thousands separators stripped); anything unparseable yields def.
func CellFloat(row []interface{}, i int, def float64) float64 {
	if i < 0 || i >= len(row) || row[i] == nil {
		return def
	}
	switch v := row[i].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	s := strings.ReplaceAll(CellString(row, i, ""), ",", "")
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// CellInt coerces row[i] to an int, truncating fractional values.
func CellInt(row []interface{}, i int, def int) int {
	f := CellFloat(row, i, float64(def))
	return int(f)
}

// PadRow extends row with empty strings up to width so it fully covers
// the target range when written.
func PadRow(row []interface{}, width int) []interface{} {
	if len(row) >= width {
		return row
	}
	out := make([]interface{}, width)
	copy(out, row)
	for i := len(row); i < width; i++ {
		out[i] = ""
	}
	return out
}
