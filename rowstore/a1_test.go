package rowstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	cases := []struct {
		in   string
		want Range
	}{
		{"Clients!A2:P", Range{Sheet: "Clients", StartCol: 0, EndCol: 15, StartRow: 2}},
		{"Clients!A:H", Range{Sheet: "Clients", StartCol: 0, EndCol: 7, StartRow: 1}},
		{"Users!G5:G5", Range{Sheet: "Users", StartCol: 6, EndCol: 6, StartRow: 5, EndRow: 5}},
		{"'Audit_Log'!D2:D", Range{Sheet: "Audit_Log", StartCol: 3, EndCol: 3, StartRow: 2}},
		{"Clients!B3", Range{Sheet: "Clients", StartCol: 1, EndCol: 1, StartRow: 3, EndRow: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRange(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseRangeRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "Clients", "!A1:B2", "Clients!P2:A", "Clients!A5:B2", "Clients!1:2"} {
		_, err := ParseRange(in)
		assert.Error(t, err, in)
	}
}

func TestColumnLetters(t *testing.T) {
	assert.Equal(t, 0, ColumnIndex("A"))
	assert.Equal(t, 15, ColumnIndex("P"))
	assert.Equal(t, 26, ColumnIndex("AA"))
	assert.Equal(t, "A", ColumnLetter(0))
	assert.Equal(t, "Z", ColumnLetter(25))
	assert.Equal(t, "AA", ColumnLetter(26))

	r, err := ParseRange("Clients!A5:P5")
	require.NoError(t, err)
	assert.Equal(t, "Clients!A5:P5", r.String())
	assert.Equal(t, 16, r.Width())
}

func TestCellCoercion(t *testing.T) {
	row := []interface{}{"  C-1 ", 12.5, "1,200", "", nil, "abc", 7}

	assert.Equal(t, "C-1", CellString(row, 0, ""))
	assert.Equal(t, "Active", CellString(row, 3, "Active"))
	assert.Equal(t, "Active", CellString(row, 4, "Active"))
	assert.Equal(t, "x", CellString(row, 99, "x"))

	assert.Equal(t, 12.5, CellFloat(row, 1, 0))
	assert.Equal(t, 1200.0, CellFloat(row, 2, 0))
	assert.Equal(t, 1.0, CellFloat(row, 5, 1))
	assert.Equal(t, 7.0, CellFloat(row, 6, 0))
	assert.Equal(t, 12, CellInt(row, 1, 0))

	padded := PadRow([]interface{}{"a"}, 3)
	assert.Equal(t, []interface{}{"a", "", ""}, padded)
}

func TestDescending(t *testing.T) {
	assert.Equal(t, []int{9, 4, 2}, Descending([]int{2, 9, 4, 2}))
	assert.Empty(t, Descending(nil))
}
