package rowstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAppendAndRead(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("Clients")
	s.Seed("Clients", []interface{}{"client_id", "companyName"})

	require.NoError(t, s.AppendRow(ctx, "Clients!A:H", []interface{}{"C-1", "Acme"}))
	require.NoError(t, s.AppendRow(ctx, "Clients!A:H", []interface{}{"C-2", "Globex", ""}))

	rows, err := s.ReadRange(ctx, "Clients!A2:P")
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{"C-1", "Acme"}, {"C-2", "Globex"}}, rows)

	ids, err := s.ReadRange(ctx, "Clients!A2:A")
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{"C-1"}, {"C-2"}}, ids)
}

func TestMemoryStoreUpdateSingleCell(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("Users")
	s.Seed("Users",
		[]interface{}{"user_id", "name", "email", "username", "hash", "role", "status"},
		[]interface{}{"U-1", "A", "a@x.io", "a", "h", "sales", "active"},
	)

	require.NoError(t, s.UpdateRow(ctx, "Users!G2:G2", []interface{}{"inactive"}))

	rows, err := s.ReadRange(ctx, "Users!A2:G")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "inactive", rows[0][6])
	assert.Equal(t, "a@x.io", rows[0][2])
}

func TestMemoryStoreDeleteRowsShiftsOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("Invoices")
	s.Seed("Invoices",
		[]interface{}{"header"},
		[]interface{}{"r2"},
		[]interface{}{"r3"},
		[]interface{}{"r4"},
		[]interface{}{"r5"},
	)

	// Ascending input still deletes the intended rows.
	require.NoError(t, s.DeleteRows(ctx, "Invoices", []int{2, 4}))

	assert.Equal(t, [][]interface{}{{"header"}, {"r3"}, {"r5"}}, s.Rows("Invoices"))
}

func TestMemoryStoreUnknownSheet(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.ReadRange(context.Background(), "Payments!A2:E")
	assert.ErrorIs(t, err, ErrUnknownSheet)
}

func TestMemoryStoreAppendSkipsTrailingBlankRows(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("Audit_Log")
	s.Seed("Audit_Log", []interface{}{"id"}, []interface{}{"1"}, []interface{}{"", ""})

	require.NoError(t, s.AppendRow(ctx, "Audit_Log!A:F", []interface{}{"2"}))
	assert.Equal(t, [][]interface{}{{"id"}, {"1"}, {"2"}}, s.Rows("Audit_Log"))
}

func TestOpenMemoryAndUnknown(t *testing.T) {
	s, closeFn, err := Open(context.Background(), OpenConfig{Type: TypeMemory, MemorySheets: []string{"Clients"}})
	require.NoError(t, err)
	defer closeFn()
	require.NoError(t, s.AppendRow(context.Background(), "Clients!A:B", []interface{}{"a", "b"}))

	_, closeFn, err = Open(context.Background(), OpenConfig{Type: "excel"})
	assert.Error(t, err)
	closeFn()
}
