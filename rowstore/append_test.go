package rowstore

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const appendSheet = "AppendCheck"

// checkAppendReusesBlankedRow blanks the last data row and appends; the new
// row must land where the blanked one was.
func checkAppendReusesBlankedRow(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.UpdateRow(ctx, appendSheet+"!A1:B1", []interface{}{"id", "action"}))
	require.NoError(t, s.AppendRow(ctx, appendSheet+"!A:B", []interface{}{"1", "x"}))
	require.NoError(t, s.AppendRow(ctx, appendSheet+"!A:B", []interface{}{"2", "y"}))
	require.NoError(t, s.UpdateRow(ctx, appendSheet+"!A3:B3", []interface{}{"", ""}))

	require.NoError(t, s.AppendRow(ctx, appendSheet+"!A:B", []interface{}{"3", "z"}))

	rows, err := s.ReadRange(ctx, appendSheet+"!A1:B")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []interface{}{"1", "x"}, rows[1])
	require.Equal(t, []interface{}{"3", "z"}, rows[2])
}

func TestMemoryStoreAppendReusesBlankedRow(t *testing.T) {
	checkAppendReusesBlankedRow(t, NewMemoryStore(appendSheet))
}

// Runs only when ROWSTORE_TEST_DATABASE_URL points at a disposable database.
func TestPostgresStoreAppendReusesBlankedRow(t *testing.T) {
	url := os.Getenv("ROWSTORE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ROWSTORE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewPostgresStore(pool)
	require.NoError(t, s.EnsureSchema(ctx))

	clear := func() {
		_, err := pool.Exec(ctx, `DELETE FROM rowstore_rows WHERE sheet = $1`, appendSheet)
		require.NoError(t, err)
	}
	clear()
	t.Cleanup(clear)

	checkAppendReusesBlankedRow(t, s)
}
