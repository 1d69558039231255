package rowstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore emulates sheets on a single Postgres table. Each sheet row is
// one record keyed by (sheet, row_index) with its cells stored as a JSON array.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new Postgres-backed row store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is the DDL the store expects.
const Schema = `
CREATE TABLE IF NOT EXISTS rowstore_rows (
    sheet     TEXT    NOT NULL,
    row_index INTEGER NOT NULL,
    cells     JSONB   NOT NULL DEFAULT '[]'::jsonb,
    PRIMARY KEY (sheet, row_index)
)`

// EnsureSchema creates the backing table if needed.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	return err
}

func (s *PostgresStore) ReadRange(ctx context.Context, spec string) ([][]interface{}, error) {
	rng, err := ParseRange(spec)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT row_index, cells
		FROM rowstore_rows
		WHERE sheet = $1 AND row_index >= $2 AND ($3 = 0 OR row_index <= $3)
		ORDER BY row_index`

	rows, err := s.db.Query(ctx, query, rng.Sheet, rng.StartRow, rng.EndRow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", spec, err)
	}
	defer rows.Close()

	var out [][]interface{}
	for rows.Next() {
		var idx int
		var raw []byte
		if err := rows.Scan(&idx, &raw); err != nil {
			return nil, fmt.Errorf("read %s: %w", spec, err)
		}
		cells, err := decodeCells(raw)
		if err != nil {
			return nil, fmt.Errorf("read %s: row %d: %w", spec, idx, err)
		}

		// Gaps between stored rows read back as empty rows.
		for len(out) < idx-rng.StartRow {
			out = append(out, nil)
		}

		var slice []interface{}
		for c := rng.StartCol; c <= rng.EndCol && c < len(cells); c++ {
			slice = append(slice, cells[c])
		}
		out = append(out, trimTrailing(slice))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", spec, err)
	}

	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (s *PostgresStore) AppendRow(ctx context.Context, spec string, row []interface{}) error {
	rng, err := ParseRange(spec)
	if err != nil {
		return err
	}

	return s.inSheetTx(ctx, rng.Sheet, func(tx pgx.Tx) error {
		last, err := lastNonEmptyRow(ctx, tx, rng.Sheet)
		if err != nil {
			return err
		}
		// Blank trailing rows are reused, like the Sheets append.
		if _, err := tx.Exec(ctx,
			`DELETE FROM rowstore_rows WHERE sheet = $1 AND row_index > $2`,
			rng.Sheet, last,
		); err != nil {
			return err
		}

		cells := make([]interface{}, rng.StartCol+len(row))
		for i := 0; i < rng.StartCol; i++ {
			cells[i] = ""
		}
		copy(cells[rng.StartCol:], row)

		raw, err := json.Marshal(cells)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO rowstore_rows (sheet, row_index, cells) VALUES ($1, $2, $3)`,
			rng.Sheet, last+1, raw,
		)
		return err
	})
}

func (s *PostgresStore) UpdateRow(ctx context.Context, spec string, row []interface{}) error {
	rng, err := ParseRange(spec)
	if err != nil {
		return err
	}

	return s.inSheetTx(ctx, rng.Sheet, func(tx pgx.Tx) error {
		var raw []byte
		err := tx.QueryRow(ctx,
			`SELECT cells FROM rowstore_rows WHERE sheet = $1 AND row_index = $2 FOR UPDATE`,
			rng.Sheet, rng.StartRow,
		).Scan(&raw)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		cells, err := decodeCells(raw)
		if err != nil {
			return err
		}
		for len(cells) < rng.StartCol+len(row) {
			cells = append(cells, "")
		}
		copy(cells[rng.StartCol:], row)

		updated, err := json.Marshal(cells)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO rowstore_rows (sheet, row_index, cells) VALUES ($1, $2, $3)
			ON CONFLICT (sheet, row_index) DO UPDATE SET cells = EXCLUDED.cells`,
			rng.Sheet, rng.StartRow, updated,
		)
		return err
	})
}

func (s *PostgresStore) DeleteRows(ctx context.Context, sheet string, indexes []int) error {
	if len(indexes) == 0 {
		return nil
	}
	if err := validateRows(indexes); err != nil {
		return err
	}

	return s.inSheetTx(ctx, sheet, func(tx pgx.Tx) error {
		for _, idx := range Descending(indexes) {
			if _, err := tx.Exec(ctx,
				`DELETE FROM rowstore_rows WHERE sheet = $1 AND row_index = $2`,
				sheet, idx,
			); err != nil {
				return err
			}
			// Shift in two steps through negative indexes so the primary key
			// never sees a transient duplicate.
			if _, err := tx.Exec(ctx,
				`UPDATE rowstore_rows SET row_index = -(row_index - 1) WHERE sheet = $1 AND row_index > $2`,
				sheet, idx,
			); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`UPDATE rowstore_rows SET row_index = -row_index WHERE sheet = $1 AND row_index < 0`,
				sheet,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// inSheetTx runs fn in a transaction holding an advisory lock on the sheet,
// which serializes appends and index shifts for that sheet.
func (s *PostgresStore) inSheetTx(ctx context.Context, sheet string, fn func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, sheet); err != nil {
		return fmt.Errorf("lock sheet %s: %w", sheet, err)
	}
	if err := fn(tx); err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	return tx.Commit(ctx)
}

// lastNonEmptyRow returns the highest row index holding at least one
// non-blank cell, or 0 for an empty sheet.
func lastNonEmptyRow(ctx context.Context, tx pgx.Tx, sheet string) (int, error) {
	rows, err := tx.Query(ctx,
		`SELECT row_index, cells FROM rowstore_rows WHERE sheet = $1 ORDER BY row_index DESC`,
		sheet,
	)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var idx int
		var raw []byte
		if err := rows.Scan(&idx, &raw); err != nil {
			return 0, err
		}
		cells, err := decodeCells(raw)
		if err != nil {
			return 0, err
		}
		if len(trimTrailing(cells)) > 0 {
			return idx, nil
		}
	}
	return 0, rows.Err()
}

func decodeCells(raw []byte) ([]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var cells []interface{}
	if err := json.Unmarshal(raw, &cells); err != nil {
		return nil, err
	}
	return cells, nil
}
