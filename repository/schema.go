package repository

import (
	"context"
	"fmt"

	"leadcrm-backend/models"
	"leadcrm-backend/rowstore"
)

// WriteHeaders writes the header row of every known sheet. Existing data rows
// are left untouched.
func WriteHeaders(ctx context.Context, store rowstore.Store) error {
	for _, sheet := range models.SheetNames() {
		header := models.Headers[sheet]
		rng := rowstore.Range{Sheet: sheet, EndCol: len(header) - 1, StartRow: 1, EndRow: 1}
		if err := store.UpdateRow(ctx, rng.String(), header); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
	}
	return nil
}
