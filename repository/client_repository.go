package repository

import (
	"context"
	"errors"
	"fmt"

	"leadcrm-backend/models"
	"leadcrm-backend/rowstore"
)

// ErrNotFound is returned when no row matches a lookup
var ErrNotFound = errors.New("row not found")

// ClientRecord is a client together with its 1-based sheet row
type ClientRecord struct {
	Row    int
	Client models.Client
}

// ClientRepository handles row store operations for clients
type ClientRepository struct {
	store rowstore.Store
}

// NewClientRepository creates a new client repository
func NewClientRepository(store rowstore.Store) *ClientRepository {
	return &ClientRepository{store: store}
}

// List returns every client row, blank rows included.
func (r *ClientRepository) List(ctx context.Context) ([]ClientRecord, error) {
	rows, err := r.store.ReadRange(ctx, models.ClientsDataRange)
	if err != nil {
		return nil, fmt.Errorf("read clients: %w", err)
	}

	records := make([]ClientRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, ClientRecord{
			Row:    i + models.FirstDataRow,
			Client: models.ClientFromRow(row),
		})
	}
	return records, nil
}

// FindByID scans the id column and returns the first matching client
func (r *ClientRepository) FindByID(ctx context.Context, clientID string) (*ClientRecord, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Client.ClientID == clientID {
			return &records[i], nil
		}
	}
	return nil, ErrNotFound
}

// Exists reports whether any row carries clientID
func (r *ClientRepository) Exists(ctx context.Context, clientID string) (bool, error) {
	rows, err := r.store.ReadRange(ctx, models.ClientsIDRange)
	if err != nil {
		return false, fmt.Errorf("read client ids: %w", err)
	}
	for _, row := range rows {
		if rowstore.CellString(row, 0, "") == clientID {
			return true, nil
		}
	}
	return false, nil
}

// Append adds a client row
func (r *ClientRepository) Append(ctx context.Context, client models.Client) error {
	if err := r.store.AppendRow(ctx, models.ClientsAppendRange, client.ToRow()); err != nil {
		return fmt.Errorf("append client: %w", err)
	}
	return nil
}

// Overwrite rewrites the full A..P row
func (r *ClientRepository) Overwrite(ctx context.Context, row int, client models.Client) error {
	rng := fmt.Sprintf("%s!A%d:%s%d", models.SheetClients, row, models.ClientsLastColumn, row)
	if err := r.store.UpdateRow(ctx, rng, client.ToRow()); err != nil {
		return fmt.Errorf("overwrite client row %d: %w", row, err)
	}
	return nil
}

// UpdateStatusCell writes only the status column of a row
func (r *ClientRepository) UpdateStatusCell(ctx context.Context, row int, status models.ClientStatus) error {
	col := models.ClientsLastColumn
	rng := fmt.Sprintf("%s!%s%d:%s%d", models.SheetClients, col, row, col, row)
	if err := r.store.UpdateRow(ctx, rng, []interface{}{string(status)}); err != nil {
		return fmt.Errorf("update client status row %d: %w", row, err)
	}
	return nil
}

// DeleteRows removes client rows in one batch
func (r *ClientRepository) DeleteRows(ctx context.Context, rows []int) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.store.DeleteRows(ctx, models.SheetClients, rows); err != nil {
		return fmt.Errorf("delete client rows: %w", err)
	}
	return nil
}
