package repository

import (
	"context"
	"fmt"
	"strings"

	"leadcrm-backend/models"
	"leadcrm-backend/rowstore"
)

// UserRecord is a user together with its 1-based sheet row
type UserRecord struct {
	Row  int
	User models.User
}

// UserRepository handles row store operations for logins
type UserRepository struct {
	store rowstore.Store
}

// NewUserRepository creates a new user repository
func NewUserRepository(store rowstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// List returns every user row
func (r *UserRepository) List(ctx context.Context) ([]UserRecord, error) {
	rows, err := r.store.ReadRange(ctx, models.UsersDataRange)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}

	records := make([]UserRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, UserRecord{
			Row:  i + models.FirstDataRow,
			User: models.UserFromRow(row),
		})
	}
	return records, nil
}

// FindByLogin returns the first user whose email or username matches
// identifier, ignoring case.
func (r *UserRepository) FindByLogin(ctx context.Context, identifier string) (*UserRecord, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].User.MatchesLogin(identifier) {
			return &records[i], nil
		}
	}
	return nil, ErrNotFound
}

// UsernameExists checks the username column only, trimmed and ignoring case
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	want := strings.ToLower(strings.TrimSpace(username))
	if want == "" {
		return false, nil
	}

	rows, err := r.store.ReadRange(ctx, models.UsersUsernameRange)
	if err != nil {
		return false, fmt.Errorf("read usernames: %w", err)
	}
	for _, row := range rows {
		if strings.ToLower(rowstore.CellString(row, 0, "")) == want {
			return true, nil
		}
	}
	return false, nil
}

// Append adds a user row
func (r *UserRepository) Append(ctx context.Context, user models.User) error {
	if err := r.store.AppendRow(ctx, models.UsersAppendRange, user.ToRow()); err != nil {
		return fmt.Errorf("append user: %w", err)
	}
	return nil
}

// UpdateStatusCell writes only the status column of a row
func (r *UserRepository) UpdateStatusCell(ctx context.Context, row int, status models.UserStatus) error {
	col := models.UsersStatusColumn
	rng := fmt.Sprintf("%s!%s%d:%s%d", models.SheetUsers, col, row, col, row)
	if err := r.store.UpdateRow(ctx, rng, []interface{}{string(status)}); err != nil {
		return fmt.Errorf("update user status row %d: %w", row, err)
	}
	return nil
}

// LinkedTo returns users tied to a client, either through the client_id
// column or, for rows that predate it, through a matching email.
func (r *UserRepository) LinkedTo(ctx context.Context, clientID, email string) ([]UserRecord, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []UserRecord
	for _, rec := range records {
		if linked(rec.User.ClientID, rec.User.Email, clientID, email) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// DeleteRows removes user rows in one batch
func (r *UserRepository) DeleteRows(ctx context.Context, rows []int) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.store.DeleteRows(ctx, models.SheetUsers, rows); err != nil {
		return fmt.Errorf("delete user rows: %w", err)
	}
	return nil
}

// linked matches on client id first, then on a non-empty email ignoring case.
func linked(rowClientID, rowEmail, clientID, email string) bool {
	if clientID != "" && rowClientID == clientID {
		return true
	}
	email = strings.TrimSpace(email)
	return email != "" && strings.EqualFold(strings.TrimSpace(rowEmail), email)
}
