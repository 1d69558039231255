package models

import (
	"strings"

	"leadcrm-backend/rowstore"
)

// Role represents a login role
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSales  Role = "sales"
	RoleClient Role = "client"
)

// UserStatus represents whether a login may sign in
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// Users columns A..H. client_id (H) links client logins to their Clients row;
// it is empty for staff and for rows written before the column existed.
const (
	UserColID = iota
	UserColName
	UserColEmail
	UserColUsername
	UserColPasswordHash
	UserColRole
	UserColStatus
	UserColClientID
	userColumns
)

const (
	UsersDataRange     = "Users!A2:H"
	UsersAppendRange   = "Users!A:H"
	UsersUsernameRange = "Users!D2:D"
	UsersStatusColumn  = "G"
)

// User represents a credential record
type User struct {
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never serialize password hash
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	ClientID     string     `json:"client_id,omitempty"`
}

// UserFromRow maps a Users row. Status defaults to active and role to sales.
func UserFromRow(row []interface{}) User {
	return User{
		UserID:       rowstore.CellString(row, UserColID, ""),
		Name:         rowstore.CellString(row, UserColName, ""),
		Email:        rowstore.CellString(row, UserColEmail, ""),
		Username:     rowstore.CellString(row, UserColUsername, ""),
		PasswordHash: rowstore.CellString(row, UserColPasswordHash, ""),
		Role:         Role(strings.ToLower(rowstore.CellString(row, UserColRole, string(RoleSales)))),
		Status:       UserStatus(strings.ToLower(rowstore.CellString(row, UserColStatus, string(UserActive)))),
		ClientID:     rowstore.CellString(row, UserColClientID, ""),
	}
}

// ToRow renders the full A..H row.
func (u User) ToRow() []interface{} {
	row := make([]interface{}, userColumns)
	row[UserColID] = u.UserID
	row[UserColName] = u.Name
	row[UserColEmail] = u.Email
	row[UserColUsername] = u.Username
	row[UserColPasswordHash] = u.PasswordHash
	row[UserColRole] = string(u.Role)
	row[UserColStatus] = string(u.Status)
	row[UserColClientID] = u.ClientID
	return row
}

// IsActive reports whether the user may sign in.
func (u User) IsActive() bool {
	return u.Status == UserActive
}

// MatchesLogin compares an identifier against email or username,
// case-insensitively and ignoring surrounding whitespace.
func (u User) MatchesLogin(identifier string) bool {
	id := strings.ToLower(strings.TrimSpace(identifier))
	if id == "" {
		return false
	}
	return strings.ToLower(u.Email) == id || strings.ToLower(u.Username) == id
}
