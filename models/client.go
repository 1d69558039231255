package models

import (
	"strings"

	"leadcrm-backend/rowstore"
)

// ClientStatus represents the lifecycle state of a client
type ClientStatus string

const (
	ClientActive   ClientStatus = "Active"
	ClientDraft    ClientStatus = "Draft"
	ClientInactive ClientStatus = "Inactive"
)

// ParseClientStatus matches case-insensitively and returns the canonical value.
func ParseClientStatus(s string) (ClientStatus, bool) {
	for _, st := range []ClientStatus{ClientActive, ClientDraft, ClientInactive} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

// CanTransition reports whether a client may move from one status to another.
// Draft only moves forward to Active; Active and Inactive toggle.
func (s ClientStatus) CanTransition(to ClientStatus) bool {
	if s == to {
		return true
	}
	switch s {
	case ClientDraft:
		return to == ClientActive
	case ClientActive:
		return to == ClientInactive
	case ClientInactive:
		return to == ClientActive
	}
	return false
}

// UserStatus mirrors the client status onto its login.
func (s ClientStatus) UserStatus() UserStatus {
	if s == ClientInactive {
		return UserInactive
	}
	return UserActive
}

// Channel is a lead delivery channel
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

// Client columns A..P.
const (
	ClientColID = iota
	ClientColCompanyName
	ClientColIndustry
	ClientColContactNumber
	ClientColWhatsApp
	ClientColEmail
	ClientColLocation
	ClientColCreatedAt
	ClientColIndustries
	ClientColAreas
	ClientColLeadQty
	ClientColChannels
	ClientColDiscountPercent
	ClientColPerLeadPrice
	ClientColTotalPrice
	ClientColStatus
	clientColumns
)

// Ranges used against the Clients sheet.
const (
	ClientsDataRange   = "Clients!A2:P"
	ClientsAppendRange = "Clients!A:P"
	ClientsIDRange     = "Clients!A2:A"
	ClientsLastColumn  = "P"
)

// Client represents a CRM client with its lead package
type Client struct {
	ClientID        string       `json:"client_id"`
	CompanyName     string       `json:"companyName"`
	Industry        string       `json:"industry"`
	ContactNumber   string       `json:"contactNumber"`
	WhatsApp        string       `json:"whatsapp"`
	Email           string       `json:"email"`
	Location        string       `json:"location"`
	CreatedAt       string       `json:"createdAt"`
	Industries      []string     `json:"industries"`
	Areas           []string     `json:"areas"`
	LeadQty         int          `json:"leadQty"`
	Channels        []Channel    `json:"channels"`
	DiscountPercent float64      `json:"discountPercent"`
	PerLeadPrice    float64      `json:"perLeadPrice"`
	TotalPrice      float64      `json:"totalPrice"`
	Status          ClientStatus `json:"status"`
}

// ClientFromRow maps a Clients row. Missing cells take their defaults and an
// unknown status reads as Active.
func ClientFromRow(row []interface{}) Client {
	status, ok := ParseClientStatus(rowstore.CellString(row, ClientColStatus, string(ClientActive)))
	if !ok {
		status = ClientActive
	}

	var channels []Channel
	for _, c := range SplitList(rowstore.CellString(row, ClientColChannels, "")) {
		channels = append(channels, Channel(strings.ToLower(c)))
	}

	return Client{
		ClientID:        rowstore.CellString(row, ClientColID, ""),
		CompanyName:     rowstore.CellString(row, ClientColCompanyName, ""),
		Industry:        rowstore.CellString(row, ClientColIndustry, ""),
		ContactNumber:   rowstore.CellString(row, ClientColContactNumber, ""),
		WhatsApp:        rowstore.CellString(row, ClientColWhatsApp, ""),
		Email:           rowstore.CellString(row, ClientColEmail, ""),
		Location:        rowstore.CellString(row, ClientColLocation, ""),
		CreatedAt:       rowstore.CellString(row, ClientColCreatedAt, ""),
		Industries:      SplitList(rowstore.CellString(row, ClientColIndustries, "")),
		Areas:           SplitList(rowstore.CellString(row, ClientColAreas, "")),
		LeadQty:         rowstore.CellInt(row, ClientColLeadQty, 0),
		Channels:        channels,
		DiscountPercent: rowstore.CellFloat(row, ClientColDiscountPercent, 0),
		PerLeadPrice:    rowstore.CellFloat(row, ClientColPerLeadPrice, 0),
		TotalPrice:      rowstore.CellFloat(row, ClientColTotalPrice, 0),
		Status:          status,
	}
}

// ToRow renders the full A..P row.
func (c Client) ToRow() []interface{} {
	channels := make([]string, len(c.Channels))
	for i, ch := range c.Channels {
		channels[i] = string(ch)
	}

	row := make([]interface{}, clientColumns)
	row[ClientColID] = c.ClientID
	row[ClientColCompanyName] = c.CompanyName
	row[ClientColIndustry] = c.Industry
	row[ClientColContactNumber] = c.ContactNumber
	row[ClientColWhatsApp] = c.WhatsApp
	row[ClientColEmail] = c.Email
	row[ClientColLocation] = c.Location
	row[ClientColCreatedAt] = c.CreatedAt
	row[ClientColIndustries] = JoinList(c.Industries)
	row[ClientColAreas] = JoinList(c.Areas)
	row[ClientColLeadQty] = c.LeadQty
	row[ClientColChannels] = strings.Join(channels, ",")
	row[ClientColDiscountPercent] = c.DiscountPercent
	row[ClientColPerLeadPrice] = c.PerLeadPrice
	row[ClientColTotalPrice] = c.TotalPrice
	row[ClientColStatus] = string(c.Status)
	return row
}

// HasChannel reports whether ch is selected.
func (c Client) HasChannel(ch Channel) bool {
	for _, x := range c.Channels {
		if x == ch {
			return true
		}
	}
	return false
}

// SplitList splits a comma-joined cell, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList is the inverse of SplitList.
func JoinList(items []string) string {
	return strings.Join(items, ",")
}
