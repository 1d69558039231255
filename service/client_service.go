package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"leadcrm-backend/models"
	"leadcrm-backend/pricing"
	"leadcrm-backend/repository"
	"leadcrm-backend/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ClientService handles business logic for clients and their linked logins
type ClientService struct {
	clientRepo  *repository.ClientRepository
	userRepo    *repository.UserRepository
	invoiceRepo *repository.InvoiceRepository
	auditRepo   *repository.AuditRepository
	pricing     *PricingService
	archive     storage.Storage
	log         *zap.Logger
	now         func() time.Time
	hashCost    int

	idMu   sync.Mutex
	lastID int64
}

// ClientServiceOption is a functional option for ClientService
type ClientServiceOption func(*ClientService)

// WithClientRepository sets the client repository
func WithClientRepository(repo *repository.ClientRepository) ClientServiceOption {
	return func(s *ClientService) {
		s.clientRepo = repo
	}
}

// WithUserRepository sets the user repository
func WithUserRepository(repo *repository.UserRepository) ClientServiceOption {
	return func(s *ClientService) {
		s.userRepo = repo
	}
}

// WithInvoiceRepository sets the invoice repository
func WithInvoiceRepository(repo *repository.InvoiceRepository) ClientServiceOption {
	return func(s *ClientService) {
		s.invoiceRepo = repo
	}
}

// WithAuditRepository sets the audit repository
func WithAuditRepository(repo *repository.AuditRepository) ClientServiceOption {
	return func(s *ClientService) {
		s.auditRepo = repo
	}
}

// WithPricingService sets the pricing service used to price packages
func WithPricingService(p *PricingService) ClientServiceOption {
	return func(s *ClientService) {
		s.pricing = p
	}
}

// WithArchive sets the storage that receives deletion snapshots
func WithArchive(st storage.Storage) ClientServiceOption {
	return func(s *ClientService) {
		s.archive = st
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) ClientServiceOption {
	return func(s *ClientService) {
		s.log = log
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) ClientServiceOption {
	return func(s *ClientService) {
		s.now = now
	}
}

// WithHashCost sets the bcrypt cost for client logins
func WithHashCost(cost int) ClientServiceOption {
	return func(s *ClientService) {
		s.hashCost = cost
	}
}

// NewClientService creates a new client service
func NewClientService(opts ...ClientServiceOption) *ClientService {
	s := &ClientService{
		log:      zap.NewNop(),
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ClientService) ready() error {
	if s.clientRepo == nil || s.userRepo == nil || s.invoiceRepo == nil || s.auditRepo == nil || s.pricing == nil {
		return errors.New("client service dependencies not set")
	}
	return nil
}

// timestamp renders t the way createdAt cells are stored
func timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// CreateClientRequest represents a request to create a client with its login
type CreateClientRequest struct {
	CompanyName     string
	Industry        string
	ContactNumber   string
	WhatsApp        string
	Email           string
	Location        string
	ContactPerson   string
	Username        string
	Password        string
	Industries      []string
	Areas           []string
	LeadQty         int
	Channels        []models.Channel
	DiscountPercent float64
	Status          string

	// Prices computed by the caller, if any. Only compared against the
	// server-side quote.
	PerLeadPrice *float64
	TotalPrice   *float64
}

// CreateClientResult represents the result of creating a client
type CreateClientResult struct {
	Client         models.Client
	ClientUsername string
}

// Create appends the Clients row, its client login and an audit entry. When
// the login cannot be written the Clients row is removed again.
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*CreateClientResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	status := models.ClientActive
	if req.Status != "" {
		st, ok := models.ParseClientStatus(req.Status)
		if !ok || st == models.ClientInactive {
			return nil, invalid("status", "must be Active or Draft")
		}
		status = st
	}

	sel := pricing.Selection{
		Industries:      withPrimary(req.Industry, req.Industries),
		Areas:           dedupe(req.Areas),
		Channels:        req.Channels,
		LeadQty:         req.LeadQty,
		DiscountPercent: req.DiscountPercent,
	}
	if err := validateSelection(sel); err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	taken, err := s.userRepo.UsernameExists(ctx, username)
	if err != nil {
		return nil, upstream("check username", err)
	}
	if taken {
		return nil, invalid("username", "Username already taken")
	}

	rates, err := s.pricing.Rates(ctx)
	if err != nil {
		return nil, err
	}
	quote := pricing.Calculate(sel, rates)
	s.compareSubmitted(req.PerLeadPrice, req.TotalPrice, quote)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash client password: %w", err)
	}

	now := s.now()
	seq, err := s.nextClientSeq(ctx, now)
	if err != nil {
		return nil, err
	}
	client := models.Client{
		ClientID:        fmt.Sprintf("C-%d", seq),
		CompanyName:     strings.TrimSpace(req.CompanyName),
		Industry:        strings.TrimSpace(req.Industry),
		ContactNumber:   strings.TrimSpace(req.ContactNumber),
		WhatsApp:        strings.TrimSpace(req.WhatsApp),
		Email:           strings.TrimSpace(req.Email),
		Location:        strings.TrimSpace(req.Location),
		CreatedAt:       timestamp(now),
		Industries:      sel.Industries,
		Areas:           sel.Areas,
		LeadQty:         sel.LeadQty,
		Channels:        sel.Channels,
		DiscountPercent: sel.DiscountPercent,
		PerLeadPrice:    quote.PerLead,
		TotalPrice:      quote.Net,
		Status:          status,
	}

	if err := s.clientRepo.Append(ctx, client); err != nil {
		return nil, upstream("append client", err)
	}

	user := models.User{
		UserID:       fmt.Sprintf("U-%d", seq),
		Name:         strings.TrimSpace(req.ContactPerson),
		Email:        client.Email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleClient,
		Status:       status.UserStatus(),
		ClientID:     client.ClientID,
	}
	if err := s.userRepo.Append(ctx, user); err != nil {
		s.rollbackClient(ctx, client.ClientID)
		return nil, upstream("append client login", err)
	}

	s.audit(ctx, models.AuditClientCreated, client)

	s.log.Info("Client created",
		zap.String("client_id", client.ClientID),
		zap.String("username", username),
		zap.Float64("total_price", client.TotalPrice),
	)

	return &CreateClientResult{Client: client, ClientUsername: username}, nil
}

// nextClientSeq returns the numeric part of a new client id: the creation time
// in unix milliseconds, bumped past ids handed out earlier by this process and
// past any id already present in Clients. Client logins reuse the same number.
func (s *ClientService) nextClientSeq(ctx context.Context, now time.Time) (int64, error) {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	seq := now.UnixMilli()
	if seq <= s.lastID {
		seq = s.lastID + 1
	}
	for {
		taken, err := s.clientRepo.Exists(ctx, fmt.Sprintf("C-%d", seq))
		if err != nil {
			return 0, upstream("check client id", err)
		}
		if !taken {
			break
		}
		seq++
	}
	s.lastID = seq
	return seq, nil
}

// rollbackClient removes a just-appended Clients row. Failures are logged
// only; the caller already reports the Users failure.
func (s *ClientService) rollbackClient(ctx context.Context, clientID string) {
	rec, err := s.clientRepo.FindByID(ctx, clientID)
	if err == nil {
		err = s.clientRepo.DeleteRows(ctx, []int{rec.Row})
	}
	if err != nil {
		s.log.Error("Failed to roll back client row", zap.String("client_id", clientID), zap.Error(err))
		return
	}
	s.log.Warn("Rolled back client row after login append failed", zap.String("client_id", clientID))
}

func (s *ClientService) audit(ctx context.Context, action string, c models.Client) {
	entry := models.AuditEntry{
		ID:          uuid.NewString(),
		Action:      action,
		CompanyName: c.CompanyName,
		Email:       c.Email,
		CreatedAt:   timestamp(s.now()),
		ClientID:    c.ClientID,
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.log.Warn("Failed to append audit entry",
			zap.String("action", action),
			zap.String("client_id", c.ClientID),
			zap.Error(err),
		)
	}
}

func (s *ClientService) compareSubmitted(perLead, total *float64, quote pricing.Breakdown) {
	const tolerance = 0.005
	if perLead != nil && math.Abs(*perLead-quote.PerLead) > tolerance ||
		total != nil && math.Abs(*total-quote.Net) > tolerance {
		fields := []zap.Field{zap.Float64("quoted_per_lead", quote.PerLead), zap.Float64("quoted_total", quote.Net)}
		if perLead != nil {
			fields = append(fields, zap.Float64("submitted_per_lead", *perLead))
		}
		if total != nil {
			fields = append(fields, zap.Float64("submitted_total", *total))
		}
		s.log.Warn("Submitted price differs from server quote, using server quote", fields...)
	}
}

// ListClientsRequest filters the client list; an empty Status returns all
type ListClientsRequest struct {
	Status string
}

// List returns clients in sheet order, skipping rows without a company name
func (s *ClientService) List(ctx context.Context, req ListClientsRequest) ([]models.Client, error) {
	if s.clientRepo == nil {
		return nil, errors.New("client repository not set")
	}

	var want models.ClientStatus
	if req.Status != "" {
		st, ok := models.ParseClientStatus(req.Status)
		if !ok {
			return nil, invalid("status", "must be Active, Draft or Inactive")
		}
		want = st
	}

	records, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, upstream("list clients", err)
	}

	clients := make([]models.Client, 0, len(records))
	for _, rec := range records {
		if rec.Client.CompanyName == "" {
			continue
		}
		if want != "" && rec.Client.Status != want {
			continue
		}
		clients = append(clients, rec.Client)
	}
	return clients, nil
}

// Get returns a single client
func (s *ClientService) Get(ctx context.Context, clientID string) (*models.Client, error) {
	rec, err := s.find(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &rec.Client, nil
}

func (s *ClientService) find(ctx context.Context, clientID string) (*repository.ClientRecord, error) {
	if s.clientRepo == nil {
		return nil, errors.New("client repository not set")
	}
	if strings.TrimSpace(clientID) == "" {
		return nil, invalid("clientId", "Missing clientId")
	}

	rec, err := s.clientRepo.FindByID(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, upstream("find client", err)
	}
	return rec, nil
}

// UpdateClientRequest carries the editable client fields. Nil fields keep
// the stored value; a nil Industries or Areas slice keeps the stored list.
type UpdateClientRequest struct {
	ClientID      string
	CompanyName   *string
	Industry      *string
	ContactNumber *string
	WhatsApp      *string
	Email         *string
	Location      *string
	Industries    []string
	Areas         []string
	LeadQty       *int

	PerLeadPrice *float64
	TotalPrice   *float64
}

// Update rewrites the client row from the stored row merged with the fields
// present in req. createdAt, channels, discountPercent and status always come
// from the stored row; prices are recomputed from the merged selection.
func (s *ClientService) Update(ctx context.Context, req UpdateClientRequest) (*models.Client, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rec, err := s.find(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	existing := rec.Client

	industry := merged(req.Industry, existing.Industry)
	industries := existing.Industries
	if req.Industries != nil {
		industries = req.Industries
	}
	areas := existing.Areas
	if req.Areas != nil {
		areas = req.Areas
	}
	leadQty := existing.LeadQty
	if req.LeadQty != nil {
		leadQty = *req.LeadQty
	}

	sel := pricing.Selection{
		Industries:      withPrimary(industry, industries),
		Areas:           dedupe(areas),
		Channels:        existing.Channels,
		LeadQty:         leadQty,
		DiscountPercent: existing.DiscountPercent,
	}
	if err := validateSelection(sel); err != nil {
		return nil, err
	}

	companyName := merged(req.CompanyName, existing.CompanyName)
	if companyName == "" {
		return nil, invalid("companyName", "must not be empty")
	}

	rates, err := s.pricing.Rates(ctx)
	if err != nil {
		return nil, err
	}
	quote := pricing.Calculate(sel, rates)
	s.compareSubmitted(req.PerLeadPrice, req.TotalPrice, quote)

	updated := models.Client{
		ClientID:        existing.ClientID,
		CompanyName:     companyName,
		Industry:        industry,
		ContactNumber:   merged(req.ContactNumber, existing.ContactNumber),
		WhatsApp:        merged(req.WhatsApp, existing.WhatsApp),
		Email:           merged(req.Email, existing.Email),
		Location:        merged(req.Location, existing.Location),
		CreatedAt:       existing.CreatedAt,
		Industries:      sel.Industries,
		Areas:           sel.Areas,
		LeadQty:         sel.LeadQty,
		Channels:        existing.Channels,
		DiscountPercent: existing.DiscountPercent,
		PerLeadPrice:    quote.PerLead,
		TotalPrice:      quote.Net,
		Status:          existing.Status,
	}

	if err := s.clientRepo.Overwrite(ctx, rec.Row, updated); err != nil {
		return nil, upstream("update client", err)
	}
	s.audit(ctx, models.AuditClientUpdated, updated)

	return &updated, nil
}

// merged returns the trimmed value of v, or stored when v is nil.
func merged(v *string, stored string) string {
	if v == nil {
		return stored
	}
	return strings.TrimSpace(*v)
}

// UpdateStatusRequest represents a status change
type UpdateStatusRequest struct {
	ClientID string
	Status   string
}

// UpdateStatus moves a client along Draft -> Active <-> Inactive and mirrors
// the result onto linked logins. Setting the current status is a no-op.
func (s *ClientService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*models.Client, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ClientID) == "" || strings.TrimSpace(req.Status) == "" {
		return nil, invalid("status", "Missing clientId or status")
	}
	to, ok := models.ParseClientStatus(req.Status)
	if !ok {
		return nil, invalid("status", "must be Active, Draft or Inactive")
	}

	rec, err := s.find(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	from := rec.Client.Status
	if from == to {
		return &rec.Client, nil
	}
	if !from.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	if err := s.clientRepo.UpdateStatusCell(ctx, rec.Row, to); err != nil {
		return nil, upstream("update client status", err)
	}
	rec.Client.Status = to

	users, err := s.userRepo.LinkedTo(ctx, rec.Client.ClientID, rec.Client.Email)
	if err != nil {
		s.log.Warn("Failed to look up linked logins", zap.String("client_id", rec.Client.ClientID), zap.Error(err))
	}
	for _, u := range users {
		if u.User.Role != models.RoleClient {
			continue
		}
		if err := s.userRepo.UpdateStatusCell(ctx, u.Row, to.UserStatus()); err != nil {
			s.log.Warn("Failed to update linked login status",
				zap.String("client_id", rec.Client.ClientID),
				zap.String("user_id", u.User.UserID),
				zap.Error(err),
			)
		}
	}

	s.audit(ctx, models.AuditClientStatusChanged, rec.Client)
	s.log.Info("Client status changed",
		zap.String("client_id", rec.Client.ClientID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return &rec.Client, nil
}

// DeletionSnapshot is archived before a cascading delete
type DeletionSnapshot struct {
	Client    models.Client       `json:"client"`
	Users     []models.User       `json:"users"`
	Invoices  []models.Invoice    `json:"invoices"`
	AuditLog  []models.AuditEntry `json:"auditLog"`
	DeletedAt string              `json:"deletedAt"`
	DeletedBy string              `json:"deletedBy,omitempty"`
}

// DeleteClientRequest represents a request to delete a client
type DeleteClientRequest struct {
	ClientID  string
	DeletedBy string
}

// DeleteClientResult reports what was removed
type DeleteClientResult struct {
	ArchivePath     string
	UsersDeleted    int
	InvoicesDeleted int
	AuditDeleted    int
}

// Delete removes the client and every row linked to it. All row numbers are
// collected before the first delete; each sheet is deleted in one
// descending batch and the Clients row goes last, so a failed run leaves the
// client in place to be retried.
func (s *ClientService) Delete(ctx context.Context, req DeleteClientRequest) (*DeleteClientResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ClientID) == "" {
		return nil, invalid("clientId", "Client ID required")
	}

	rec, err := s.find(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	client := rec.Client

	users, err := s.userRepo.LinkedTo(ctx, client.ClientID, client.Email)
	if err != nil {
		return nil, upstream("find linked users", err)
	}
	invoices, err := s.invoiceRepo.ForClient(ctx, client.ClientID)
	if err != nil {
		return nil, upstream("find client invoices", err)
	}
	entries, err := s.auditRepo.LinkedTo(ctx, client.ClientID, client.Email)
	if err != nil {
		return nil, upstream("find audit entries", err)
	}

	snap := DeletionSnapshot{
		Client:    client,
		DeletedAt: timestamp(s.now()),
		DeletedBy: req.DeletedBy,
	}
	userRows := make([]int, len(users))
	for i, u := range users {
		userRows[i] = u.Row
		snap.Users = append(snap.Users, u.User)
	}
	invoiceRows := make([]int, len(invoices))
	for i, inv := range invoices {
		invoiceRows[i] = inv.Row
		snap.Invoices = append(snap.Invoices, inv.Invoice)
	}
	auditRows := make([]int, len(entries))
	for i, e := range entries {
		auditRows[i] = e.Row
		snap.AuditLog = append(snap.AuditLog, e.Entry)
	}

	result := &DeleteClientResult{
		ArchivePath:     s.archiveSnapshot(ctx, snap),
		UsersDeleted:    len(userRows),
		InvoicesDeleted: len(invoiceRows),
		AuditDeleted:    len(auditRows),
	}

	if err := s.invoiceRepo.DeleteRows(ctx, invoiceRows); err != nil {
		return nil, upstream("delete invoices", err)
	}
	if err := s.auditRepo.DeleteRows(ctx, auditRows); err != nil {
		return nil, upstream("delete audit entries", err)
	}
	if err := s.userRepo.DeleteRows(ctx, userRows); err != nil {
		return nil, upstream("delete users", err)
	}
	if err := s.clientRepo.DeleteRows(ctx, []int{rec.Row}); err != nil {
		return nil, upstream("delete client", err)
	}

	s.log.Info("Client deleted",
		zap.String("client_id", client.ClientID),
		zap.Int("users", result.UsersDeleted),
		zap.Int("invoices", result.InvoicesDeleted),
		zap.Int("audit_entries", result.AuditDeleted),
		zap.String("archive", result.ArchivePath),
	)
	return result, nil
}

// archiveSnapshot stores snap and returns its path, or "" when no archive is
// configured or the upload failed.
func (s *ClientService) archiveSnapshot(ctx context.Context, snap DeletionSnapshot) string {
	if s.archive == nil {
		return ""
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.log.Warn("Failed to encode deletion snapshot", zap.String("client_id", snap.Client.ClientID), zap.Error(err))
		return ""
	}

	key := fmt.Sprintf("deletions/%s/%d.json", snap.Client.ClientID, s.now().UnixMilli())
	path, err := s.archive.Upload(ctx, key, bytes.NewReader(data))
	if err != nil {
		s.log.Warn("Failed to archive deletion snapshot", zap.String("client_id", snap.Client.ClientID), zap.Error(err))
		return ""
	}
	return path
}

// withPrimary returns industries with primary first when it is missing.
func withPrimary(primary string, industries []string) []string {
	primary = strings.TrimSpace(primary)
	list := dedupe(industries)
	if primary == "" {
		return list
	}
	for _, ind := range list {
		if ind == primary {
			return list
		}
	}
	return append([]string{primary}, list...)
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
