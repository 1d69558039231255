package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"leadcrm-backend/models"
	"leadcrm-backend/repository"
	"leadcrm-backend/rowstore"
	"leadcrm-backend/storage"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errInjected = errors.New("injected failure")

// flakyStore fails appends to one sheet and passes everything else through.
type flakyStore struct {
	*rowstore.MemoryStore
	failAppend string
}

func (s *flakyStore) AppendRow(ctx context.Context, rng string, row []interface{}) error {
	if s.failAppend != "" && strings.HasPrefix(rng, s.failAppend+"!") {
		return errInjected
	}
	return s.MemoryStore.AppendRow(ctx, rng, row)
}

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	mem     *rowstore.MemoryStore
	store   *flakyStore
	archive storage.Storage
	clients *ClientService
	pricing *PricingService
	users   *repository.UserRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := rowstore.NewMemoryStore(
		models.SheetClients, models.SheetUsers, models.SheetInvoices, models.SheetAuditLog,
		models.SheetPayments, models.SheetIndustryPricing, models.SheetAreaPricing,
	)
	require.NoError(t, repository.WriteHeaders(context.Background(), mem))
	mem.Seed(models.SheetIndustryPricing,
		models.Headers[models.SheetIndustryPricing],
		[]interface{}{"Retail", 10},
		[]interface{}{"Finance", 20},
	)
	mem.Seed(models.SheetAreaPricing,
		models.Headers[models.SheetAreaPricing],
		[]interface{}{"North", 1.5},
	)

	store := &flakyStore{MemoryStore: mem}
	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	clock := &stepClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	pricingSvc := NewPricingService(repository.NewPricingRepository(store))
	users := repository.NewUserRepository(store)

	clients := NewClientService(
		WithClientRepository(repository.NewClientRepository(store)),
		WithUserRepository(users),
		WithInvoiceRepository(repository.NewInvoiceRepository(store)),
		WithAuditRepository(repository.NewAuditRepository(store)),
		WithPricingService(pricingSvc),
		WithArchive(archive),
		WithClock(clock.Now),
		WithHashCost(bcrypt.MinCost),
	)

	return &fixture{mem: mem, store: store, archive: archive, clients: clients, pricing: pricingSvc, users: users}
}

func (f *fixture) seed(sheet string, rows ...[]interface{}) {
	all := append([][]interface{}{models.Headers[sheet]}, rows...)
	f.mem.Seed(sheet, all...)
}

func (f *fixture) dataRows(sheet string) [][]interface{} {
	return f.mem.Rows(sheet)[1:]
}

func validCreate() CreateClientRequest {
	return CreateClientRequest{
		CompanyName:     "Acme Traders",
		Industry:        "Retail",
		ContactNumber:   "555-0100",
		WhatsApp:        "555-0101",
		Email:           "ops@acme.test",
		Location:        "Leeds",
		ContactPerson:   "Jo Smith",
		Username:        "Acme",
		Password:        "secret1",
		Industries:      []string{"Finance"},
		Areas:           []string{"North"},
		LeadQty:         100,
		Channels:        []models.Channel{models.ChannelWhatsApp},
		DiscountPercent: 10,
	}
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// emptyStore knows no sheets, so every read fails.
func emptyStore() *rowstore.MemoryStore {
	return rowstore.NewMemoryStore()
}

func ptr[T any](v T) *T {
	return &v
}
