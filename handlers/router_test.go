package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadcrm-backend/auth"
	"leadcrm-backend/models"
	"leadcrm-backend/repository"
	"leadcrm-backend/rowstore"
	"leadcrm-backend/service"
	"leadcrm-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *rowstore.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store := rowstore.NewMemoryStore(
		models.SheetClients, models.SheetUsers, models.SheetInvoices, models.SheetAuditLog,
		models.SheetPayments, models.SheetIndustryPricing, models.SheetAreaPricing,
	)
	require.NoError(t, repository.WriteHeaders(ctx, store))
	store.Seed(models.SheetIndustryPricing, models.Headers[models.SheetIndustryPricing],
		[]interface{}{"Retail", 10}, []interface{}{"Finance", 20})
	store.Seed(models.SheetAreaPricing, models.Headers[models.SheetAreaPricing],
		[]interface{}{"North", 1.5})

	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)
	store.Seed(models.SheetUsers, models.Headers[models.SheetUsers],
		models.User{UserID: "U-admin", Name: "Ada", Email: "ada@crm.test", Username: "ada", PasswordHash: string(hash), Role: models.RoleAdmin, Status: models.UserActive}.ToRow(),
		models.User{UserID: "U-sales", Name: "Sam", Email: "sam@crm.test", Username: "sam", PasswordHash: string(hash), Role: models.RoleSales, Status: models.UserActive}.ToRow(),
		models.User{UserID: "U-gone", Name: "Gus", Email: "gus@crm.test", Username: "gus", PasswordHash: string(hash), Role: models.RoleSales, Status: models.UserInactive}.ToRow(),
		models.User{UserID: "U-client", Name: "Cal", Email: "cal@client.test", Username: "cal", PasswordHash: string(hash), Role: models.RoleClient, Status: models.UserActive}.ToRow(),
	)

	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenManager("handler-secret", time.Hour)
	require.NoError(t, err)

	clientRepo := repository.NewClientRepository(store)
	userRepo := repository.NewUserRepository(store)
	invoiceRepo := repository.NewInvoiceRepository(store)
	pricingSvc := service.NewPricingService(repository.NewPricingRepository(store))
	clients := service.NewClientService(
		service.WithClientRepository(clientRepo),
		service.WithUserRepository(userRepo),
		service.WithInvoiceRepository(invoiceRepo),
		service.WithAuditRepository(repository.NewAuditRepository(store)),
		service.WithPricingService(pricingSvc),
		service.WithArchive(archive),
		service.WithHashCost(bcrypt.MinCost),
	)

	router := NewRouter(RouterConfig{
		Tokens:       tokens,
		CookieName:   "crm_session",
		LoginLimiter: auth.NewLoginLimiter(60, 20),
		Auth: service.NewAuthService(
			service.AuthWithUserRepository(userRepo),
			service.AuthWithTokenManager(tokens),
		),
		Clients:  clients,
		Pricing:  pricingSvc,
		Reports:  service.NewReportService(clientRepo, invoiceRepo, repository.NewPaymentRepository(store), nil),
		Invoices: service.NewInvoiceService(invoiceRepo, clientRepo),
		Export:   service.NewExportService(clients),
		Archive:  archive,
	})

	return &testServer{t: t, router: router, store: store}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"username": username, "password": "password1"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createBody() gin.H {
	return gin.H{
		"companyName":     "Acme Traders",
		"industry":        "Retail",
		"contactNumber":   "555-0100",
		"whatsapp":        "555-0101",
		"email":           "ops@acme.test",
		"location":        "Leeds",
		"contactPerson":   "Jo Smith",
		"username":        "acme",
		"password":        "secret1",
		"industries":      []string{"Finance"},
		"areas":           []string{"North"},
		"leadQty":         100,
		"discountPercent": 10,
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"username": "ADA@crm.test", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "U-admin", body["user_id"])
	assert.Equal(t, "admin", body["role"])
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "crm_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookies[0])
	me := httptest.NewRecorder()
	s.router.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "Ada", decode(t, me)["name"])

	tests := []struct {
		name string
		body gin.H
		code int
	}{
		{name: "wrong password", body: gin.H{"username": "sam", "password": "wrong-pass"}, code: http.StatusUnauthorized},
		{name: "unknown user", body: gin.H{"username": "nobody", "password": "password1"}, code: http.StatusUnauthorized},
		{name: "inactive", body: gin.H{"username": "gus", "password": "password1"}, code: http.StatusForbidden},
		{name: "short password", body: gin.H{"username": "sam", "password": "123"}, code: http.StatusBadRequest},
		{name: "missing username", body: gin.H{"password": "password1"}, code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestSessionAndRoles(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/clients", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/clients", "garbage", nil).Code)

	client := s.login("cal")
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/clients", client, nil).Code)

	sales := s.login("sam")
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/clients", sales, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/reports/admin", sales, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodDelete, "/clients?clientId=C-1", sales, nil).Code)
}

func TestClientLifecycle(t *testing.T) {
	s := newTestServer(t)
	sales := s.login("sam")
	admin := s.login("ada")

	w := s.do(http.MethodPost, "/api/clients", sales, createBody())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, true, created["ok"])
	assert.Equal(t, "acme", created["clientUsername"])
	assert.Equal(t, 2092.5, created["totalPrice"])
	clientID := created["clientId"].(string)

	w = s.do(http.MethodGet, "/check-username?username=ACME", sales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["exists"])

	w = s.do(http.MethodGet, "/clients/"+clientID, sales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	client := decode(t, w)["client"].(map[string]interface{})
	assert.Equal(t, "Acme Traders", client["companyName"])
	assert.Equal(t, []interface{}{"Retail", "Finance"}, client["industries"])
	assert.Equal(t, []interface{}{"whatsapp"}, client["channels"])

	w = s.do(http.MethodPut, "/clients", sales, gin.H{
		"clientId":    clientID,
		"companyName": "Acme Group",
		"industry":    "Retail",
		"email":       "ops@acme.test",
		"leadQty":     200,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/clients", sales, gin.H{"clientId": clientID, "leadQty": 50})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/clients/"+clientID, sales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	client = decode(t, w)["client"].(map[string]interface{})
	assert.Equal(t, "Acme Group", client["companyName"])
	assert.Equal(t, "ops@acme.test", client["email"])
	assert.Equal(t, "Leeds", client["location"])
	assert.Equal(t, []interface{}{"North"}, client["areas"])
	assert.Equal(t, 50.0, client["leadQty"])

	w = s.do(http.MethodPut, "/clients", sales, gin.H{"clientId": clientID, "companyName": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/clients/status", sales, gin.H{"clientId": clientID, "status": "Draft"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/clients/status", sales, gin.H{"clientId": clientID, "status": "Inactive"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/clients?status=inactive", sales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["clients"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "Acme Group", list[0].(map[string]interface{})["companyName"])

	w = s.do(http.MethodPost, "/invoices", sales, gin.H{"client_id": clientID, "amount": 120})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Regexp(t, `^INV-\d+$`, decode(t, w)["invoiceId"])

	w = s.do(http.MethodDelete, "/api/clients?clientId="+clientID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	archivePath := decode(t, w)["archive"].(string)
	require.NotEmpty(t, archivePath)

	w = s.do(http.MethodGet, "/archive?path="+archivePath, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snapshot := decode(t, w)
	assert.Equal(t, "U-admin", snapshot["deletedBy"])
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/archive?path="+archivePath, sales, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/archive?path=../secrets", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/archive?path=deletions/C-0/1.json", admin, nil).Code)

	w = s.do(http.MethodGet, "/clients/"+clientID, sales, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, s.store.Rows(models.SheetUsers), 5, "header plus the four staff logins")
	assert.Len(t, s.store.Rows(models.SheetInvoices), 1)
}

func TestCreateClientValidation(t *testing.T) {
	s := newTestServer(t)
	sales := s.login("sam")

	body := createBody()
	body["email"] = "not-an-email"
	body["password"] = "123"
	body["channels"] = []string{"fax"}

	w := s.do(http.MethodPost, "/clients", sales, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Contains(t, resp["error"], "invalid input")

	fields := map[string]bool{}
	for _, f := range resp["fields"].([]interface{}) {
		fields[f.(map[string]interface{})["field"].(string)] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
	assert.Len(t, s.store.Rows(models.SheetClients), 1)
}

func TestClientErrors(t *testing.T) {
	s := newTestServer(t)
	sales := s.login("sam")
	admin := s.login("ada")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		code   int
	}{
		{name: "update without id", method: http.MethodPut, path: "/clients", token: sales, body: gin.H{"companyName": "Acme"}, code: http.StatusBadRequest},
		{name: "update unknown", method: http.MethodPut, path: "/clients", token: sales, body: gin.H{"clientId": "C-404", "companyName": "Acme"}, code: http.StatusNotFound},
		{name: "status missing fields", method: http.MethodPatch, path: "/clients/status", token: sales, body: gin.H{"clientId": "C-1"}, code: http.StatusBadRequest},
		{name: "status unknown client", method: http.MethodPatch, path: "/clients/status", token: sales, body: gin.H{"clientId": "C-404", "status": "Active"}, code: http.StatusNotFound},
		{name: "delete without id", method: http.MethodDelete, path: "/clients", token: admin, code: http.StatusBadRequest},
		{name: "delete unknown", method: http.MethodDelete, path: "/clients?clientId=C-404", token: admin, code: http.StatusNotFound},
		{name: "get unknown", method: http.MethodGet, path: "/clients/C-404", token: sales, code: http.StatusNotFound},
		{name: "check username missing", method: http.MethodGet, path: "/check-username", token: sales, code: http.StatusBadRequest},
		{name: "invoice unknown client", method: http.MethodPost, path: "/invoices", token: sales, body: gin.H{"client_id": "C-404", "amount": 1}, code: http.StatusNotFound},
		{name: "list bad status", method: http.MethodGet, path: "/clients?status=archived", token: sales, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}
}

func TestPricingEndpoints(t *testing.T) {
	s := newTestServer(t)
	sales := s.login("sam")

	w := s.do(http.MethodGet, "/pricing/industry", sales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 2)

	w = s.do(http.MethodGet, "/api/pricing/area", sales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[{"name":"North","price":1.5}]}`, w.Body.String())

	w = s.do(http.MethodPost, "/pricing/quote", sales, gin.H{
		"industries":      []string{"Retail", "Finance"},
		"areas":           []string{"North"},
		"channels":        []string{"whatsapp"},
		"leadQty":         100,
		"discountPercent": 10,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quote := decode(t, w)
	assert.Equal(t, 23.25, quote["perLead"])
	assert.Equal(t, 2325.0, quote["gross"])
	assert.Equal(t, 232.5, quote["discountAmount"])
	assert.Equal(t, 2092.5, quote["net"])

	w = s.do(http.MethodPost, "/pricing/quote", sales, gin.H{"discountPercent": 150})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportsAndExport(t *testing.T) {
	s := newTestServer(t)
	sales := s.login("sam")
	admin := s.login("ada")

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/clients", sales, createBody()).Code)

	w := s.do(http.MethodGet, "/reports/admin", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode(t, w)
	assert.Equal(t, 1.0, report["totalClients"])
	assert.Equal(t, 1.0, report["activeClients"])

	w = s.do(http.MethodGet, "/reports/sales", sales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sr := decode(t, w)
	assert.Equal(t, 100.0, sr["totalLeads"])
	assert.Equal(t, 2092.5, sr["pipelineValue"])

	w = s.do(http.MethodGet, "/clients/export", sales, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "clients-")
	assert.NotZero(t, w.Body.Len())
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t)
	var last int
	for i := 0; i < 25; i++ {
		last = s.do(http.MethodPost, "/auth/login", "", gin.H{"username": "sam", "password": "wrong-pass"}).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
