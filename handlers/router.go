package handlers

import (
	"net/http"

	"leadcrm-backend/auth"
	"leadcrm-backend/logger"
	"leadcrm-backend/metrics"
	"leadcrm-backend/models"
	"leadcrm-backend/service"
	"leadcrm-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RouterConfig carries everything the HTTP surface needs
type RouterConfig struct {
	Log          *zap.Logger
	Metrics      *metrics.HTTPMetrics
	Gatherer     prometheus.Gatherer
	Tokens       *auth.TokenManager
	CookieName   string
	CookieSecure bool
	LoginLimiter *auth.LoginLimiter

	Auth     *service.AuthService
	Clients  *service.ClientService
	Pricing  *service.PricingService
	Reports  *service.ReportService
	Invoices *service.InvoiceService
	Export   *service.ExportService

	Archive storage.Storage
}

// NewRouter builds the gin engine. CRM routes are served both at the root
// and under /api.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Gatherer)))
	}

	authHandler := NewAuthHandler(cfg.Auth, cfg.Tokens, cfg.CookieName, cfg.CookieSecure, log)
	clientHandler := NewClientHandler(cfg.Clients, cfg.Export, log)
	pricingHandler := NewPricingHandler(cfg.Pricing, log)
	reportHandler := NewReportHandler(cfg.Reports, log)
	invoiceHandler := NewInvoiceHandler(cfg.Invoices, log)
	archiveHandler := NewArchiveHandler(cfg.Archive, log)

	register := func(g *gin.RouterGroup) {
		login := []gin.HandlerFunc{authHandler.Login}
		if cfg.LoginLimiter != nil {
			login = append([]gin.HandlerFunc{cfg.LoginLimiter.Middleware()}, login...)
		}
		g.POST("/auth/login", login...)
		g.POST("/auth/logout", authHandler.Logout)

		session := g.Group("")
		session.Use(auth.RequireSession(cfg.Tokens, cfg.CookieName))
		session.GET("/auth/me", authHandler.Me)

		staff := session.Group("")
		staff.Use(auth.RequireRoles(models.RoleAdmin, models.RoleSales))
		{
			staff.GET("/check-username", authHandler.CheckUsername)

			staff.GET("/clients", clientHandler.ListClients)
			staff.GET("/clients/export", clientHandler.ExportClients)
			staff.GET("/clients/:id", clientHandler.GetClient)
			staff.POST("/clients", clientHandler.CreateClient)
			staff.PUT("/clients", clientHandler.UpdateClient)
			staff.PATCH("/clients/status", clientHandler.UpdateStatus)

			staff.POST("/invoices", invoiceHandler.CreateInvoice)

			staff.GET("/pricing/industry", pricingHandler.Industries)
			staff.GET("/pricing/area", pricingHandler.Areas)
			staff.POST("/pricing/quote", pricingHandler.Quote)

			staff.GET("/reports/sales", reportHandler.Sales)
		}

		admin := session.Group("")
		admin.Use(auth.RequireRoles(models.RoleAdmin))
		{
			admin.DELETE("/clients", clientHandler.DeleteClient)
			admin.GET("/reports/admin", reportHandler.Admin)
			admin.GET("/archive", archiveHandler.GetSnapshot)
		}
	}

	register(&r.RouterGroup)
	register(r.Group("/api"))

	return r
}
