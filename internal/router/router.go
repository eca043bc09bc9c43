package router

import (
	"time"

	"github.com/andresbsn/polleria/internal/afip"
	"github.com/andresbsn/polleria/internal/config"
	"github.com/andresbsn/polleria/internal/handler"
	"github.com/andresbsn/polleria/internal/infra"
	"github.com/andresbsn/polleria/internal/middleware"
	"github.com/andresbsn/polleria/internal/model"
	"github.com/andresbsn/polleria/internal/repository"
	"github.com/andresbsn/polleria/internal/service"
	"github.com/andresbsn/polleria/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, fiscalCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	fiscalClient := afip.NewClient(cfg, afip.NewMemorySessionCache(), fiscalCB, log.Logger)
	voucherLocker := afip.NewRedisVoucherLocker(rdb)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	txm := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	clientRepo := repository.NewClientRepository(db)
	cashRepo := repository.NewCashRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, auditRepo)
	categorySvc := service.NewCategoryService(categoryRepo, auditRepo)
	cashSvc := service.NewCashService(txm, cashRepo, auditRepo)
	clientSvc := service.NewClientService(txm, clientRepo, cashRepo, auditRepo)
	invoiceSvc := service.NewInvoiceService(fiscalClient, voucherLocker, invoiceRepo, auditRepo, cfg.AFIPPtoVta, log.Logger)
	saleSvc := service.NewSaleService(txm, saleRepo, productRepo, clientRepo, cashRepo, invoiceRepo, auditRepo, invoiceSvc, dispatcher, log.Logger)
	reportSvc := service.NewReportService(reportRepo, auditRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	salesH := handler.NewSalesHandler(saleSvc)
	clientsH := handler.NewClientsHandler(clientSvc)
	cashH := handler.NewCashHandler(cashSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, fiscalCB))

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleEmployee)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	openSession := middleware.RequireOpenCashSession(cashRepo)

	api := r.Group("/api", jwtMW)
	{
		// Checkout requires an open drawer; reads do not
		api.POST("/sales", anyRole, openSession, salesH.Create)
		api.GET("/sales", anyRole, salesH.List)
		api.GET("/sales/:id", anyRole, salesH.GetByID)
		api.POST("/sales/retry-invoice", anyRole, salesH.RetryInvoice)

		api.GET("/products", anyRole, productsH.List)
		api.GET("/products/:id", anyRole, productsH.GetByID)
		products := api.Group("/products", adminOnly)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
		}

		api.GET("/categories", anyRole, categoriesH.List)
		categories := api.Group("/categories", adminOnly)
		{
			categories.POST("", categoriesH.Create)
			categories.PUT("/:id", categoriesH.Update)
			categories.DELETE("/:id", categoriesH.Delete)
		}

		clients := api.Group("/clients", anyRole)
		{
			clients.POST("", clientsH.Create)
			clients.GET("", clientsH.List)
			clients.GET("/:id", clientsH.GetByID)
			clients.PUT("/:id", clientsH.Update)
			clients.GET("/:id/movements", clientsH.Movements)
			clients.POST("/:id/payments", clientsH.RegisterPayment)
		}
		api.DELETE("/clients/:id", adminOnly, clientsH.Deactivate)

		cash := api.Group("/cash")
		{
			cash.POST("/open", anyRole, cashH.Open)
			cash.POST("/close", anyRole, cashH.Close)
			cash.GET("/current", anyRole, cashH.Current)
			cash.GET("", adminOnly, cashH.History)
			cash.GET("/:id", adminOnly, cashH.Detail)
		}

		reports := api.Group("/reports", adminOnly)
		{
			reports.GET("/sales", reportsH.SalesSummary)
			reports.GET("/top-products", reportsH.TopProducts)
			reports.GET("/sales-by-user", reportsH.SalesByUser)
			reports.GET("/audit", reportsH.AuditLog)
		}
	}

	return r
}
