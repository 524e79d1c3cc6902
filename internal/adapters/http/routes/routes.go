package routes

import (
	"time"

	"cafe-ledger/internal/adapters/http/handlers"
	"cafe-ledger/internal/adapters/http/middleware"
	"cafe-ledger/internal/adapters/persistence/repositories"
	"cafe-ledger/internal/config"
	"cafe-ledger/internal/core/domain"
	"cafe-ledger/internal/core/services"
	"cafe-ledger/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the HTTP surface is built from
type Deps struct {
	Store     repositories.Store
	Sequencer services.OrderNumberSequencer // nil counts orders in the store
	Catalog   *domain.RewardCatalog
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry // served on /metrics
}

// Setup configures all routes for the application
func Setup(app *fiber.App, deps Deps, cfg *config.Config) {
	m := deps.Metrics
	validity := time.Duration(cfg.Loyalty.VoucherValidityDays) * 24 * time.Hour

	// Initialize services
	ledgerService := services.NewLedgerService(deps.Store, m)
	voucherService := services.NewVoucherService(deps.Store, ledgerService, deps.Catalog, validity, m)
	orderService := services.NewOrderService(deps.Store, ledgerService, voucherService, deps.Sequencer, m)
	cafeService := services.NewCafeService(deps.Store)
	productService := services.NewProductService(deps.Store)
	customerService := services.NewCustomerService(deps.Store)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.Store, cfg)
	cafeHandler := handlers.NewCafeHandler(cafeService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService, customerService)
	meHandler := handlers.NewMeHandler(customerService, orderService, ledgerService, voucherService)
	loyaltyHandler := handlers.NewLoyaltyHandler(ledgerService, voucherService, orderService)

	// Health check, root and metrics
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	auth := middleware.AuthMiddleware(cfg)

	setupCatalogRoutes(apiV1, cafeHandler, productHandler, loyaltyHandler)
	setupCafeAdminRoutes(apiV1, auth, cafeHandler, productHandler)
	setupOrderRoutes(apiV1, auth, orderHandler, cfg)
	setupMeRoutes(apiV1.Group("/me", auth, middleware.CustomerOnly()), meHandler)
	setupLoyaltyRoutes(apiV1, auth, loyaltyHandler)
}

// setupCatalogRoutes configures public read-only routes
func setupCatalogRoutes(router fiber.Router, cafeHandler *handlers.CafeHandler, productHandler *handlers.ProductHandler, loyaltyHandler *handlers.LoyaltyHandler) {
	router.Get("/rewards", middleware.CacheControl(5*time.Minute), loyaltyHandler.ListRewards)
	router.Get("/cafes/:id", cafeHandler.GetCafe)
	router.Get("/cafes/:id/products", middleware.CacheControl(30*time.Second), productHandler.ListMenu)
}

// setupCafeAdminRoutes configures cafe and menu management
func setupCafeAdminRoutes(router fiber.Router, auth fiber.Handler, cafeHandler *handlers.CafeHandler, productHandler *handlers.ProductHandler) {
	// SUPERADMIN
	router.Post("/cafes", auth, middleware.SuperAdminOnly(), cafeHandler.CreateCafe)
	router.Get("/cafes", auth, middleware.SuperAdminOnly(), cafeHandler.ListCafes)

	// OWNER of the cafe or SUPERADMIN
	router.Put("/cafes/:id/config", auth,
		middleware.RoleMiddleware(domain.RoleOwner, domain.RoleSuperAdmin),
		middleware.CafeScope("id"),
		cafeHandler.UpdateConfig,
	)

	// Staff of the cafe
	router.Post("/cafes/:id/products", auth, middleware.CafeStaff(), middleware.CafeScope("id"), productHandler.CreateProduct)
	router.Patch("/products/:id/availability", auth, middleware.CafeStaff(), productHandler.SetAvailability)
	router.Delete("/products/:id", auth, middleware.CafeStaff(), productHandler.DeleteProduct)
}

// setupOrderRoutes configures self-service, POS and tracking routes
func setupOrderRoutes(router fiber.Router, auth fiber.Handler, handler *handlers.OrderHandler, cfg *config.Config) {
	// Guest or customer
	router.Post("/orders", middleware.WriteRateLimiter(), middleware.OptionalAuth(cfg), handler.PlaceOrder)
	router.Get("/orders/:publicId", middleware.NoCacheHeaders(), handler.GetReceipt)

	// Staff of the cafe
	router.Post("/cafes/:id/pos/orders", auth, middleware.CafeStaff(), middleware.CafeScope("id"), handler.PlacePOSOrder)
	router.Get("/cafes/:id/orders", auth, middleware.CafeStaff(), middleware.CafeScope("id"), handler.ListCafeOrders)
	router.Patch("/orders/:id/status", auth, middleware.CafeStaff(), handler.UpdateStatus)
}

// setupMeRoutes configures the customer's own account (CUSTOMER only)
func setupMeRoutes(router fiber.Router, handler *handlers.MeHandler) {
	router.Use(middleware.PrivateCacheHeaders(10 * time.Second))

	router.Get("/", handler.GetMe)
	router.Get("/orders", handler.ListOrders)
	router.Get("/points", handler.PointsHistory)
	router.Get("/vouchers", handler.ListVouchers)
	router.Post("/vouchers", middleware.WriteRateLimiter(), handler.ClaimVoucher)
}

// setupLoyaltyRoutes configures staff point adjustments, voucher redemption and audits
func setupLoyaltyRoutes(router fiber.Router, auth fiber.Handler, handler *handlers.LoyaltyHandler) {
	router.Post("/points/earn", auth, middleware.CafeStaff(), handler.EarnPoints)
	router.Post("/points/redeem", auth, middleware.CafeStaff(), handler.RedeemPoints)
	router.Post("/vouchers/redeem", auth, middleware.CafeStaff(), handler.RedeemVoucher)

	// SUPERADMIN
	router.Get("/admin/customers/:id/audit", auth, middleware.SuperAdminOnly(), handler.AuditCustomer)
	router.Post("/admin/vouchers/expire", auth, middleware.SuperAdminOnly(), handler.ExpireVouchers)
}
