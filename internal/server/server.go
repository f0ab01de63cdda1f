package server

import (
	"fmt"
	"net/http"
	"time"

	"reverie-revival/internal/cartstore"
	"reverie-revival/internal/config"
	"reverie-revival/internal/database"
	custommiddleware "reverie-revival/internal/middleware"
	"reverie-revival/internal/repository"
	"reverie-revival/internal/service"
	"reverie-revival/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *database.Service
	redis  *redis.Client
}

// handlers groups everything mounted on the router. Services that need the
// database stay nil when it is not configured.
type handlers struct {
	storefront *transport.StorefrontHandler
	checkout   *transport.CheckoutHandler
	cart       *transport.CartHandler
	adminAuth  *transport.AdminAuthHandler
	orders     *transport.OrderHandler
	inventory  *transport.InventoryHandler
	store      *transport.StoreAdminHandler
	contact    *transport.ContactHandler
	tokens     custommiddleware.TokenValidator
}

// NewServer wires repositories, services and handlers. db and redisClient may
// be nil: the storefront then serves empty data, checkout and the contact form
// answer 500 and the cart and admin routes answer 503.
func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service, redisClient *redis.Client) *Server {
	h := buildHandlers(cfg, logger, db, redisClient)
	router := newRouter(cfg, logger, db, redisClient, h)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}
}

func buildHandlers(cfg *config.Config, logger *zap.Logger, db *database.Service, redisClient *redis.Client) handlers {
	if db == nil {
		logger.Warn("Database is not configured; storefront serves empty data and admin routes are unavailable")
		return handlers{
			storefront: transport.NewStorefrontHandler(nil, nil, logger),
			checkout:   transport.NewCheckoutHandler(nil, logger),
			contact:    transport.NewContactHandler(nil, logger),
		}
	}

	sqlDB := db.DB()
	tx := database.NewTransactor(sqlDB)

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(sqlDB)
	orderRepo := repository.NewOrderRepository(sqlDB)
	customerRepo := repository.NewCustomerRepository(sqlDB)
	ledger := repository.NewInventoryLedger(sqlDB)
	auditRepo := repository.NewAuditRepository(sqlDB)
	settingsRepo := repository.NewSettingsRepository(sqlDB)
	adminRepo := repository.NewAdminRepository(sqlDB)
	sessionRepo := repository.NewAdminSessionRepository(sqlDB)
	contactRepo := repository.NewContactRepository(sqlDB)

	var carts cartstore.Store
	if redisClient != nil {
		carts = cartstore.NewRedisStore(redisClient, cfg.Cart.TTL())
	} else {
		carts = cartstore.NewMemoryStore()
	}

	// Initialize services
	settingsService := service.NewSettingsService(tx, settingsRepo, auditRepo, logger)
	checkoutService := service.NewCheckoutService(tx, catalogRepo, orderRepo, customerRepo, ledger, service.CheckoutOptions{
		Pricing: service.PricingRules{
			FreeShippingThreshold: cfg.Checkout.FreeShippingThreshold,
			StandardShippingFee:   cfg.Checkout.StandardShippingFee,
		},
		OrderPrefix: cfg.Checkout.OrderPrefix,
	}, logger)
	adminService := service.NewAdminService(adminRepo, sessionRepo, service.TokenSettings{
		Secret:        cfg.JWT.Secret,
		AccessExpiry:  time.Duration(cfg.JWT.AccessExpiry) * time.Minute,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiry) * 24 * time.Hour,
	})

	return handlers{
		storefront: transport.NewStorefrontHandler(service.NewStorefrontService(catalogRepo), settingsService, logger),
		checkout:   transport.NewCheckoutHandler(checkoutService, logger),
		cart:       transport.NewCartHandler(service.NewCartService(carts, catalogRepo), logger),
		adminAuth:  transport.NewAdminAuthHandler(adminService, logger),
		orders:     transport.NewOrderHandler(service.NewOrderService(tx, orderRepo, auditRepo, cfg.Orders.StrictTransitions, logger), logger),
		inventory:  transport.NewInventoryHandler(service.NewInventoryService(tx, ledger, auditRepo, logger), logger),
		store: transport.NewStoreAdminHandler(
			service.NewCustomerService(tx, customerRepo, orderRepo, auditRepo, logger),
			settingsService,
			service.NewAuditService(auditRepo),
			logger,
		),
		contact: transport.NewContactHandler(service.NewContactService(contactRepo, logger), logger),
		tokens:  adminService,
	}
}

func newRouter(cfg *config.Config, logger *zap.Logger, db *database.Service, redisClient *redis.Client, h handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.Server.IsProduction()))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"status": "ok"}
		if db != nil {
			body["database"] = db.Health(r.Context())
		} else {
			body["database"] = map[string]string{"status": "not configured"}
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, body)
	})

	h.storefront.RegisterRoutes(router)

	checkoutLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.CheckoutRequests,
		Window:            cfg.RateLimit.Window(),
		KeyPrefix:         "ratelimit:checkout",
	}, logger)
	h.checkout.RegisterRoutes(router, checkoutLimit)
	h.contact.RegisterPublicRoutes(router)

	configured := db != nil
	if !configured {
		unavailable := custommiddleware.RequireDatabase(false)(http.NotFoundHandler())
		router.Handle("/api/cart/*", unavailable)
		router.Handle("/api/wishlist/*", unavailable)
		router.Handle("/api/admin/*", unavailable)
		return router
	}

	h.cart.RegisterRoutes(router)

	router.Route("/api/admin", func(r chi.Router) {
		h.adminAuth.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.AuthMiddleware(h.tokens, logger))
			r.Use(custommiddleware.RequireAdmin(logger))

			h.adminAuth.RegisterRoutes(r)
			h.orders.RegisterRoutes(r)
			h.inventory.RegisterRoutes(r)
			h.store.RegisterRoutes(r)
		})
	})

	return router
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
