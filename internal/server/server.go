package server

import (
	"fmt"
	"net/http"
	"time"

	"boutique-catalog/internal/catalog"
	"boutique-catalog/internal/config"
	"boutique-catalog/internal/currency"
	"boutique-catalog/internal/database"
	"boutique-catalog/internal/domain"
	custommiddleware "boutique-catalog/internal/middleware"
	"boutique-catalog/internal/repository"
	"boutique-catalog/internal/service"
	"boutique-catalog/internal/storage"
	"boutique-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, rdb *redis.Client) (*Server, error) {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	images, err := newImageStore(cfg.Uploads, cfg.Server.PublicURL, router)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	sqlDB := db.DB()
	categoryRepo := repository.NewCategoryRepository(sqlDB)
	lookbookRepo := repository.NewLookbookRepository(sqlDB)
	productRepo := repository.NewProductRepository(sqlDB)
	sessionRepo := repository.NewSessionRepository(rdb)

	// Initialize services
	productService := service.NewProductService(productRepo, categoryRepo, lookbookRepo, images, logger)
	categoryService := service.NewCollectionService(domain.KindCategory, categoryRepo, images, logger)
	lookbookService := service.NewCollectionService(domain.KindLookbook, lookbookRepo, images, logger)
	authService, err := service.NewAuthService(cfg.Admin, cfg.JWT, sessionRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to configure admin login: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.Currency.Timeout}
	locator := currency.CachedLocator(
		currency.NewIPAPILocator(cfg.Currency.GeoURL, httpClient), rdb, cfg.Currency.CacheTTL, logger)
	rates := currency.CachedRates(
		currency.NewExchangeRateAPI(cfg.Currency.RatesURL, httpClient), rdb, cfg.Currency.CacheTTL, logger)
	currencyService := currency.NewService(cfg.Currency, locator, rates, logger)
	browser := catalog.NewBrowser(productService, categoryService, lookbookService, currencyService)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, sessionRepo, logger)
	loginLimiter := custommiddleware.RateLimitMiddleware(rdb, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.LoginRequests,
		Window:            cfg.RateLimit.LoginWindow,
		KeyPrefix:         "ratelimit:login",
		Message:           "Too many login attempts, please try again later",
	}, logger)

	// Register routes
	maxImageBytes := cfg.Uploads.MaxBytes()
	transport.NewHealthHandler(db, sqlDB, rdb, logger).RegisterRoutes(router)
	transport.NewAuthHandler(authService, logger).RegisterRoutes(router, loginLimiter, authMiddleware)
	transport.NewProductHandler(productService, maxImageBytes, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCollectionHandler(categoryService, "/api/categories", maxImageBytes, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCollectionHandler(lookbookService, "/api/lookbook", maxImageBytes, logger).RegisterRoutes(router, authMiddleware)
	transport.NewStorefrontHandler(browser, currencyService, logger).RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  rdb,
	}

	return server, nil
}

// newImageStore picks the image backend. Local images are served by the
// router under their URL prefix.
func newImageStore(cfg config.UploadsConfig, publicURL string, router chi.Router) (storage.ImageStore, error) {
	switch cfg.Driver {
	case "cloudinary":
		store, err := storage.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "", "local":
		store, err := storage.NewLocalStore(cfg.Dir, cfg.URLPrefix, publicURL)
		if err != nil {
			return nil, err
		}
		router.Handle(store.URLPrefix()+"/*", store.Handler())
		return store, nil
	default:
		return nil, fmt.Errorf("unknown uploads driver %q", cfg.Driver)
	}
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
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
