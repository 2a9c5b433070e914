// Package main is the entrypoint for the Docgate API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/docgate/docgate/internal/blob"
	"github.com/docgate/docgate/internal/cache"
	"github.com/docgate/docgate/internal/config"
	"github.com/docgate/docgate/internal/grant"
	"github.com/docgate/docgate/internal/handler"
	"github.com/docgate/docgate/internal/identity"
	"github.com/docgate/docgate/internal/metrics"
	"github.com/docgate/docgate/internal/middleware"
	"github.com/docgate/docgate/internal/repository"
	"github.com/docgate/docgate/internal/server"
	"github.com/docgate/docgate/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize token verification against the identity provider
	keys, err := identity.NewCachedKeys(ctx, cfg.AuthJWKSURL)
	if err != nil {
		logger.Error("failed to initialize JWKS cache", "error", err)
		os.Exit(1)
	}
	verifier := identity.NewJWTVerifier(cfg.AuthIssuer, cfg.AuthAudience, keys)
	logger.Info("token verifier ready", "issuer", cfg.AuthIssuer)

	// Initialize blob storage
	store, err := blob.NewGCS(ctx, cfg.BlobBucket)
	if err != nil {
		logger.Error("failed to initialize blob storage", "error", err, "bucket", cfg.BlobBucket)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("blob storage ready", "bucket", cfg.BlobBucket)

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	repo.WithMetrics(metricsRecorder)
	issuer := grant.NewIssuer(store, logger)
	documentService := service.NewDocumentService(
		repo,
		service.NewPipelineProcessor(nil),
		issuer,
		logger,
		metricsRecorder,
	)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	documentHandler := handler.NewDocumentHandler(documentService, logger)
	grantHandler := handler.NewGrantHandler(documentService, logger)
	usageHandler := handler.NewUsageHandler(documentService, logger)
	planHandler := handler.NewPlanHandler(documentService, logger)
	profileHandler := handler.NewProfileHandler()
	adminHandler := handler.NewAdminHandler(documentService, logger)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(routerDeps{
		base:     h,
		health:   healthHandler,
		document: documentHandler,
		grant:    grantHandler,
		usage:    usageHandler,
		plan:     planHandler,
		profile:  profileHandler,
		admin:    adminHandler,
		metrics:  metricsHandler,
		repo:     repo,
		cache:    cacheClient,
		verifier: verifier,
		recorder: metricsRecorder,
		cfg:      cfg,
		logger:   logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles everything setupRouter needs.
type routerDeps struct {
	base     *handler.Handler
	health   *handler.HealthHandler
	document *handler.DocumentHandler
	grant    *handler.GrantHandler
	usage    *handler.UsageHandler
	plan     *handler.PlanHandler
	profile  *handler.ProfileHandler
	admin    *handler.AdminHandler
	metrics  *handler.MetricsHandler
	repo     *repository.Repository
	cache    *cache.Cache
	verifier identity.Verifier
	recorder metrics.Recorder
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      deps.cfg.IsDevelopment(),
		MaxRequestBodySize: deps.cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	// Metrics endpoint
	r.Get("/metrics", deps.metrics.Metrics)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:   deps.logger,
		Verifier: deps.verifier,
		Cache:    deps.cache,
		Metrics:  deps.recorder,
	}

	// User-facing routes, versioned like the internal surface
	r.Route("/api/v1", func(r chi.Router) {
		// Bearer token required
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Post("/documents/merge", deps.document.Merge)
			r.Post("/documents/render", deps.document.Render)
			r.Post("/grants", deps.grant.Create)
			r.Get("/usage", deps.usage.Get)
			r.Get("/plan", deps.plan.Get)
			r.Post("/plan", deps.plan.Change)
		})

		// Profile works anonymously, with extra detail for authenticated callers
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(authCfg))

			r.Get("/profile", deps.profile.Get)
		})
	})

	// Internal routes (service key required)
	r.Route("/internal/v1", func(r chi.Router) {
		r.Use(middleware.ServiceKeyAuth(middleware.ServiceKeyConfig{
			Logger: deps.logger,
			Lookup: deps.repo,
		}))

		r.Put("/users/{uid}/plan", deps.admin.SyncPlan)
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
