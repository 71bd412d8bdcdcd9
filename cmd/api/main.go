// Package main is the entrypoint for the BookServer API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bookserver/bookserver/internal/cache"
	"github.com/bookserver/bookserver/internal/config"
	"github.com/bookserver/bookserver/internal/handler"
	"github.com/bookserver/bookserver/internal/middleware"
	"github.com/bookserver/bookserver/internal/repository"
	"github.com/bookserver/bookserver/internal/server"
	"github.com/bookserver/bookserver/internal/service"
	"github.com/bookserver/bookserver/internal/session"
	"github.com/bookserver/bookserver/web"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := repository.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Error(
			"failed to run migrations",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("migrations applied")

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

	tmpl, err := web.Templates()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	// Services
	sessionService := session.NewService(repo, repo, cacheClient, cfg.SessionTTL)
	bookService := service.NewBookService(repo)
	courseService := service.NewCourseService(repo)
	userService := service.NewUserService(repo, cacheClient)

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(sessionService, logger, tmpl, cfg.SessionCookieName, cfg.SessionCookieSecure)
	userHandler := handler.NewUserHandler(userService, logger)
	bookHandler := handler.NewBookHandler(bookService, logger)
	courseHandler := handler.NewCourseHandler(courseService, logger)
	assessmentHandler := handler.NewAssessmentHandler(repo, logger)

	r := setupRouter(routerDeps{
		base:       h,
		health:     healthHandler,
		auth:       authHandler,
		users:      userHandler,
		books:      bookHandler,
		courses:    courseHandler,
		assessment: assessmentHandler,
		sessions:   sessionService,
		cache:      cacheClient,
		cfg:        cfg,
		logger:     logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	stopPurger := startSessionPurger(ctx, repo, logger)
	srv.OnClose("session purger", func(ctx context.Context) error {
		stopPurger()
		return nil
	})

	logger.Info("starting server",
		"addr", srv.Addr(),
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// sessionPurgeInterval is how often terminal session rows are deleted.
const sessionPurgeInterval = time.Hour

// startSessionPurger periodically deletes expired and revoked session
// rows. Terminal rows carry no authorization weight, so this is pure
// housekeeping and losing a tick is harmless.
func startSessionPurger(ctx context.Context, repo *repository.Repository, logger *slog.Logger) (stop func()) {
	purgeCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(sessionPurgeInterval)
		defer ticker.Stop()

		for {
			select {
			case <-purgeCtx.Done():
				return
			case <-ticker.C:
				purged, err := repo.PurgeExpiredSessions(purgeCtx, time.Now())
				if err != nil {
					logger.Error("session purge failed", "error", err)
					continue
				}
				if purged > 0 {
					logger.Info("purged terminal sessions", "count", purged)
				}
			}
		}
	}()

	return cancel
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
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

type routerDeps struct {
	base       *handler.Handler
	health     *handler.HealthHandler
	auth       *handler.AuthHandler
	users      *handler.UserHandler
	books      *handler.BookHandler
	courses    *handler.CourseHandler
	assessment *handler.AssessmentHandler
	sessions   *session.Service
	cache      *cache.Cache
	cfg        *config.Config
	logger     *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: d.cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)

	// Root info endpoint
	r.Get("/", d.base.Info)

	sessionCfg := middleware.SessionConfig{
		Logger:     d.logger,
		Sessions:   d.sessions,
		CookieName: d.cfg.SessionCookieName,
	}

	loginRateLimit := middleware.LoginRateLimit(middleware.LoginRateLimitConfig{
		Logger:  d.logger,
		Cache:   d.cache,
		Enabled: d.cfg.LoginRateLimitEnabled,
		RPS:     d.cfg.LoginRateLimitRPS,
		Burst:   d.cfg.LoginRateLimitBurst,
	})

	// Browser auth flow
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", d.auth.LoginPage)
		r.With(loginRateLimit).Post("/login", d.auth.Login)
		r.Get("/logout", d.auth.Logout)
		r.Post("/logout", d.auth.Logout)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Account creation is the only open API endpoint
		r.Post("/users", d.users.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(sessionCfg))

			r.Get("/users/me", d.auth.Me)
			r.Patch("/users/me", d.users.UpdateMe)
			r.Delete("/users/me", d.users.DeleteMe)

			r.Route("/books", func(r chi.Router) {
				r.Get("/", d.books.List)
				r.Get("/{id}", d.books.Get)
				r.With(middleware.RequireInstructor()).Post("/", d.books.Create)
				r.With(middleware.RequireInstructor()).Patch("/{id}", d.books.Update)
				r.With(middleware.RequireInstructor()).Delete("/{id}", d.books.Delete)
			})

			r.Route("/courses", func(r chi.Router) {
				r.Get("/", d.courses.List)
				r.Get("/{name}", d.courses.Get)
				r.With(middleware.RequireInstructor()).Post("/", d.courses.Create)
			})

			r.Route("/assessment", func(r chi.Router) {
				r.Post("/results", d.assessment.Results)
				r.Post("/answers", d.assessment.Record)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(d.base.NotFound)
	r.MethodNotAllowed(d.base.MethodNotAllowed)

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
