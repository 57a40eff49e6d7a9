// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/config"
	"github.com/olegiv/oblog-go/internal/handler"
	"github.com/olegiv/oblog-go/internal/handler/api"
	"github.com/olegiv/oblog-go/internal/logging"
	"github.com/olegiv/oblog-go/internal/mailer"
	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/scheduler"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/session"
	"github.com/olegiv/oblog-go/internal/store"
	"github.com/olegiv/oblog-go/internal/version"
	"github.com/olegiv/oblog-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "oBlog - a social blogging platform\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_TOKEN_SECRET     Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_DB_PATH          SQLite database path (default: ./data/oblog.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_ADMIN_EMAIL      Address granted the Administrator role at seed time\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OBLOG_SMTP_HOST        SMTP server; when empty, mail is logged instead of sent\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/oblog-go\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Printf("oblog %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		err = db.Close()
		if err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the Event Log database
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	eventLogHandler := logging.NewEventLogHandler(textHandler, db)
	logger = slog.New(eventLogHandler)
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Seed the built-in roles and repair any missing self-follow edges.
	// The default admin account is only created when seeding is enabled.
	ctx := context.Background()
	queries := store.New(db)
	if cfg.DoSeed {
		if err := store.Seed(ctx, db, cfg.AdminEmail); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	} else {
		if err := store.SeedRoles(ctx, queries); err != nil {
			return fmt.Errorf("seeding roles: %w", err)
		}
		if err := store.BackfillSelfFollows(ctx, queries); err != nil {
			return fmt.Errorf("backfilling self follows: %w", err)
		}
	}

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Token issuer for confirmation, reset, email change and API tokens
	tokens := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenExpiry)

	// Outbound mail: SMTP when configured, logged otherwise
	var mail mailer.Mailer
	if cfg.MailEnabled() {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername,
			cfg.SMTPPassword, cfg.MailSender, cfg.MailSubjectPrefix)
		slog.Info("SMTP mailer initialized", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	} else {
		mail = mailer.NewLogMailer(cfg.MailSubjectPrefix)
		slog.Info("SMTP not configured, outbound mail will be logged")
	}

	userService := service.NewUserService(db, tokens, mail, cfg.AdminEmail, cfg.BaseURL)
	eventService := service.NewEventService(db)

	// Initialize and start scheduler
	sched := scheduler.New(db, logger, cfg.EventRetention)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(chimw.GetHead)                        // Handle HEAD requests for uptime monitoring
	r.Use(middleware.Timeout(30 * time.Second)) // 30 second request timeout
	r.Use(middleware.StripTrailingSlash)        // Redirect /path/ to /path (301)

	// Security headers middleware (CSP, HSTS, X-Frame-Options, etc.)
	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))
	slog.Info("security headers middleware initialized",
		"hsts", !cfg.IsDevelopment(),
		"x_frame_options", "SAMEORIGIN",
	)

	// Request path middleware for logging context
	r.Use(middleware.RequestPath)

	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, db))

	// CSRF protection for the HTML surface; the JSON API authenticates
	// every request and is mounted outside the protected groups.
	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	// Initialize login protection
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Public rate limiter for auth routes (defense-in-depth)
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)
	slog.Info("public rate limiter initialized", "rate", "10 req/s", "burst", 20)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(db, userService, renderer, sessionManager, loginProtection)
	frontendHandler := handler.NewFrontendHandler(db, renderer, sessionManager, cfg.PostsPerPage, cfg.CommentsPerPage)
	userHandler := handler.NewUserHandler(db, userService, renderer, cfg.PostsPerPage, cfg.FollowersPerPage)
	moderationHandler := handler.NewModerationHandler(db, renderer, cfg.CommentsPerPage)
	eventsHandler := handler.NewEventsHandler(db, renderer)
	healthHandler := handler.NewHealthHandler(db, sessionManager)
	apiHandler := api.NewHandler(db, tokens, cfg.TokenExpiry, cfg.PostsPerPage)

	// Health check routes (public, verbose for administrators)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Public frontend routes
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)

		r.Get(handler.RouteRoot, frontendHandler.Index)
		r.Get(handler.RouteAll, frontendHandler.ShowAll)
		r.Get(handler.RouteFollowed, frontendHandler.ShowFollowed)
		r.Get(handler.RoutePost, frontendHandler.PostPage)
		r.Get(handler.RouteUser, userHandler.Profile)
		r.Get(handler.RouteFollowers, userHandler.Followers)
		r.Get(handler.RouteFollowing, userHandler.Following)
	})

	// Auth routes (public, with CSRF and rate limiting)
	// Defense-in-depth: publicRateLimiter (10 req/s) + loginProtection (0.5 req/s on POST + account lockout)
	r.Route("/auth", func(r chi.Router) {
		r.Use(publicRateLimiter.HTMLMiddleware())
		r.Use(csrfMiddleware)

		r.Get(handler.RouteRegister, authHandler.RegisterForm)
		r.Post(handler.RouteRegister, authHandler.Register)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)

		// Password reset (anonymous)
		r.Get(handler.RouteReset, authHandler.ResetRequestForm)
		r.Post(handler.RouteReset, authHandler.ResetRequest)
		r.Get(handler.RouteResetToken, authHandler.ResetForm)
		r.Post(handler.RouteResetToken, authHandler.Reset)

		// Account confirmation (requires login, works while unconfirmed)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(sessionManager))

			r.Get(handler.RouteUnconfirmed, authHandler.Unconfirmed)
			r.Post(handler.RouteConfirm, authHandler.ResendConfirmation)
			r.Get(handler.RouteConfirmToken, authHandler.Confirm)
		})

		// Credential changes (requires a confirmed account)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(sessionManager))
			r.Use(middleware.RequireConfirmed())

			r.Get(handler.RouteChangePassword, authHandler.ChangePasswordForm)
			r.Post(handler.RouteChangePassword, authHandler.ChangePassword)
			r.Get(handler.RouteChangeEmail, authHandler.ChangeEmailForm)
			r.Post(handler.RouteChangeEmail, authHandler.ChangeEmailRequest)
			r.Get(handler.RouteChangeEmailToken, authHandler.ChangeEmail)
		})
	})

	// Authenticated frontend routes (confirmed accounts only)
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.RequireConfirmed())

		r.Get(handler.RouteEditProfile, userHandler.EditProfileForm)
		r.Post(handler.RouteEditProfile, userHandler.EditProfile)
		r.Post(handler.RoutePostDelete, frontendHandler.DeletePost)
		r.Get(handler.RouteEdit, frontendHandler.EditForm)
		r.Post(handler.RouteEdit, frontendHandler.Edit)

		// Writing posts requires the write permission
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(model.PermissionWriteArticles))
			r.Get(handler.RouteWrite, frontendHandler.WriteForm)
			r.Post(handler.RouteWrite, frontendHandler.Write)
		})

		// Commenting requires the comment permission
		r.With(middleware.RequirePermission(model.PermissionComment)).
			Post(handler.RoutePostComments, frontendHandler.CreateComment)

		// Following requires the follow permission
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(model.PermissionFollow))
			r.Post(handler.RouteFollow, userHandler.Follow)
			r.Post(handler.RouteUnfollow, userHandler.Unfollow)
		})
	})

	// Comment moderation routes (moderators and administrators)
	r.Route(handler.RouteModerate, func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.RequireModerator())

		r.Get(handler.RouteRoot, moderationHandler.List)
		r.Post("/enable"+handler.RouteParamID, moderationHandler.Enable)
		r.Post("/disable"+handler.RouteParamID, moderationHandler.Disable)
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.RequirePermissionWithEventLog(model.PermissionAdminister, eventService))

		r.Get(handler.RouteUsers, userHandler.AdminList)
		r.Get(handler.RouteUsersID, userHandler.AdminEditForm)
		r.Post(handler.RouteUsersID, userHandler.AdminEdit)
		r.Get(handler.RouteEvents, eventsHandler.List)
	})

	// REST API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Global rate limiting for API (100 requests per second with burst of 200)
		apiRateLimiter := middleware.NewGlobalRateLimiter(100, 200)
		r.Use(apiRateLimiter.Middleware())

		// Public endpoint (no authentication required)
		r.Get("/status", apiHandler.Status)

		// All other endpoints require token or basic authentication
		r.Group(func(r chi.Router) {
			r.Use(middleware.APIAuth(db, tokens))
			r.Use(middleware.APIRateLimit(10, 20)) // 10 requests per second per user

			r.Post("/tokens", apiHandler.CreateToken)

			r.Get("/posts", apiHandler.ListPosts)
			r.Get("/posts/{id}", apiHandler.GetPost)
			r.Get("/posts/{id}/comments", apiHandler.ListPostComments)

			r.Get("/comments", apiHandler.ListComments)
			r.Get("/comments/{id}", apiHandler.GetComment)

			r.Get("/users/{id}", apiHandler.GetUser)
			r.Get("/users/{id}/posts", apiHandler.ListUserPosts)
			r.Get("/users/{id}/followed_posts", apiHandler.ListUserFollowedPosts)

			// Write endpoints mirror the frontend permission checks
			r.Group(func(r chi.Router) {
				r.Use(middleware.APIRequirePermission(model.PermissionWriteArticles))
				r.Post("/posts", apiHandler.CreatePost)
				r.Put("/posts/{id}", apiHandler.UpdatePost)
			})
			r.With(middleware.APIRequirePermission(model.PermissionComment)).
				Post("/posts/{id}/comments", apiHandler.CreatePostComment)
		})
	})
	slog.Info("REST API v1 mounted at /api/v1")

	// Static file serving
	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	// Static assets: cache for 1 year (31536000 seconds)
	staticHandler := middleware.StaticCache(31536000)(http.StripPrefix("/static/dist/", http.FileServer(http.FS(staticFS))))
	r.Handle("/static/dist/*", staticHandler)

	// Error pages keep the site chrome; the JSON API has its own envelopes.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if err := renderer.RenderStatus(w, req, http.StatusNotFound, "error", render.TemplateData{
			Title:       "Page Not Found",
			Data:        "The page you were looking for does not exist.",
			CurrentUser: middleware.GetUser(req),
		}); err != nil {
			http.NotFound(w, req)
		}
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		if err := renderer.RenderStatus(w, req, http.StatusMethodNotAllowed, "error", render.TemplateData{
			Title:       "Method Not Allowed",
			Data:        "That request method is not supported here.",
			CurrentUser: middleware.GetUser(req),
		}); err != nil {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second, // Reduced from 120s to mitigate slowloris attacks
		MaxHeaderBytes:    1 << 20,          // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			"addr", cfg.ServerAddr(),
			"env", cfg.Env,
			"version", versionInfo.Version,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
