// Package server sets up the HTTP server, router, and all route
// definitions. It is the composition root: every dependency is wired here,
// in New, and nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nikita1503agarwal/devfolio/internal/auth"
	"github.com/nikita1503agarwal/devfolio/internal/config"
	"github.com/nikita1503agarwal/devfolio/internal/handler"
	"github.com/nikita1503agarwal/devfolio/internal/middleware"
	sqliteRepo "github.com/nikita1503agarwal/devfolio/internal/repository/sqlite"
	"github.com/nikita1503agarwal/devfolio/internal/service"
)

// Server owns the router, the configuration, and the database connection.
// The database is closed during graceful shutdown, after in-flight requests
// have drained.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and wires the dependency chain:
//
//	sqlite.DB → SessionService / services → handlers → routes
//
// Handlers never touch the database directly and services never touch HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures middleware and routes.
//
// ROUTE STRUCTURE:
//
//	GET  /                      → hello banner
//	GET  /test                  → backend/database status
//	GET  /auth/github/start     → GitHub authorize URL (JSON)
//	GET  /auth/github/callback  → completes login, returns redirect target
//	GET  /portfolio/{username}  → public portfolio document
//	GET  /me                    → authenticated developer      [auth]
//	POST /auth/logout           → revoke session               [auth]
//	POST /portfolio             → merge-patch own portfolio    [auth]
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The frontend runs on its own origin, so every response needs CORS
	// headers. Mirrors the original deployment: any origin, credentials on.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// OAuth provider only exists when credentials are configured; the auth
	// handler answers oauth_not_configured otherwise. Declared as the
	// interface type: a nil *GitHubProvider wrapped in an interface would
	// defeat the handler's nil check.
	var github handler.GitHubAuthorizer
	if s.config.OAuthConfigured() {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.CallbackURL(),
		)
	} else {
		s.logger.Warn("GITHUB_CLIENT_ID not set — login is disabled")
	}

	sessions := auth.NewSessionService(s.db.Sessions(), s.config.SessionTTL)
	authService := service.NewAuthService(s.db.Developers(), s.db.Portfolios(), sessions, s.logger)
	portfolioService := service.NewPortfolioService(s.db.Portfolios(), s.logger)

	authHandler := handler.NewAuthHandler(github, authService, s.config.FrontendURL, s.logger)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db)

	s.router.Get("/", healthHandler.HandleRoot)
	s.router.Get("/test", healthHandler.HandleStatus)

	s.router.Get("/auth/github/start", authHandler.HandleGitHubStart)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)

	s.router.Get("/portfolio/{username}", portfolioHandler.HandleGet)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(sessions, s.db.Developers()))
		r.Get("/me", authHandler.HandleMe)
		r.Post("/auth/logout", authHandler.HandleLogout)
		r.Post("/portfolio", portfolioHandler.HandleUpdate)
	})
}

// Handler exposes the router — tests mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up
// to 30 seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("frontend", s.config.FrontendURL),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
