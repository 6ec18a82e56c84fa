// Package server wires handlers, middleware, and routes, and owns the
// HTTP server lifecycle.
//
// COMPOSITION ROOT:
// Every dependency is assembled here, in one place: New opens the
// database and builds the service/handler chain, setupRoutes binds
// handlers to URLs, Start runs the listener and shuts it down
// gracefully. main() only loads config and calls these.
//
// Each layer receives only what it needs — handlers get services,
// services get repository interfaces, and nothing below the server
// touches *sqlite.DB directly.
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

	"github.com/sakif/authd/internal/auth"
	"github.com/sakif/authd/internal/config"
	"github.com/sakif/authd/internal/handler"
	"github.com/sakif/authd/internal/mail"
	"github.com/sakif/authd/internal/middleware"
	sqliteRepo "github.com/sakif/authd/internal/repository/sqlite"
	"github.com/sakif/authd/internal/service"
)

// Server holds the router and the resources it must release on
// shutdown. The database connection is owned here: Start closes it
// after the listener drains, so the WAL is flushed and the file lock
// released even on signal-driven exits.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency chain and registers all routes.
// The sender decides OTP delivery: SMTP when configured, the log
// otherwise — main picks and passes it in so tests can substitute.
func New(cfg config.Config, logger *slog.Logger, sender mail.Sender) (*Server, error) {
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

	if err := s.setupRoutes(sender); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and binds every route.
//
// ROUTE MAP:
//
//	POST /user/sign-up     → register (OTP-gated), set session cookie
//	POST /user/sign-in     → authenticate, set session cookie
//	POST /user/send-email  → issue a verification code
//	GET  /user/detail      → profile of the authenticated caller
//	GET  /healthz          → liveness probe
//	GET  /auth/github/*    → account linking (only when configured)
//	GET  /auth/accounts    → linked accounts of the caller
//
// MIDDLEWARE ORDER:
// RequestID first so every later line can carry the ID, RealIP before
// logging so the logged peer is the real client, Recoverer innermost
// so panics in handlers become 500s that still get logged.
func (s *Server) setupRoutes(sender mail.Sender) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.RequestLogger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	userService := service.NewUserService(
		s.db.Users(), s.db.OTPs(), tokens,
		auth.NewPasswordService(),
		sender, s.config.OTPTTL, s.logger,
	)
	userHandler := handler.NewUserHandler(userService, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/user", func(r chi.Router) {
		r.Post("/sign-up", userHandler.HandleSignUp)
		r.Post("/sign-in", userHandler.HandleSignIn)
		r.Post("/send-email", userHandler.HandleSendCode)
		r.With(requireAuth).Get("/detail", userHandler.HandleDetail)
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"OK"}`))
	})

	// Account linking is optional: without OAuth credentials the
	// routes simply don't exist and the rest of the API is unaffected.
	if s.config.GitHubEnabled() {
		github := auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
		linkService := service.NewLinkService(s.db.Accounts(), s.logger)
		linkHandler := handler.NewLinkHandler(github, linkService, s.logger)

		s.router.Route("/auth", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/github/login", linkHandler.HandleGitHubLogin)
			r.Get("/github/callback", linkHandler.HandleGitHubCallback)
			r.Get("/accounts", linkHandler.HandleAccounts)
		})
	} else {
		s.logger.Info("github account linking disabled (no OAuth credentials)")
	}

	return nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the listener and blocks until SIGINT/SIGTERM or a server
// error. On a signal, in-flight requests get 30 seconds to finish
// before the database is closed.
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
