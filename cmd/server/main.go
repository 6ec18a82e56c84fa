// Package main is the entry point for the authd server.
//
// main() stays minimal: load config, build the logger, pick the OTP
// delivery transport, and hand everything to internal/server. All
// actual behaviour lives in the imported packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/authd/internal/config"
	"github.com/sakif/authd/internal/mail"
	"github.com/sakif/authd/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	// This warning must be impossible to miss: tokens signed with the
	// published default secret can be forged by anyone.
	if cfg.UsingDefaultSecret() {
		logger.Warn("JWT_SECRET is not set — using a PUBLICLY KNOWN default secret")
		logger.Warn("anyone can forge session tokens; set JWT_SECRET before exposing this server")
	}

	// Ensure the database directory exists (no-op for ":memory:").
	if cfg.DBPath != ":memory:" {
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				logger.Error("failed to create database directory",
					slog.String("dir", dir),
					slog.String("error", err.Error()),
				)
				os.Exit(1)
			}
		}
	}

	// OTP delivery: real SMTP when configured, otherwise codes go to
	// the log so local development works without a mail relay.
	var sender mail.Sender
	if cfg.SMTPAddr != "" {
		sender = &mail.SMTPSender{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom}
		logger.Info("sending OTP codes via SMTP", slog.String("addr", cfg.SMTPAddr))
	} else {
		sender = &mail.LogSender{Logger: logger}
		logger.Info("SMTP_ADDR not set — OTP codes will be logged")
	}

	srv, err := server.New(cfg, logger, sender)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// parseLevel maps the LOG_LEVEL string to a slog level, defaulting to
// Info for anything unrecognized.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
