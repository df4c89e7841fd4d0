package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PotatoBoi2658/notesapp/internal/auth"
	"github.com/PotatoBoi2658/notesapp/internal/config"
	"github.com/PotatoBoi2658/notesapp/internal/db"
	"github.com/PotatoBoi2658/notesapp/internal/email"
	"github.com/PotatoBoi2658/notesapp/internal/notes"
	"github.com/PotatoBoi2658/notesapp/internal/obs"
	"github.com/PotatoBoi2658/notesapp/internal/web"
)

const sessionCleanupInterval = time.Hour

func main() {
	noEmail, addr := config.ParseFlags()

	obs.Init()
	log := obs.Pkg("main")

	cfg := config.MustLoadConfig(noEmail, addr)
	cfg.PrintStartupSummary()

	store, err := db.Open(cfg.DatabasePath, cfg.DatabaseKey)
	if err != nil {
		log.Error("opening database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var mailer email.Mailer
	if cfg.NoEmail || !cfg.EmailConfigured() {
		mailer = email.NewMockMailer()
	} else {
		mailer = email.NewResendMailer(cfg.ResendAPIKey, cfg.ResendFromEmail)
	}

	userService := auth.NewUserService(store, cfg, mailer)
	sessionService := auth.NewSessionService(store, cfg.SessionDuration, cfg.RequireSecureCookies())
	notesService := notes.NewService(store)

	renderer, err := web.NewRenderer(cfg.TemplatesDir)
	if err != nil {
		log.Error("loading templates", "dir", cfg.TemplatesDir, "error", err)
		os.Exit(1)
	}

	handler := web.NewWebHandler(renderer, notesService, userService, sessionService)
	authMiddleware := auth.NewMiddleware(sessionService, userService)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authMiddleware)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           obs.RequestContextMiddleware(obs.AccessLogMiddleware("web", mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cleanupSessions(ctx, sessionService, log)

	go func() {
		log.Info("server listening", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}

// cleanupSessions periodically removes expired sessions so the table
// does not grow without bound.
func cleanupSessions(ctx context.Context, sessions *auth.SessionService, log *slog.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.Cleanup(ctx); err != nil {
				log.Warn("session cleanup", "error", err)
			}
		}
	}
}
