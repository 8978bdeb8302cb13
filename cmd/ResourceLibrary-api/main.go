package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"Resource-Library/internals/config"
	"Resource-Library/internals/database"
	"Resource-Library/internals/handlers/live"
	"Resource-Library/internals/logging"
	"Resource-Library/internals/metrics"
	"Resource-Library/internals/server"
	"Resource-Library/internals/services"
	"Resource-Library/internals/sessions"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.MustLoad()

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}
	if cfg.UsesInsecureSecret() {
		log.Warn("SESSION_SECRET is not set; using the built-in development secret")
	}

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	log.WithField("path", cfg.Database.SQLitePath).Info("Database connected")

	if err := database.Migrate(ctx, db, log); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if cfg.Seed.Enabled {
		if err := services.Seed(ctx, db, cfg.Security.BcryptCost, log); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	store, err := sessions.OpenStore(ctx, cfg.Session.StorePath)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer store.Close()

	sm, err := sessions.NewManager(store, sessions.Options{
		CookieName: cfg.Session.CookieName,
		Secret:     []byte(cfg.Session.Secret),
		MaxAge:     cfg.Session.MaxAge,
		Secure:     cfg.Session.SecureCookie,
		CacheSize:  cfg.Session.CacheSize,
	}, log)
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}
	if n, err := sm.Purge(ctx); err != nil {
		log.WithError(err).Warn("Failed to purge expired sessions")
	} else if n > 0 {
		log.WithField("count", n).Info("Purged expired sessions")
	}

	auth, err := services.NewAuthService(db, cfg.Security.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to create auth service: %v", err)
	}
	m := metrics.New()
	hub := live.NewHub(log)

	handler, err := server.NewRouter(server.Deps{
		Config:   cfg,
		Log:      log,
		Auth:     auth,
		Accounts: services.NewAccountService(db, cfg.Security.BcryptCost),
		Catalog:  services.NewCatalogService(db, services.Fanout{hub, m}),
		Sessions: sm,
		Metrics:  m,
		Hub:      hub,
	})
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}
	srv := server.New(cfg, handler, log)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("addr", srv.Addr).Info("Server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-done
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Failed to gracefully shutdown server: %v", err)
	}
	log.Info("Server stopped")
}
