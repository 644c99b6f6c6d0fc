package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/mailflow/internal/api"
	"github.com/ignite/mailflow/internal/assistant"
	"github.com/ignite/mailflow/internal/auth"
	"github.com/ignite/mailflow/internal/config"
	"github.com/ignite/mailflow/internal/mailing"
	"github.com/ignite/mailflow/internal/pkg/distlock"
	"github.com/ignite/mailflow/internal/pkg/logger"
	"github.com/ignite/mailflow/internal/repository/kvstore"
	"github.com/ignite/mailflow/internal/service/campaign"
	"github.com/ignite/mailflow/internal/service/contact"
	"github.com/ignite/mailflow/internal/service/dashboard"
	"github.com/ignite/mailflow/internal/service/settings"
	"github.com/ignite/mailflow/internal/service/template"
	"github.com/ignite/mailflow/internal/storage"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.RedactPII)
	log := logger.With("server")

	if err := run(cfg); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg *config.Config) error {
	log := logger.With("server")
	ctx := context.Background()

	kv, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer kv.Close()
	log.Info("storage ready", "type", cfg.Storage.Type, "prefix", cfg.Storage.KeyPrefix)

	db, redisClient := backendHandles(kv)

	contactRepo := kvstore.NewContactRepo(kv)
	templateRepo := kvstore.NewTemplateRepo(kv)
	settingsRepo := kvstore.NewSettingsRepo(kv)
	logRepo := kvstore.NewLogRepo(kv, cfg.Campaign.LogCap)

	contacts := contact.NewService(contactRepo)
	templates := template.NewService(templateRepo, mailing.NewTemplateService())
	smtp := settings.NewService(settingsRepo, cfg.SMTPTest.Delay())

	dispatcher := campaign.NewSimulatedDispatcher(cfg.Campaign.BaseLatency(), cfg.Campaign.Jitter(), cfg.Campaign.FailureRate)
	runner := campaign.NewRunner(dispatcher, logRepo, templates, smtp)
	campaigns := campaign.NewService(runner, contacts, templates,
		runLockFactory(kv, redisClient, cfg), cfg.Campaign.LockTTL())

	ai, err := assistant.NewFromConfig(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("initializing assistant: %w", err)
	}
	if !ai.Available() {
		log.Warn("AI assistant disabled: no API key configured", "provider", cfg.AI.Provider)
	}

	var authManager *auth.AuthManager
	if cfg.Auth.Enabled {
		authManager, err = auth.NewAuthManager(cfg.Auth, kvstore.NewSessionRepo(kv))
		if err != nil {
			return fmt.Errorf("initializing auth: %w", err)
		}
	}

	handlers := api.NewHandlers(api.Deps{
		Contacts:  contacts,
		Templates: templates,
		Settings:  smtp,
		Campaigns: campaigns,
		Dashboard: dashboard.NewService(logRepo),
		Logs:      logRepo,
		Assistant: ai,
	})
	health := api.NewHealthChecker(kv, db, redisClient, campaigns)
	server := api.NewServer(api.SetupRoutes(handlers, authManager, health, cfg.Server.AllowedOrigins))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		log.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-done:
		log.Info("shutting down")
	case err := <-errc:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := campaigns.Close(shutdownCtx); err != nil {
		log.Warn("campaign run did not stop cleanly", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown error", "error", err)
	}
	return nil
}

// backendHandles exposes the connections behind SQL and Redis stores so the
// run lock and health checks can reuse them.
func backendHandles(kv storage.KV) (*sql.DB, *redis.Client) {
	switch b := storage.Unwrap(kv).(type) {
	case *storage.SQL:
		return b.DB(), nil
	case *storage.Redis:
		return nil, b.Client()
	}
	return nil, nil
}

// runLockFactory picks the run guard matching the storage backend: Redis,
// then Postgres advisory locks, then an in-process lock.
func runLockFactory(kv storage.KV, redisClient *redis.Client, cfg *config.Config) campaign.LockFactory {
	var pg *sql.DB
	if s, ok := storage.Unwrap(kv).(*storage.SQL); ok && s.Dialect() == "postgres" {
		pg = s.DB()
	}
	key := cfg.Storage.KeyPrefix + "campaign-run"
	ttl := cfg.Campaign.LockTTL()
	return func() distlock.DistLock {
		return distlock.NewLock(redisClient, pg, key, ttl)
	}
}
