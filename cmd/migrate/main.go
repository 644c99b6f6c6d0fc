package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ignite/mailflow/internal/config"
	"github.com/ignite/mailflow/internal/pkg/logger"
	"github.com/ignite/mailflow/internal/storage"
)

// migrate creates the key-value table for the sql backends and, with
// --list, prints the stored documents.
func main() {
	configPath := "config/config.yaml"
	listOnly := false
	for _, a := range os.Args[1:] {
		if a == "--list" {
			listOnly = true
		} else {
			configPath = a
		}
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.RedactPII)
	log := logger.With("migrate")

	ctx := context.Background()
	var store *storage.SQL
	switch cfg.Storage.Type {
	case "postgres":
		store, err = storage.OpenPostgres(ctx, cfg.Storage.DatabaseURL)
	case "sqlite":
		store, err = storage.OpenSQLite(ctx, cfg.Storage.SQLitePath)
	default:
		log.Info("nothing to migrate", "storage", cfg.Storage.Type)
		return
	}
	if err != nil {
		log.Error("connect", "storage", cfg.Storage.Type, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("schema up to date", "storage", store.Dialect())

	if !listOnly {
		return
	}
	keys, err := store.Keys(ctx)
	if err != nil {
		log.Error("list keys", "error", err)
		os.Exit(1)
	}
	for _, k := range keys {
		fmt.Printf("  %-32s %8d bytes  %s\n", k.Key, k.Size, k.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Total: %d keys\n", len(keys))
}
