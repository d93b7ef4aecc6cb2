package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/birrflow/birrflow/internal/config"
	"github.com/birrflow/birrflow/internal/service"
	"github.com/birrflow/birrflow/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// requireUserID resolves the acting user from the --user flag or config.
func requireUserID() (string, error) {
	userID := viper.GetString("user")
	if userID == "" {
		userID = viper.GetString("default_user")
	}
	if userID == "" {
		return "", fmt.Errorf("no user specified: pass --user or set default_user in config")
	}
	return userID, nil
}
