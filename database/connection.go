package database

import (
	"context"
	"fmt"
	"log"

	"clinic-assistant/config"
)

// Connect opens the session store selected by the database config.
func Connect(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Database.Type {
	case "mongodb":
		return ConnectMongoDB(ctx, cfg)
	case "memory":
		log.Println("Using in-memory session store; sessions are lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}
