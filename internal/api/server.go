package api

import (
	"log"
	"os"
	"strings"

	"vrptw/internal/config"
	"vrptw/internal/store"
)

type Server struct {
	Store  store.Store
	Broker EventBroker
	Cfg    config.Config
}

// NewServer creates a Server. With no database URL configured it uses the
// in-memory store; with no Redis URL the in-process broker.
func NewServer(cfg config.Config) (*Server, error) {
	var s store.Store
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		// Run migrations (dev helper)
		if os.Getenv("DB_MIGRATE") != "false" {
			if err := sp.MigrateDir(cfg.MigrationDir); err != nil {
				log.Printf("migrate: %v", err)
			}
		}
		s = sp
	}
	var broker EventBroker
	if cfg.RedisURL != "" {
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}
	return &Server{Store: s, Broker: broker, Cfg: cfg}, nil
}
