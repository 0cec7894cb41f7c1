// Package store opens the persistence backends selected by configuration.
package store

import (
	"fmt"

	"interview-coach/internal/adapter"
	"interview-coach/internal/cache"
	"interview-coach/internal/config"
	"interview-coach/internal/database"
	"interview-coach/internal/docstore"
	"interview-coach/internal/domain"
	"interview-coach/internal/logger"
	"interview-coach/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores holds the repositories and the key-value cache shared by the
// services.
type Stores struct {
	Users     domain.UserRepository
	Histories domain.HistoryRepository
	Cache     domain.Cache

	db    *sqlx.DB
	redis *redis.Client
}

// Open connects the key-value cache and the document store. The cache is
// Redis when redis.address is set and process memory otherwise.
func Open(cfg *config.Config, migrate bool) (*Stores, error) {
	l := logger.Get()
	s := &Stores{}

	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		l.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
		s.redis = client
		s.Cache = adapter.NewRedisCacheAdapter(client)
	} else {
		l.Warn("redis.address is empty, sessions and cached feedback live in process memory")
		s.Cache = adapter.NewMemoryCacheAdapter()
	}

	var users, histories domain.DocumentCollection
	switch cfg.Store.Backend {
	case "sql":
		db, err := database.Connect(cfg)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.db = db
		if migrate {
			if err := database.RunMigrations(db, cfg.DB.Driver); err != nil {
				s.Close()
				return nil, err
			}
		}
		users = repository.NewSQLDocumentCollection(db, domain.UsersCollection)
		histories = repository.NewSQLDocumentCollection(db, domain.HistoryCollection)
	case "redis":
		if s.redis == nil {
			return nil, fmt.Errorf("store.backend redis requires redis.address")
		}
		users = docstore.NewCacheCollection(domain.UsersCollection, s.Cache)
		histories = docstore.NewCacheCollection(domain.HistoryCollection, s.Cache)
	case "memory":
		users = docstore.NewMemoryCollection(domain.UsersCollection)
		histories = docstore.NewMemoryCollection(domain.HistoryCollection)
	default:
		s.Close()
		return nil, fmt.Errorf("unsupported store.backend %q", cfg.Store.Backend)
	}
	l.Info("Document store ready", zap.String("backend", cfg.Store.Backend))

	s.Users = repository.NewUserRepository(users)
	s.Histories = repository.NewHistoryRepository(histories)
	return s, nil
}

// Close releases the database and Redis connections.
func (s *Stores) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Warn("Failed to close database", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Get().Warn("Failed to close Redis client", zap.Error(err))
		}
	}
}
