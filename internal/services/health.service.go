package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rezamoss/expense-ledger/pkg/pg"
	"github.com/rezamoss/expense-ledger/pkg/redis"
)

// HealthService reports whether the storage dependencies answer. Used by the
// health endpoint and the readiness probe.
type HealthService struct {
	db    *pg.DB
	redis redis.RedisAdapter
}

func NewHealthService(db *pg.DB, adapter redis.RedisAdapter) *HealthService {
	return &HealthService{
		db:    db,
		redis: adapter,
	}
}

func (s *HealthService) Get() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Read(ctx).Exec("SELECT 1").Error; err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Client().Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}
