package auditor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rezamoss/expense-ledger/pkg/logger"
	"github.com/rezamoss/expense-ledger/pkg/redis"
)

var (
	ErrAlreadyProcessed   = errors.New("event already processed")
	ErrLockAcquireFailed  = errors.New("failed to acquire processing lock")
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

type IdempotencyConfig struct {
	LockTTL            time.Duration
	ProcessedTTL       time.Duration
	MaxRetries         int
	RetryKeyPrefix     string
	LockKeyPrefix      string
	ProcessedKeyPrefix string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:            30 * time.Second,
		ProcessedTTL:       24 * time.Hour,
		MaxRetries:         3,
		RetryKeyPrefix:     "audit:retry:",
		LockKeyPrefix:      "audit:lock:",
		ProcessedKeyPrefix: "audit:processed:",
	}
}

// IdempotencyService keeps one audit row per event id across redelivery,
// reclaim and competing consumers. A short-term lock serializes consumers;
// a long-term processed marker absorbs redeliveries.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(redisAdapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  redisAdapter,
		config: config,
	}
}

type ProcessingContext struct {
	EventID      string
	RetryCount   int
	IsRetry      bool
	lockAcquired bool
}

func (s *IdempotencyService) AcquireProcessingLock(ctx context.Context, eventID string) (*ProcessingContext, error) {
	processedKey := s.config.ProcessedKeyPrefix + eventID
	exists, err := s.redis.Exist(processedKey)
	if err != nil {
		// A failed check must not block processing; a duplicate row is the
		// lesser harm and the unique event id column rejects it anyway.
		logger.Warn("failed to check processed marker", "event_id", eventID, "error", err)
	} else if exists > 0 {
		return nil, ErrAlreadyProcessed
	}

	retryCount, err := s.GetRetryCount(ctx, eventID)
	if err != nil {
		logger.Warn("failed to read retry counter", "event_id", eventID, "error", err)
	}

	if retryCount >= s.config.MaxRetries {
		logger.Error("max retries exceeded for event", "event_id", eventID, "retry_count", retryCount)
		return nil, fmt.Errorf("%w: event_id=%s, retries=%d", ErrMaxRetriesExceeded, eventID, retryCount)
	}

	lockKey := s.config.LockKeyPrefix + eventID
	lockValue := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))

	acquired, err := s.redis.SetNX(lockKey, lockValue, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	return &ProcessingContext{
		EventID:      eventID,
		RetryCount:   retryCount,
		IsRetry:      retryCount > 0,
		lockAcquired: true,
	}, nil
}

func (s *IdempotencyService) MarkSuccess(ctx context.Context, pc *ProcessingContext) error {
	processedKey := s.config.ProcessedKeyPrefix + pc.EventID
	if err := s.redis.Set(processedKey, []byte("1"), s.config.ProcessedTTL); err != nil {
		logger.Error("failed to set processed marker", "event_id", pc.EventID, "error", err)
		return fmt.Errorf("mark as processed: %w", err)
	}

	s.cleanup(pc)
	return nil
}

func (s *IdempotencyService) MarkFailure(ctx context.Context, pc *ProcessingContext, reason error) {
	retryKey := s.config.RetryKeyPrefix + pc.EventID
	newRetryCount := pc.RetryCount + 1

	if err := s.redis.Set(retryKey, []byte(strconv.Itoa(newRetryCount)), s.config.ProcessedTTL); err != nil {
		logger.Error("failed to increment retry counter", "event_id", pc.EventID, "error", err)
	}

	lockKey := s.config.LockKeyPrefix + pc.EventID
	if err := s.redis.Del(lockKey); err != nil {
		logger.Warn("failed to remove lock", "event_id", pc.EventID, "error", err)
	}
	pc.lockAcquired = false

	logger.Warn("event processing failed, will retry",
		"event_id", pc.EventID,
		"retry_count", newRetryCount,
		"max_retries", s.config.MaxRetries,
		"reason", reason)
}

func (s *IdempotencyService) ReleaseLock(ctx context.Context, pc *ProcessingContext) {
	if pc == nil || !pc.lockAcquired {
		return
	}

	lockKey := s.config.LockKeyPrefix + pc.EventID
	if err := s.redis.Del(lockKey); err != nil {
		logger.Warn("failed to release lock", "event_id", pc.EventID, "error", err)
		return
	}
	pc.lockAcquired = false
}

func (s *IdempotencyService) cleanup(pc *ProcessingContext) {
	if err := s.redis.Del(s.config.LockKeyPrefix + pc.EventID); err != nil {
		logger.Warn("failed to cleanup lock", "event_id", pc.EventID, "error", err)
	}
	if err := s.redis.Del(s.config.RetryKeyPrefix + pc.EventID); err != nil {
		logger.Warn("failed to cleanup retry counter", "event_id", pc.EventID, "error", err)
	}
	pc.lockAcquired = false
}

func (s *IdempotencyService) GetRetryCount(ctx context.Context, eventID string) (int, error) {
	b, err := s.redis.Get(s.config.RetryKeyPrefix + eventID)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return 0, nil
		}
		return 0, err
	}

	retryCount, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, nil
	}
	return retryCount, nil
}

func (s *IdempotencyService) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	exists, err := s.redis.Exist(s.config.ProcessedKeyPrefix + eventID)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
