package auditor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rezamoss/expense-ledger/internal/queue"
	"github.com/rezamoss/expense-ledger/pkg/logger"
	"github.com/rezamoss/expense-ledger/pkg/redis"
	"github.com/rezamoss/expense-ledger/pkg/worker"
)

const (
	ProcessingTimeout = 5 * time.Second
	HealthInterval    = 30 * time.Second
	ShutdownTimeout   = time.Minute
)

// Processor handles one stream message.
type Processor interface {
	Process(ctx context.Context, message *queue.Message) error
	GetType() string
}

// Service drains the settlement stream into the audit trail. Queue
// consumers feed a shared worker pool; the pool fans processing out while
// each message blocks its consumer slot until a worker reports back.
type Service struct {
	adapter   redis.RedisAdapter
	queues    []*queue.Queue
	processor Processor
	metrics   *ServiceMetrics
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	worker    *worker.WorkerManager

	consumerCount int
	queueConfig   queue.Config
}

func NewService(adapter redis.RedisAdapter, queueConfig queue.Config, consumerCount, workerCount int) *Service {
	if consumerCount <= 0 {
		consumerCount = 4
	}
	if workerCount <= 0 {
		workerCount = 32
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		adapter:       adapter,
		queues:        make([]*queue.Queue, 0, consumerCount),
		metrics:       NewServiceMetrics(),
		ctx:           ctx,
		cancel:        cancel,
		worker:        worker.NewWorkerManager(10_000, workerCount, nil),
		consumerCount: consumerCount,
		queueConfig:   queueConfig,
	}
}

func (s *Service) RegisterProcessor(processor Processor) {
	s.processor = processor
	logger.Info("registered processor", "type", processor.GetType())
}

func (s *Service) Start() error {
	if s.processor == nil {
		return fmt.Errorf("no processor registered")
	}

	s.worker.SetWorker(s.workerHandler)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(); err != nil {
			logger.Error("worker manager stopped", "error", err)
		}
	}()

	for i := 0; i < s.consumerCount; i++ {
		cfg := s.queueConfig
		cfg.ConsumerName = fmt.Sprintf("%s-instance-%d", cfg.ConsumerName, i)

		q, err := queue.New(s.adapter, cfg)
		if err != nil {
			return fmt.Errorf("create consumer %d: %w", i, err)
		}
		if err := q.Consume(s.messageHandler); err != nil {
			return fmt.Errorf("start consumer %d: %w", i, err)
		}

		s.queues = append(s.queues, q)
	}

	s.wg.Add(2)
	go s.metricsReporter()
	go s.healthChecker()

	logger.Info("auditor started", "consumers", len(s.queues))
	return nil
}

func (s *Service) metricsReporter() {
	defer s.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportMetrics()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) reportMetrics() {
	stats := s.metrics.GetStats()
	logger.Info("auditor metrics",
		"total_processed", stats["total_processed"],
		"total_failed", stats["total_failed"],
		"rate_per_second", stats["rate_per_second"],
		"avg_duration_ms", stats["avg_duration_ms"],
		"uptime_seconds", stats["uptime_seconds"])

	for i, q := range s.queues {
		if qStats, err := q.GetStats(); err == nil {
			logger.Info("stream stats", "consumer", i,
				"total", qStats.TotalMessages, "pending", qStats.PendingMessages)
		}
	}
}

func (s *Service) healthChecker() {
	defer s.wg.Done()

	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.performHealthCheck()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) performHealthCheck() {
	if err := s.adapter.Client().Ping(context.Background()).Err(); err != nil {
		logger.Error("health check failed: redis connection error", "error", err)
		return
	}

	for i, q := range s.queues {
		stats, err := q.GetStats()
		if err != nil {
			logger.Warn("health check: stream stats unavailable", "consumer", i, "error", err)
			continue
		}
		if stats.PendingMessages > 10_000 {
			logger.Warn("health check: stream lag is high",
				"consumer", i, "pending_messages", stats.PendingMessages)
		}
	}
}

func (s *Service) Stop() {
	logger.Info("shutting down auditor")

	s.cancel()

	stopChan := make(chan bool, len(s.queues))
	for i, q := range s.queues {
		go func(index int, q *queue.Queue) {
			if err := q.Stop(ShutdownTimeout); err != nil {
				logger.Error("error stopping consumer", "consumer", index, "error", err)
			}
			stopChan <- true
		}(i, q)
	}
	for range s.queues {
		select {
		case <-stopChan:
		case <-time.After(ShutdownTimeout + 5*time.Second):
			logger.Warn("timeout waiting for consumers to stop")
		}
	}

	s.worker.Exit()
	s.wg.Wait()
	s.reportMetrics()

	logger.Info("auditor stopped")
}

type job struct {
	msg        *queue.Message
	resultChan chan error
	ctx        context.Context
}

// messageHandler bridges a consumer to the worker pool and blocks until the
// worker reports, so acking stays tied to processing outcome.
func (s *Service) messageHandler(ctx context.Context, msg *queue.Message) error {
	msgCtx, cancel := context.WithTimeout(ctx, ProcessingTimeout+time.Second)
	defer cancel()

	j := &job{
		msg:        msg,
		resultChan: make(chan error, 1),
		ctx:        msgCtx,
	}
	s.worker.Enqueue(j)

	select {
	case err := <-j.resultChan:
		return err
	case <-msgCtx.Done():
		return fmt.Errorf("timeout waiting for worker: %w", msgCtx.Err())
	}
}

func (s *Service) workerHandler(workerIndex int, rawJob interface{}) {
	j, ok := rawJob.(*job)
	if !ok {
		logger.Error("invalid job type in worker", "worker", workerIndex)
		return
	}

	select {
	case <-j.ctx.Done():
		logger.Warn("job cancelled before processing started", "worker", workerIndex)
		return
	default:
	}

	start := time.Now()
	resultErr := s.processor.Process(j.ctx, j.msg)
	if resultErr != nil {
		s.metrics.RecordFailure()
	} else {
		s.metrics.RecordSuccess(time.Since(start))
	}

	// The handler may already have timed out and stopped listening.
	select {
	case j.resultChan <- resultErr:
	case <-j.ctx.Done():
		logger.Warn("job cancelled while sending result", "worker", workerIndex)
	}
}
