package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rezamoss/expense-ledger/internal/auditor"
	"github.com/rezamoss/expense-ledger/internal/config"
	"github.com/rezamoss/expense-ledger/internal/queue"
	"github.com/rezamoss/expense-ledger/internal/repository"
	"github.com/rezamoss/expense-ledger/pkg/logger"
	"github.com/rezamoss/expense-ledger/pkg/pg"
	"github.com/rezamoss/expense-ledger/pkg/prom"
	"github.com/rezamoss/expense-ledger/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	auditEventRepo := repository.NewAuditEventRepository(db)

	idempotencyService := auditor.NewIdempotencyService(redisAdap, auditor.DefaultIdempotencyConfig())

	service := auditor.NewService(redisAdap, queue.Config{
		Name:              config.Get().AuditStreamName,
		ConsumerGroup:     config.Get().AuditConsumerGroup,
		ConsumerName:      config.Get().AuditConsumerName,
		MaxRetries:        config.Get().AuditStreamMaxRetries,
		VisibilityTimeout: config.Get().AuditStreamVisibilityTimeout,
		PollInterval:      config.Get().AuditStreamPollInterval,
		BatchSize:         config.Get().AuditStreamBatchSize,
		MaxLen:            config.Get().AuditStreamMaxLen,
		EnableDLQ:         config.Get().AuditStreamEnableDLQ,
	}, config.Get().AuditConsumerCount, config.Get().AuditWorkerCount)
	service.RegisterProcessor(auditor.NewAuditEventProcessor(auditEventRepo, idempotencyService))

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	go func() {
		err := service.Start()
		if err != nil {
			logger.Error("failed to start auditor", "error", err)
		}
	}()

	select {
	case <-c:
		service.Stop()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
