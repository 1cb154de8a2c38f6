package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rezamoss/expense-ledger/internal/config"
	"github.com/rezamoss/expense-ledger/internal/handlers"
	"github.com/rezamoss/expense-ledger/internal/queue"
	"github.com/rezamoss/expense-ledger/internal/repository"
	"github.com/rezamoss/expense-ledger/internal/services"
	xhttp "github.com/rezamoss/expense-ledger/pkg/http"
	"github.com/rezamoss/expense-ledger/pkg/keylock"
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

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

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

	auditStream, err := queue.New(redisAdap, queue.Config{
		Name:              config.Get().AuditStreamName,
		ConsumerGroup:     config.Get().AuditConsumerGroup,
		ConsumerName:      config.Get().AuditConsumerName,
		MaxRetries:        config.Get().AuditStreamMaxRetries,
		VisibilityTimeout: config.Get().AuditStreamVisibilityTimeout,
		PollInterval:      config.Get().AuditStreamPollInterval,
		BatchSize:         config.Get().AuditStreamBatchSize,
		MaxLen:            config.Get().AuditStreamMaxLen,
		EnableDLQ:         config.Get().AuditStreamEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating audit stream", "error", err)
		return
	}

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
	if config.Get().AppDebugMetricsAddr != "" {
		go func() {
			prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
		}()
	}

	expenseRepo := repository.NewExpenseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	pageRepo := repository.NewPageRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	auditEventRepo := repository.NewAuditEventRepository(db)

	locks := keylock.New(config.Get().LedgerLockTimeout)
	reconciler := services.NewReconciler(paymentRepo, expenseRepo)

	ledgerService := services.NewLedgerService(expenseRepo, paymentRepo, reconciler, locks, auditStream)
	expenseService := services.NewExpenseService(expenseRepo, companyRepo, reconciler, locks, auditStream)
	companyService := services.NewCompanyService(companyRepo)
	roleService := services.NewRoleService(roleRepo, pageRepo)
	pageService := services.NewPageService(pageRepo)
	employeeService := services.NewEmployeeService(employeeRepo, roleRepo)
	healthService := services.NewHealthService(db, redisAdap)

	expenseHandler := handlers.NewExpenseHandler(expenseService, auditEventRepo)
	paymentHandler := handlers.NewPaymentHandler(ledgerService)
	companyHandler := handlers.NewCompanyHandler(companyService)
	roleHandler := handlers.NewRoleHandler(roleService)
	pageHandler := handlers.NewPageHandler(pageService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterExpenseRoutes(g, expenseHandler)
	handlers.RegisterPaymentRoutes(g, paymentHandler)
	handlers.RegisterCompanyRoutes(g, companyHandler)
	handlers.RegisterRoleRoutes(g, roleHandler)
	handlers.RegisterPageRoutes(g, pageHandler)
	handlers.RegisterEmployeeRoutes(g, employeeHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
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
