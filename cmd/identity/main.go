package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Mock identity provider for local development. The records backend trusts
// the X-Actor-Id header; this service hands out actor ids and resolves them
// back to a directory entry, standing in for the real SSO integration.

type DirectoryEntry struct {
	ActorID  string `json:"actor_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email string `json:"email" binding:"required"`
}

type LoginResponse struct {
	ActorID   string    `json:"actor_id"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type HealthResponse struct {
	Status     string    `json:"status"`
	ProviderID string    `json:"provider_id"`
	Timestamp  time.Time `json:"timestamp"`
	Actors     int       `json:"actors"`
}

// MockDirectory is an in-memory actor directory with a fixed session TTL.
type MockDirectory struct {
	mu         sync.RWMutex
	byActorID  map[string]DirectoryEntry
	byEmail    map[string]string
	sessionTTL time.Duration
	providerID string
}

func NewMockDirectory(sessionTTL time.Duration) *MockDirectory {
	d := &MockDirectory{
		byActorID:  make(map[string]DirectoryEntry),
		byEmail:    make(map[string]string),
		sessionTTL: sessionTTL,
		providerID: "MOCK_IDENTITY_" + uuid.New().String()[:8],
	}

	for _, seed := range []struct {
		fullName, email, role string
	}{
		{"Dana Accountant", "dana@example.com", "accountant"},
		{"Sam Bookkeeper", "sam@example.com", "bookkeeper"},
		{"Alex Admin", "alex@example.com", "admin"},
	} {
		d.register(seed.fullName, seed.email, seed.role)
	}

	return d
}

func (d *MockDirectory) register(fullName, email, role string) DirectoryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	if actorID, ok := d.byEmail[email]; ok {
		return d.byActorID[actorID]
	}

	entry := DirectoryEntry{
		ActorID:  uuid.New().String(),
		FullName: fullName,
		Email:    email,
		Role:     role,
	}
	d.byActorID[entry.ActorID] = entry
	d.byEmail[email] = entry.ActorID
	return entry
}

func (d *MockDirectory) lookupEmail(email string) (DirectoryEntry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	actorID, ok := d.byEmail[email]
	if !ok {
		return DirectoryEntry{}, false
	}
	return d.byActorID[actorID], true
}

func (d *MockDirectory) lookupActor(actorID string) (DirectoryEntry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	entry, ok := d.byActorID[actorID]
	return entry, ok
}

func (d *MockDirectory) size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byActorID)
}

type Handler struct {
	directory *MockDirectory
}

func NewHandler(directory *MockDirectory) *Handler {
	return &Handler{directory: directory}
}

// Login resolves an email to an actor id, registering unknown emails on the
// fly so local setups need no pre-provisioning.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	entry, ok := h.directory.lookupEmail(req.Email)
	if !ok {
		entry = h.directory.register(req.Email, req.Email, "bookkeeper")
		log.Info().Str("email", req.Email).Str("actor_id", entry.ActorID).Msg("Registered new actor")
	}

	now := time.Now()
	c.JSON(http.StatusOK, LoginResponse{
		ActorID:   entry.ActorID,
		FullName:  entry.FullName,
		Role:      entry.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(h.directory.sessionTTL),
	})
}

// Resolve maps an actor id back to its directory entry.
func (h *Handler) Resolve(c *gin.Context) {
	actorID := c.Param("actor_id")
	if actorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actor_id is required"})
		return
	}

	entry, ok := h.directory.lookupActor(actorID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown actor"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		ProviderID: h.directory.providerID,
		Timestamp:  time.Now(),
		Actors:     h.directory.size(),
	})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/identity/login", handler.Login)
		v1.GET("/identity/actors/:actor_id", handler.Resolve)
		v1.GET("/health", handler.HealthCheck)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8090")
	sessionTTL := getEnvDuration("SESSION_TTL", 12*time.Hour)

	log.Info().
		Str("port", port).
		Dur("session_ttl", sessionTTL).
		Msg("Starting Mock Identity Provider")

	directory := NewMockDirectory(sessionTTL)
	handler := NewHandler(directory)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
