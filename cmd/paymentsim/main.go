package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/myola/storefront/internal/model"
	"github.com/myola/storefront/internal/queue"
	"github.com/myola/storefront/pkg/redis"
)

// PaymentStatus represents the state of a simulated payment
type PaymentStatus string

const (
	StatusConfirmed PaymentStatus = "CONFIRMED"
	StatusFailed    PaymentStatus = "FAILED"
	StatusPending   PaymentStatus = "PENDING"
)

// CreatePaymentRequest represents a request to open a simulated payment
type CreatePaymentRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
	Method string `json:"method"`
}

// CreatePaymentResponse represents the response for an opened payment
type CreatePaymentResponse struct {
	Reference  string        `json:"reference"`
	Status     PaymentStatus `json:"status"`
	GatewayID  string        `json:"gateway_id"`
	AcceptedAt time.Time     `json:"accepted_at"`
}

// ConfirmPaymentRequest forces an immediate confirmation for a reference
type ConfirmPaymentRequest struct {
	UserID    int64  `json:"user_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required"`
	Reference string `json:"reference" binding:"required"`
	Method    string `json:"method"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string    `json:"status"`
	GatewayID   string    `json:"gateway_id"`
	Timestamp   time.Time `json:"timestamp"`
	SuccessRate float64   `json:"success_rate"`
}

// MockGateway simulates a payment gateway: it accepts payments, waits a
// random settlement delay and publishes a confirmation event to the
// payments stream the way the real gateway's webhook relay would.
type MockGateway struct {
	successRate float64
	minDelay    time.Duration
	maxDelay    time.Duration
	gatewayID   string
	events      *queue.Queue
	rng         *rand.Rand
}

// NewMockGateway creates a new mock gateway instance
func NewMockGateway(successRate float64, minDelay, maxDelay time.Duration, events *queue.Queue) *MockGateway {
	return &MockGateway{
		successRate: successRate,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		gatewayID:   "MOCK_GATEWAY_" + uuid.New().String()[:8],
		events:      events,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// simulateSettlement waits out the settlement delay, then either
// publishes a confirmation event or drops the payment as failed.
func (m *MockGateway) simulateSettlement(event model.PaymentEvent) {
	delay := m.randomDelay()
	time.Sleep(delay)

	if !m.shouldSucceed() {
		log.Warn().
			Str("reference", event.Reference).
			Int64("user_id", event.UserID).
			Msg("Payment failed at gateway, no event published")
		return
	}

	m.publish(event, delay)
}

func (m *MockGateway) publish(event model.PaymentEvent, delay time.Duration) {
	id, err := m.events.PublishJSON(context.Background(), event, map[string]string{
		"gateway_id": m.gatewayID,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("reference", event.Reference).
			Msg("Failed to publish payment event")
		return
	}

	log.Info().
		Str("reference", event.Reference).
		Int64("user_id", event.UserID).
		Int64("amount", event.AmountPaid).
		Str("stream_id", id).
		Dur("delay", delay).
		Msg("Payment confirmed")
}

func (m *MockGateway) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	randomDelta := time.Duration(m.rng.Int63n(int64(delta)))
	return m.minDelay + randomDelta
}

func (m *MockGateway) shouldSucceed() bool {
	return m.rng.Float64() < m.successRate
}

// Handler struct holds the mock gateway and routes
type Handler struct {
	gateway *MockGateway
}

func NewHandler(gateway *MockGateway) *Handler {
	return &Handler{gateway: gateway}
}

// CreatePayment accepts a payment and settles it asynchronously
func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	reference := "PAY-" + uuid.New().String()[:12]

	log.Info().
		Str("reference", reference).
		Int64("user_id", req.UserID).
		Int64("amount", req.Amount).
		Msg("Received payment")

	go h.gateway.simulateSettlement(model.PaymentEvent{
		UserID:     req.UserID,
		AmountPaid: req.Amount,
		Reference:  reference,
		Method:     req.Method,
	})

	c.JSON(http.StatusAccepted, CreatePaymentResponse{
		Reference:  reference,
		Status:     StatusPending,
		GatewayID:  h.gateway.gatewayID,
		AcceptedAt: time.Now(),
	})
}

// ConfirmPayment publishes a confirmation immediately, bypassing the
// settlement delay. Useful for scripted test runs.
func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	h.gateway.publish(model.PaymentEvent{
		UserID:     req.UserID,
		AmountPaid: req.Amount,
		Reference:  req.Reference,
		Method:     req.Method,
	}, 0)

	c.JSON(http.StatusOK, CreatePaymentResponse{
		Reference:  req.Reference,
		Status:     StatusConfirmed,
		GatewayID:  h.gateway.gatewayID,
		AcceptedAt: time.Now(),
	})
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		GatewayID:   h.gateway.gatewayID,
		Timestamp:   time.Now(),
		SuccessRate: h.gateway.successRate,
	})
}

// UpdateConfig allows changing gateway configuration at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		SuccessRate *float64 `json:"success_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.SuccessRate != nil {
		if *config.SuccessRate >= 0 && *config.SuccessRate <= 1.0 {
			h.gateway.successRate = *config.SuccessRate
			log.Info().Float64("rate", *config.SuccessRate).Msg("Updated success rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Configuration updated",
		"success_rate": h.gateway.successRate,
	})
}

// SetupRouter configures all routes
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
		v1.POST("/payments", handler.CreatePayment)
		v1.POST("/payments/confirm", handler.ConfirmPayment)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Get configuration from environment
	port := getEnv("PORT", "8082")
	successRate := getEnvFloat("SUCCESS_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 1*time.Second)
	maxDelay := getEnvDuration("MAX_DELAY", 5*time.Second)
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	streamName := getEnv("PAYMENT_STREAM_NAME", "payments:confirmed")
	consumerGroup := getEnv("PAYMENT_CONSUMER_GROUP", "storefront-core")

	log.Info().
		Str("port", port).
		Float64("success_rate", successRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Str("stream", streamName).
		Msg("Starting Mock Payment Gateway")

	redisAdap, err := redis.NewRedisAdapter("paymentsim", "", &redis.Options{
		Addrs:      []string{redisAddr},
		ClientName: "paymentsim",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}

	events, err := queue.New(redisAdap, queue.Config{
		Name:          streamName,
		ConsumerGroup: consumerGroup,
		ConsumerName:  "paymentsim",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open payment stream")
	}

	// Create mock gateway
	gateway := NewMockGateway(successRate, minDelay, maxDelay, events)
	handler := NewHandler(gateway)
	router := SetupRouter(handler)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
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

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
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
