package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	natsx "github.com/gabrielmaialva33/juridicai-sub002/internal/nats"
)

var startTime = time.Now()

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db    *gorm.DB
	nats  *natsx.Client
	redis *redis.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, nats *natsx.Client, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		nats:  nats,
		redis: redisClient,
	}
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "juridicai",
		"uptime":  time.Since(startTime).String(),
	})
}

// Readiness reports whether the dependencies the request path needs are
// reachable. NATS and Redis are optional; only the database gates readiness.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		checks["database"] = "down"
		healthy = false
	} else {
		checks["database"] = "up"
	}

	if h.nats != nil {
		if h.nats.IsConnected() {
			checks["nats"] = "up"
		} else {
			checks["nats"] = "down"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			checks["redis"] = "down"
		} else {
			checks["redis"] = "up"
		}
	}

	status := http.StatusOK
	overall := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status": overall,
		"checks": checks,
	})
}
