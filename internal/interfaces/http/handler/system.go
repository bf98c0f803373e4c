package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mystock/backend/internal/infrastructure/config"
	"github.com/mystock/backend/internal/infrastructure/persistence"
	"github.com/mystock/backend/internal/interfaces/http/dto"
)

// SystemHandler handles health and info endpoints
type SystemHandler struct {
	BaseHandler
	cfg       *config.Config
	db        *persistence.Database
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(cfg *config.Config, db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		cfg:       cfg,
		db:        db,
		startTime: time.Now(),
	}
}

// HealthResponse reports service and database health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// Health reports liveness plus a database ping
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}

	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}

// InfoResponse is the service identity view
type InfoResponse struct {
	Name      string `json:"name"`
	Env       string `json:"env"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Info returns the service name and environment
func (h *SystemHandler) Info(c *gin.Context) {
	info := InfoResponse{
		Name:      h.cfg.App.Name,
		Env:       h.cfg.App.Env,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	h.Success(c, info)
}
