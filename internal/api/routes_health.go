package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/orgdirectory/internal/app"
	"github.com/charlesng35/orgdirectory/internal/monitoring"
	"github.com/charlesng35/orgdirectory/internal/monitoring/checks"
	"github.com/charlesng35/orgdirectory/pkg/response"
)

type healthPayload struct {
	Status    monitoring.ProbeStatus   `json:"Status"`
	Checks    []monitoring.ProbeResult `json:"Checks,omitempty"`
	CheckedAt time.Time                `json:"CheckedAt"`
}

func registerHealthRoutes(r *gin.Engine, db *gorm.DB, cfg *app.Config) {
	if !cfg.Monitoring.Health.Enabled {
		r.GET("/health", disabledHealthHandler)
		r.GET("/health/live", disabledHealthHandler)
		r.GET("/health/ready", disabledHealthHandler)
		return
	}

	manager := monitoring.NewHealthManager(cfg.Monitoring.Health.Timeout)
	manager.RegisterLiveness(monitoring.NewCheck("process", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	manager.RegisterReadiness(checks.Database(db))
	manager.RegisterReadiness(checks.OrganizationsTable(db))

	r.GET("/health", func(c *gin.Context) {
		report := manager.Evaluate(c.Request.Context())
		writeHealthReport(c, healthPayload{Status: report.Status, CheckedAt: time.Now().UTC()}, report.Healthy())
	})
	r.GET("/health/live", func(c *gin.Context) {
		report := manager.EvaluateLiveness(c.Request.Context())
		writeHealthReport(c, healthPayload{Status: report.Status, Checks: report.Checks, CheckedAt: time.Now().UTC()}, report.Healthy())
	})
	r.GET("/health/ready", func(c *gin.Context) {
		report := manager.EvaluateReadiness(c.Request.Context())
		writeHealthReport(c, healthPayload{Status: report.Status, Checks: report.Checks, CheckedAt: time.Now().UTC()}, report.Healthy())
	})
}

func disabledHealthHandler(c *gin.Context) {
	response.Message(c, http.StatusNotFound, "health checks are disabled")
}

func writeHealthReport(c *gin.Context, payload healthPayload, healthy bool) {
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, payload)
}
