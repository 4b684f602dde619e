package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/orgdirectory/internal/app"
	"github.com/charlesng35/orgdirectory/internal/cache"
	"github.com/charlesng35/orgdirectory/internal/database"
	"github.com/charlesng35/orgdirectory/internal/handlers"
	"github.com/charlesng35/orgdirectory/internal/middleware"
	"github.com/charlesng35/orgdirectory/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the directory,
// health and metrics routes.
func NewRouter(db *gorm.DB, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, errors.New("database handle must be provided")
	}
	if cfg == nil {
		return nil, errors.New("config must be provided")
	}

	store, err := database.NewOrganizationStore(db, database.WithCommandTimeout(cfg.Database.CommandTimeout))
	if err != nil {
		return nil, err
	}
	generator := services.NewFakeOrganizationGenerator(cfg.Directory.FakerSeed)
	directory, err := services.NewDirectoryService(store, generator, cfg.Directory.ServiceConfig())
	if err != nil {
		return nil, err
	}
	orgHandler, err := handlers.NewOrganizationHandler(directory)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	if cfg.Monitoring.Prometheus.Enabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowedOrigins))

	registerHealthRoutes(r, db, cfg)
	registerOrganizationRoutes(r.Group("/api"), orgHandler, seedLimiter(db, cfg.Server.RateLimit))

	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(cfg.Monitoring.Prometheus.Endpoint, gin.WrapH(promhttp.Handler()))
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

// seedLimiter throttles the seeding endpoint, the only route that writes.
func seedLimiter(db *gorm.DB, cfg app.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return middleware.RateLimit(nil, 0, 0)
	}

	var store middleware.RateStore
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "database":
		store = middleware.NewDatabaseRateStore(cache.NewDatabaseStore(db))
	default:
		store = middleware.NewMemoryRateStore()
	}
	return middleware.RateLimit(store, cfg.Requests, cfg.Window)
}
