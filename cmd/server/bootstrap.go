package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/orgdirectory/internal/api"
	"github.com/charlesng35/orgdirectory/internal/app"
	"github.com/charlesng35/orgdirectory/internal/app/maintenance"
	"github.com/charlesng35/orgdirectory/internal/cache"
	"github.com/charlesng35/orgdirectory/internal/database"
	"github.com/charlesng35/orgdirectory/pkg/logger"
)

const defaultShutdownTimeout = 15 * time.Second

// runtimeStack bundles the long-lived resources behind the HTTP server.
type runtimeStack struct {
	DB      *gorm.DB
	Router  *gin.Engine
	Server  *http.Server
	Cleaner *maintenance.Cleaner
}

// bootstrapRuntime opens the database, migrates the schema and builds the router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	success := false

	defer func() {
		if !success {
			if err := stack.Shutdown(context.Background()); err != nil {
				log.Warn("bootstrap cleanup failed", zap.Error(err))
			}
		}
	}()

	gin.SetMode(ginMode(cfg.Server.GinMode))

	var err error
	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Router, err = api.NewRouter(stack.DB, cfg)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	stack.Cleaner, err = startMaintenance(stack.DB, cfg)
	if err != nil {
		return nil, fmt.Errorf("start maintenance: %w", err)
	}

	stack.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           stack.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	success = true
	return stack, nil
}

// Shutdown stops the HTTP server and releases the database, reporting every failure.
func (s *runtimeStack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Cleaner != nil {
		select {
		case <-s.Cleaner.Stop().Done():
		case <-ctx.Done():
			errs = multierr.Append(errs, fmt.Errorf("stop maintenance: %w", ctx.Err()))
		}
		s.Cleaner = nil
	}
	if s.Server != nil {
		if err := s.Server.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
			errs = multierr.Append(errs, fmt.Errorf("graceful shutdown: %w", err))
		}
	}
	if s.DB != nil {
		errs = multierr.Append(errs, closeDatabase(s.DB))
		s.DB = nil
	}
	return errs
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Prepare(db); err != nil {
		return nil, multierr.Append(fmt.Errorf("prepare database: %w", err), closeDatabase(db))
	}

	logger.WithModule("database").Info("database connected",
		zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))),
		zap.Duration("command_timeout", cfg.Database.CommandTimeout),
	)

	return db, nil
}

// startMaintenance schedules background jobs. Rate counters are only purged
// when they live in the database.
func startMaintenance(db *gorm.DB, cfg *app.Config) (*maintenance.Cleaner, error) {
	if !cfg.Maintenance.Enabled {
		return nil, nil
	}

	orgs, err := database.NewOrganizationStore(db, database.WithCommandTimeout(cfg.Database.CommandTimeout))
	if err != nil {
		return nil, err
	}

	var counters cache.Store
	if cfg.Server.RateLimit.Enabled && strings.EqualFold(strings.TrimSpace(cfg.Server.RateLimit.Store), "database") {
		counters = cache.NewDatabaseStore(db)
	}

	cleaner := maintenance.NewCleaner(counters, orgs,
		maintenance.WithCounterSchedule(cfg.Maintenance.CounterSchedule),
		maintenance.WithStatsSchedule(cfg.Maintenance.StatsSchedule),
	)
	if err := cleaner.Start(); err != nil {
		return nil, err
	}
	return cleaner, nil
}

func closeDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("obtain sql db: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func ginMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case gin.DebugMode:
		return gin.DebugMode
	case gin.TestMode:
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}
