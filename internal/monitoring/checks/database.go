package checks

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/orgdirectory/internal/models"
	"github.com/charlesng35/orgdirectory/internal/monitoring"
)

// Database returns a readiness probe that pings the configured database handle.
func Database(db *gorm.DB) monitoring.Check {
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if db == nil {
			return monitoring.ResultFromError(errors.New("database not configured"), time.Since(start))
		}

		sqlDB, err := db.DB()
		if err != nil {
			return monitoring.ResultFromError(err, time.Since(start))
		}
		return monitoring.ResultFromError(sqlDB.PingContext(ctx), time.Since(start))
	})
}

// OrganizationsTable returns a readiness probe that fails until the schema is migrated.
func OrganizationsTable(db *gorm.DB) monitoring.Check {
	return monitoring.NewCheck("organizations_table", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if db == nil {
			return monitoring.ResultFromError(errors.New("database not configured"), time.Since(start))
		}
		if !db.WithContext(ctx).Migrator().HasTable(&models.Organization{}) {
			return monitoring.ResultFromError(errors.New("organizations table missing"), time.Since(start))
		}
		return monitoring.ResultFromError(nil, time.Since(start))
	})
}
