package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/orgdirectory/internal/cache"
	"github.com/charlesng35/orgdirectory/internal/database"
	"github.com/charlesng35/orgdirectory/pkg/logger"
	"github.com/charlesng35/orgdirectory/pkg/metrics"
)

const (
	defaultCounterSpec = "@hourly"
	defaultStatsSpec   = "@every 1m"

	jobCounters = "rate_counters"
	jobStats    = "organization_stats"
)

// OrganizationCounter reports how many organizations match a filter.
type OrganizationCounter interface {
	Count(ctx context.Context, filter database.OrganizationFilter) (int64, error)
}

// Cleaner runs periodic housekeeping: purging closed rate limit windows and
// refreshing the stored organization gauge.
type Cleaner struct {
	counters      cache.Store
	organizations OrganizationCounter
	cron          *cron.Cron
	now           func() time.Time
	log           *zap.Logger

	counterSchedule string
	statsSchedule   string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used when purging counters.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithCounterSchedule overrides the cron expression for counter purging.
func WithCounterSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.counterSchedule = spec
		}
	}
}

// WithStatsSchedule overrides the cron expression for the organization gauge.
func WithStatsSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.statsSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil dependency disables its job.
func NewCleaner(counters cache.Store, organizations OrganizationCounter, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		counters:        counters,
		organizations:   organizations,
		now:             time.Now,
		counterSchedule: defaultCounterSpec,
		statsSchedule:   defaultStatsSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers the enabled jobs and launches the scheduler.
func (c *Cleaner) Start() error {
	if c.counters == nil && c.organizations == nil {
		return nil
	}

	if c.counters != nil {
		if _, err := c.cron.AddFunc(c.counterSchedule, func() {
			_ = c.purgeCounters(context.Background())
		}); err != nil {
			return err
		}
	}

	if c.organizations != nil {
		if _, err := c.cron.AddFunc(c.statsSchedule, func() {
			_ = c.refreshStats(context.Background())
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (c *Cleaner) Stop() context.Context {
	if c == nil || c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes every enabled job sequentially.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.counters != nil {
		errs = multierr.Append(errs, c.purgeCounters(ctx))
	}
	if c.organizations != nil {
		errs = multierr.Append(errs, c.refreshStats(ctx))
	}
	return errs
}

func (c *Cleaner) purgeCounters(ctx context.Context) error {
	removed, err := c.counters.PurgeExpired(ctx, c.now())
	if err != nil {
		metrics.MaintenanceRuns.WithLabelValues(jobCounters, "error").Inc()
		c.log.Warn("rate counter cleanup failed", append(database.ErrorFields(err), zap.String("job", jobCounters))...)
		return err
	}

	metrics.MaintenanceRuns.WithLabelValues(jobCounters, "success").Inc()
	if removed > 0 {
		c.log.Debug("purged rate counters", zap.Int64("removed", removed))
	}
	return nil
}

func (c *Cleaner) refreshStats(ctx context.Context) error {
	total, err := c.organizations.Count(ctx, database.OrganizationFilter{})
	if err != nil {
		metrics.MaintenanceRuns.WithLabelValues(jobStats, "error").Inc()
		c.log.Warn("organization stats refresh failed", append(database.ErrorFields(err), zap.String("job", jobStats))...)
		return err
	}

	metrics.MaintenanceRuns.WithLabelValues(jobStats, "success").Inc()
	metrics.StoredOrganizations.Set(float64(total))
	return nil
}
