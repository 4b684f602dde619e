package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/orgdirectory/internal/database"
	"github.com/charlesng35/orgdirectory/internal/models"
	"github.com/charlesng35/orgdirectory/pkg/logger"
	"github.com/charlesng35/orgdirectory/pkg/metrics"
)

const (
	DefaultPageNumber   = 1
	DefaultPageSize     = 100
	DefaultMaxPageSize  = 1000
	DefaultSeedCount    = 1000
	DefaultMaxSeedCount = 100000

	operationList   = "list"
	operationSearch = "search"
	operationSeed   = "seed"

	resultSuccess = "success"
	resultInvalid = "invalid"
	resultError   = "error"
)

var (
	// ErrEmptySearchQuery indicates a search was requested without any text to match.
	ErrEmptySearchQuery = errors.New("directory service: search query is required")
	// ErrInvalidPagination indicates a page number or page size below one.
	ErrInvalidPagination = errors.New("directory service: page number and page size must be at least 1")
	// ErrInvalidSeedCount indicates a negative or oversized seed request.
	ErrInvalidSeedCount = errors.New("directory service: seed count out of range")
)

// OrganizationStore is the storage contract the directory depends on.
type OrganizationStore interface {
	Page(ctx context.Context, filter database.OrganizationFilter, offset, limit int) ([]models.Organization, int64, error)
	InsertBatch(ctx context.Context, orgs []models.Organization, batchSize int) error
}

// DirectoryConfig bounds the work a single request may ask for.
type DirectoryConfig struct {
	DefaultPageSize  int
	MaxPageSize      int
	DefaultSeedCount int
	MaxSeedCount     int
	SeedBatchSize    int
}

func (c DirectoryConfig) withDefaults() DirectoryConfig {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = DefaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = DefaultMaxPageSize
	}
	if c.DefaultPageSize > c.MaxPageSize {
		c.DefaultPageSize = c.MaxPageSize
	}
	if c.DefaultSeedCount <= 0 {
		c.DefaultSeedCount = DefaultSeedCount
	}
	if c.MaxSeedCount <= 0 {
		c.MaxSeedCount = DefaultMaxSeedCount
	}
	if c.DefaultSeedCount > c.MaxSeedCount {
		c.DefaultSeedCount = c.MaxSeedCount
	}
	if c.SeedBatchSize <= 0 {
		c.SeedBatchSize = database.DefaultInsertBatchSize
	}
	return c
}

// PageResult is one page of organizations plus the size of the full result set.
type PageResult struct {
	Records      []models.Organization
	TotalRecords int64
	Elapsed      time.Duration
}

// SeedResult reports the outcome of a SeedRandom call.
type SeedResult struct {
	Inserted int
	Elapsed  time.Duration
}

// DirectoryService exposes listing, searching and seeding of organizations.
type DirectoryService struct {
	store     OrganizationStore
	generator OrganizationGenerator
	cfg       DirectoryConfig
}

// NewDirectoryService constructs a DirectoryService. A nil generator falls back
// to a randomly seeded FakeOrganizationGenerator.
func NewDirectoryService(store OrganizationStore, generator OrganizationGenerator, cfg DirectoryConfig) (*DirectoryService, error) {
	if store == nil {
		return nil, errors.New("directory service: store is required")
	}
	if generator == nil {
		generator = NewFakeOrganizationGenerator(0)
	}
	return &DirectoryService{
		store:     store,
		generator: generator,
		cfg:       cfg.withDefaults(),
	}, nil
}

// Config returns the effective limits, with defaults applied.
func (s *DirectoryService) Config() DirectoryConfig {
	return s.cfg
}

// List returns organizations ordered by id for the requested page.
func (s *DirectoryService) List(ctx context.Context, pageNumber, pageSize int) (PageResult, error) {
	return s.page(ctx, operationList, database.OrganizationFilter{}, pageNumber, pageSize)
}

// Search returns organizations whose text fields contain query, ignoring case.
func (s *DirectoryService) Search(ctx context.Context, query string, pageNumber, pageSize int) (PageResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		metrics.DirectoryOperations.WithLabelValues(operationSearch, resultInvalid).Inc()
		return PageResult{}, ErrEmptySearchQuery
	}
	return s.page(ctx, operationSearch, database.OrganizationFilter{Query: query}, pageNumber, pageSize)
}

// SeedRandom generates count synthetic organizations and stores them atomically.
// Elapsed is reported even when the insert fails.
func (s *DirectoryService) SeedRandom(ctx context.Context, count int) (SeedResult, error) {
	if count < 0 || count > s.cfg.MaxSeedCount {
		metrics.DirectoryOperations.WithLabelValues(operationSeed, resultInvalid).Inc()
		return SeedResult{}, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidSeedCount, count, s.cfg.MaxSeedCount)
	}

	start := time.Now()
	log := logger.WithModule("directory")

	orgs := s.generator.Generate(count)
	err := s.store.InsertBatch(ensureContext(ctx), orgs, s.cfg.SeedBatchSize)
	elapsed := time.Since(start)
	if err != nil {
		metrics.DirectoryOperations.WithLabelValues(operationSeed, resultError).Inc()
		log.Error("seed organizations failed",
			append(database.ErrorFields(err),
				zap.String("operation", operationSeed),
				zap.Int("count", count),
				zap.Duration("elapsed", elapsed),
			)...)
		return SeedResult{Elapsed: elapsed}, fmt.Errorf("directory service: seed organizations: %w", err)
	}

	metrics.DirectoryOperations.WithLabelValues(operationSeed, resultSuccess).Inc()
	metrics.SeededOrganizations.Add(float64(len(orgs)))
	log.Info("seeded organizations",
		zap.String("operation", operationSeed),
		zap.Int("inserted", len(orgs)),
		zap.Duration("elapsed", elapsed),
	)

	return SeedResult{Inserted: len(orgs), Elapsed: elapsed}, nil
}

func (s *DirectoryService) page(ctx context.Context, operation string, filter database.OrganizationFilter, pageNumber, pageSize int) (PageResult, error) {
	if pageNumber < 1 || pageSize < 1 {
		metrics.DirectoryOperations.WithLabelValues(operation, resultInvalid).Inc()
		return PageResult{}, ErrInvalidPagination
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	start := time.Now()
	log := logger.WithModule("directory")

	records, total, err := s.store.Page(ensureContext(ctx), filter, pageOffset(pageNumber, pageSize), pageSize)
	elapsed := time.Since(start)
	if err != nil {
		metrics.DirectoryOperations.WithLabelValues(operation, resultError).Inc()
		log.Error("query organizations failed",
			append(database.ErrorFields(err),
				zap.String("operation", operation),
				zap.Int("page_number", pageNumber),
				zap.Int("page_size", pageSize),
			)...)
		return PageResult{Elapsed: elapsed}, fmt.Errorf("directory service: %s organizations: %w", operation, err)
	}

	metrics.DirectoryOperations.WithLabelValues(operation, resultSuccess).Inc()
	log.Info("queried organizations",
		zap.String("operation", operation),
		zap.Int("page_number", pageNumber),
		zap.Int("page_size", pageSize),
		zap.Int("returned", len(records)),
		zap.Int64("total", total),
		zap.Duration("elapsed", elapsed),
	)

	return PageResult{
		Records:      records,
		TotalRecords: total,
		Elapsed:      elapsed,
	}, nil
}

// pageOffset saturates at math.MaxInt so huge page numbers yield an empty page.
func pageOffset(pageNumber, pageSize int) int {
	skip := pageNumber - 1
	if skip > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return skip * pageSize
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
