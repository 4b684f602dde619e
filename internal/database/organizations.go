package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/orgdirectory/internal/models"
)

const (
	// DefaultCommandTimeout bounds a single storage call when none is configured.
	DefaultCommandTimeout = 180 * time.Second
	// DefaultInsertBatchSize is the number of rows per INSERT statement.
	DefaultInsertBatchSize = 500

	likeEscape = "!"
)

var searchColumns = []string{
	"name",
	"address",
	"phone_number",
	"email",
	"website",
	"contact_person",
	"contact_person_phone",
	"contact_person_email",
}

// OrganizationFilter narrows the rows returned by OrganizationStore.
type OrganizationFilter struct {
	// Query matches case-insensitively as a literal substring of any text column.
	Query string
}

// StoreOption customises an OrganizationStore.
type StoreOption func(*OrganizationStore)

// WithCommandTimeout overrides the per-call timeout. Zero disables it.
func WithCommandTimeout(timeout time.Duration) StoreOption {
	return func(s *OrganizationStore) {
		if timeout >= 0 {
			s.commandTimeout = timeout
		}
	}
}

// OrganizationStore reads and writes organizations through gorm.
type OrganizationStore struct {
	db             *gorm.DB
	commandTimeout time.Duration
}

// NewOrganizationStore constructs an OrganizationStore backed by db.
func NewOrganizationStore(db *gorm.DB, opts ...StoreOption) (*OrganizationStore, error) {
	if db == nil {
		return nil, errors.New("organization store: db is required")
	}

	store := &OrganizationStore{
		db:             db,
		commandTimeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Page returns up to limit organizations ordered by id starting at offset,
// together with the number of rows matching filter.
func (s *OrganizationStore) Page(ctx context.Context, filter OrganizationFilter, offset, limit int) ([]models.Organization, int64, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	query := s.filtered(ctx, filter)

	var total int64
	if err := query.Model(&models.Organization{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("organization store: count organizations: %w", err)
	}

	orgs := make([]models.Organization, 0)
	if limit <= 0 || int64(offset) >= total {
		return orgs, total, nil
	}

	if err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&orgs).Error; err != nil {
		return nil, 0, fmt.Errorf("organization store: list organizations: %w", err)
	}
	return orgs, total, nil
}

// Count returns the number of organizations matching filter.
func (s *OrganizationStore) Count(ctx context.Context, filter OrganizationFilter) (int64, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	var total int64
	if err := s.filtered(ctx, filter).Model(&models.Organization{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("organization store: count organizations: %w", err)
	}
	return total, nil
}

// InsertBatch persists orgs in a single transaction, batchSize rows per
// statement. Assigned ids are written back into orgs.
func (s *OrganizationStore) InsertBatch(ctx context.Context, orgs []models.Organization, batchSize int) error {
	if len(orgs) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = DefaultInsertBatchSize
	}

	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&orgs, batchSize).Error
	})
	if err != nil {
		return fmt.Errorf("organization store: insert organizations: %w", err)
	}
	return nil
}

// filtered returns a reusable session carrying the filter predicate.
func (s *OrganizationStore) filtered(ctx context.Context, filter OrganizationFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Organization{})

	term := strings.TrimSpace(filter.Query)
	if term != "" {
		// Both sides are folded by the database so they always agree.
		pattern := "%" + escapeLike(term) + "%"
		clauses := make([]string, 0, len(searchColumns))
		args := make([]any, 0, len(searchColumns))
		for _, column := range searchColumns {
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE LOWER(?) ESCAPE '%s'", column, likeEscape))
			args = append(args, pattern)
		}
		query = query.Where(strings.Join(clauses, " OR "), args...)
	}

	return query.Session(&gorm.Session{})
}

func (s *OrganizationStore) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.commandTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.commandTimeout)
}

// escapeLike makes LIKE wildcards in value match literally.
func escapeLike(value string) string {
	replacer := strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	)
	return replacer.Replace(value)
}
