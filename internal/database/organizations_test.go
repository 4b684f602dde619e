package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/orgdirectory/internal/models"
)

func newTestStore(t *testing.T) (*OrganizationStore, *gorm.DB) {
	t.Helper()

	db := openMigratedTestDB(t)
	store, err := NewOrganizationStore(db)
	require.NoError(t, err)
	return store, db
}

func seedOrganizations(t *testing.T, store *OrganizationStore, orgs ...models.Organization) []models.Organization {
	t.Helper()
	require.NoError(t, store.InsertBatch(context.Background(), orgs, 2))
	return orgs
}

func numberedOrganizations(n int) []models.Organization {
	orgs := make([]models.Organization, n)
	for i := range orgs {
		orgs[i] = models.Organization{
			Name:    fmt.Sprintf("Org %02d", i+1),
			Address: fmt.Sprintf("%d Main Street", i+1),
			Email:   fmt.Sprintf("info%d@example.com", i+1),
		}
	}
	return orgs
}

func TestNewOrganizationStoreRequiresDB(t *testing.T) {
	_, err := NewOrganizationStore(nil)
	require.Error(t, err)
}

func TestOrganizationStorePage(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	inserted := seedOrganizations(t, store, numberedOrganizations(25)...)
	for i := 1; i < len(inserted); i++ {
		require.Greater(t, inserted[i].ID, inserted[i-1].ID, "ids are assigned in insertion order")
	}

	page, total, err := store.Page(ctx, OrganizationFilter{}, 10, 10)
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Len(t, page, 10)
	require.Equal(t, "Org 11", page[0].Name)
	require.Equal(t, "Org 20", page[9].Name)

	last, total, err := store.Page(ctx, OrganizationFilter{}, 20, 10)
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.Len(t, last, 5)

	beyond, total, err := store.Page(ctx, OrganizationFilter{}, 100, 10)
	require.NoError(t, err)
	require.EqualValues(t, 25, total)
	require.NotNil(t, beyond)
	require.Empty(t, beyond)
}

func TestOrganizationStorePageIsStable(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	seedOrganizations(t, store, numberedOrganizations(12)...)

	first, firstTotal, err := store.Page(ctx, OrganizationFilter{}, 0, 10)
	require.NoError(t, err)
	second, secondTotal, err := store.Page(ctx, OrganizationFilter{}, 0, 10)
	require.NoError(t, err)

	require.Equal(t, firstTotal, secondTotal)
	require.Equal(t, first, second)
}

func TestOrganizationStoreSearchMatchesAnyTextColumn(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seedOrganizations(t, store,
		models.Organization{Name: "Acme Corp", Email: "hello@acme.test"},
		models.Organization{Name: "Globex", Website: "ACME-partners.example"},
		models.Organization{Name: "Initech", ContactPersonEmail: "peter@acme.example"},
		models.Organization{Name: "Umbrella", Address: "1 Raccoon City"},
		models.Organization{Name: "Hooli", ContactPerson: "Gavin"},
	)

	page, total, err := store.Page(ctx, OrganizationFilter{Query: "  aCmE "}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, page, 3)
	for _, org := range page {
		require.True(t, containsFold(org.TextFields(), "acme"), "unexpected match %+v", org)
	}

	page, total, err = store.Page(ctx, OrganizationFilter{Query: "acme"}, 0, 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, total, "total counts every match, not just the page")
	require.Len(t, page, 2)

	count, err := store.Count(ctx, OrganizationFilter{Query: "gavin"})
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	count, err = store.Count(ctx, OrganizationFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 5, count)
}

func TestOrganizationStoreSearchFoldsNonASCII(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	seedOrganizations(t, store,
		models.Organization{Name: "Ärzte Zentrum"},
		models.Organization{Name: "Toshkent Oʻqituvchilar", ContactPerson: "ŞUKUR Ёрматов"},
		models.Organization{Name: "Plain Industries"},
	)
	require.NoError(t, db.Exec("INSERT INTO organizations (name) VALUES (?)", "Sparse Row").Error)

	cases := []struct {
		query string
		want  string
	}{
		{query: "Ärzte", want: "Ärzte Zentrum"},
		{query: "ärzte", want: "Ärzte Zentrum"},
		{query: "ÄRZTE", want: "Ärzte Zentrum"},
		{query: "şukur", want: "Toshkent Oʻqituvchilar"},
		{query: "ёрматов", want: "Toshkent Oʻqituvchilar"},
		{query: "ЁРМАТОВ", want: "Toshkent Oʻqituvchilar"},
	}
	for _, tc := range cases {
		page, total, err := store.Page(ctx, OrganizationFilter{Query: tc.query}, 0, 10)
		require.NoError(t, err, "query %q", tc.query)
		require.EqualValues(t, 1, total, "query %q", tc.query)
		require.Len(t, page, 1)
		require.Equal(t, tc.want, page[0].Name)
		require.True(t, containsFold(page[0].TextFields(), strings.ToLower(tc.query)))
	}
}

func TestUnicodeLower(t *testing.T) {
	require.Equal(t, "ärzte ёрматов", unicodeLower("ÄRZTE ЁРМАТОВ"))
	require.Equal(t, int64(42), unicodeLower(int64(42)))
	require.Nil(t, unicodeLower(nil))
}

func TestOrganizationStoreSearchTreatsWildcardsLiterally(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seedOrganizations(t, store,
		models.Organization{Name: "100% Organic"},
		models.Organization{Name: "snake_case Ltd"},
		models.Organization{Name: "Bang! Media"},
		models.Organization{Name: "Plain Industries"},
	)

	cases := map[string]int64{
		"%":      1,
		"_":      1,
		"!":      1,
		"e_c":    1,
		"100%":   1,
		"ng! m":  1,
		"%plain": 0,
	}
	for query, expected := range cases {
		total, err := store.Count(ctx, OrganizationFilter{Query: query})
		require.NoError(t, err)
		require.Equal(t, expected, total, "query %q", query)
	}
}

func TestOrganizationStoreInsertBatchIsAtomic(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	seedOrganizations(t, store, models.Organization{ID: 7, Name: "Existing"})

	batch := numberedOrganizations(5)
	batch[4].ID = 7
	err := store.InsertBatch(ctx, batch, 2)
	require.Error(t, err)
	require.True(t, IsUniqueViolation(err))

	var total int64
	require.NoError(t, db.Model(&models.Organization{}).Count(&total).Error)
	require.EqualValues(t, 1, total, "failed batch must not persist any rows")
}

func TestOrganizationStoreInsertBatchEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.InsertBatch(context.Background(), nil, 0))

	total, err := store.Count(context.Background(), OrganizationFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestOrganizationStoreReadsNullColumnsAsEmpty(t *testing.T) {
	store, db := newTestStore(t)

	require.NoError(t, db.Exec("INSERT INTO organizations (name) VALUES (?)", "Sparse").Error)

	page, _, err := store.Page(context.Background(), OrganizationFilter{}, 0, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "Sparse", page[0].Name)
	require.Empty(t, page[0].Email)
	require.Empty(t, page[0].ContactPersonPhone)
}

func TestOrganizationStoreHonoursCancelledContext(t *testing.T) {
	db := openMigratedTestDB(t)
	store, err := NewOrganizationStore(db, WithCommandTimeout(time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = store.Page(ctx, OrganizationFilter{}, 0, 10)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, "plain", escapeLike("plain"))
	require.Equal(t, "50!%", escapeLike("50%"))
	require.Equal(t, "a!_b", escapeLike("a_b"))
	require.Equal(t, "wow!!", escapeLike("wow!"))
	require.Equal(t, "!!!%!_", escapeLike("!%_"))
}

func containsFold(values []string, needle string) bool {
	for _, value := range values {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}
