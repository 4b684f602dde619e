package checks_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/orgdirectory/internal/database/testutil"
	"github.com/charlesng35/orgdirectory/internal/monitoring"
	"github.com/charlesng35/orgdirectory/internal/monitoring/checks"
)

func TestDatabaseCheck(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	result := checks.Database(db).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	result = checks.Database(db).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
	require.NotEmpty(t, result.Details)

	result = checks.Database(nil).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
}

func TestOrganizationsTableCheck(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	result := checks.OrganizationsTable(db).Run(context.Background())
	require.Equal(t, monitoring.StatusDown, result.Status)
	require.Equal(t, "organizations table missing", result.Details)

	migrated := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	result = checks.OrganizationsTable(migrated).Run(context.Background())
	require.Equal(t, monitoring.StatusUp, result.Status)
}
