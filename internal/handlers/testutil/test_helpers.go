package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/orgdirectory/internal/api"
	"github.com/charlesng35/orgdirectory/internal/app"
	sharedtestutil "github.com/charlesng35/orgdirectory/internal/database/testutil"
	"github.com/charlesng35/orgdirectory/internal/models"
	"github.com/charlesng35/orgdirectory/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Config *app.Config
	Router *gin.Engine
}

// Option adjusts the configuration before the router is built.
type Option func(*app.Config)

// NewEnv provisions a fresh handler test environment with migrations applied.
func NewEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	router, err := api.NewRouter(db, cfg)
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Config: cfg,
		Router: router,
	}
}

// DefaultConfig mirrors the production defaults with a fixed faker seed.
func DefaultConfig() *app.Config {
	return &app.Config{
		Server: app.ServerConfig{Port: 8080, LogLevel: "info", GinMode: gin.TestMode},
		Database: app.DatabaseConfig{
			Driver: "sqlite",
		},
		Directory: app.DirectoryConfig{
			DefaultPageSize:  100,
			MaxPageSize:      1000,
			DefaultSeedCount: 1000,
			MaxSeedCount:     100000,
			SeedBatchSize:    500,
			FakerSeed:        2024,
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
}

// Request executes an HTTP request against the test router.
func (e *Env) Request(method, path string) *httptest.ResponseRecorder {
	e.T.Helper()

	req, err := http.NewRequest(method, path, nil)
	require.NoError(e.T, err)

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// InsertOrganizations stores orgs directly, bypassing the API.
func (e *Env) InsertOrganizations(orgs ...models.Organization) {
	e.T.Helper()
	require.NoError(e.T, e.DB.Create(&orgs).Error)
}

// PagePayload mirrors the list and search envelope with typed records.
type PagePayload struct {
	Data         []models.Organization `json:"Data"`
	TotalRecords int64                 `json:"TotalRecords"`
	TimeTaken    string                `json:"TimeTaken"`
}

// DecodePage parses a list or search response.
func DecodePage(t *testing.T, w *httptest.ResponseRecorder) PagePayload {
	t.Helper()
	var payload PagePayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), w.Body.String())
	return payload
}

// DecodeMessage parses a message or error response.
func DecodeMessage(t *testing.T, w *httptest.ResponseRecorder) response.MessageResponse {
	t.Helper()
	var payload response.MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload), w.Body.String())
	return payload
}
