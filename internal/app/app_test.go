package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbpkg "github.com/yungbote/researchtrack-backend/internal/data/db"
	"github.com/yungbote/researchtrack-backend/internal/observability"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return log
}

func TestWiringServesExtractWithoutKey(t *testing.T) {
	log := testLogger(t)
	cfg := defaultConfig()
	cfg.DBDriver = dbpkg.DriverSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "app.sqlite")

	store, err := OpenStore(log, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	metrics := observability.New(prometheus.NewRegistry())
	clients, err := wireClients(log, cfg)
	require.NoError(t, err)
	reposet := wireRepos(store.DB(), log)
	router := wireRouter(log, cfg, wireHandlers(log, store.DB(), wireServices(store.DB(), log, clients, reposet, metrics)), metrics)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// No credential: the request fails generically and nothing is stored.
	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{"message":"PhD at MIT","userId":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to process message","code":"extract_failed","success":false}`, rec.Body.String())

	n, err := reposet.Program.CountByUser(t.Context(), nil, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
