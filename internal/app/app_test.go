package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/accountd/accountd/internal/observability"
	"github.com/accountd/accountd/internal/platform/db"
	"github.com/accountd/accountd/internal/platform/password"
	"github.com/accountd/accountd/internal/platform/token"
	"github.com/accountd/accountd/internal/users"
	"github.com/accountd/accountd/jobs"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("ACTIVATION_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "sqlite")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	assert.Equal(t, NotifierLog, cfg.Notifier)
	assert.Equal(t, "10m0s", cfg.ActivationTTL.String())
	assert.Equal(t, 900000, cfg.ActivationCodeSpan)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 5, cfg.WorkerConcurrency)
	assert.Equal(t, ":9091", cfg.WorkerMetricsAddr)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("ACTIVATION_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	base := Config{
		ActivationSecret:   "s",
		StoreDriver:        StoreDriverPostgres,
		Notifier:           NotifierQueue,
		ActivationTTL:      1,
		ActivationCodeSpan: 1,
	}
	require.NoError(t, base.Validate())

	widest := base
	widest.ActivationCodeSpan = 900000
	require.NoError(t, widest.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.StoreDriver = "mysql" }},
		{name: "unknown notifier", mutate: func(c *Config) { c.Notifier = "sms" }},
		{name: "zero ttl", mutate: func(c *Config) { c.ActivationTTL = 0 }},
		{name: "zero span", mutate: func(c *Config) { c.ActivationCodeSpan = 0 }},
		{name: "span beyond six digits", mutate: func(c *Config) { c.ActivationCodeSpan = 900001 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&Config{LogFormat: "json"}, &buf).Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	buf.Reset()
	newLogger(&Config{LogFormat: "pretty"}, &buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	bunDB, err := db.NewSQLite(t.Context(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunDB.Close() })

	store := users.NewBunStore(bunDB)
	require.NoError(t, store.Migrate(t.Context()))

	svc := users.NewService(store, password.NewBcrypt(), token.NewHMACSigner("accountd"), nil,
		users.Config{ActivationSecret: "s3cret", HashCost: bcrypt.MinCost}, nil)

	cfg := &Config{AppEnv: "development"}
	return NewRouter(RouterParams{
		Config:       cfg,
		UsersHandler: users.NewHandler(nil, svc),
		JobHandler:   jobs.NewHandler(nil, nil),
		Metrics:      observability.NewMetrics(),
	})
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())
	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
}

func TestRouterRegistrationFlow(t *testing.T) {
	router := newTestRouter(t)

	body := `{"name":"Ada","email":"ada@example.com","password":"analytical-engine","phone_number":12015550123}`
	req := httptest.NewRequest(http.MethodPost, "/users/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `[]`, res.Body.String())

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `route="/users/register"`)
}

func TestOpenStoreSQLite(t *testing.T) {
	store, err := OpenStore(t.Context(), &Config{StoreDriver: StoreDriverSQLite, SQLiteDSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(store.Close)

	list, err := store.ListAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore(t.Context(), &Config{StoreDriver: "mysql"})
	assert.Error(t, err)
}
