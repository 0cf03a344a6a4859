package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromYAML(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage:
  url: "postgres://user:pass@db:5432/quickmarket"
  max_open_conns: 40
http_server:
  address: ":8080"
  timeout: 5s
jwttoken:
  secret_key: "yaml-secret"
  token_ttl: 24h
order_window:
  days: [4, 5, 6]
paystack:
  secret_key: "sk_test_123"
`)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://user:pass@db:5432/quickmarket", cfg.Storage.URL)
	assert.Equal(t, 40, cfg.Storage.MaxOpenConns)
	assert.Equal(t, 5, cfg.Storage.MaxIdleConns, "default must apply")
	assert.Equal(t, ":8080", cfg.HTTPServer.Address)
	assert.Equal(t, 5*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, "yaml-secret", cfg.JWTToken.SecretKey)
	assert.Equal(t, 24*time.Hour, cfg.JWTToken.TokenTTL)
	assert.Equal(t, []int{4, 5, 6}, cfg.OrderWindow.Days)
	assert.Equal(t, "https://api.paystack.co", cfg.Paystack.BaseURL)
	assert.Equal(t, "NGN", cfg.Paystack.Currency)
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "env-secret", cfg.JWTToken.SecretKey)
	assert.Equal(t, 168*time.Hour, cfg.JWTToken.TokenTTL)
	assert.Equal(t, []int{0, 1, 2}, cfg.OrderWindow.Days)
	assert.Equal(t, 30*time.Second, cfg.Storage.ConnMaxIdleTime)
	assert.Equal(t, 2*time.Second, cfg.Storage.ConnectTimeout)
	assert.Equal(t, time.Local, cfg.OrderWindowLocation())
	assert.Equal(t, ":50051", cfg.Probe.GRPCAddress)
	assert.Equal(t, 10*time.Second, cfg.Probe.Interval)
}

func TestLoad_EnvOverridesOrderWindow(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("ORDER_WINDOW_DAYS", "1,3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, cfg.OrderWindow.Days)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{
			name: "missing config file",
			setup: func(t *testing.T) {
				t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
			},
		},
		{
			name: "missing jwt secret",
			setup: func(t *testing.T) {
				t.Setenv("CONFIG_PATH", "")
				t.Setenv("JWT_SECRET", "")
				require.NoError(t, os.Unsetenv("JWT_SECRET"))
			},
		},
		{
			name: "order window day out of range",
			setup: func(t *testing.T) {
				t.Setenv("CONFIG_PATH", "")
				t.Setenv("JWT_SECRET", "s")
				t.Setenv("ORDER_WINDOW_DAYS", "0,7")
			},
		},
		{
			name: "unknown timezone",
			setup: func(t *testing.T) {
				t.Setenv("CONFIG_PATH", "")
				t.Setenv("JWT_SECRET", "s")
				t.Setenv("ORDER_WINDOW_TZ", "Mars/Olympus")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
