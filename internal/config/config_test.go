package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.Limits.CrossTab)
	assert.Equal(t, 15.0, cfg.Severity.Critical)
	assert.Equal(t, -10.0, cfg.Trend.Down)
	assert.Equal(t, []string{"Billing", "Cancellation", "Content", "Login", "Partner", "Payment", "Technical"}, cfg.ThemeNames())

	billing, ok := cfg.Theme("Billing")
	require.True(t, ok)
	assert.Equal(t, 3, billing.Keywords["double bill"])
	assert.Equal(t, 2, billing.Keywords["refund"])
}

func TestLoadAnalyticsOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analytics.yaml")
	body := `
trend:
  spike: 20
limits:
  crosstab: 10
themes:
  - name: Shipping
    keywords:
      late delivery: 3
      parcel: 1
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadAnalytics(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Trend.Spike)
	assert.Equal(t, 5.0, cfg.Trend.Up, "unset fields keep defaults")
	assert.Equal(t, 10, cfg.Limits.CrossTab)
	require.Len(t, cfg.Themes, 1)
	assert.Equal(t, "Shipping", cfg.Themes[0].Name)
	assert.Len(t, cfg.Columns.Positional, 6)
}

func TestLoadAnalyticsEmptyPath(t *testing.T) {
	cfg, err := LoadAnalytics("")
	require.NoError(t, err)
	assert.Equal(t, Default().Limits, cfg.Limits)
}

func TestLoadAnalyticsRejectsBadThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("severity:\n  critical: 1\n"), 0o644))

	_, err := LoadAnalytics(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "severity thresholds")
}

func TestLoadAnalyticsMissingFile(t *testing.T) {
	_, err := LoadAnalytics(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDACT_PII", "false")
	t.Setenv("FOLD_ACCENTS", "yes-please")
	t.Setenv("FETCH_TIMEOUT", "5s")

	svc := FromEnv()
	assert.Equal(t, "9090", svc.Port)
	assert.False(t, svc.RedactPII)
	assert.False(t, svc.FoldAccents, "unparseable bool falls back to default")
	assert.Equal(t, 5*time.Second, svc.FetchTimeout)
	assert.Empty(t, svc.CORSOrigins)
}

func TestFromEnvReloadBounds(t *testing.T) {
	t.Setenv("DATASET_PATH", "/srv/data/cases.csv")
	t.Setenv("DATASET_URL", "https://exports.example.com/cases.csv")
	t.Setenv("CORS_ORIGINS", "https://dash.example.com, ")

	svc := FromEnv()
	assert.Equal(t, "/srv/data", svc.DataDir)
	assert.Equal(t, []string{"exports.example.com"}, svc.ReloadHosts)
	assert.Equal(t, []string{"https://dash.example.com"}, svc.CORSOrigins)

	t.Setenv("DATA_DIR", "/var/cases")
	t.Setenv("RELOAD_HOSTS", "a.example.com,b.example.com")
	svc = FromEnv()
	assert.Equal(t, "/var/cases", svc.DataDir)
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, svc.ReloadHosts)
}
