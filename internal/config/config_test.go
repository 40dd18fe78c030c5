package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ogulcanaydogan/aws-spend-reporter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "UnblendedCost", cfg.Report.Metric)
	assert.Equal(t, "split", cfg.Report.Layout)
	assert.Equal(t, 15, cfg.Report.MaxEntries)
	assert.Equal(t, 20.0, cfg.Report.CostFloor)
	assert.Equal(t, 400.0, cfg.Report.CalloutThreshold)
	assert.Equal(t, "personal-", cfg.Report.PersonalMarker)
	assert.Equal(t, 70, cfg.Report.MonthlyLookbackDays)
	assert.Equal(t, 7, cfg.Report.DailyLookbackDays)
	assert.False(t, cfg.Report.Trend)
	assert.Empty(t, cfg.Alerts.Slack.WebhookURL)
	assert.Equal(t, "us-east-1", cfg.AWS.Region)
	assert.Empty(t, cfg.Storage.Path)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "0 14 * * *", cfg.Server.Schedule)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	day, err := cfg.Report.Weekday()
	require.NoError(t, err)
	assert.Equal(t, time.Tuesday, day)
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("COST_AGGREGATION", "AmortizedCost")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/X")
	t.Setenv("LENGTH", "5")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "AmortizedCost", cfg.Report.Metric)
	assert.Equal(t, "https://hooks.slack.com/services/T/B/X", cfg.Alerts.Slack.WebhookURL)
	assert.Equal(t, 5, cfg.Report.MaxEntries)
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("COST_AGGREGATION", "AmortizedCost")
	t.Setenv("SPEND_REPORT_METRIC", "NetUnblendedCost")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "NetUnblendedCost", cfg.Report.Metric)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SPEND_LOGGING_LEVEL", "error")
	t.Setenv("SPEND_REPORT_LAYOUT", "ranked")
	t.Setenv("SPEND_SERVER_LISTEN", ":7070")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "ranked", cfg.Report.Layout)
	assert.Equal(t, ":7070", cfg.Server.Listen)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "spendreport.yaml")
	data := []byte(`
report:
  layout: ranked
  max_entries: 3
  callout_weekday: Fri
  trend: true
storage:
  path: /tmp/runs.db
alerts:
  webhook:
    url: https://example.com/hook
    secret: s3cret
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(cfgPath, data, 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "ranked", cfg.Report.Layout)
	assert.Equal(t, 3, cfg.Report.MaxEntries)
	assert.True(t, cfg.Report.Trend)
	assert.Equal(t, "/tmp/runs.db", cfg.Storage.Path)
	assert.Equal(t, "https://example.com/hook", cfg.Alerts.Webhook.URL)
	assert.Equal(t, "s3cret", cfg.Alerts.Webhook.Secret)
	assert.Equal(t, "debug", cfg.Logging.Level)

	day, err := cfg.Report.Weekday()
	require.NoError(t, err)
	assert.Equal(t, time.Friday, day)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("invalid: [yaml"), 0o644))

	_, err := config.Load(cfgPath)
	assert.Error(t, err)
}

func TestLoad_InvalidLength(t *testing.T) {
	t.Setenv("LENGTH", "many")

	_, err := config.Load("")
	assert.Error(t, err)
}

func TestLoad_InvalidLayout(t *testing.T) {
	t.Setenv("SPEND_REPORT_LAYOUT", "pie")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report.layout")
}

func TestReportConfig_Weekday(t *testing.T) {
	for name, want := range map[string]time.Weekday{
		"sunday":   time.Sunday,
		"Monday":   time.Monday,
		" wed ":    time.Wednesday,
		"SAT":      time.Saturday,
		"thursday": time.Thursday,
	} {
		got, err := config.ReportConfig{CalloutWeekday: name}.Weekday()
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := config.ReportConfig{CalloutWeekday: "someday"}.Weekday()
	assert.Error(t, err)
}
