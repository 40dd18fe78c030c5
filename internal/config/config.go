package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all spend reporter configuration.
type Config struct {
	Report  ReportConfig  `mapstructure:"report"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	AWS     AWSConfig     `mapstructure:"aws"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ReportConfig controls the billing queries and how the report is laid out.
type ReportConfig struct {
	Metric              string  `mapstructure:"metric"`
	Layout              string  `mapstructure:"layout"`
	MaxEntries          int     `mapstructure:"max_entries"`
	CostFloor           float64 `mapstructure:"cost_floor"`
	CalloutThreshold    float64 `mapstructure:"callout_threshold"`
	CalloutWeekday      string  `mapstructure:"callout_weekday"`
	PersonalMarker      string  `mapstructure:"personal_marker"`
	MonthlyLookbackDays int     `mapstructure:"monthly_lookback_days"`
	DailyLookbackDays   int     `mapstructure:"daily_lookback_days"`
	Trend               bool    `mapstructure:"trend"`
	Directory           string  `mapstructure:"directory"`
}

// AlertsConfig defines alerting integrations.
type AlertsConfig struct {
	Slack   SlackConfig   `mapstructure:"slack"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// SlackConfig defines Slack webhook settings. An empty URL disables Slack.
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

// WebhookConfig defines generic webhook settings. An empty URL disables it.
type WebhookConfig struct {
	URL    string `mapstructure:"url"`
	Secret string `mapstructure:"secret"`
}

// AWSConfig selects the credentials used for Cost Explorer.
type AWSConfig struct {
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
}

// StorageConfig defines the run archive. An empty path disables it.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig defines the long-running mode.
type ServerConfig struct {
	Listen   string `mapstructure:"listen"`
	Schedule string `mapstructure:"schedule"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Environment variables read without the SPEND_ prefix.
var legacyEnv = map[string]string{
	"report.metric":            "COST_AGGREGATION",
	"alerts.slack.webhook_url": "SLACK_WEBHOOK_URL",
	"report.max_entries":       "LENGTH",
}

// Load reads configuration from an optional file, a .env file in the working
// directory and environment variables, in increasing order of precedence.
func Load(cfgFile string) (*Config, error) {
	// A missing .env is normal; existing variables are never overwritten.
	_ = godotenv.Load()

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("spendreport")
		v.SetConfigType("yaml")
	}

	// Defaults
	v.SetDefault("report.metric", "UnblendedCost")
	v.SetDefault("report.layout", "split")
	v.SetDefault("report.max_entries", 15)
	v.SetDefault("report.cost_floor", 20.0)
	v.SetDefault("report.callout_threshold", 400.0)
	v.SetDefault("report.callout_weekday", "tuesday")
	v.SetDefault("report.personal_marker", "personal-")
	v.SetDefault("report.monthly_lookback_days", 70)
	v.SetDefault("report.daily_lookback_days", 7)
	v.SetDefault("report.trend", false)
	v.SetDefault("report.directory", "")
	v.SetDefault("alerts.slack.webhook_url", "")
	v.SetDefault("alerts.slack.channel", "")
	v.SetDefault("alerts.webhook.url", "")
	v.SetDefault("alerts.webhook.secret", "")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.profile", "")
	v.SetDefault("storage.path", "")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.schedule", "0 14 * * *")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")

	// Environment variables
	v.SetEnvPrefix("SPEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := "SPEND_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	var errs []error
	switch c.Report.Layout {
	case "split", "ranked":
	default:
		errs = append(errs, fmt.Errorf("report.layout must be split or ranked, got %q", c.Report.Layout))
	}
	if c.Report.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("report.max_entries must not be negative, got %d", c.Report.MaxEntries))
	}
	if c.Report.MonthlyLookbackDays <= 0 || c.Report.DailyLookbackDays <= 0 {
		errs = append(errs, errors.New("report lookback days must be positive"))
	}
	if _, err := c.Report.Weekday(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Weekday parses CalloutWeekday, e.g. "tuesday" or "Tue".
func (r ReportConfig) Weekday() (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(r.CalloutWeekday))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("report.callout_weekday: unknown weekday %q", r.CalloutWeekday)
}
