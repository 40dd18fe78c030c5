package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ogulcanaydogan/aws-spend-reporter/internal/config"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/aggregate"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/alerts"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/billing"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/directory"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/metrics"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/report"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// Components is a fully wired job plus the resources it holds open.
type Components struct {
	Job     *Job
	Archive storage.Archive
	Metrics *metrics.Recorder
}

// Close releases the archive, if one was opened.
func (c *Components) Close() error {
	if c.Archive == nil {
		return nil
	}
	return c.Archive.Close()
}

// Build wires a Job from config using the AWS Cost Explorer client. registry
// may be nil to skip metrics.
func Build(ctx context.Context, cfg *config.Config, registry prometheus.Registerer, logger *slog.Logger) (*Components, error) {
	client, err := billing.NewClient(ctx, cfg.AWS.Region, cfg.AWS.Profile, logger)
	if err != nil {
		return nil, err
	}
	return BuildWithQuerier(cfg, client, registry, logger)
}

// BuildWithQuerier wires a Job around an existing billing querier.
func BuildWithQuerier(cfg *config.Config, q billing.Querier, registry prometheus.Registerer, logger *slog.Logger) (*Components, error) {
	var dir *directory.Directory
	if cfg.Report.Directory != "" {
		d, err := directory.Load(cfg.Report.Directory)
		if err != nil {
			return nil, fmt.Errorf("load account directory: %w", err)
		}
		dir = d
		logger.Info("account directory loaded", "path", cfg.Report.Directory, "accounts", d.Len())
	}

	weekday, err := cfg.Report.Weekday()
	if err != nil {
		return nil, err
	}

	reporter := report.NewReporter(q, dir, ReportOptions(cfg.Report), logger)
	publisher := alerts.NewPublisher(Notifiers(cfg.Alerts), weekday, logger)

	c := &Components{}
	if cfg.Storage.Path != "" {
		archive, err := storage.NewSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open run archive: %w", err)
		}
		c.Archive = archive
	}
	if registry != nil {
		c.Metrics = metrics.NewRecorder(registry)
	}

	c.Job = New(Deps{
		Reporter:  reporter,
		Publisher: publisher,
		Archive:   c.Archive,
		Metrics:   c.Metrics,
		Logger:    logger,
	})
	return c, nil
}

// ReportOptions converts report config into reporter options.
func ReportOptions(cfg config.ReportConfig) report.Options {
	return report.Options{
		Metric:              cfg.Metric,
		MonthlyLookbackDays: cfg.MonthlyLookbackDays,
		DailyLookbackDays:   cfg.DailyLookbackDays,
		Aggregate: aggregate.Options{
			Layout:           model.Layout(cfg.Layout),
			CostFloor:        cfg.CostFloor,
			MaxEntries:       cfg.MaxEntries,
			PersonalMarker:   cfg.PersonalMarker,
			CalloutThreshold: cfg.CalloutThreshold,
			Trend:            cfg.Trend,
		},
	}
}

// Notifiers creates the configured notifiers. Without a webhook URL the
// report is computed but not sent.
func Notifiers(cfg config.AlertsConfig) []alerts.Notifier {
	var notifiers []alerts.Notifier

	if cfg.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(cfg.Slack.WebhookURL, cfg.Slack.Channel))
	}

	if cfg.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Secret))
	}

	return notifiers
}
