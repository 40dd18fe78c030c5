package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/aggregate"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/billing"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/directory"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
)

// Options configures a Reporter.
type Options struct {
	Metric              string
	MonthlyLookbackDays int
	DailyLookbackDays   int
	Aggregate           aggregate.Options
}

// DefaultOptions returns a 70-day monthly and 7-day daily window over
// unblended cost.
func DefaultOptions() Options {
	return Options{
		Metric:              billing.DefaultMetric,
		MonthlyLookbackDays: 70,
		DailyLookbackDays:   7,
		Aggregate:           aggregate.DefaultOptions(),
	}
}

// Reporter queries monthly and daily spend and renders the report.
type Reporter struct {
	billing   billing.Querier
	directory *directory.Directory
	opts      Options
	now       func() time.Time
	logger    *slog.Logger
}

// NewReporter creates a reporter. dir may be nil.
func NewReporter(q billing.Querier, dir *directory.Directory, opts Options, logger *slog.Logger) *Reporter {
	if opts.Metric == "" {
		opts.Metric = billing.DefaultMetric
	}
	return &Reporter{
		billing:   q,
		directory: dir,
		opts:      opts,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the reporter's time source.
func (r *Reporter) WithClock(now func() time.Time) *Reporter {
	r.now = now
	return r
}

// Generate runs the monthly query, then the daily query, and builds the
// report. Any query or decode failure aborts the report.
func (r *Reporter) Generate(ctx context.Context) (*model.Report, error) {
	now := r.now()

	start, end := model.QueryWindow(now, r.opts.MonthlyLookbackDays)
	monthlyResp, err := r.billing.CostAndUsage(ctx, billing.NewQuery(start, end, model.GranularityMonthly, r.opts.Metric))
	if err != nil {
		return nil, fmt.Errorf("monthly costs: %w", err)
	}

	start, end = model.QueryWindow(now, r.opts.DailyLookbackDays)
	dailyResp, err := r.billing.CostAndUsage(ctx, billing.NewQuery(start, end, model.GranularityDaily, r.opts.Metric))
	if err != nil {
		return nil, fmt.Errorf("daily costs: %w", err)
	}

	monthly := aggregate.BuildSeries(monthlyResp, aggregate.MonthlyBuckets, r.directory)
	daily := aggregate.BuildSeries(dailyResp, 0, r.directory)

	rep, err := aggregate.Build(monthly, daily, r.opts.Aggregate)
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	rep.Metric = r.opts.Metric
	rep.GeneratedAt = now.UTC()
	rep.Estimated = monthlyResp.Estimated(aggregate.MonthlyBuckets) || dailyResp.Estimated(0)

	r.logger.Info("report generated",
		"layout", rep.Layout,
		"metric", rep.Metric,
		"accounts", len(monthly),
		"callouts", len(rep.Callouts),
		"estimated", rep.Estimated,
	)
	return rep, nil
}
