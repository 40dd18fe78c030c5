package metrics

import (
	"time"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "spend_report"

// Run outcomes used as the status label of runs_total.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Recorder tracks reporting runs, account spend and notification outcomes.
// A nil *Recorder is valid and records nothing.
//
// Metrics:
//   - spend_report_runs_total: runs by outcome
//   - spend_report_run_duration_seconds: wall time of a run
//   - spend_report_last_success_timestamp_seconds: unix time of the last good run
//   - spend_report_account_month_to_date_usd: month-to-date cost per account
//   - spend_report_notifications_total: messages by notifier, kind and outcome
type Recorder struct {
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	lastSuccess   prometheus.Gauge
	accountMTD    *prometheus.GaugeVec
	notifications *prometheus.CounterVec
}

// NewRecorder creates and registers the collectors with the registry.
func NewRecorder(registry prometheus.Registerer) *Recorder {
	r := &Recorder{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Reporting runs by outcome",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of a reporting run in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful run",
			},
		),
		accountMTD: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "account_month_to_date_usd",
				Help:      "Month-to-date cost per linked account from the last run",
			},
			[]string{"account"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Messages posted by notifier, kind and outcome",
			},
			[]string{"notifier", "kind", "status"},
		),
	}

	registry.MustRegister(
		r.runsTotal,
		r.runDuration,
		r.lastSuccess,
		r.accountMTD,
		r.notifications,
	)
	return r
}

// RecordRun records the outcome and duration of a run.
func (r *Recorder) RecordRun(err error, duration time.Duration, finished time.Time) {
	if r == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(duration.Seconds())
	if err == nil {
		r.lastSuccess.Set(float64(finished.Unix()))
	}
}

// RecordAccounts replaces the per-account gauges with the rows of a report.
func (r *Recorder) RecordAccounts(rows []model.Row) {
	if r == nil {
		return
	}
	r.accountMTD.Reset()
	for _, row := range rows {
		r.accountMTD.WithLabelValues(row.Account.ID).Set(row.MonthToDate)
	}
}

// RecordNotification counts one posted message. status is "ok" or the HTTP
// status code the endpoint answered with.
func (r *Recorder) RecordNotification(notifier, kind, status string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(notifier, kind, status).Inc()
}
