package job

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/alerts"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/metrics"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/storage"
)

// Generator produces a report.
type Generator interface {
	Generate(ctx context.Context) (*model.Report, error)
}

// Deps are the collaborators of a Job. Archive and Metrics may be nil.
type Deps struct {
	Reporter  Generator
	Publisher *alerts.Publisher
	Archive   storage.Archive
	Metrics   *metrics.Recorder
	Logger    *slog.Logger
}

// Options modify a single run.
type Options struct {
	// DryRun generates the report without posting, archiving or recording it.
	DryRun bool
}

// Result is what a run produced.
type Result struct {
	Report     *model.Report     `json:"report"`
	Run        *model.Run        `json:"run,omitempty"`
	Deliveries []alerts.Delivery `json:"deliveries,omitempty"`
}

// Job runs the report pipeline: generate, publish, archive, record metrics.
// Concurrent calls to Run are serialised.
type Job struct {
	deps Deps
	now  func() time.Time
	mu   sync.Mutex
}

// New creates a job from its collaborators.
func New(deps Deps) *Job {
	return &Job{deps: deps, now: time.Now}
}

// WithClock replaces the job's time source.
func (j *Job) WithClock(now func() time.Time) *Job {
	j.now = now
	return j
}

// Run executes one reporting run. A billing failure aborts before anything
// is posted. A rejected webhook is logged by the publisher and does not fail
// the run.
func (j *Job) Run(ctx context.Context, opts Options) (*Result, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	started := j.now()
	logger := j.deps.Logger

	rep, err := j.deps.Reporter.Generate(ctx)
	if err != nil {
		if !opts.DryRun {
			j.deps.Metrics.RecordRun(err, j.now().Sub(started), j.now())
		}
		return nil, fmt.Errorf("generate report: %w", err)
	}

	res := &Result{Report: rep}
	if opts.DryRun {
		logger.Info("dry run, report not sent")
		return res, nil
	}

	deliveries, pubErr := j.deps.Publisher.Publish(ctx, rep)
	res.Deliveries = deliveries

	finished := j.now()
	res.Run = summarize(rep, deliveries, started, finished)

	if j.deps.Archive != nil {
		if err := j.deps.Archive.SaveRun(ctx, res.Run); err != nil {
			logger.Error("archive run failed", "error", err)
		}
	}

	j.deps.Metrics.RecordAccounts(rep.Rows)
	for _, d := range deliveries {
		status := "ok"
		if !d.OK {
			status = strconv.Itoa(d.Status)
		}
		j.deps.Metrics.RecordNotification(d.Notifier, string(d.Kind), status)
	}
	j.deps.Metrics.RecordRun(pubErr, finished.Sub(started), finished)

	if pubErr != nil {
		return res, fmt.Errorf("publish report: %w", pubErr)
	}

	logger.Info("run completed",
		"run_id", res.Run.ID,
		"notified", res.Run.Notified,
		"callout_sent", res.Run.CalloutSent,
		"duration", finished.Sub(started),
	)
	return res, nil
}

func summarize(rep *model.Report, deliveries []alerts.Delivery, started, finished time.Time) *model.Run {
	run := &model.Run{
		ID:        uuid.New().String(),
		Layout:    rep.Layout,
		Metric:    rep.Metric,
		Rows:      rep.Rows,
		StartedAt: started.UTC(),
		Duration:  finished.Sub(started).Seconds(),
	}
	for _, r := range rep.Rows {
		run.TotalMTD += r.MonthToDate
	}
	for _, d := range deliveries {
		if !d.OK {
			continue
		}
		switch d.Kind {
		case alerts.KindReport:
			run.Notified = true
		case alerts.KindCallout:
			run.CalloutSent = true
		}
	}
	return run
}
