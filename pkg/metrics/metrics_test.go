package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/metrics"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]int {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]int, len(families))
	for _, f := range families {
		out[f.GetName()] = len(f.GetMetric())
	}
	return out
}

func TestRecorder_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg)

	finished := time.Date(2026, 10, 20, 14, 0, 5, 0, time.UTC)
	r.RecordRun(nil, 2*time.Second, finished)
	r.RecordRun(errors.New("boom"), time.Second, finished)
	r.RecordRun(nil, time.Second, finished)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		switch f.GetName() {
		case "spend_report_runs_total":
			for _, m := range f.GetMetric() {
				switch m.GetLabel()[0].GetValue() {
				case metrics.StatusSuccess:
					assert.Equal(t, 2.0, m.GetCounter().GetValue())
				case metrics.StatusFailure:
					assert.Equal(t, 1.0, m.GetCounter().GetValue())
				}
			}
		case "spend_report_run_duration_seconds":
			assert.Equal(t, uint64(3), f.GetMetric()[0].GetHistogram().GetSampleCount())
		case "spend_report_last_success_timestamp_seconds":
			assert.Equal(t, float64(finished.Unix()), f.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestRecorder_RecordAccountsReplacesPreviousRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg)

	r.RecordAccounts([]model.Row{
		{Account: model.Account{ID: "111"}, MonthToDate: 500},
		{Account: model.Account{ID: "222"}, MonthToDate: 30},
	})
	assert.Equal(t, 2, gather(t, reg)["spend_report_account_month_to_date_usd"])

	r.RecordAccounts([]model.Row{{Account: model.Account{ID: "111"}, MonthToDate: 520}})
	assert.Equal(t, 1, gather(t, reg)["spend_report_account_month_to_date_usd"])

	n, err := testutil.GatherAndCount(reg, "spend_report_account_month_to_date_usd")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorder_RecordNotification(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.NewRecorder(reg)

	r.RecordNotification("slack", "report", "ok")
	r.RecordNotification("slack", "report", "ok")
	r.RecordNotification("slack", "callout", "500")

	assert.Equal(t, 2, gather(t, reg)["spend_report_notifications_total"])
}

func TestRecorder_Nil(t *testing.T) {
	var r *metrics.Recorder
	assert.NotPanics(t, func() {
		r.RecordRun(nil, time.Second, time.Now())
		r.RecordAccounts([]model.Row{{Account: model.Account{ID: "111"}}})
		r.RecordNotification("slack", "report", "ok")
	})
}
