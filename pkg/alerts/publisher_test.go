package alerts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/aggregate"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/alerts"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tuesday   = time.Date(2026, 10, 20, 14, 0, 0, 0, time.UTC)
	wednesday = time.Date(2026, 10, 21, 14, 0, 0, 0, time.UTC)
)

type slackRecorder struct {
	mu    sync.Mutex
	texts []string
}

func (r *slackRecorder) handler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(req.Body).Decode(&payload)
		r.mu.Lock()
		r.texts = append(r.texts, payload.Text)
		r.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func expensiveReport(t *testing.T) *model.Report {
	t.Helper()
	monthly := []model.Series{
		{Account: model.Account{ID: "111", Description: "personal-alice"}, Costs: []float64{450, 300}},
		{Account: model.Account{ID: "222", Description: "Prod"}, Costs: []float64{900, 850}},
	}
	rep, err := aggregate.Build(monthly, nil, aggregate.DefaultOptions())
	require.NoError(t, err)
	return rep
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestPublisher_CalloutOnTuesday(t *testing.T) {
	rec := &slackRecorder{}
	server := httptest.NewServer(rec.handler(http.StatusOK, "ok"))
	defer server.Close()

	var logs bytes.Buffer
	p := alerts.NewPublisher(
		[]alerts.Notifier{alerts.NewSlackNotifier(server.URL, "")},
		time.Tuesday, testLogger(&logs),
	).WithClock(func() time.Time { return tuesday })

	deliveries, err := p.Publish(context.Background(), expensiveReport(t))
	require.NoError(t, err)

	require.Len(t, rec.texts, 2)
	assert.True(t, len(rec.texts[0]) > 8)
	assert.Equal(t, "```\n", rec.texts[0][:4])
	assert.Equal(t, "Expensive People: <@alice>", rec.texts[1])

	require.Len(t, deliveries, 2)
	assert.Equal(t, alerts.KindReport, deliveries[0].Kind)
	assert.Equal(t, alerts.KindCallout, deliveries[1].Kind)
	assert.True(t, deliveries[1].OK)
}

func TestPublisher_NoCalloutOnOtherDays(t *testing.T) {
	rec := &slackRecorder{}
	server := httptest.NewServer(rec.handler(http.StatusOK, "ok"))
	defer server.Close()

	var logs bytes.Buffer
	p := alerts.NewPublisher(
		[]alerts.Notifier{alerts.NewSlackNotifier(server.URL, "")},
		time.Tuesday, testLogger(&logs),
	).WithClock(func() time.Time { return wednesday })

	deliveries, err := p.Publish(context.Background(), expensiveReport(t))
	require.NoError(t, err)
	assert.Len(t, rec.texts, 1)
	assert.Len(t, deliveries, 1)
}

func TestPublisher_NoCalloutWithoutExpensiveAccounts(t *testing.T) {
	rec := &slackRecorder{}
	server := httptest.NewServer(rec.handler(http.StatusOK, "ok"))
	defer server.Close()

	var logs bytes.Buffer
	p := alerts.NewPublisher(
		[]alerts.Notifier{alerts.NewSlackNotifier(server.URL, "")},
		time.Tuesday, testLogger(&logs),
	).WithClock(func() time.Time { return tuesday })

	rep := &model.Report{Sections: []model.Section{{Body: "table"}}}
	_, err := p.Publish(context.Background(), rep)
	require.NoError(t, err)
	assert.Equal(t, []string{"```\ntable\n```"}, rec.texts)
}

func TestPublisher_Non200IsLoggedNotReturned(t *testing.T) {
	rec := &slackRecorder{}
	server := httptest.NewServer(rec.handler(http.StatusInternalServerError, "channel_is_archived"))
	defer server.Close()

	var logs bytes.Buffer
	p := alerts.NewPublisher(
		[]alerts.Notifier{alerts.NewSlackNotifier(server.URL, "")},
		time.Tuesday, testLogger(&logs),
	).WithClock(func() time.Time { return tuesday })

	deliveries, err := p.Publish(context.Background(), expensiveReport(t))
	require.NoError(t, err)

	// Both messages are still attempted.
	assert.Len(t, rec.texts, 2)
	require.Len(t, deliveries, 2)
	assert.False(t, deliveries[0].OK)
	assert.Equal(t, http.StatusInternalServerError, deliveries[0].Status)

	out := logs.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "HTTP 500: channel_is_archived")
}

func TestPublisher_TransportErrorIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	var logs bytes.Buffer
	p := alerts.NewPublisher(
		[]alerts.Notifier{alerts.NewSlackNotifier(url, "")},
		time.Tuesday, testLogger(&logs),
	)

	_, err := p.Publish(context.Background(), expensiveReport(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack report message")
}

func TestPublisher_NoNotifiers(t *testing.T) {
	var logs bytes.Buffer
	p := alerts.NewPublisher(nil, time.Tuesday, testLogger(&logs))
	assert.False(t, p.Enabled())

	deliveries, err := p.Publish(context.Background(), expensiveReport(t))
	require.NoError(t, err)
	assert.Nil(t, deliveries)
	assert.Contains(t, logs.String(), "no notifier configured")
}

func TestReportText(t *testing.T) {
	rep := &model.Report{
		Sections: []model.Section{
			{Title: "Personal Accounts", Body: "p-table"},
			{Title: "Other Accounts", Body: "o-table"},
		},
		Trend: "Daily trend: ▁▇ (+10.0%)",
	}
	want := "```\nPersonal Accounts\n\np-table\n\nOther Accounts\n\no-table\n\nDaily trend: ▁▇ (+10.0%)\n```"
	assert.Equal(t, want, alerts.ReportText(rep))

	untitled := &model.Report{Sections: []model.Section{{Body: "ranked"}}}
	assert.Equal(t, "```\nranked\n```", alerts.ReportText(untitled))
}

func TestCalloutText(t *testing.T) {
	text := alerts.CalloutText([]model.Callout{{Mention: "alice"}, {Mention: "U123"}})
	assert.Equal(t, "Expensive People: <@alice> <@U123>", text)
}
