package report_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/billing"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	responses map[model.Granularity]*billing.Response
	errs      map[model.Granularity]error
	queries   []billing.Query
}

func (f *fakeQuerier) CostAndUsage(_ context.Context, q billing.Query) (*billing.Response, error) {
	f.queries = append(f.queries, q)
	if err := f.errs[q.Granularity]; err != nil {
		return nil, err
	}
	return f.responses[q.Granularity], nil
}

func grp(key string, amount float64) billing.Group {
	return billing.Group{Key: key, Amount: decimal.NewFromFloat(amount)}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFake() *fakeQuerier {
	attrs := map[string]map[string]string{
		"111": {"description": "Prod"},
		"222": {"description": "Dev"},
	}
	return &fakeQuerier{
		responses: map[model.Granularity]*billing.Response{
			model.GranularityMonthly: {
				Buckets: []billing.Bucket{
					{Start: "2026-08-11", Groups: []billing.Group{grp("111", 7)}},
					{Start: "2026-09-01", Groups: []billing.Group{grp("111", 480), grp("222", 40)}},
					{Start: "2026-10-01", Groups: []billing.Group{grp("111", 500), grp("222", 50)}},
				},
				Attributes: attrs,
			},
			model.GranularityDaily: {
				Buckets: []billing.Bucket{
					{Start: "2026-10-18", Groups: []billing.Group{grp("111", 19)}},
					{Start: "2026-10-19", Groups: []billing.Group{grp("111", 20), grp("222", 2)}},
				},
				Attributes: attrs,
			},
		},
	}
}

var fixedNow = time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)

func TestReporter_Generate_Queries(t *testing.T) {
	fake := newFake()
	r := report.NewReporter(fake, nil, report.DefaultOptions(), testLogger()).
		WithClock(func() time.Time { return fixedNow })

	_, err := r.Generate(context.Background())
	require.NoError(t, err)

	require.Len(t, fake.queries, 2)
	monthly, daily := fake.queries[0], fake.queries[1]

	assert.Equal(t, model.GranularityMonthly, monthly.Granularity)
	assert.Equal(t, time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC), monthly.Start)
	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), monthly.End)

	assert.Equal(t, model.GranularityDaily, daily.Granularity)
	assert.Equal(t, time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC), daily.Start)
	assert.Equal(t, monthly.End, daily.End)

	for _, q := range fake.queries {
		assert.Equal(t, "UnblendedCost", q.Metric)
		assert.Equal(t, billing.DimensionLinkedAccount, q.GroupBy)
		assert.Equal(t, []string{"Credit", "Refund", "Upfront", "Support"}, q.Exclude)
	}
}

func TestReporter_Generate_Ranked(t *testing.T) {
	opts := report.DefaultOptions()
	opts.Metric = "AmortizedCost"
	opts.Aggregate.Layout = model.LayoutRanked
	opts.Aggregate.MaxEntries = 1

	fake := newFake()
	r := report.NewReporter(fake, nil, opts, testLogger()).
		WithClock(func() time.Time { return fixedNow })

	rep, err := r.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "AmortizedCost", rep.Metric)
	assert.Equal(t, fixedNow, rep.GeneratedAt)
	require.Len(t, rep.Sections, 1)
	assert.Equal(t,
		"AWS Accounts | Month-to-date | yesterday | Last month\n"+
			"111 (Prod) |       500.00$ |    20.00$ | 480.00$\n"+
			"Other      |        50.00$ |           | 40.00$\n",
		rep.Sections[0].Body,
	)
	assert.Equal(t, "AmortizedCost", fake.queries[0].Metric)
}

func TestReporter_Generate_MonthlyError(t *testing.T) {
	fake := newFake()
	fake.errs = map[model.Granularity]error{model.GranularityMonthly: errors.New("throttled")}
	r := report.NewReporter(fake, nil, report.DefaultOptions(), testLogger())

	_, err := r.Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monthly costs")
	assert.Len(t, fake.queries, 1)
}

func TestReporter_Generate_DailyDecodeError(t *testing.T) {
	fake := newFake()
	decodeErr := &billing.DecodeError{Bucket: 0, Group: 0, Field: "Keys"}
	fake.errs = map[model.Granularity]error{model.GranularityDaily: decodeErr}
	r := report.NewReporter(fake, nil, report.DefaultOptions(), testLogger())

	_, err := r.Generate(context.Background())
	var target *billing.DecodeError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "Keys", target.Field)
}

func TestReporter_Generate_Estimated(t *testing.T) {
	fake := newFake()
	r := report.NewReporter(fake, nil, report.DefaultOptions(), testLogger()).
		WithClock(func() time.Time { return fixedNow })

	rep, err := r.Generate(context.Background())
	require.NoError(t, err)
	assert.False(t, rep.Estimated)

	fake.responses[model.GranularityMonthly].Buckets[2].Estimated = true
	rep, err = r.Generate(context.Background())
	require.NoError(t, err)
	assert.True(t, rep.Estimated)
}

func TestReporter_Generate_EstimatedIgnoresDroppedMonths(t *testing.T) {
	fake := newFake()
	fake.responses[model.GranularityMonthly].Buckets[0].Estimated = true
	r := report.NewReporter(fake, nil, report.DefaultOptions(), testLogger()).
		WithClock(func() time.Time { return fixedNow })

	rep, err := r.Generate(context.Background())
	require.NoError(t, err)
	assert.False(t, rep.Estimated)
}
