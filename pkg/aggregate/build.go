package aggregate

import (
	"fmt"
	"strings"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/format"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
)

// Section titles used by the split layout.
const (
	PersonalTitle = "Personal Accounts"
	OtherTitle    = "Other Accounts"
)

// Options controls how series become report sections.
type Options struct {
	Layout           model.Layout
	CostFloor        float64
	MaxEntries       int
	PersonalMarker   string
	CalloutThreshold float64
	Trend            bool
}

// DefaultOptions returns the split layout defaults.
func DefaultOptions() Options {
	return Options{
		Layout:           model.LayoutSplit,
		CostFloor:        20,
		MaxEntries:       15,
		PersonalMarker:   "personal-",
		CalloutThreshold: 400,
	}
}

// Build renders monthly and daily series into report sections. The returned
// report has no metric or timestamp; the caller fills those in.
func Build(monthly, daily []model.Series, opts Options) (*model.Report, error) {
	width := LabelWidth(monthly)
	yesterday := LatestByAccount(daily)

	report := &model.Report{Layout: opts.Layout}

	switch opts.Layout {
	case model.LayoutSplit, "":
		report.Layout = model.LayoutSplit
		personal, other := Partition(monthly, opts.PersonalMarker)
		personal, other = Rank(personal), Rank(other)

		for _, part := range []struct {
			title  string
			series []model.Series
		}{
			{PersonalTitle, personal},
			{OtherTitle, other},
		} {
			t := Table{Title: part.title, Width: width, Yesterday: yesterday, Policy: CostFloor(opts.CostFloor)}
			body, rows := t.Render(part.series)
			report.Sections = append(report.Sections, model.Section{Title: part.title, Body: body})
			report.Rows = append(report.Rows, rows...)
		}
		report.Callouts = Callouts(personal, opts.PersonalMarker, opts.CalloutThreshold)

	case model.LayoutRanked:
		t := Table{Width: width, Yesterday: yesterday, Policy: TopN(opts.MaxEntries)}
		body, rows := t.Render(Rank(monthly))
		report.Sections = []model.Section{{Body: body}}
		report.Rows = rows

	default:
		return nil, fmt.Errorf("unknown report layout %q", opts.Layout)
	}

	if opts.Trend {
		report.Trend = TrendLine(daily)
	}
	return report, nil
}

// Partition splits series into personal accounts, whose label contains the
// marker, and everything else. An empty marker matches nothing.
func Partition(series []model.Series, marker string) (personal, other []model.Series) {
	for _, s := range series {
		if marker != "" && strings.Contains(s.Account.Label(), marker) {
			personal = append(personal, s)
		} else {
			other = append(other, s)
		}
	}
	return personal, other
}

// Callouts returns the personal accounts whose month-to-date cost exceeds
// the threshold, in the order given.
func Callouts(personal []model.Series, marker string, threshold float64) []model.Callout {
	var out []model.Callout
	for _, s := range personal {
		if s.Latest() <= threshold {
			continue
		}
		out = append(out, model.Callout{
			Account:     s.Account,
			Mention:     MentionID(s.Account, marker),
			MonthToDate: s.Latest(),
		})
	}
	return out
}

// MentionID returns the chat user ID for an account: the directory mention if
// known, otherwise whatever follows the personal marker in the description.
func MentionID(acct model.Account, marker string) string {
	if acct.Mention != "" {
		return acct.Mention
	}
	if marker != "" {
		if i := strings.Index(acct.Description, marker); i >= 0 {
			return acct.Description[i+len(marker):]
		}
	}
	return acct.ID
}

// TrendLine renders total daily spend, oldest day first, as a sparkline with
// the day-over-day change.
func TrendLine(daily []model.Series) string {
	days := 0
	for _, s := range daily {
		days = max(days, len(s.Costs))
	}
	if days == 0 {
		return ""
	}

	totals := make([]float64, days)
	for _, s := range daily {
		for i, c := range s.Costs {
			totals[days-1-i] += c
		}
	}
	return fmt.Sprintf("Daily trend: %s (%+.1f%%)", format.Sparkline(totals), format.Delta(totals))
}
