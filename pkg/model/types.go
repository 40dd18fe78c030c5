package model

import "time"

// Account identifies a linked AWS account.
type Account struct {
	ID          string `json:"id" db:"account_id"`
	Description string `json:"description,omitempty" db:"description"`
	Mention     string `json:"mention,omitempty" db:"-"`
}

// Label returns the display name used in report rows.
func (a Account) Label() string {
	if a.Description == "" {
		return a.ID
	}
	return a.ID + " (" + a.Description + ")"
}

// Series holds an account's costs, one per period, most recent first.
type Series struct {
	Account Account   `json:"account"`
	Costs   []float64 `json:"costs"`
}

// Latest returns the most recent cost, or 0 when the series is empty.
func (s Series) Latest() float64 {
	return s.At(0)
}

// At returns the cost i periods back, or 0 when the series is shorter.
func (s Series) At(i int) float64 {
	if i < 0 || i >= len(s.Costs) {
		return 0
	}
	return s.Costs[i]
}

// Granularity is the bucketing interval of a cost query.
type Granularity string

const (
	GranularityMonthly Granularity = "MONTHLY"
	GranularityDaily   Granularity = "DAILY"
)

// Layout selects how accounts are grouped into report sections.
type Layout string

const (
	LayoutSplit  Layout = "split"  // personal and other sections, cost floor, callouts
	LayoutRanked Layout = "ranked" // single section, top-N rows
)

// Row is one account as it appears in a rendered report.
type Row struct {
	Account     Account `json:"account"`
	Section     string  `json:"section,omitempty"`
	MonthToDate float64 `json:"month_to_date"`
	Yesterday   float64 `json:"yesterday"`
	LastMonth   float64 `json:"last_month"`
	Listed      bool    `json:"listed"`
}

// Section is a titled, rendered cost table.
type Section struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

// Callout names an account owner whose spend crossed the callout threshold.
type Callout struct {
	Account     Account `json:"account"`
	Mention     string  `json:"mention"`
	MonthToDate float64 `json:"month_to_date"`
}

// Report is the output of one reporting run.
type Report struct {
	Layout      Layout    `json:"layout"`
	Metric      string    `json:"metric"`
	GeneratedAt time.Time `json:"generated_at"`
	Estimated   bool      `json:"estimated"`
	Sections    []Section `json:"sections"`
	Callouts    []Callout `json:"callouts,omitempty"`
	Trend       string    `json:"trend,omitempty"`
	Rows        []Row     `json:"rows"`
}

// Run is the archived summary of a reporting run.
type Run struct {
	ID          string    `json:"id" db:"id"`
	Layout      Layout    `json:"layout" db:"layout"`
	Metric      string    `json:"metric" db:"metric"`
	Notified    bool      `json:"notified" db:"notified"`
	CalloutSent bool      `json:"callout_sent" db:"callout_sent"`
	TotalMTD    float64   `json:"total_month_to_date" db:"total_mtd"`
	Rows        []Row     `json:"rows,omitempty" db:"-"`
	StartedAt   time.Time `json:"started_at" db:"started_at"`
	Duration    float64   `json:"duration_seconds" db:"duration_seconds"`
}

// QueryWindow returns the [start, end) dates of a query that looks back the
// given number of days and ends today.
func QueryWindow(now time.Time, lookbackDays int) (start, end time.Time) {
	end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = end.AddDate(0, 0, -lookbackDays)
	return start, end
}
