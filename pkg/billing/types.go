package billing

import (
	"context"
	"time"

	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
	"github.com/shopspring/decimal"
)

// DefaultMetric is the cost metric used when none is configured.
const DefaultMetric = "UnblendedCost"

// DimensionLinkedAccount groups costs by member account.
const DimensionLinkedAccount = "LINKED_ACCOUNT"

// ExcludedRecordTypes are record types that are not spend.
var ExcludedRecordTypes = []string{"Credit", "Refund", "Upfront", "Support"}

// Query describes a grouped cost-and-usage range query.
type Query struct {
	Start       time.Time
	End         time.Time
	Granularity model.Granularity
	Metric      string
	GroupBy     string
	Exclude     []string
}

// NewQuery builds an account-grouped query that excludes non-spend records.
func NewQuery(start, end time.Time, granularity model.Granularity, metric string) Query {
	if metric == "" {
		metric = DefaultMetric
	}
	return Query{
		Start:       start,
		End:         end,
		Granularity: granularity,
		Metric:      metric,
		GroupBy:     DimensionLinkedAccount,
		Exclude:     ExcludedRecordTypes,
	}
}

// Group is one account's amount within a time bucket.
type Group struct {
	Key    string
	Amount decimal.Decimal
}

// Bucket is one aggregation period of a response.
type Bucket struct {
	Start     string
	End       string
	Estimated bool
	Groups    []Group
}

// Response is a decoded cost-and-usage result. Buckets are in chronological
// order.
type Response struct {
	Buckets    []Bucket
	Attributes map[string]map[string]string
}

// Estimated reports whether any of the last n buckets holds provisional
// amounts. n <= 0 checks every bucket.
func (r *Response) Estimated(n int) bool {
	if r == nil {
		return false
	}
	if n <= 0 || n > len(r.Buckets) {
		n = len(r.Buckets)
	}
	for _, b := range r.Buckets[len(r.Buckets)-n:] {
		if b.Estimated {
			return true
		}
	}
	return false
}

// Describe returns the description attribute for a dimension value.
func (r *Response) Describe(key string) string {
	if r == nil || r.Attributes == nil {
		return ""
	}
	return r.Attributes[key]["description"]
}

// Querier runs cost-and-usage queries.
type Querier interface {
	CostAndUsage(ctx context.Context, q Query) (*Response, error)
}
