package aggregate

import (
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/billing"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/directory"
	"github.com/ogulcanaydogan/aws-spend-reporter/pkg/model"
)

// MonthlyBuckets is how many monthly buckets are kept; older ones only cover
// part of a month.
const MonthlyBuckets = 2

// BuildSeries turns a response into per-account series, most recent bucket
// first. At most keep buckets are read (keep <= 0 reads all of them). Every
// series has one entry per kept bucket, 0 where the account had no group.
// Series are returned in order of first appearance.
func BuildSeries(resp *billing.Response, keep int, dir *directory.Directory) []model.Series {
	if resp == nil {
		return nil
	}

	n := len(resp.Buckets)
	if keep > 0 && keep < n {
		n = keep
	}

	var series []model.Series
	index := make(map[string]int)

	for k := 0; k < n; k++ {
		b := resp.Buckets[len(resp.Buckets)-1-k]
		for _, g := range b.Groups {
			pos, ok := index[g.Key]
			if !ok {
				pos = len(series)
				index[g.Key] = pos
				series = append(series, model.Series{
					Account: resolveAccount(g.Key, resp, dir),
					Costs:   make([]float64, n),
				})
			}
			series[pos].Costs[k] += g.Amount.InexactFloat64()
		}
	}

	return series
}

func resolveAccount(id string, resp *billing.Response, dir *directory.Directory) model.Account {
	acct := model.Account{ID: id, Description: resp.Describe(id)}
	if e, ok := dir.Lookup(id); ok {
		if e.Description != "" {
			acct.Description = e.Description
		}
		acct.Mention = e.Mention
	}
	return acct
}

// LatestByAccount maps account IDs to the most recent cost of each series.
func LatestByAccount(series []model.Series) map[string]float64 {
	m := make(map[string]float64, len(series))
	for _, s := range series {
		m[s.Account.ID] = s.Latest()
	}
	return m
}
