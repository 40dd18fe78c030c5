package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// CostExplorerAPI is the subset of the Cost Explorer client used here.
type CostExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// Client queries AWS Cost Explorer.
type Client struct {
	ce     CostExplorerAPI
	logger *slog.Logger
}

// NewClient creates a client from the default AWS credential chain.
func NewClient(ctx context.Context, region, profile string, logger *slog.Logger) (*Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewClientWithAPI(costexplorer.NewFromConfig(cfg), logger), nil
}

// NewClientWithAPI creates a client over a custom API implementation.
func NewClientWithAPI(api CostExplorerAPI, logger *slog.Logger) *Client {
	return &Client{ce: api, logger: logger}
}

// CostAndUsage runs q, following pagination, and decodes the merged result.
func (c *Client) CostAndUsage(ctx context.Context, q Query) (*Response, error) {
	input := buildInput(q)

	var pages []*costexplorer.GetCostAndUsageOutput
	for {
		out, err := c.ce.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("get cost and usage (%s): %w", q.Granularity, err)
		}
		pages = append(pages, out)

		if out.NextPageToken == nil || *out.NextPageToken == "" {
			break
		}
		input.NextPageToken = out.NextPageToken
	}

	resp, err := Decode(q.Metric, pages...)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("cost query complete",
		"granularity", q.Granularity,
		"start", q.Start.Format(dateLayout),
		"end", q.End.Format(dateLayout),
		"pages", len(pages),
		"buckets", len(resp.Buckets),
	)
	return resp, nil
}

func buildInput(q Query) *costexplorer.GetCostAndUsageInput {
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(q.Start.Format(dateLayout)),
			End:   aws.String(q.End.Format(dateLayout)),
		},
		Granularity: types.Granularity(q.Granularity),
		Metrics:     []string{q.Metric},
		GroupBy: []types.GroupDefinition{
			{Type: types.GroupDefinitionTypeDimension, Key: aws.String(q.GroupBy)},
		},
	}
	if len(q.Exclude) > 0 {
		input.Filter = &types.Expression{
			Not: &types.Expression{
				Dimensions: &types.DimensionValues{
					Key:    types.DimensionRecordType,
					Values: q.Exclude,
				},
			},
		}
	}
	return input
}

// Decode converts one or more response pages into a Response. Pages that
// repeat a time period have their groups merged into the same bucket.
func Decode(metric string, pages ...*costexplorer.GetCostAndUsageOutput) (*Response, error) {
	resp := &Response{Attributes: make(map[string]map[string]string)}
	index := make(map[string]int)

	for p, page := range pages {
		if page == nil {
			continue
		}
		for _, result := range page.ResultsByTime {
			if result.TimePeriod == nil || result.TimePeriod.Start == nil {
				return nil, &DecodeError{Page: p, Bucket: -1, Group: -1, Field: "TimePeriod.Start"}
			}
			start := aws.ToString(result.TimePeriod.Start)

			pos, ok := index[start]
			if ok {
				resp.Buckets[pos].Estimated = resp.Buckets[pos].Estimated || result.Estimated
			} else {
				pos = len(resp.Buckets)
				index[start] = pos
				resp.Buckets = append(resp.Buckets, Bucket{
					Start:     start,
					End:       aws.ToString(result.TimePeriod.End),
					Estimated: result.Estimated,
				})
			}

			for j, group := range result.Groups {
				g, err := decodeGroup(metric, group)
				if err != nil {
					err.Page, err.Bucket, err.Group = p, pos, j
					return nil, err
				}
				resp.Buckets[pos].Groups = append(resp.Buckets[pos].Groups, g)
			}
		}

		for _, dv := range page.DimensionValueAttributes {
			if dv.Value == nil {
				continue
			}
			resp.Attributes[*dv.Value] = dv.Attributes
		}
	}

	return resp, nil
}

func decodeGroup(metric string, group types.Group) (Group, *DecodeError) {
	if len(group.Keys) == 0 {
		return Group{}, &DecodeError{Field: "Keys"}
	}
	mv, ok := group.Metrics[metric]
	if !ok {
		return Group{}, &DecodeError{Field: "Metrics." + metric}
	}
	if mv.Amount == nil {
		return Group{}, &DecodeError{Field: "Metrics." + metric + ".Amount"}
	}
	amount, err := decimal.NewFromString(*mv.Amount)
	if err != nil {
		return Group{}, &DecodeError{Field: "Metrics." + metric + ".Amount", Err: err}
	}
	return Group{Key: group.Keys[0], Amount: amount}, nil
}
