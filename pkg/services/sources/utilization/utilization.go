// Package utilization queries per-instance utilization samples from
// CloudWatch metric data.
package utilization

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/rs/zerolog"
)

// GetMetricData accepts at most this many queries per request.
const maxQueriesPerRequest = 500

const defaultPeriodSeconds = 300

// Source resolves the most recent sample of a named metric for a set of
// instances within the query window. Instances without data are simply
// absent from the result, never an error.
type Source interface {
	Query(
		ctx context.Context,
		ids []string,
		metricName, namespace string,
		window time.Duration,
	) (map[string]float64, error)
}

type metricDataAPI interface {
	GetMetricData(
		ctx context.Context,
		params *cloudwatch.GetMetricDataInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.GetMetricDataOutput, error)
}

type cloudWatchSource struct {
	client metricDataAPI
	period int32
	now    func() time.Time
}

// NewCloudWatchSource returns a Source backed by the CloudWatch
// GetMetricData API.
func NewCloudWatchSource(cfg aws.Config) Source {
	return &cloudWatchSource{
		client: cloudwatch.NewFromConfig(cfg),
		period: defaultPeriodSeconds,
		now:    time.Now,
	}
}

func (s *cloudWatchSource) Query(
	ctx context.Context,
	ids []string,
	metricName, namespace string,
	window time.Duration,
) (map[string]float64, error) {
	logger := zerolog.Ctx(ctx)
	results := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	end := s.now().UTC()
	start := end.Add(-window)

	for offset := 0; offset < len(ids); offset += maxQueriesPerRequest {
		// Cancellation: keep what was already gathered.
		if ctx.Err() != nil {
			return results, nil
		}

		limit := min(offset+maxQueriesPerRequest, len(ids))
		batch := ids[offset:limit]
		values, err := s.queryBatch(ctx, batch, metricName, namespace, start, end)
		if err != nil {
			logger.Warn().
				Err(err).
				Int("batch_start", offset).
				Str("metric_name", metricName).
				Msg("failed to query metric batch")
			continue
		}
		for id, value := range values {
			results[id] = value
		}
	}

	logger.Debug().
		Str("metric_name", metricName).
		Int("instance_count", len(ids)).
		Int("result_count", len(results)).
		Msg("retrieved metric data")
	return results, nil
}

// queryBatch issues one GetMetricData call per continuation page for up to
// maxQueriesPerRequest instances and keeps the most recent sample each.
func (s *cloudWatchSource) queryBatch(
	ctx context.Context,
	ids []string,
	metricName, namespace string,
	start, end time.Time,
) (map[string]float64, error) {
	queries := make([]types.MetricDataQuery, len(ids))
	for i, id := range ids {
		queries[i] = types.MetricDataQuery{
			Id: aws.String(fmt.Sprintf("m%d", i)),
			MetricStat: &types.MetricStat{
				Metric: &types.Metric{
					Namespace:  aws.String(namespace),
					MetricName: aws.String(metricName),
					Dimensions: []types.Dimension{
						{Name: aws.String("InstanceId"), Value: aws.String(id)},
					},
				},
				Period: aws.Int32(s.period),
				Stat:   aws.String("Average"),
			},
			ReturnData: aws.Bool(true),
		}
	}

	values := make(map[string]float64, len(ids))
	var nextToken *string
	for {
		out, err := s.client.GetMetricData(ctx, &cloudwatch.GetMetricDataInput{
			MetricDataQueries: queries,
			StartTime:         aws.Time(start),
			EndTime:           aws.Time(end),
			NextToken:         nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get metric data: %w", err)
		}

		for _, result := range out.MetricDataResults {
			id, ok := instanceForQuery(ids, aws.ToString(result.Id))
			if !ok {
				continue
			}
			if _, seen := values[id]; seen {
				// Values are ordered newest first; the first page wins.
				continue
			}
			if len(result.Values) > 0 {
				values[id] = result.Values[0]
			}
		}

		nextToken = out.NextToken
		if nextToken == nil {
			return values, nil
		}
	}
}

func instanceForQuery(ids []string, queryID string) (string, bool) {
	idx, err := strconv.Atoi(strings.TrimPrefix(queryID, "m"))
	if err != nil || idx < 0 || idx >= len(ids) {
		return "", false
	}
	return ids[idx], true
}
