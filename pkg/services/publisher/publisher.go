// Package publisher writes aggregated metric points to CloudWatch in
// bounded batches.
package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
)

// PutMetricData accepts at most this many datums per request.
const maxPointsPerBatch = 20

// SinkError reports a rejected batch write. Batches published before the
// failing one stand; the publish is at-least-once, not atomic.
type SinkError struct {
	BatchIndex int
	Code       string
	Message    string
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("metric batch %d rejected: %s - %s", e.BatchIndex, e.Code, e.Message)
}

type metricDataAPI interface {
	PutMetricData(
		ctx context.Context,
		params *cloudwatch.PutMetricDataInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.PutMetricDataOutput, error)
}

// Publisher batches metric points into sequential PutMetricData calls under
// a single namespace.
type Publisher struct {
	client    metricDataAPI
	namespace string
}

func New(cfg aws.Config, namespace string) *Publisher {
	return &Publisher{
		client:    cloudwatch.NewFromConfig(cfg),
		namespace: namespace,
	}
}

// Publish writes the points in batches of at most 20 and returns how many
// points were part of a successfully submitted batch. An empty input
// publishes nothing and makes no network call.
func (p *Publisher) Publish(ctx context.Context, points []domain.MetricPoint) (int, error) {
	logger := zerolog.Ctx(ctx)
	if len(points) == 0 {
		logger.Info().Msg("no metrics to publish")
		return 0, nil
	}

	batchCount := (len(points) + maxPointsPerBatch - 1) / maxPointsPerBatch
	logger.Info().
		Int("total_metrics", len(points)).
		Int("batch_count", batchCount).
		Str("namespace", p.namespace).
		Msg("publishing metrics")

	published := 0
	for batchIndex := 0; batchIndex*maxPointsPerBatch < len(points); batchIndex++ {
		offset := batchIndex * maxPointsPerBatch
		batch := points[offset:min(offset+maxPointsPerBatch, len(points))]

		_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(p.namespace),
			MetricData: toMetricData(batch),
		})
		if err != nil {
			sinkErr := asSinkError(batchIndex, err)
			logger.Error().
				Int("batch_index", batchIndex).
				Str("error_code", sinkErr.Code).
				Str("error_message", sinkErr.Message).
				Msg("failed to publish metric batch")
			return published, sinkErr
		}

		published += len(batch)
		logger.Debug().
			Int("batch_index", batchIndex).
			Int("batch_size", len(batch)).
			Msg("published metric batch")
	}

	logger.Info().Int("published_count", published).Msg("published all metrics")
	return published, nil
}

func toMetricData(points []domain.MetricPoint) []types.MetricDatum {
	data := make([]types.MetricDatum, len(points))
	for i, point := range points {
		dimensions := make([]types.Dimension, len(point.Dimensions))
		for j, dim := range point.Dimensions {
			dimensions[j] = types.Dimension{
				Name:  aws.String(dim.Name),
				Value: aws.String(dim.Value),
			}
		}
		data[i] = types.MetricDatum{
			MetricName: aws.String(point.Name),
			Value:      aws.Float64(point.Value),
			Unit:       types.StandardUnit(point.Unit),
			Dimensions: dimensions,
			Timestamp:  aws.Time(point.Timestamp),
		}
	}
	return data
}

func asSinkError(batchIndex int, err error) *SinkError {
	sinkErr := &SinkError{BatchIndex: batchIndex, Code: "Unknown", Message: err.Error()}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		sinkErr.Code = apiErr.ErrorCode()
		sinkErr.Message = apiErr.ErrorMessage()
	}
	return sinkErr
}
