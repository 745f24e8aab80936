// Package inventory lists the instances belonging to a fleet.
package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/config"
)

// Source lists the instances that belong to a fleet selector.
type Source interface {
	ListInstances(ctx context.Context, fleet string) ([]domain.InstanceObservation, error)
}

type ec2API interface {
	DescribeInstances(
		ctx context.Context,
		params *ec2.DescribeInstancesInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeInstancesOutput, error)
}

type ec2Source struct {
	client ec2API
	costs  config.CostTable
}

// NewEC2Source returns a Source backed by the EC2 API. Instances are selected
// by their Fleet tag and costed from the given rate table.
func NewEC2Source(cfg aws.Config, costs config.CostTable) Source {
	return &ec2Source{
		client: ec2.NewFromConfig(cfg),
		costs:  costs,
	}
}

func (s *ec2Source) ListInstances(ctx context.Context, fleet string) ([]domain.InstanceObservation, error) {
	logger := zerolog.Ctx(ctx)

	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("tag:Fleet"),
				Values: []string{fleet},
			},
		},
	}

	var observations []domain.InstanceObservation
	paginator := ec2.NewDescribeInstancesPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe fleet instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				observations = append(observations, s.toObservation(instance))
			}
		}
	}

	logger.Info().
		Str("fleet", fleet).
		Int("instance_count", len(observations)).
		Msg("retrieved fleet instances")
	return observations, nil
}

func (s *ec2Source) toObservation(instance types.Instance) domain.InstanceObservation {
	obs := domain.InstanceObservation{
		ID:            aws.ToString(instance.InstanceId),
		InstanceClass: string(instance.InstanceType),
		State:         lifecycleState(instance.State),
	}
	if instance.Placement != nil {
		obs.Zone = aws.ToString(instance.Placement.AvailabilityZone)
	}
	// Stopped capacity costs nothing in this model.
	if obs.State == domain.StateRunning {
		obs.HourlyCost = s.costs.HourlyRate(obs.InstanceClass)
	}
	return obs
}

func lifecycleState(state *types.InstanceState) domain.LifecycleState {
	if state == nil {
		return domain.StateUnknown
	}
	switch mapped := domain.LifecycleState(state.Name); mapped {
	case domain.StateRunning, domain.StateStopped, domain.StatePending,
		domain.StateStopping, domain.StateTerminated, domain.StateShuttingDown:
		return mapped
	default:
		return domain.StateUnknown
	}
}
