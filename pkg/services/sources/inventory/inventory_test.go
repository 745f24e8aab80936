package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
	"github.com/jconover/hyperion-fleet-manager/pkg/services/config"
)

type mockEC2API struct {
	mock.Mock
}

func (m *mockEC2API) DescribeInstances(
	ctx context.Context,
	params *ec2.DescribeInstancesInput,
	optFns ...func(*ec2.Options),
) (*ec2.DescribeInstancesOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ec2.DescribeInstancesOutput), args.Error(1)
}

func instance(id, class string, state types.InstanceStateName) types.Instance {
	return types.Instance{
		InstanceId:   aws.String(id),
		InstanceType: types.InstanceType(class),
		State:        &types.InstanceState{Name: state},
		Placement:    &types.Placement{AvailabilityZone: aws.String("us-east-1a")},
	}
}

func reservations(instances ...types.Instance) []types.Reservation {
	return []types.Reservation{{Instances: instances}}
}

func TestListInstances_FiltersByFleetTag(t *testing.T) {
	api := new(mockEC2API)
	var captured *ec2.DescribeInstancesInput
	api.On("DescribeInstances", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*ec2.DescribeInstancesInput)
		}).
		Return(&ec2.DescribeInstancesOutput{}, nil).Once()

	source := &ec2Source{client: api, costs: config.DefaultCostTable()}
	observations, err := source.ListInstances(context.Background(), "hyperion-fleet")

	require.NoError(t, err)
	assert.Empty(t, observations)
	require.NotNil(t, captured)
	require.Len(t, captured.Filters, 1)
	assert.Equal(t, "tag:Fleet", *captured.Filters[0].Name)
	assert.Equal(t, []string{"hyperion-fleet"}, captured.Filters[0].Values)
}

func TestListInstances_AggregatesAcrossPages(t *testing.T) {
	api := new(mockEC2API)
	api.On("DescribeInstances", mock.Anything, mock.MatchedBy(func(input *ec2.DescribeInstancesInput) bool {
		return input.NextToken == nil
	})).Return(&ec2.DescribeInstancesOutput{
		Reservations: reservations(instance("i-1", "t3.medium", types.InstanceStateNameRunning)),
		NextToken:    aws.String("page-2"),
	}, nil).Once()
	api.On("DescribeInstances", mock.Anything, mock.MatchedBy(func(input *ec2.DescribeInstancesInput) bool {
		return input.NextToken != nil && *input.NextToken == "page-2"
	})).Return(&ec2.DescribeInstancesOutput{
		Reservations: reservations(instance("i-2", "m5.large", types.InstanceStateNameStopped)),
	}, nil).Once()

	source := &ec2Source{client: api, costs: config.DefaultCostTable()}
	observations, err := source.ListInstances(context.Background(), "hyperion-fleet")

	require.NoError(t, err)
	require.Len(t, observations, 2)
	assert.Equal(t, "i-1", observations[0].ID)
	assert.Equal(t, "i-2", observations[1].ID)
	api.AssertExpectations(t)
}

func TestListInstances_APIErrorAbortsListing(t *testing.T) {
	api := new(mockEC2API)
	api.On("DescribeInstances", mock.Anything, mock.Anything).
		Return(nil, errors.New("request expired")).Once()

	source := &ec2Source{client: api, costs: config.DefaultCostTable()}
	observations, err := source.ListInstances(context.Background(), "hyperion-fleet")

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to describe fleet instances")
	assert.Nil(t, observations)
}

func TestToObservation_CostsRunningInstancesOnly(t *testing.T) {
	source := &ec2Source{costs: config.DefaultCostTable()}

	running := source.toObservation(instance("i-1", "t3.medium", types.InstanceStateNameRunning))
	assert.Equal(t, domain.StateRunning, running.State)
	assert.Equal(t, 0.0416, running.HourlyCost)
	assert.Equal(t, "us-east-1a", running.Zone)

	stopped := source.toObservation(instance("i-2", "t3.medium", types.InstanceStateNameStopped))
	assert.Equal(t, domain.StateStopped, stopped.State)
	assert.Zero(t, stopped.HourlyCost)
}

func TestToObservation_UnknownClassFallsBackToDefaultRate(t *testing.T) {
	source := &ec2Source{costs: config.DefaultCostTable()}

	obs := source.toObservation(instance("i-1", "x99.gigantic", types.InstanceStateNameRunning))
	assert.Equal(t, 0.10, obs.HourlyCost)
}

func TestLifecycleState_Mapping(t *testing.T) {
	cases := []struct {
		name     types.InstanceStateName
		expected domain.LifecycleState
	}{
		{types.InstanceStateNameRunning, domain.StateRunning},
		{types.InstanceStateNameStopped, domain.StateStopped},
		{types.InstanceStateNamePending, domain.StatePending},
		{types.InstanceStateNameStopping, domain.StateStopping},
		{types.InstanceStateNameTerminated, domain.StateTerminated},
		{types.InstanceStateNameShuttingDown, domain.StateShuttingDown},
		{types.InstanceStateName("rebooting-maybe"), domain.StateUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, lifecycleState(&types.InstanceState{Name: tc.name}))
	}
	assert.Equal(t, domain.StateUnknown, lifecycleState(nil))
}
