package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
)

type mockComplianceAPI struct {
	mock.Mock
}

func (m *mockComplianceAPI) ListComplianceItems(
	ctx context.Context,
	params *ssm.ListComplianceItemsInput,
	optFns ...func(*ssm.Options),
) (*ssm.ListComplianceItemsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ssm.ListComplianceItemsOutput), args.Error(1)
}

func forInstance(id string) interface{} {
	return mock.MatchedBy(func(input *ssm.ListComplianceItemsInput) bool {
		return len(input.ResourceIds) == 1 && input.ResourceIds[0] == id
	})
}

func items(statuses ...types.ComplianceStatus) []types.ComplianceItem {
	out := make([]types.ComplianceItem, len(statuses))
	for i, status := range statuses {
		out[i] = types.ComplianceItem{Status: status}
	}
	return out
}

func TestQuery_NoFindingsMeansUnknown(t *testing.T) {
	api := new(mockComplianceAPI)
	api.On("ListComplianceItems", mock.Anything, forInstance("i-1")).
		Return(&ssm.ListComplianceItemsOutput{}, nil).Once()

	source := &ssmSource{client: api}
	verdicts, err := source.Query(context.Background(), []string{"i-1"})

	require.NoError(t, err)
	assert.Equal(t, map[string]domain.ComplianceState{"i-1": domain.ComplianceUnknown}, verdicts)
	api.AssertExpectations(t)
}

func TestQuery_CompliantWhenAllFindingsPass(t *testing.T) {
	api := new(mockComplianceAPI)
	api.On("ListComplianceItems", mock.Anything, forInstance("i-1")).
		Return(&ssm.ListComplianceItemsOutput{
			ComplianceItems: items(types.ComplianceStatusCompliant, types.ComplianceStatusCompliant),
		}, nil).Once()

	source := &ssmSource{client: api}
	verdicts, err := source.Query(context.Background(), []string{"i-1"})

	require.NoError(t, err)
	assert.Equal(t, domain.ComplianceCompliant, verdicts["i-1"])
}

func TestQuery_AnyNonCompliantFindingWins(t *testing.T) {
	orderings := [][]types.ComplianceStatus{
		{types.ComplianceStatusNonCompliant, types.ComplianceStatusCompliant},
		{types.ComplianceStatusCompliant, types.ComplianceStatusNonCompliant},
	}
	for _, statuses := range orderings {
		api := new(mockComplianceAPI)
		api.On("ListComplianceItems", mock.Anything, forInstance("i-1")).
			Return(&ssm.ListComplianceItemsOutput{ComplianceItems: items(statuses...)}, nil).Once()

		source := &ssmSource{client: api}
		verdicts, err := source.Query(context.Background(), []string{"i-1"})

		require.NoError(t, err)
		assert.Equal(t, domain.ComplianceNonCompliant, verdicts["i-1"])
	}
}

func TestQuery_NonCompliantShortCircuitsPaging(t *testing.T) {
	api := new(mockComplianceAPI)
	api.On("ListComplianceItems", mock.Anything, forInstance("i-1")).
		Return(&ssm.ListComplianceItemsOutput{
			ComplianceItems: items(types.ComplianceStatusNonCompliant),
			NextToken:       aws.String("page-2"),
		}, nil).Once()

	source := &ssmSource{client: api}
	verdicts, err := source.Query(context.Background(), []string{"i-1"})

	require.NoError(t, err)
	assert.Equal(t, domain.ComplianceNonCompliant, verdicts["i-1"])
	// The remaining page is never fetched once a failing finding is seen.
	api.AssertNumberOfCalls(t, "ListComplianceItems", 1)
}

func TestQuery_CompliantVerdictSurvivesPaging(t *testing.T) {
	api := new(mockComplianceAPI)
	api.On("ListComplianceItems", mock.Anything, mock.MatchedBy(func(input *ssm.ListComplianceItemsInput) bool {
		return input.NextToken == nil
	})).Return(&ssm.ListComplianceItemsOutput{
		ComplianceItems: items(types.ComplianceStatusCompliant),
		NextToken:       aws.String("page-2"),
	}, nil).Once()
	api.On("ListComplianceItems", mock.Anything, mock.MatchedBy(func(input *ssm.ListComplianceItemsInput) bool {
		return input.NextToken != nil && *input.NextToken == "page-2"
	})).Return(&ssm.ListComplianceItemsOutput{}, nil).Once()

	source := &ssmSource{client: api}
	verdicts, err := source.Query(context.Background(), []string{"i-1"})

	require.NoError(t, err)
	assert.Equal(t, domain.ComplianceCompliant, verdicts["i-1"])
	api.AssertExpectations(t)
}

func TestQuery_LookupFailureDegradesToUnknown(t *testing.T) {
	api := new(mockComplianceAPI)
	api.On("ListComplianceItems", mock.Anything, forInstance("i-1")).
		Return(nil, errors.New("access denied")).Once()
	api.On("ListComplianceItems", mock.Anything, forInstance("i-2")).
		Return(&ssm.ListComplianceItemsOutput{
			ComplianceItems: items(types.ComplianceStatusCompliant),
		}, nil).Once()

	source := &ssmSource{client: api}
	verdicts, err := source.Query(context.Background(), []string{"i-1", "i-2"})

	require.NoError(t, err)
	assert.Equal(t, domain.ComplianceUnknown, verdicts["i-1"])
	assert.Equal(t, domain.ComplianceCompliant, verdicts["i-2"])
}

func TestQuery_CancelledContextReturnsUnknownVerdicts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := new(mockComplianceAPI)
	source := &ssmSource{client: api}
	verdicts, err := source.Query(ctx, []string{"i-1", "i-2"})

	require.NoError(t, err)
	assert.Equal(t, map[string]domain.ComplianceState{
		"i-1": domain.ComplianceUnknown,
		"i-2": domain.ComplianceUnknown,
	}, verdicts)
	api.AssertNotCalled(t, "ListComplianceItems", mock.Anything, mock.Anything)
}
