// Package compliance resolves per-instance policy verdicts from SSM
// compliance items.
package compliance

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/rs/zerolog"

	"github.com/jconover/hyperion-fleet-manager/pkg/models/domain"
)

// Source maps instance identifiers to a compliance verdict. A lookup failure
// for one instance degrades that entry to unknown without aborting the rest.
type Source interface {
	Query(ctx context.Context, ids []string) (map[string]domain.ComplianceState, error)
}

type complianceAPI interface {
	ListComplianceItems(
		ctx context.Context,
		params *ssm.ListComplianceItemsInput,
		optFns ...func(*ssm.Options),
	) (*ssm.ListComplianceItemsOutput, error)
}

type ssmSource struct {
	client complianceAPI
}

// NewSSMSource returns a Source backed by SSM compliance items.
func NewSSMSource(cfg aws.Config) Source {
	return &ssmSource{client: ssm.NewFromConfig(cfg)}
}

func (s *ssmSource) Query(ctx context.Context, ids []string) (map[string]domain.ComplianceState, error) {
	logger := zerolog.Ctx(ctx)

	verdicts := make(map[string]domain.ComplianceState, len(ids))
	for _, id := range ids {
		verdicts[id] = domain.ComplianceUnknown
	}

	for _, id := range ids {
		// Cancellation: stop querying, keep what was gathered.
		if ctx.Err() != nil {
			return verdicts, nil
		}

		verdict, err := s.instanceVerdict(ctx, id)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("instance_id", id).
				Msg("failed to get compliance for instance")
			continue
		}
		verdicts[id] = verdict
	}

	logger.Debug().
		Int("instance_count", len(ids)).
		Msg("retrieved instance compliance")
	return verdicts, nil
}

// instanceVerdict merges all compliance findings for one instance. Any
// non-compliant finding decides the verdict and stops further paging;
// otherwise at least one compliant finding is required.
func (s *ssmSource) instanceVerdict(ctx context.Context, id string) (domain.ComplianceState, error) {
	verdict := domain.ComplianceUnknown

	paginator := ssm.NewListComplianceItemsPaginator(s.client, &ssm.ListComplianceItemsInput{
		ResourceIds:   []string{id},
		ResourceTypes: []string{"ManagedInstance"},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return domain.ComplianceUnknown, fmt.Errorf("failed to list compliance items: %w", err)
		}
		for _, item := range page.ComplianceItems {
			switch item.Status {
			case types.ComplianceStatusNonCompliant:
				return domain.ComplianceNonCompliant, nil
			case types.ComplianceStatusCompliant:
				verdict = domain.ComplianceCompliant
			}
		}
	}

	return verdict, nil
}
