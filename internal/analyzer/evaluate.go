package analyzer

import (
	"github.com/ludo-technologies/qadash/domain"
)

// Evaluate finalizes a repository snapshot: it records the ignored file counts
// of the policy, computes the gate verdict and the remarks, and freezes the
// builder.
func Evaluate(builder *domain.SnapshotBuilder, policy domain.Policy) (*domain.RepositoryQualitySnapshot, error) {
	builder.WithIgnored(policy.IgnoredCounts(builder.Repository()))
	if err := builder.Err(); err != nil {
		return nil, err
	}

	metrics := builder.Metrics()
	return builder.Finalize(ComputeStatus(metrics, policy), Remarks(metrics, policy))
}
