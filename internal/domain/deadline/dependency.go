package deadline

import (
	"context"

	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

// DependencyResolver determines whether a rule's prerequisite reports have
// been completed for a reporting period.
type DependencyResolver struct {
	repo    DeadlineRepository
	metrics MetricsRecorder
	logger  logging.Logger
}

// NewDependencyResolver creates a resolver over the deadline repository.
func NewDependencyResolver(repo DeadlineRepository, metrics MetricsRecorder, logger logging.Logger) *DependencyResolver {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DependencyResolver{
		repo:    repo,
		metrics: metrics,
		logger:  logger.Named("dependency-resolver"),
	}
}

// Resolve reports whether every prerequisite deadline ID has a COMPLETED
// record for the reporting period, plus the per-dependency breakdown.  An
// empty dependency list is trivially met.  All dependencies are read in one
// snapshot so the result is consistent.
func (r *DependencyResolver) Resolve(ctx context.Context, dependencyIDs []string, reportingPeriod string) (bool, map[string]bool, error) {
	if len(dependencyIDs) == 0 {
		return true, map[string]bool{}, nil
	}

	completed, err := r.repo.CompletedByDeadlineIDs(ctx, dependencyIDs, reportingPeriod)
	if err != nil {
		return false, nil, err
	}

	perDependency := make(map[string]bool, len(dependencyIDs))
	allMet := true
	for _, id := range dependencyIDs {
		met := completed[id]
		perDependency[id] = met
		if !met {
			allMet = false
		}
	}

	r.metrics.RecordDependencyResolution(len(dependencyIDs))
	if !allMet {
		r.logger.Debug("dependencies unmet",
			logging.String("reporting_period", reportingPeriod),
			logging.Int("dependency_count", len(dependencyIDs)),
		)
	}
	return allMet, perDependency, nil
}
