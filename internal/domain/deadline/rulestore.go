package deadline

import (
	"context"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

// RuleStore resolves the applicable rule for a calculation via an ordered
// chain of lookup strategies.  The chain currently tries the exact
// jurisdiction first and falls back to the EU-wide default; further tiers
// slot in as additional strategies.
type RuleStore struct {
	repo       RuleRepository
	strategies []lookupStrategy
	logger     logging.Logger
}

// lookupStrategy rewrites the lookup jurisdiction for one fallback tier, or
// returns false when the tier does not apply.
type lookupStrategy func(j calendar.Jurisdiction) (calendar.Jurisdiction, bool)

func exactJurisdiction(j calendar.Jurisdiction) (calendar.Jurisdiction, bool) {
	return j, true
}

func euFallback(j calendar.Jurisdiction) (calendar.Jurisdiction, bool) {
	if j == calendar.JurisdictionEU {
		return "", false // already tried by the exact tier
	}
	return calendar.JurisdictionEU, true
}

// NewRuleStore creates a RuleStore over the given repository.
func NewRuleStore(repo RuleRepository, logger logging.Logger) *RuleStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RuleStore{
		repo:       repo,
		strategies: []lookupStrategy{exactJurisdiction, euFallback},
		logger:     logger.Named("rule-store"),
	}
}

// GetRule resolves the applicable active rule, trying each fallback tier in
// order.  It returns (nil, nil) when no tier matches; the caller decides
// whether that is a configuration error.
func (s *RuleStore) GetRule(ctx context.Context, reportType string, jurisdiction calendar.Jurisdiction, frequency Frequency) (*RegulatoryDeadlineRule, error) {
	for _, strategy := range s.strategies {
		j, ok := strategy(jurisdiction)
		if !ok {
			continue
		}
		rule, err := s.repo.FindRule(ctx, reportType, j, frequency)
		if err != nil {
			return nil, err
		}
		if rule != nil {
			if j != jurisdiction {
				s.logger.Debug("rule resolved via jurisdiction fallback",
					logging.String("report_type", reportType),
					logging.String("requested", string(jurisdiction)),
					logging.String("resolved", string(j)),
				)
			}
			return rule, nil
		}
	}
	return nil, nil
}

// SeedDefaultsIfEmpty seeds the default rule set into an empty store.
func (s *RuleStore) SeedDefaultsIfEmpty(ctx context.Context) (int, error) {
	n, err := s.repo.SeedDefaultsIfEmpty(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("seeded default deadline rules", logging.Int("count", n))
	}
	return n, nil
}

// LoadActiveRules exposes the underlying listing for the ops surface.
func (s *RuleStore) LoadActiveRules(ctx context.Context) ([]*RegulatoryDeadlineRule, error) {
	return s.repo.LoadActiveRules(ctx)
}

// UpsertRule validates and stores a rule.
func (s *RuleStore) UpsertRule(ctx context.Context, rule *RegulatoryDeadlineRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	return s.repo.UpsertRule(ctx, rule)
}

// DeactivateRule soft-deletes a rule.
func (s *RuleStore) DeactivateRule(ctx context.Context, deadlineID string) error {
	return s.repo.DeactivateRule(ctx, deadlineID)
}
