package deadline

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
)

type mockRuleRepo struct {
	mock.Mock
}

func (m *mockRuleRepo) LoadActiveRules(ctx context.Context) ([]*RegulatoryDeadlineRule, error) {
	args := m.Called(ctx)
	rules, _ := args.Get(0).([]*RegulatoryDeadlineRule)
	return rules, args.Error(1)
}

func (m *mockRuleRepo) FindRule(ctx context.Context, reportType string, jurisdiction calendar.Jurisdiction, frequency Frequency) (*RegulatoryDeadlineRule, error) {
	args := m.Called(ctx, reportType, jurisdiction, frequency)
	rule, _ := args.Get(0).(*RegulatoryDeadlineRule)
	return rule, args.Error(1)
}

func (m *mockRuleRepo) UpsertRule(ctx context.Context, rule *RegulatoryDeadlineRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *mockRuleRepo) DeactivateRule(ctx context.Context, deadlineID string) error {
	return m.Called(ctx, deadlineID).Error(0)
}

func (m *mockRuleRepo) SeedDefaultsIfEmpty(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockDeadlineRepo struct {
	mock.Mock
}

func (m *mockDeadlineRepo) Insert(ctx context.Context, d *CalculatedDeadline) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDeadlineRepo) GetByCalculationID(ctx context.Context, calculationID string) (*CalculatedDeadline, error) {
	args := m.Called(ctx, calculationID)
	record, _ := args.Get(0).(*CalculatedDeadline)
	return record, args.Error(1)
}

func (m *mockDeadlineRepo) ListUpcoming(ctx context.Context, asOf time.Time, daysAhead int, filter ListFilter) ([]*CalculatedDeadline, error) {
	args := m.Called(ctx, asOf, daysAhead, filter)
	records, _ := args.Get(0).([]*CalculatedDeadline)
	return records, args.Error(1)
}

func (m *mockDeadlineRepo) ListOverdue(ctx context.Context, asOf time.Time, filter ListFilter) ([]*CalculatedDeadline, error) {
	args := m.Called(ctx, asOf, filter)
	records, _ := args.Get(0).([]*CalculatedDeadline)
	return records, args.Error(1)
}

func (m *mockDeadlineRepo) UpdateStatus(ctx context.Context, calculationID string, status Status, daysRemaining, businessDaysRemaining int) (bool, error) {
	args := m.Called(ctx, calculationID, status, daysRemaining, businessDaysRemaining)
	return args.Bool(0), args.Error(1)
}

func (m *mockDeadlineRepo) RecordAlert(ctx context.Context, calculationID string, threshold int) error {
	return m.Called(ctx, calculationID, threshold).Error(0)
}

func (m *mockDeadlineRepo) CompletedByDeadlineIDs(ctx context.Context, deadlineIDs []string, reportingPeriod string) (map[string]bool, error) {
	args := m.Called(ctx, deadlineIDs, reportingPeriod)
	result, _ := args.Get(0).(map[string]bool)
	return result, args.Error(1)
}

type capturingPublisher struct {
	events []Event
}

func (p *capturingPublisher) Publish(_ context.Context, event Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) ofType(t EventType) []Event {
	var out []Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
