package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
	"github.com/complyops/deadline-engine/internal/domain/deadline"
	"github.com/complyops/deadline-engine/internal/infrastructure/database/postgres"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

const ruleColumns = `deadline_id, report_type, jurisdiction, frequency, deadline_type,
		business_days_offset, calendar_days_offset, lead_time_days, review_time_days,
		buffer_days, dependencies, regulatory_reference, is_active, created_at, updated_at`

type postgresRuleRepo struct {
	baseRepo
}

// NewPostgresRuleRepo creates the rule repository.
func NewPostgresRuleRepo(conn *postgres.Connection, log logging.Logger) deadline.RuleRepository {
	return &postgresRuleRepo{
		baseRepo: baseRepo{conn: conn, log: log},
	}
}

func (r *postgresRuleRepo) LoadActiveRules(ctx context.Context) ([]*deadline.RegulatoryDeadlineRule, error) {
	query := `SELECT ` + ruleColumns + `
		FROM regulatory_deadline_rules
		WHERE is_active = TRUE
		ORDER BY created_at DESC`

	rows, err := r.executor().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to query rules")
	}
	defer rows.Close()

	var rules []*deadline.RegulatoryDeadlineRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to iterate rules")
	}
	return rules, nil
}

func (r *postgresRuleRepo) FindRule(ctx context.Context, reportType string, jurisdiction calendar.Jurisdiction, frequency deadline.Frequency) (*deadline.RegulatoryDeadlineRule, error) {
	query := `SELECT ` + ruleColumns + `
		FROM regulatory_deadline_rules
		WHERE is_active = TRUE AND report_type = $1 AND jurisdiction = $2 AND frequency = $3
		ORDER BY created_at DESC
		LIMIT 1`

	rule, err := scanRule(r.executor().QueryRowContext(ctx, query, reportType, string(jurisdiction), string(frequency)))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return rule, nil
}

func (r *postgresRuleRepo) UpsertRule(ctx context.Context, rule *deadline.RegulatoryDeadlineRule) error {
	query := `
		INSERT INTO regulatory_deadline_rules (
			deadline_id, report_type, jurisdiction, frequency, deadline_type,
			business_days_offset, calendar_days_offset, lead_time_days, review_time_days,
			buffer_days, dependencies, regulatory_reference, is_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		ON CONFLICT (deadline_id) DO UPDATE SET
			report_type = EXCLUDED.report_type,
			jurisdiction = EXCLUDED.jurisdiction,
			frequency = EXCLUDED.frequency,
			deadline_type = EXCLUDED.deadline_type,
			business_days_offset = EXCLUDED.business_days_offset,
			calendar_days_offset = EXCLUDED.calendar_days_offset,
			lead_time_days = EXCLUDED.lead_time_days,
			review_time_days = EXCLUDED.review_time_days,
			buffer_days = EXCLUDED.buffer_days,
			dependencies = EXCLUDED.dependencies,
			regulatory_reference = EXCLUDED.regulatory_reference,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.executor().QueryRowContext(ctx, query,
		rule.DeadlineID, rule.ReportType, string(rule.Jurisdiction), string(rule.Frequency),
		string(rule.DeadlineType), rule.BusinessDaysOffset, rule.CalendarDaysOffset,
		rule.LeadTimeDays, rule.ReviewTimeDays, rule.BufferDays,
		pq.Array(rule.Dependencies), rule.RegulatoryReference, rule.IsActive,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to upsert rule")
	}
	return nil
}

func (r *postgresRuleRepo) DeactivateRule(ctx context.Context, deadlineID string) error {
	query := `UPDATE regulatory_deadline_rules
		SET is_active = FALSE, updated_at = NOW()
		WHERE deadline_id = $1`

	result, err := r.executor().ExecContext(ctx, query, deadlineID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to deactivate rule")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to read affected rows")
	}
	if affected == 0 {
		return apperrors.New(apperrors.ErrCodeRuleNotFound, "rule not found").WithDetail(deadlineID)
	}
	return nil
}

func (r *postgresRuleRepo) SeedDefaultsIfEmpty(ctx context.Context) (int, error) {
	var count int
	err := r.executor().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM regulatory_deadline_rules`).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to count rules")
	}
	if count > 0 {
		return 0, nil
	}

	seeded := 0
	for _, rule := range deadline.DefaultRules() {
		if err := r.UpsertRule(ctx, rule); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}

func scanRule(s scanner) (*deadline.RegulatoryDeadlineRule, error) {
	var (
		rule                               deadline.RegulatoryDeadlineRule
		jurisdiction, frequency, dlType    string
		dependencies                       pq.StringArray
		regulatoryReference                sql.NullString
		createdAt, updatedAt               time.Time
	)
	err := s.Scan(
		&rule.DeadlineID, &rule.ReportType, &jurisdiction, &frequency, &dlType,
		&rule.BusinessDaysOffset, &rule.CalendarDaysOffset, &rule.LeadTimeDays,
		&rule.ReviewTimeDays, &rule.BufferDays, &dependencies, &regulatoryReference,
		&rule.IsActive, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.ErrCodeRuleNotFound, "rule not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to scan rule")
	}

	rule.Jurisdiction = calendar.Jurisdiction(jurisdiction)
	rule.Frequency = deadline.Frequency(frequency)
	rule.DeadlineType = deadline.DeadlineType(dlType)
	rule.Dependencies = []string(dependencies)
	rule.RegulatoryReference = regulatoryReference.String
	rule.CreatedAt = createdAt
	rule.UpdatedAt = updatedAt
	return &rule, nil
}
