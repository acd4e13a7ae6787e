package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
	"github.com/complyops/deadline-engine/internal/domain/deadline"
	"github.com/complyops/deadline-engine/internal/infrastructure/database/postgres"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

const deadlineColumns = `calculation_id, deadline_id, report_id, report_type, reporting_period,
		jurisdiction, calculated_date, final_deadline, preparation_start_date, review_start_date,
		status, days_remaining, business_days_remaining, dependencies_met, dependency_status,
		alerts_sent, created_at, updated_at`

type postgresDeadlineRepo struct {
	baseRepo
}

// NewPostgresDeadlineRepo creates the calculated-deadline repository.
func NewPostgresDeadlineRepo(conn *postgres.Connection, log logging.Logger) deadline.DeadlineRepository {
	return &postgresDeadlineRepo{
		baseRepo: baseRepo{conn: conn, log: log},
	}
}

func (r *postgresDeadlineRepo) Insert(ctx context.Context, d *deadline.CalculatedDeadline) error {
	query := `
		INSERT INTO calculated_deadlines (
			calculation_id, deadline_id, report_id, report_type, reporting_period,
			jurisdiction, calculated_date, final_deadline, preparation_start_date,
			review_start_date, status, days_remaining, business_days_remaining,
			dependencies_met, dependency_status, alerts_sent
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING created_at, updated_at
	`

	depStatusJSON, err := json.Marshal(d.DependencyStatus)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode dependency status")
	}

	err = r.executor().QueryRowContext(ctx, query,
		d.CalculationID, d.DeadlineID, nullableString(d.ReportID), d.ReportType,
		d.ReportingPeriod, string(d.Jurisdiction), d.CalculatedDate, d.FinalDeadline,
		d.PreparationStartDate, d.ReviewStartDate, string(d.Status),
		d.DaysRemaining, d.BusinessDaysRemaining, d.DependenciesMet,
		depStatusJSON, pq.Array(toInt64Slice(d.AlertsSent)),
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to insert calculated deadline")
	}
	return nil
}

func (r *postgresDeadlineRepo) GetByCalculationID(ctx context.Context, calculationID string) (*deadline.CalculatedDeadline, error) {
	query := `SELECT ` + deadlineColumns + `
		FROM calculated_deadlines
		WHERE calculation_id = $1`

	record, err := scanCalculatedDeadline(r.executor().QueryRowContext(ctx, query, calculationID))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (r *postgresDeadlineRepo) ListUpcoming(ctx context.Context, asOf time.Time, daysAhead int, filter deadline.ListFilter) ([]*deadline.CalculatedDeadline, error) {
	query := `SELECT ` + deadlineColumns + `
		FROM calculated_deadlines
		WHERE final_deadline >= $1 AND final_deadline <= $2
		  AND status NOT IN ('COMPLETED', 'CANCELLED')`
	args := []interface{}{asOf, asOf.AddDate(0, 0, daysAhead)}
	query, args = applyFilter(query, args, filter)
	query += ` ORDER BY final_deadline ASC`

	return r.queryDeadlines(ctx, query, args)
}

func (r *postgresDeadlineRepo) ListOverdue(ctx context.Context, asOf time.Time, filter deadline.ListFilter) ([]*deadline.CalculatedDeadline, error) {
	query := `SELECT ` + deadlineColumns + `
		FROM calculated_deadlines
		WHERE final_deadline < $1
		  AND status NOT IN ('COMPLETED', 'CANCELLED')`
	args := []interface{}{asOf}
	query, args = applyFilter(query, args, filter)
	query += ` ORDER BY final_deadline ASC`

	return r.queryDeadlines(ctx, query, args)
}

// UpdateStatus applies a status transition in a single guarded statement:
// terminal rows never change, so concurrent sweeps and explicit updates
// cannot resurrect a completed deadline.
func (r *postgresDeadlineRepo) UpdateStatus(ctx context.Context, calculationID string, status deadline.Status, daysRemaining, businessDaysRemaining int) (bool, error) {
	query := `UPDATE calculated_deadlines
		SET status = $2, days_remaining = $3, business_days_remaining = $4, updated_at = NOW()
		WHERE calculation_id = $1
		  AND status NOT IN ('COMPLETED', 'CANCELLED')`

	result, err := r.executor().ExecContext(ctx, query,
		calculationID, string(status), daysRemaining, businessDaysRemaining)
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to update deadline status")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to read affected rows")
	}
	return affected > 0, nil
}

func (r *postgresDeadlineRepo) RecordAlert(ctx context.Context, calculationID string, threshold int) error {
	// The guard keeps the operation idempotent under concurrent sweeps.
	query := `UPDATE calculated_deadlines
		SET alerts_sent = array_append(alerts_sent, $2), updated_at = NOW()
		WHERE calculation_id = $1
		  AND NOT ($2 = ANY(alerts_sent))`

	_, err := r.executor().ExecContext(ctx, query, calculationID, threshold)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to record alert threshold")
	}
	return nil
}

func (r *postgresDeadlineRepo) CompletedByDeadlineIDs(ctx context.Context, deadlineIDs []string, reportingPeriod string) (map[string]bool, error) {
	query := `SELECT DISTINCT deadline_id
		FROM calculated_deadlines
		WHERE deadline_id = ANY($1) AND reporting_period = $2 AND status = 'COMPLETED'`

	rows, err := r.executor().QueryContext(ctx, query, pq.Array(deadlineIDs), reportingPeriod)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to query completed dependencies")
	}
	defer rows.Close()

	completed := make(map[string]bool, len(deadlineIDs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to scan dependency row")
		}
		completed[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to iterate dependency rows")
	}
	return completed, nil
}

func (r *postgresDeadlineRepo) queryDeadlines(ctx context.Context, query string, args []interface{}) ([]*deadline.CalculatedDeadline, error) {
	rows, err := r.executor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to query deadlines")
	}
	defer rows.Close()

	var records []*deadline.CalculatedDeadline
	for rows.Next() {
		record, err := scanCalculatedDeadline(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to iterate deadlines")
	}
	return records, nil
}

func applyFilter(query string, args []interface{}, filter deadline.ListFilter) (string, []interface{}) {
	if filter.Jurisdiction != "" {
		args = append(args, string(filter.Jurisdiction))
		query += ` AND jurisdiction = $` + strconv.Itoa(len(args))
	}
	if filter.ReportType != "" {
		args = append(args, filter.ReportType)
		query += ` AND report_type = $` + strconv.Itoa(len(args))
	}
	return query, args
}

func scanCalculatedDeadline(s scanner) (*deadline.CalculatedDeadline, error) {
	var (
		record        deadline.CalculatedDeadline
		reportID      sql.NullString
		jurisdiction  string
		status        string
		depStatusJSON []byte
		alertsSent    pq.Int64Array
	)
	err := s.Scan(
		&record.CalculationID, &record.DeadlineID, &reportID, &record.ReportType,
		&record.ReportingPeriod, &jurisdiction, &record.CalculatedDate, &record.FinalDeadline,
		&record.PreparationStartDate, &record.ReviewStartDate, &status,
		&record.DaysRemaining, &record.BusinessDaysRemaining, &record.DependenciesMet,
		&depStatusJSON, &alertsSent, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.New(apperrors.ErrCodeDeadlineNotFound, "calculated deadline not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to scan calculated deadline")
	}

	record.ReportID = reportID.String
	record.Jurisdiction = calendar.Jurisdiction(jurisdiction)
	record.Status = deadline.Status(status)
	record.AlertsSent = fromInt64Slice(alertsSent)
	if len(depStatusJSON) > 0 {
		if err := json.Unmarshal(depStatusJSON, &record.DependencyStatus); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to decode dependency status")
		}
	}
	return &record, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
