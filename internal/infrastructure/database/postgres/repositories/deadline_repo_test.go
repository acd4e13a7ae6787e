package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
	"github.com/complyops/deadline-engine/internal/domain/deadline"
	"github.com/complyops/deadline-engine/internal/infrastructure/database/postgres"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

func newDeadlineRepoFixture(t *testing.T) (deadline.DeadlineRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn := postgres.NewConnectionWithDB(db, logging.NewNopLogger())
	return NewPostgresDeadlineRepo(conn, logging.NewNopLogger()), mock
}

func deadlineRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"calculation_id", "deadline_id", "report_id", "report_type", "reporting_period",
		"jurisdiction", "calculated_date", "final_deadline", "preparation_start_date",
		"review_start_date", "status", "days_remaining", "business_days_remaining",
		"dependencies_met", "dependency_status", "alerts_sent", "created_at", "updated_at",
	})
}

func sampleDeadlineRow(rows *sqlmock.Rows, calculationID string, status deadline.Status) *sqlmock.Rows {
	now := time.Now()
	final := calendar.Date(2024, time.May, 10)
	return rows.AddRow(
		calculationID, "FINREP-EU-QUARTERLY", "rpt-1", "FINREP", "2024-Q1",
		"EU", final, final, calendar.Date(2024, time.April, 10),
		calendar.Date(2024, time.April, 30), string(status), 39, 27,
		true, []byte(`{"COREP-EU-QUARTERLY":true}`), pq.Int64Array{30}, now, now,
	)
}

func TestInsertCalculatedDeadline(t *testing.T) {
	repo, mock := newDeadlineRepoFixture(t)
	now := time.Now()

	record := &deadline.CalculatedDeadline{
		CalculationID:         "calc-1",
		DeadlineID:            "FINREP-EU-QUARTERLY",
		ReportID:              "rpt-1",
		ReportType:            "FINREP",
		ReportingPeriod:       "2024-Q1",
		Jurisdiction:          calendar.JurisdictionEU,
		CalculatedDate:        calendar.Date(2024, time.May, 10),
		FinalDeadline:         calendar.Date(2024, time.May, 10),
		PreparationStartDate:  calendar.Date(2024, time.April, 10),
		ReviewStartDate:       calendar.Date(2024, time.April, 30),
		Status:                deadline.StatusUpcoming,
		DaysRemaining:         39,
		BusinessDaysRemaining: 27,
		DependenciesMet:       true,
		DependencyStatus:      map[string]bool{"COREP-EU-QUARTERLY": true},
	}

	mock.ExpectQuery(`INSERT INTO calculated_deadlines`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.Insert(context.Background(), record))
	assert.Equal(t, now, record.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByCalculationID(t *testing.T) {
	repo, mock := newDeadlineRepoFixture(t)

	mock.ExpectQuery(`SELECT .+ FROM calculated_deadlines\s+WHERE calculation_id = \$1`).
		WithArgs("calc-1").
		WillReturnRows(sampleDeadlineRow(deadlineRows(), "calc-1", deadline.StatusUpcoming))

	record, err := repo.GetByCalculationID(context.Background(), "calc-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, deadline.StatusUpcoming, record.Status)
	assert.Equal(t, calendar.JurisdictionEU, record.Jurisdiction)
	assert.True(t, record.DependencyStatus["COREP-EU-QUARTERLY"])
	assert.Equal(t, []int{30}, record.AlertsSent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByCalculationIDMissing(t *testing.T) {
	repo, mock := newDeadlineRepoFixture(t)

	mock.ExpectQuery(`SELECT .+ FROM calculated_deadlines`).
		WithArgs("nope").
		WillReturnRows(deadlineRows())

	record, err := repo.GetByCalculationID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUpcomingAppliesFilters(t *testing.T) {
	repo, mock := newDeadlineRepoFixture(t)
	asOf := calendar.Date(2024, time.May, 1)

	mock.ExpectQuery(`SELECT .+ FROM calculated_deadlines\s+WHERE final_deadline >= \$1 AND final_deadline <= \$2\s+AND status NOT IN .+ AND jurisdiction = \$3 AND report_type = \$4\s+ORDER BY final_deadline ASC`).
		WithArgs(asOf, asOf.AddDate(0, 0, 30), "EU", "FINREP").
		WillReturnRows(sampleDeadlineRow(deadlineRows(), "calc-1", deadline.StatusDueSoon))

	records, err := repo.ListUpcoming(context.Background(), asOf, 30, deadline.ListFilter{
		Jurisdiction: calendar.JurisdictionEU,
		ReportType:   "FINREP",
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "calc-1", records[0].CalculationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOverdue(t *testing.T) {
	repo, mock := newDeadlineRepoFixture(t)
	asOf := calendar.Date(2024, time.June, 1)

	mock.ExpectQuery(`SELECT .+ FROM calculated_deadlines\s+WHERE final_deadline < \$1\s+AND status NOT IN`).
		WithArgs(asOf).
		WillReturnRows(sampleDeadlineRow(deadlineRows(), "calc-2", deadline.StatusOverdue))

	records, err := repo.ListOverdue(context.Background(), asOf, deadline.ListFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, deadline.StatusOverdue, records[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusGuardsTerminalRows(t *testing.T) {
	repo, mock := newDeadlineRepoFixture(t)

	// The row is already COMPLETED: the guarded UPDATE touches nothing.
	mock.ExpectExec(`UPDATE calculated_deadlines\s+SET status = \$2`).
		WithArgs("calc-3", "OVERDUE", -5, 0).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.UpdateStatus(context.Background(), "calc-3", deadline.StatusOverdue, -5, 0)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusApplies(t *testing.T) {
	repo, mock := newDeadlineRepoFixture(t)

	mock.ExpectExec(`UPDATE calculated_deadlines\s+SET status = \$2`).
		WithArgs("calc-4", "DUE_SOON", 2, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := repo.UpdateStatus(context.Background(), "calc-4", deadline.StatusDueSoon, 2, 2)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAlertIsIdempotent(t *testing.T) {
	repo, mock := newDeadlineRepoFixture(t)

	// Threshold already present: the guard makes the append a no-op.
	mock.ExpectExec(`UPDATE calculated_deadlines\s+SET alerts_sent = array_append`).
		WithArgs("calc-5", 14).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.RecordAlert(context.Background(), "calc-5", 14))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletedByDeadlineIDs(t *testing.T) {
	repo, mock := newDeadlineRepoFixture(t)

	ids := []string{"A", "B"}
	mock.ExpectQuery(`SELECT DISTINCT deadline_id\s+FROM calculated_deadlines`).
		WithArgs(pq.Array(ids), "2024-Q1").
		WillReturnRows(sqlmock.NewRows([]string{"deadline_id"}).AddRow("A"))

	completed, err := repo.CompletedByDeadlineIDs(context.Background(), ids, "2024-Q1")
	require.NoError(t, err)
	assert.True(t, completed["A"])
	assert.False(t, completed["B"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
