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
	apperrors "github.com/complyops/deadline-engine/pkg/errors"
)

func newRuleRepoFixture(t *testing.T) (deadline.RuleRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	conn := postgres.NewConnectionWithDB(db, logging.NewNopLogger())
	return NewPostgresRuleRepo(conn, logging.NewNopLogger()), mock
}

func ruleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"deadline_id", "report_type", "jurisdiction", "frequency", "deadline_type",
		"business_days_offset", "calendar_days_offset", "lead_time_days", "review_time_days",
		"buffer_days", "dependencies", "regulatory_reference", "is_active", "created_at", "updated_at",
	})
}

func TestFindRuleExactMatch(t *testing.T) {
	repo, mock := newRuleRepoFixture(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM regulatory_deadline_rules`).
		WithArgs("FINREP", "EU", "QUARTERLY").
		WillReturnRows(ruleRows().AddRow(
			"FINREP-EU-QUARTERLY", "FINREP", "EU", "QUARTERLY", "SUBMISSION",
			28, 0, 14, 5, 2, pq.StringArray{}, "EBA/ITS/2013/03", true, now, now,
		))

	rule, err := repo.FindRule(context.Background(), "FINREP", calendar.JurisdictionEU, deadline.FrequencyQuarterly)
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, "FINREP-EU-QUARTERLY", rule.DeadlineID)
	assert.Equal(t, 28, rule.BusinessDaysOffset)
	assert.Equal(t, "EBA/ITS/2013/03", rule.RegulatoryReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindRuleNoMatchIsNilNotError(t *testing.T) {
	repo, mock := newRuleRepoFixture(t)

	mock.ExpectQuery(`SELECT .+ FROM regulatory_deadline_rules`).
		WithArgs("FINREP", "DE", "QUARTERLY").
		WillReturnRows(ruleRows())

	rule, err := repo.FindRule(context.Background(), "FINREP", calendar.JurisdictionDE, deadline.FrequencyQuarterly)
	require.NoError(t, err)
	assert.Nil(t, rule)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRule(t *testing.T) {
	repo, mock := newRuleRepoFixture(t)
	now := time.Now()

	rule := deadline.DefaultRules()[0]
	mock.ExpectQuery(`INSERT INTO regulatory_deadline_rules`).
		WithArgs(
			rule.DeadlineID, rule.ReportType, "EU", "QUARTERLY", "SUBMISSION",
			28, 0, 14, 5, 2, pq.Array(rule.Dependencies), rule.RegulatoryReference, true,
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.UpsertRule(context.Background(), rule))
	assert.Equal(t, now, rule.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateRuleNotFound(t *testing.T) {
	repo, mock := newRuleRepoFixture(t)

	mock.ExpectExec(`UPDATE regulatory_deadline_rules`).
		WithArgs("missing-rule").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeactivateRule(context.Background(), "missing-rule")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRuleNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedDefaultsIfEmptySeedsAllRules(t *testing.T) {
	repo, mock := newRuleRepoFixture(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM regulatory_deadline_rules`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	for range deadline.DefaultRules() {
		mock.ExpectQuery(`INSERT INTO regulatory_deadline_rules`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	}

	seeded, err := repo.SeedDefaultsIfEmpty(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, seeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedDefaultsIfEmptySkipsPopulatedStore(t *testing.T) {
	repo, mock := newRuleRepoFixture(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM regulatory_deadline_rules`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	seeded, err := repo.SeedDefaultsIfEmpty(context.Background())
	require.NoError(t, err)
	assert.Zero(t, seeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadActiveRulesOrdering(t *testing.T) {
	repo, mock := newRuleRepoFixture(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM regulatory_deadline_rules\s+WHERE is_active = TRUE\s+ORDER BY created_at DESC`).
		WillReturnRows(ruleRows().
			AddRow("B", "COREP", "EU", "QUARTERLY", "SUBMISSION", 28, 0, 14, 5, 2,
				pq.StringArray{}, "EBA/ITS/2014/04", true, now, now).
			AddRow("A", "FINREP", "EU", "QUARTERLY", "SUBMISSION", 28, 0, 14, 5, 2,
				pq.StringArray{"B"}, "EBA/ITS/2013/03", true, now.Add(-time.Hour), now))

	rules, err := repo.LoadActiveRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "B", rules[0].DeadlineID)
	assert.Equal(t, []string{"B"}, rules[1].Dependencies)
	assert.NoError(t, mock.ExpectationsWereMet())
}
