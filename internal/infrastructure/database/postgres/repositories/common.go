// Package repositories implements the deadline domain's persistence
// interfaces on PostgreSQL.
package repositories

import (
	"context"
	"database/sql"

	"github.com/complyops/deadline-engine/internal/infrastructure/database/postgres"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

// Shared query executor
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

type baseRepo struct {
	conn *postgres.Connection
	tx   *sql.Tx
	log  logging.Logger
}

func (r *baseRepo) executor() queryExecutor {
	if r.tx != nil {
		return r.tx
	}
	return r.conn.DB()
}

// int64Slice bridges []int domain fields and pq's int64 array support.
func toInt64Slice(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}

func fromInt64Slice(in []int64) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
