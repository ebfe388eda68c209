// Package postgres holds the audit trail store. The catalog itself lives in
// MongoDB; Postgres only receives append-only audit rows.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/baharkarakas/moviecatalog/internal/repository"
)

type Repositories struct {
	AuditLogs repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		AuditLogs: &auditLogsRepo{pool},
	}
}
