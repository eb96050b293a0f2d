package repository

import "context"

// Locker serializa operaciones por empresa dentro de la transacción en curso
// (pg_advisory_xact_lock en PostgreSQL). El bloqueo se libera con Commit/Rollback.
type Locker interface {
	Lock(ctx context.Context, companyID, scope string) error
}
