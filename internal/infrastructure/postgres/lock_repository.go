package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.Locker = (*AdvisoryLocker)(nil)

// AdvisoryLocker serializa por (empresa, ámbito) con pg_advisory_xact_lock.
// Fuera de una transacción el lock se libera al terminar la sentencia, así que solo
// tiene efecto con repos creados por TxRunner.
type AdvisoryLocker struct {
	q Querier
}

// NewAdvisoryLocker construye el locker.
func NewAdvisoryLocker(q Querier) *AdvisoryLocker {
	return &AdvisoryLocker{q: q}
}

// Lock bloquea hasta obtener el lock transaccional.
func (l *AdvisoryLocker) Lock(ctx context.Context, companyID, scope string) error {
	if _, err := l.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, companyID+":"+scope); err != nil {
		return fmt.Errorf("advisory lock %s: %w", scope, err)
	}
	return nil
}
