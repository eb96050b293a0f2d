package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.OrderSequenceRepository = (*OrderSequenceRepo)(nil)

// OrderSequenceRepo contador por (empresa, serie). El upsert toma el lock de fila, así dos
// transacciones concurrentes nunca obtienen el mismo número.
type OrderSequenceRepo struct {
	q Querier
}

// NewOrderSequenceRepository construye el adaptador.
func NewOrderSequenceRepository(q Querier) *OrderSequenceRepo {
	return &OrderSequenceRepo{q: q}
}

// Next incrementa y devuelve el siguiente valor de la serie.
func (r *OrderSequenceRepo) Next(ctx context.Context, companyID, series string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO order_sequences (company_id, series, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, series) DO UPDATE SET last_value = order_sequences.last_value + 1
		RETURNING last_value`, companyID, series).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next order sequence %s: %w", series, err)
	}
	return n, nil
}
