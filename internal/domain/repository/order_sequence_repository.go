package repository

import "context"

// OrderSequenceRepository contador atómico por empresa y serie.
// Next debe ejecutarse dentro de la misma transacción que inserta la orden.
type OrderSequenceRepository interface {
	Next(ctx context.Context, companyID, series string) (int64, error)
}
