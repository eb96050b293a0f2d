package ports

import (
	"context"
	"time"
)

// IdempotencyStore recuerda claves Idempotency-Key ya procesadas.
type IdempotencyStore interface {
	// MarkProcessed devuelve true si la clave se marcó ahora, false si ya existía.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Forget libera una clave cuya operación falló, para permitir reintentos.
	Forget(ctx context.Context, key string) error
}
