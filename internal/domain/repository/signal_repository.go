package repository

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// SignalRepository puerto de persistencia de señales derivadas.
type SignalRepository interface {
	List(ctx context.Context, companyID string, includeDismissed bool, limit, offset int) ([]*entity.Signal, int, error)
	ListDismissed(ctx context.Context, companyID string) ([]*entity.Signal, error)
	GetByID(ctx context.Context, companyID, id string) (*entity.Signal, error)
	InsertBatch(ctx context.Context, signals []*entity.Signal) error
	// DeleteActive elimina las señales no descartadas; devuelve cuántas borró.
	DeleteActive(ctx context.Context, companyID string) (int, error)
	SetFlags(ctx context.Context, companyID, id string, read, dismissed bool) error
	Summary(ctx context.Context, companyID string) (entity.SignalSummary, error)
}
