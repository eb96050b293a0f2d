package repository

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	// ClearDefault quita la marca por defecto de todas las bodegas de la empresa excepto exceptID.
	ClearDefault(ctx context.Context, companyID, exceptID string) error
	ListAll(ctx context.Context, companyID string) ([]*entity.Warehouse, error)
	Delete(ctx context.Context, companyID, id string) error
}
