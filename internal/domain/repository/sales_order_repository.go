package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// SalesOrderFilter filtros del listado de órdenes de venta.
type SalesOrderFilter struct {
	Status    entity.SalesOrderStatus
	AccountID string
}

// SalesOrderRepository puerto de persistencia de órdenes de venta (cabecera + líneas).
type SalesOrderRepository interface {
	Create(ctx context.Context, order *entity.SalesOrder) error
	GetByID(ctx context.Context, companyID, id string) (*entity.SalesOrder, error)
	// GetForUpdate carga la orden bloqueando su fila (SELECT ... FOR UPDATE) hasta el fin de la tx.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.SalesOrder, error)
	List(ctx context.Context, companyID string, filter SalesOrderFilter, limit, offset int) ([]*entity.SalesOrder, int, error)
	// UpdateHeader persiste campos de cabecera y estado.
	UpdateHeader(ctx context.Context, order *entity.SalesOrder) error
	// ReplaceItems reemplaza todas las líneas (solo borradores).
	ReplaceItems(ctx context.Context, order *entity.SalesOrder) error
	// UpdateFulfillment persiste fulfilled_quantity de cada línea y la cabecera.
	UpdateFulfillment(ctx context.Context, order *entity.SalesOrder) error
	Delete(ctx context.Context, companyID, id string) error
	// ReservedByProduct Σ max(0, quantity − fulfilled) de líneas de órdenes abiertas, por producto.
	ReservedByProduct(ctx context.Context, companyID string) (map[string]decimal.Decimal, error)
	Reserved(ctx context.Context, companyID, productID string) (decimal.Decimal, error)
}
