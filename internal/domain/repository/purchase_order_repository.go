package repository

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// PurchaseOrderFilter filtros del listado de órdenes de compra.
type PurchaseOrderFilter struct {
	Status     entity.PurchaseOrderStatus
	SupplierID string
}

// PurchaseOrderRepository puerto de persistencia de órdenes de compra.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	List(ctx context.Context, companyID string, filter PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, int, error)
	UpdateHeader(ctx context.Context, order *entity.PurchaseOrder) error
	ReplaceItems(ctx context.Context, order *entity.PurchaseOrder) error
	UpdateReceipt(ctx context.Context, order *entity.PurchaseOrder) error
	Delete(ctx context.Context, companyID, id string) error
	// ListAwaitingDelivery órdenes con fecha esperada que no están recibidas, cerradas ni canceladas.
	ListAwaitingDelivery(ctx context.Context, companyID string) ([]*entity.PurchaseOrder, error)
}
