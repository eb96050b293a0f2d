package ports

import (
	"context"
	"time"

	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma conexión o transacción.
type Repos struct {
	Products       repository.ProductRepository
	Warehouses     repository.WarehouseRepository
	Movements      repository.StockMovementRepository
	SalesOrders    repository.SalesOrderRepository
	PurchaseOrders repository.PurchaseOrderRepository
	Sequences      repository.OrderSequenceRepository
	Signals        repository.SignalRepository
	Accounts       repository.AccountRepository
	Deals          repository.DealRepository
	Invoices       repository.InvoiceRepository
	Locks          repository.Locker
}

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y el error se propaga sin reintentos.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Clock fuente de tiempo inyectable (tests deterministas).
type Clock func() time.Time
