package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stockflow-api/internal/application/ports"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos arma todos los repositorios sobre el mismo Querier (pool o tx).
func NewRepos(q Querier) ports.Repos {
	return ports.Repos{
		Products:       NewProductRepository(q),
		Warehouses:     NewWarehouseRepository(q),
		Movements:      NewStockMovementRepository(q),
		SalesOrders:    NewSalesOrderRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		Sequences:      NewOrderSequenceRepository(q),
		Signals:        NewSignalRepository(q),
		Accounts:       NewAccountRepository(q),
		Deals:          NewDealRepository(q),
		Invoices:       NewInvoiceRepository(q),
		Locks:          NewAdvisoryLocker(q),
	}
}
