// Package memory implementa los repositorios y el TxRunner en memoria.
// Cada transacción trabaja sobre una copia completa del estado y la publica en Commit;
// un error descarta la copia. Las transacciones se serializan con un único mutex.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

type state struct {
	products       map[string]*entity.Product
	warehouses     map[string]*entity.Warehouse
	movements      []*entity.StockMovement
	salesOrders    map[string]*entity.SalesOrder
	purchaseOrders map[string]*entity.PurchaseOrder
	sequences      map[string]int64
	signals        map[string]*entity.Signal
	accounts       map[string]*entity.Account
	deals          map[string]*entity.Deal
	invoices       map[string]*entity.Invoice
}

func newState() *state {
	return &state{
		products:       map[string]*entity.Product{},
		warehouses:     map[string]*entity.Warehouse{},
		salesOrders:    map[string]*entity.SalesOrder{},
		purchaseOrders: map[string]*entity.PurchaseOrder{},
		sequences:      map[string]int64{},
		signals:        map[string]*entity.Signal{},
		accounts:       map[string]*entity.Account{},
		deals:          map[string]*entity.Deal{},
		invoices:       map[string]*entity.Invoice{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = copyWarehouse(v)
	}
	// el libro es inmutable: basta copiar el slice
	c.movements = append(make([]*entity.StockMovement, 0, len(s.movements)), s.movements...)
	for k, v := range s.salesOrders {
		c.salesOrders[k] = copySalesOrder(v)
	}
	for k, v := range s.purchaseOrders {
		c.purchaseOrders[k] = copyPurchaseOrder(v)
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	for k, v := range s.signals {
		sig := *v
		c.signals[k] = &sig
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.deals {
		c.deals[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	return c
}

// Store estado compartido. El valor cero no es usable: use New.
type Store struct {
	mu sync.Mutex
	st *state
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{st: newState()}
}

// view resuelve sobre qué estado opera un repositorio: el compartido (con lock por
// operación) o la copia de una transacción en curso (el lock ya lo tiene Run).
type view struct {
	s  *Store
	tx *state
}

func (v view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.st)
}

// Repos devuelve repositorios que operan fuera de transacción.
func (s *Store) Repos() ports.Repos {
	return reposFor(view{s: s})
}

func reposFor(v view) ports.Repos {
	return ports.Repos{
		Products:       &ProductRepo{v: v},
		Warehouses:     &WarehouseRepo{v: v},
		Movements:      &StockMovementRepo{v: v},
		SalesOrders:    &SalesOrderRepo{v: v},
		PurchaseOrders: &PurchaseOrderRepo{v: v},
		Sequences:      &OrderSequenceRepo{v: v},
		Signals:        &SignalRepo{v: v},
		Accounts:       &AccountRepo{v: v},
		Deals:          &DealRepo{v: v},
		Invoices:       &InvoiceRepo{v: v},
		Locks:          Locker{},
	}
}

// TxRunner implementa ports.TxRunner sobre el Store.
type TxRunner struct {
	s *Store
}

var _ ports.TxRunner = (*TxRunner)(nil)

// NewTxRunner crea el runner transaccional del almacén.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn sobre una copia del estado; solo si fn termina sin error la copia
// reemplaza al estado compartido.
func (t *TxRunner) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	work := t.s.st.clone()
	if err := fn(reposFor(view{s: t.s, tx: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.st = work
	return nil
}

// Locker no-op: el mutex del Store ya serializa las transacciones.
type Locker struct{}

// Lock implementa repository.Locker.
func (Locker) Lock(ctx context.Context, _, _ string) error {
	return ctx.Err()
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func copyWarehouse(w *entity.Warehouse) *entity.Warehouse {
	c := *w
	return &c
}

func copySalesOrder(o *entity.SalesOrder) *entity.SalesOrder {
	c := *o
	if o.DueDate != nil {
		d := *o.DueDate
		c.DueDate = &d
	}
	c.Items = make([]*entity.SalesOrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		item := *it
		c.Items = append(c.Items, &item)
	}
	return &c
}

func copyPurchaseOrder(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	c := *o
	if o.ExpectedDate != nil {
		d := *o.ExpectedDate
		c.ExpectedDate = &d
	}
	c.Items = make([]*entity.PurchaseOrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		item := *it
		c.Items = append(c.Items, &item)
	}
	return &c
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
