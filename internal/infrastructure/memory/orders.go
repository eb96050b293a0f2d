package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/inventory"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// SalesOrderRepo órdenes de venta en memoria.
type SalesOrderRepo struct{ v view }

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

func (r *SalesOrderRepo) Create(_ context.Context, o *entity.SalesOrder) error {
	return r.v.read(func(st *state) error {
		for _, other := range st.salesOrders {
			if other.CompanyID == o.CompanyID && other.OrderNumber == o.OrderNumber {
				return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, o.OrderNumber)
			}
		}
		st.salesOrders[o.ID] = copySalesOrder(o)
		return nil
	})
}

func (r *SalesOrderRepo) GetByID(_ context.Context, companyID, id string) (*entity.SalesOrder, error) {
	var out *entity.SalesOrder
	err := r.v.read(func(st *state) error {
		if o, ok := st.salesOrders[id]; ok && o.CompanyID == companyID {
			out = copySalesOrder(o)
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la transacción ya tiene el estado en exclusiva.
func (r *SalesOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.SalesOrder, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *SalesOrderRepo) List(_ context.Context, companyID string, f repository.SalesOrderFilter, limit, offset int) ([]*entity.SalesOrder, int, error) {
	var all []*entity.SalesOrder
	err := r.v.read(func(st *state) error {
		for _, o := range st.salesOrders {
			if o.CompanyID != companyID ||
				(f.Status != "" && o.Status != f.Status) ||
				(f.AccountID != "" && o.AccountID != f.AccountID) {
				continue
			}
			all = append(all, copySalesOrder(o))
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].OrderNumber > all[j].OrderNumber
	})
	return page(all, limit, offset), len(all), err
}

func (r *SalesOrderRepo) UpdateHeader(_ context.Context, o *entity.SalesOrder) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.salesOrders[o.ID]
		if !ok || cur.CompanyID != o.CompanyID {
			return domain.ErrNotFound
		}
		next := copySalesOrder(o)
		next.Items = cur.Items
		st.salesOrders[o.ID] = next
		return nil
	})
}

func (r *SalesOrderRepo) ReplaceItems(_ context.Context, o *entity.SalesOrder) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.salesOrders[o.ID]
		if !ok || cur.CompanyID != o.CompanyID {
			return domain.ErrNotFound
		}
		cur.Items = copySalesOrder(o).Items
		return nil
	})
}

func (r *SalesOrderRepo) UpdateFulfillment(_ context.Context, o *entity.SalesOrder) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.salesOrders[o.ID]
		if !ok || cur.CompanyID != o.CompanyID {
			return domain.ErrNotFound
		}
		fulfilled := make(map[string]decimal.Decimal, len(o.Items))
		for _, it := range o.Items {
			fulfilled[it.ID] = it.FulfilledQuantity
		}
		next := copySalesOrder(o)
		next.Items = cur.Items
		for _, it := range next.Items {
			if q, ok := fulfilled[it.ID]; ok {
				it.FulfilledQuantity = q
			}
		}
		st.salesOrders[o.ID] = next
		return nil
	})
}

func (r *SalesOrderRepo) Delete(_ context.Context, companyID, id string) error {
	return r.v.read(func(st *state) error {
		o, ok := st.salesOrders[id]
		if !ok || o.CompanyID != companyID {
			return domain.ErrNotFound
		}
		delete(st.salesOrders, id)
		return nil
	})
}

func (r *SalesOrderRepo) ReservedByProduct(_ context.Context, companyID string) (map[string]decimal.Decimal, error) {
	var out map[string]decimal.Decimal
	err := r.v.read(func(st *state) error {
		orders := make([]*entity.SalesOrder, 0, len(st.salesOrders))
		for _, o := range st.salesOrders {
			if o.CompanyID == companyID {
				orders = append(orders, o)
			}
		}
		out = inventory.ReservedByProduct(orders)
		return nil
	})
	return out, err
}

func (r *SalesOrderRepo) Reserved(ctx context.Context, companyID, productID string) (decimal.Decimal, error) {
	all, err := r.ReservedByProduct(ctx, companyID)
	if err != nil {
		return decimal.Zero, err
	}
	return all[productID], nil
}

// PurchaseOrderRepo órdenes de compra en memoria.
type PurchaseOrderRepo struct{ v view }

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

func (r *PurchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	return r.v.read(func(st *state) error {
		for _, other := range st.purchaseOrders {
			if other.CompanyID == o.CompanyID && other.OrderNumber == o.OrderNumber {
				return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, o.OrderNumber)
			}
		}
		st.purchaseOrders[o.ID] = copyPurchaseOrder(o)
		return nil
	})
}

func (r *PurchaseOrderRepo) GetByID(_ context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.v.read(func(st *state) error {
		if o, ok := st.purchaseOrders[id]; ok && o.CompanyID == companyID {
			out = copyPurchaseOrder(o)
		}
		return nil
	})
	return out, err
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *PurchaseOrderRepo) List(_ context.Context, companyID string, f repository.PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, int, error) {
	var all []*entity.PurchaseOrder
	err := r.v.read(func(st *state) error {
		for _, o := range st.purchaseOrders {
			if o.CompanyID != companyID ||
				(f.Status != "" && o.Status != f.Status) ||
				(f.SupplierID != "" && o.SupplierID != f.SupplierID) {
				continue
			}
			all = append(all, copyPurchaseOrder(o))
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].OrderNumber > all[j].OrderNumber
	})
	return page(all, limit, offset), len(all), err
}

func (r *PurchaseOrderRepo) UpdateHeader(_ context.Context, o *entity.PurchaseOrder) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.purchaseOrders[o.ID]
		if !ok || cur.CompanyID != o.CompanyID {
			return domain.ErrNotFound
		}
		next := copyPurchaseOrder(o)
		next.Items = cur.Items
		st.purchaseOrders[o.ID] = next
		return nil
	})
}

func (r *PurchaseOrderRepo) ReplaceItems(_ context.Context, o *entity.PurchaseOrder) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.purchaseOrders[o.ID]
		if !ok || cur.CompanyID != o.CompanyID {
			return domain.ErrNotFound
		}
		cur.Items = copyPurchaseOrder(o).Items
		return nil
	})
}

func (r *PurchaseOrderRepo) UpdateReceipt(_ context.Context, o *entity.PurchaseOrder) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.purchaseOrders[o.ID]
		if !ok || cur.CompanyID != o.CompanyID {
			return domain.ErrNotFound
		}
		received := make(map[string]decimal.Decimal, len(o.Items))
		for _, it := range o.Items {
			received[it.ID] = it.QuantityReceived
		}
		next := copyPurchaseOrder(o)
		next.Items = cur.Items
		for _, it := range next.Items {
			if q, ok := received[it.ID]; ok {
				it.QuantityReceived = q
			}
		}
		st.purchaseOrders[o.ID] = next
		return nil
	})
}

func (r *PurchaseOrderRepo) Delete(_ context.Context, companyID, id string) error {
	return r.v.read(func(st *state) error {
		o, ok := st.purchaseOrders[id]
		if !ok || o.CompanyID != companyID {
			return domain.ErrNotFound
		}
		delete(st.purchaseOrders, id)
		return nil
	})
}

func (r *PurchaseOrderRepo) ListAwaitingDelivery(_ context.Context, companyID string) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	err := r.v.read(func(st *state) error {
		for _, o := range st.purchaseOrders {
			if o.CompanyID != companyID || o.ExpectedDate == nil {
				continue
			}
			switch o.Status {
			case entity.PurchaseOrderReceived, entity.PurchaseOrderClosed, entity.PurchaseOrderCancelled:
				continue
			}
			out = append(out, copyPurchaseOrder(o))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, err
}

// OrderSequenceRepo contadores por (empresa, serie).
type OrderSequenceRepo struct{ v view }

var _ repository.OrderSequenceRepository = (*OrderSequenceRepo)(nil)

func (r *OrderSequenceRepo) Next(_ context.Context, companyID, series string) (int64, error) {
	var n int64
	err := r.v.read(func(st *state) error {
		k := companyID + "|" + series
		st.sequences[k]++
		n = st.sequences[k]
		return nil
	})
	return n, err
}
