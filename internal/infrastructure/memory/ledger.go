package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// StockMovementRepo libro de inventario en memoria; solo agrega filas.
type StockMovementRepo struct{ v view }

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

func (r *StockMovementRepo) Append(_ context.Context, m *entity.StockMovement) error {
	c := *m
	return r.v.read(func(st *state) error {
		st.movements = append(st.movements, &c)
		return nil
	})
}

func (r *StockMovementRepo) List(_ context.Context, companyID string, f entity.MovementFilter, limit, offset int) ([]*entity.StockMovement, int, error) {
	var all []*entity.StockMovement
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.CompanyID != companyID ||
				(f.ProductID != "" && m.ProductID != f.ProductID) ||
				(f.WarehouseID != "" && m.WarehouseID != f.WarehouseID) ||
				(f.Type != "" && m.Type != f.Type) ||
				(f.ReferenceType != "" && m.ReferenceType != f.ReferenceType) ||
				(f.ReferenceID != "" && m.ReferenceID != f.ReferenceID) {
				continue
			}
			c := *m
			all = append(all, &c)
		}
		return nil
	})
	// más recientes primero; a igual instante, el último insertado primero
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, limit, offset), len(all), err
}

func (r *StockMovementRepo) OnHand(_ context.Context, companyID, productID, warehouseID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.CompanyID == companyID && m.ProductID == productID &&
				(warehouseID == "" || m.WarehouseID == warehouseID) {
				total = total.Add(m.QuantityDelta)
			}
		}
		return nil
	})
	return total, err
}

func (r *StockMovementRepo) Balances(_ context.Context, companyID, warehouseID string) ([]entity.StockBalance, error) {
	type key struct{ product, warehouse string }
	sums := map[key]decimal.Decimal{}
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.CompanyID != companyID || (warehouseID != "" && m.WarehouseID != warehouseID) {
				continue
			}
			k := key{m.ProductID, m.WarehouseID}
			sums[k] = sums[k].Add(m.QuantityDelta)
		}
		return nil
	})
	out := make([]entity.StockBalance, 0, len(sums))
	for k, v := range sums {
		out = append(out, entity.StockBalance{ProductID: k.product, WarehouseID: k.warehouse, OnHand: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, err
}

func (r *StockMovementRepo) OnHandByProduct(_ context.Context, companyID string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.CompanyID == companyID {
				out[m.ProductID] = out[m.ProductID].Add(m.QuantityDelta)
			}
		}
		return nil
	})
	return out, err
}

func (r *StockMovementRepo) HasMovements(_ context.Context, companyID, warehouseID string) (bool, error) {
	found := false
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.CompanyID == companyID && m.WarehouseID == warehouseID {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}
