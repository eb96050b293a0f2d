package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// ProductRepo implementación en memoria de repository.ProductRepository.
type ProductRepo struct{ v view }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.read(func(st *state) error {
		for _, other := range st.products {
			if other.CompanyID == p.CompanyID && strings.EqualFold(other.SKU, p.SKU) {
				return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, p.SKU)
			}
		}
		st.products[p.ID] = copyProduct(p)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, companyID, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		if p, ok := st.products[id]; ok && p.CompanyID == companyID {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByIDs(_ context.Context, companyID string, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	err := r.v.read(func(st *state) error {
		for _, id := range ids {
			if p, ok := st.products[id]; ok && p.CompanyID == companyID {
				out[id] = copyProduct(p)
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok || cur.CompanyID != p.CompanyID {
			return domain.ErrNotFound
		}
		for _, other := range st.products {
			if other.ID != p.ID && other.CompanyID == p.CompanyID && strings.EqualFold(other.SKU, p.SKU) {
				return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, p.SKU)
			}
		}
		st.products[p.ID] = copyProduct(p)
		return nil
	})
}

func (r *ProductRepo) UpdateCost(_ context.Context, companyID, productID string, cost decimal.Decimal) error {
	return r.v.read(func(st *state) error {
		p, ok := st.products[productID]
		if !ok || p.CompanyID != companyID {
			return domain.ErrNotFound
		}
		p.CostPrice = cost
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, companyID string, filter repository.ProductFilter, limit, offset int) ([]*entity.Product, int, error) {
	var all []*entity.Product
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			if p.CompanyID != companyID || (filter.OnlyActive && !p.IsActive) {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.SKU), search) &&
				!strings.Contains(strings.ToLower(p.Name), search) {
				continue
			}
			all = append(all, copyProduct(p))
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	return page(all, limit, offset), len(all), err
}

func (r *ProductRepo) ListTracked(_ context.Context, companyID string) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			if p.CompanyID == companyID && p.TrackInventory && p.IsActive {
				out = append(out, copyProduct(p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, err
}

// WarehouseRepo implementación en memoria de repository.WarehouseRepository.
type WarehouseRepo struct{ v view }

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.v.read(func(st *state) error {
		for _, other := range st.warehouses {
			if other.CompanyID == w.CompanyID && strings.EqualFold(other.Name, w.Name) {
				return fmt.Errorf("%w: bodega %s", domain.ErrDuplicate, w.Name)
			}
		}
		st.warehouses[w.ID] = copyWarehouse(w)
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, companyID, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.v.read(func(st *state) error {
		if w, ok := st.warehouses[id]; ok && w.CompanyID == companyID {
			out = copyWarehouse(w)
		}
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.v.read(func(st *state) error {
		cur, ok := st.warehouses[w.ID]
		if !ok || cur.CompanyID != w.CompanyID {
			return domain.ErrNotFound
		}
		st.warehouses[w.ID] = copyWarehouse(w)
		return nil
	})
}

func (r *WarehouseRepo) ClearDefault(_ context.Context, companyID, exceptID string) error {
	return r.v.read(func(st *state) error {
		for _, w := range st.warehouses {
			if w.CompanyID == companyID && w.ID != exceptID {
				w.IsDefault = false
			}
		}
		return nil
	})
}

func (r *WarehouseRepo) ListAll(_ context.Context, companyID string) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.v.read(func(st *state) error {
		for _, w := range st.warehouses {
			if w.CompanyID == companyID {
				out = append(out, copyWarehouse(w))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *WarehouseRepo) Delete(_ context.Context, companyID, id string) error {
	return r.v.read(func(st *state) error {
		w, ok := st.warehouses[id]
		if !ok || w.CompanyID != companyID {
			return domain.ErrNotFound
		}
		delete(st.warehouses, id)
		return nil
	})
}
