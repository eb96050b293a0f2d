package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// Las entidades CRM y de facturación son de solo lectura para el servicio; los Seed*
// permiten poblarlas en tests y en modo demo.

// SeedAccounts agrega o reemplaza cuentas.
func (s *Store) SeedAccounts(accounts ...*entity.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range accounts {
		c := *a
		s.st.accounts[a.ID] = &c
	}
}

// SeedDeals agrega o reemplaza oportunidades.
func (s *Store) SeedDeals(deals ...*entity.Deal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range deals {
		c := *d
		s.st.deals[d.ID] = &c
	}
}

// SeedInvoices agrega o reemplaza facturas.
func (s *Store) SeedInvoices(invoices ...*entity.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range invoices {
		c := *i
		s.st.invoices[i.ID] = &c
	}
}

// AccountRepo cuentas CRM en memoria.
type AccountRepo struct{ v view }

var _ repository.AccountRepository = (*AccountRepo)(nil)

func (r *AccountRepo) GetByID(_ context.Context, companyID, id string) (*entity.Account, error) {
	var out *entity.Account
	err := r.v.read(func(st *state) error {
		if a, ok := st.accounts[id]; ok && a.CompanyID == companyID {
			c := *a
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *AccountRepo) ListByPipelineStage(_ context.Context, companyID, stage string) ([]*entity.Account, error) {
	var out []*entity.Account
	err := r.v.read(func(st *state) error {
		for _, a := range st.accounts {
			if a.CompanyID == companyID && a.PipelineStage == stage {
				c := *a
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// DealRepo oportunidades en memoria.
type DealRepo struct{ v view }

var _ repository.DealRepository = (*DealRepo)(nil)

func (r *DealRepo) GetByID(_ context.Context, companyID, id string) (*entity.Deal, error) {
	var out *entity.Deal
	err := r.v.read(func(st *state) error {
		if d, ok := st.deals[id]; ok && d.CompanyID == companyID {
			c := *d
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *DealRepo) ListOpen(_ context.Context, companyID string) ([]*entity.Deal, error) {
	var out []*entity.Deal
	err := r.v.read(func(st *state) error {
		for _, d := range st.deals {
			if d.CompanyID == companyID && d.IsOpen() {
				c := *d
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// InvoiceRepo facturas en memoria.
type InvoiceRepo struct{ v view }

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

func (r *InvoiceRepo) ListUnpaid(_ context.Context, companyID string) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	err := r.v.read(func(st *state) error {
		for _, i := range st.invoices {
			if i.CompanyID == companyID && i.IsUnpaid() {
				c := *i
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}
