// Package signals contiene el motor de reglas que deriva alertas de negocio a partir del
// estado actual del libro, las órdenes y los datos CRM. Las reglas son independientes
// entre sí y no guardan estado; agregar una regla es implementar Rule y registrarla.
package signals

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// Source lectura del estado de la empresa que necesitan las reglas.
type Source interface {
	UnpaidInvoices(ctx context.Context, companyID string) ([]*entity.Invoice, error)
	TrackedProducts(ctx context.Context, companyID string) ([]*entity.Product, error)
	OnHandByProduct(ctx context.Context, companyID string) (map[string]decimal.Decimal, error)
	OpenDeals(ctx context.Context, companyID string) ([]*entity.Deal, error)
	PurchaseOrdersAwaitingDelivery(ctx context.Context, companyID string) ([]*entity.PurchaseOrder, error)
	AccountsInStage(ctx context.Context, companyID, stage string) ([]*entity.Account, error)
}

// Rule una regla del motor. Evaluate devuelve señales sin ID ni fecha de creación.
type Rule interface {
	Type() string
	Evaluate(ctx context.Context, src Source, companyID string, now time.Time) ([]*entity.Signal, error)
}

// Thresholds umbrales configurables de las reglas, en días.
type Thresholds struct {
	OverdueCriticalDays int
	StaleDealDays       int
	StaleLeadDays       int
}

// DefaultThresholds 14 días para vencimiento crítico y negocios sin movimiento, 30 para leads.
func DefaultThresholds() Thresholds {
	return Thresholds{OverdueCriticalDays: 14, StaleDealDays: 14, StaleLeadDays: 30}
}

// withDefaults reemplaza umbrales no positivos por los valores por defecto.
func (t Thresholds) withDefaults() Thresholds {
	def := DefaultThresholds()
	if t.OverdueCriticalDays <= 0 {
		t.OverdueCriticalDays = def.OverdueCriticalDays
	}
	if t.StaleDealDays <= 0 {
		t.StaleDealDays = def.StaleDealDays
	}
	if t.StaleLeadDays <= 0 {
		t.StaleLeadDays = def.StaleLeadDays
	}
	return t
}

// DefaultRules las cinco reglas estándar con los umbrales dados.
func DefaultRules(th Thresholds) []Rule {
	th = th.withDefaults()
	return []Rule{
		OverdueInvoiceRule{CriticalAfterDays: th.OverdueCriticalDays},
		LowStockRule{},
		StaleDealRule{AfterDays: th.StaleDealDays},
		LateDeliveryRule{},
		StaleLeadRule{AfterDays: th.StaleLeadDays},
	}
}

// Evaluate ejecuta todas las reglas y devuelve sus señales en orden determinista
// (tipo, entidad). Un error en cualquier regla aborta la evaluación.
func Evaluate(ctx context.Context, rules []Rule, src Source, companyID string, now time.Time) ([]*entity.Signal, error) {
	var out []*entity.Signal
	for _, r := range rules {
		found, err := r.Evaluate(ctx, src, companyID, now)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.Type(), err)
		}
		for _, s := range found {
			s.CompanyID = companyID
			s.Type = r.Type()
		}
		out = append(out, found...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out, nil
}

// Suppress quita de candidates las condiciones ya descartadas por el usuario.
func Suppress(candidates, dismissed []*entity.Signal) []*entity.Signal {
	if len(dismissed) == 0 {
		return candidates
	}
	out := candidates[:0:0]
	for _, c := range candidates {
		hidden := false
		for _, d := range dismissed {
			if d.SameCondition(c) {
				hidden = true
				break
			}
		}
		if !hidden {
			out = append(out, c)
		}
	}
	return out
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
