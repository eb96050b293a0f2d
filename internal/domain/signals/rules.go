package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/inventory"
)

// OverdueInvoiceRule facturas sin pagar con fecha de vencimiento pasada.
type OverdueInvoiceRule struct {
	CriticalAfterDays int
}

func (OverdueInvoiceRule) Type() string { return entity.SignalOverdueInvoice }

func (r OverdueInvoiceRule) Evaluate(ctx context.Context, src Source, companyID string, now time.Time) ([]*entity.Signal, error) {
	invoices, err := src.UnpaidInvoices(ctx, companyID)
	if err != nil {
		return nil, err
	}
	var out []*entity.Signal
	for _, inv := range invoices {
		if !inv.IsUnpaid() || inv.DueDate == nil || !inv.DueDate.Before(now) {
			continue
		}
		days := inv.DaysOverdue(now)
		severity := entity.SeverityWarning
		if days > r.CriticalAfterDays {
			severity = entity.SeverityCritical
		}
		out = append(out, &entity.Signal{
			Severity:   severity,
			EntityType: entity.EntityInvoice,
			EntityID:   inv.ID,
			Title:      fmt.Sprintf("Factura %s vencida hace %d días", inv.InvoiceNumber, days),
			Body:       fmt.Sprintf("Monto: %s %s", inv.Amount.StringFixed(2), inv.Currency),
		})
	}
	return out, nil
}

// LowStockRule productos con seguimiento cuyo on-hand total está en o bajo el punto de reorden.
type LowStockRule struct{}

func (LowStockRule) Type() string { return entity.SignalLowStock }

func (LowStockRule) Evaluate(ctx context.Context, src Source, companyID string, _ time.Time) ([]*entity.Signal, error) {
	products, err := src.TrackedProducts(ctx, companyID)
	if err != nil {
		return nil, err
	}
	onHand, err := src.OnHandByProduct(ctx, companyID)
	if err != nil {
		return nil, err
	}
	var out []*entity.Signal
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		qty := onHand[p.ID]
		if !inventory.IsLowStock(p, qty) {
			continue
		}
		severity := entity.SeverityWarning
		if qty.LessThanOrEqual(decimal.Zero) {
			severity = entity.SeverityCritical
		}
		out = append(out, &entity.Signal{
			Severity:   severity,
			EntityType: entity.EntityProduct,
			EntityID:   p.ID,
			Title:      fmt.Sprintf("Stock bajo: %s (%s)", p.Name, p.SKU),
			Body:       fmt.Sprintf("Existencias: %s %s, punto de reorden: %s", qty.String(), p.Unit, p.ReorderLevel.String()),
		})
	}
	return out, nil
}

// StaleDealRule oportunidades abiertas sin actualización en AfterDays días o más.
type StaleDealRule struct {
	AfterDays int
}

func (StaleDealRule) Type() string { return entity.SignalStaleDeal }

func (r StaleDealRule) Evaluate(ctx context.Context, src Source, companyID string, now time.Time) ([]*entity.Signal, error) {
	deals, err := src.OpenDeals(ctx, companyID)
	if err != nil {
		return nil, err
	}
	cutoff := now.AddDate(0, 0, -r.AfterDays)
	var out []*entity.Signal
	for _, d := range deals {
		if !d.IsOpen() || d.UpdatedAt.After(cutoff) {
			continue
		}
		out = append(out, &entity.Signal{
			Severity:   entity.SeverityWarning,
			EntityType: entity.EntityDeal,
			EntityID:   d.ID,
			Title:      fmt.Sprintf("Negocio sin movimiento: %s", d.Title),
			Body:       fmt.Sprintf("Sin actualizaciones hace %d días (etapa %s)", daysBetween(d.UpdatedAt, now), d.Stage),
		})
	}
	return out, nil
}

// LateDeliveryRule órdenes de compra con fecha esperada vencida que no se han recibido ni cerrado.
type LateDeliveryRule struct{}

func (LateDeliveryRule) Type() string { return entity.SignalLateDelivery }

func (LateDeliveryRule) Evaluate(ctx context.Context, src Source, companyID string, now time.Time) ([]*entity.Signal, error) {
	orders, err := src.PurchaseOrdersAwaitingDelivery(ctx, companyID)
	if err != nil {
		return nil, err
	}
	var out []*entity.Signal
	for _, o := range orders {
		if !o.IsLate(now) {
			continue
		}
		out = append(out, &entity.Signal{
			Severity:   entity.SeverityWarning,
			EntityType: entity.EntityPurchaseOrder,
			EntityID:   o.ID,
			Title:      fmt.Sprintf("Orden de compra %s atrasada", o.OrderNumber),
			Body:       fmt.Sprintf("Esperada el %s, estado %s", o.ExpectedDate.Format("2006-01-02"), o.Status),
		})
	}
	return out, nil
}

// StaleLeadRule cuentas que siguen en etapa lead tras AfterDays días sin actualización.
type StaleLeadRule struct {
	AfterDays int
}

func (StaleLeadRule) Type() string { return entity.SignalStaleLead }

func (r StaleLeadRule) Evaluate(ctx context.Context, src Source, companyID string, now time.Time) ([]*entity.Signal, error) {
	accounts, err := src.AccountsInStage(ctx, companyID, entity.PipelineLead)
	if err != nil {
		return nil, err
	}
	cutoff := now.AddDate(0, 0, -r.AfterDays)
	var out []*entity.Signal
	for _, a := range accounts {
		if a.PipelineStage != entity.PipelineLead || a.UpdatedAt.After(cutoff) {
			continue
		}
		out = append(out, &entity.Signal{
			Severity:   entity.SeverityInfo,
			EntityType: entity.EntityAccount,
			EntityID:   a.ID,
			Title:      fmt.Sprintf("Lead sin avance: %s", a.Name),
			Body:       fmt.Sprintf("En etapa lead hace %d días", daysBetween(a.UpdatedAt, now)),
		})
	}
	return out, nil
}
