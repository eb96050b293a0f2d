package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/domain"
)

// SalesOrderStatus estado de una orden de venta.
type SalesOrderStatus string

const (
	SalesOrderDraft              SalesOrderStatus = "draft"
	SalesOrderConfirmed          SalesOrderStatus = "confirmed"
	SalesOrderPartiallyFulfilled SalesOrderStatus = "partially_fulfilled"
	SalesOrderFulfilled          SalesOrderStatus = "fulfilled"
	SalesOrderCancelled          SalesOrderStatus = "cancelled"
)

// IsValid indica si el estado es uno de los conocidos.
func (s SalesOrderStatus) IsValid() bool {
	switch s {
	case SalesOrderDraft, SalesOrderConfirmed, SalesOrderPartiallyFulfilled, SalesOrderFulfilled, SalesOrderCancelled:
		return true
	}
	return false
}

// IsOpen indica si la orden reserva stock (confirmada o parcialmente despachada).
func (s SalesOrderStatus) IsOpen() bool {
	return s == SalesOrderConfirmed || s == SalesOrderPartiallyFulfilled
}

// IsTerminal indica si el estado ya no admite transiciones.
func (s SalesOrderStatus) IsTerminal() bool {
	return s == SalesOrderFulfilled || s == SalesOrderCancelled
}

// CanTransitionTo define la máquina de estados de la orden de venta.
func (s SalesOrderStatus) CanTransitionTo(target SalesOrderStatus) bool {
	switch s {
	case SalesOrderDraft:
		return target == SalesOrderConfirmed || target == SalesOrderCancelled
	case SalesOrderConfirmed:
		return target == SalesOrderPartiallyFulfilled || target == SalesOrderFulfilled || target == SalesOrderCancelled
	case SalesOrderPartiallyFulfilled:
		return target == SalesOrderPartiallyFulfilled || target == SalesOrderFulfilled || target == SalesOrderCancelled
	}
	return false
}

// SalesOrder cabecera de una orden de venta. Items se cargan junto con la cabecera.
type SalesOrder struct {
	ID          string
	CompanyID   string
	OrderNumber string
	AccountID   string // cliente (opcional)
	DealID      string // oportunidad CRM (opcional)
	Status      SalesOrderStatus
	Currency    string
	Notes       string
	DueDate     *time.Time
	TotalAmount decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Items       []*SalesOrderItem
}

// SalesOrderItem línea de una orden de venta.
type SalesOrderItem struct {
	ID                string
	OrderID           string
	ProductID         string
	Description       string
	Quantity          decimal.Decimal
	UnitPrice         decimal.Decimal
	Discount          decimal.Decimal // porcentaje 0..100
	FulfilledQuantity decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Validate revisa cantidad > 0, precio > 0, descuento en [0,100] y la escala de cada valor.
func (i *SalesOrderItem) Validate() error {
	if i.ProductID == "" {
		return fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if !i.Quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: quantity debe ser positiva", domain.ErrInvalidInput)
	}
	if !i.UnitPrice.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: unit_price debe ser positivo", domain.ErrInvalidInput)
	}
	if i.Discount.LessThan(decimal.Zero) || i.Discount.GreaterThan(hundred) {
		return fmt.Errorf("%w: discount debe estar entre 0 y 100", domain.ErrInvalidInput)
	}
	if ExceedsScale(i.Quantity, QuantityScale) || ExceedsScale(i.UnitPrice, QuantityScale) {
		return fmt.Errorf("%w: quantity y unit_price admiten máximo %d decimales", domain.ErrInvalidInput, QuantityScale)
	}
	if ExceedsScale(i.Discount, DiscountScale) {
		return fmt.Errorf("%w: discount admite máximo %d decimales", domain.ErrInvalidInput, DiscountScale)
	}
	return nil
}

// Remaining cantidad pendiente de despacho, nunca negativa.
func (i *SalesOrderItem) Remaining() decimal.Decimal {
	r := i.Quantity.Sub(i.FulfilledQuantity)
	if r.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return r
}

// LineTotal quantity × unit_price × (1 − discount/100), sin redondear.
func (i *SalesOrderItem) LineTotal() decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(i.Discount.Div(hundred))
	return i.Quantity.Mul(i.UnitPrice).Mul(factor)
}

// RecalculateTotal suma las líneas y redondea a 2 decimales en la cabecera.
func (o *SalesOrder) RecalculateTotal() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	o.TotalAmount = total.Round(2)
}

// IsFullyFulfilled true si todas las líneas tienen fulfilled == quantity.
func (o *SalesOrder) IsFullyFulfilled() bool {
	for _, it := range o.Items {
		if it.FulfilledQuantity.LessThan(it.Quantity) {
			return false
		}
	}
	return true
}

func (o *SalesOrder) anyFulfilled() bool {
	for _, it := range o.Items {
		if it.FulfilledQuantity.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}

// EnsureEditable solo los borradores pueden editarse o eliminarse.
func (o *SalesOrder) EnsureEditable() error {
	if o.Status != SalesOrderDraft {
		return fmt.Errorf("%w: la orden %s está en estado %s", domain.ErrInvalidTransition, o.OrderNumber, o.Status)
	}
	return nil
}

func (o *SalesOrder) transition(target SalesOrderStatus, now time.Time) error {
	if !o.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = now
	return nil
}

// Confirm draft -> confirmed. Desde aquí la orden reserva stock.
func (o *SalesOrder) Confirm(now time.Time) error {
	if o.Status != SalesOrderDraft {
		return fmt.Errorf("%w: solo se confirman borradores", domain.ErrInvalidTransition)
	}
	return o.transition(SalesOrderConfirmed, now)
}

// Cancel permitido desde draft, confirmed o partially_fulfilled. No genera movimientos.
func (o *SalesOrder) Cancel(now time.Time) error {
	return o.transition(SalesOrderCancelled, now)
}

// Fulfill calcula y aplica el despacho sobre las líneas de la orden.
// Las líneas sin cantidad explícita (o todas, si no hay solicitudes) despachan su pendiente
// completo. Cada cantidad se recorta a [0, pendiente].
// Sobre una orden ya despachada es un no-op. No toca el libro: el caller registra
// un movimiento por cada resultado con Applied > 0.
func (o *SalesOrder) Fulfill(requests []LineQuantity, now time.Time) ([]LineOutcome, error) {
	if o.Status != SalesOrderFulfilled && !o.Status.IsOpen() {
		return nil, fmt.Errorf("%w: la orden debe estar confirmada para despachar (estado %s)", domain.ErrInvalidTransition, o.Status)
	}
	known := make(map[string]bool, len(o.Items))
	for _, it := range o.Items {
		known[it.ID] = true
	}
	explicit, err := indexLineRequests(requests, known)
	if err != nil {
		return nil, err
	}
	if o.Status == SalesOrderFulfilled {
		return nil, nil
	}

	outcomes := make([]LineOutcome, 0, len(o.Items))
	for _, it := range o.Items {
		remaining := it.Remaining()
		requested := remaining
		if q, ok := explicit[it.ID]; ok {
			requested = q
		}
		applied := clampToRemaining(requested, remaining)
		it.FulfilledQuantity = it.FulfilledQuantity.Add(applied)
		outcomes = append(outcomes, LineOutcome{
			LineID:    it.ID,
			ProductID: it.ProductID,
			Requested: requested,
			Applied:   applied,
		})
	}

	switch {
	case o.IsFullyFulfilled():
		err = o.transition(SalesOrderFulfilled, now)
	case o.anyFulfilled():
		err = o.transition(SalesOrderPartiallyFulfilled, now)
	}
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}
