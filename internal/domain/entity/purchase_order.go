package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/domain"
)

// PurchaseOrderStatus estado de una orden de compra.
type PurchaseOrderStatus string

const (
	PurchaseOrderDraft             PurchaseOrderStatus = "draft"
	PurchaseOrderSent              PurchaseOrderStatus = "sent"
	PurchaseOrderPartiallyReceived PurchaseOrderStatus = "partially_received"
	PurchaseOrderReceived          PurchaseOrderStatus = "received"
	PurchaseOrderClosed            PurchaseOrderStatus = "closed"
	PurchaseOrderCancelled         PurchaseOrderStatus = "cancelled"
)

// IsValid indica si el estado es uno de los conocidos.
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderDraft, PurchaseOrderSent, PurchaseOrderPartiallyReceived,
		PurchaseOrderReceived, PurchaseOrderClosed, PurchaseOrderCancelled:
		return true
	}
	return false
}

// IsOpen indica si la orden sigue esperando mercancía del proveedor.
func (s PurchaseOrderStatus) IsOpen() bool {
	return s == PurchaseOrderSent || s == PurchaseOrderPartiallyReceived
}

// IsTerminal indica si el estado ya no admite transiciones.
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderReceived || s == PurchaseOrderClosed || s == PurchaseOrderCancelled
}

// CanTransitionTo define la máquina de estados de la orden de compra.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderDraft:
		return target == PurchaseOrderSent || target == PurchaseOrderCancelled
	case PurchaseOrderSent:
		return target == PurchaseOrderPartiallyReceived || target == PurchaseOrderReceived ||
			target == PurchaseOrderClosed || target == PurchaseOrderCancelled
	case PurchaseOrderPartiallyReceived:
		return target == PurchaseOrderPartiallyReceived || target == PurchaseOrderReceived ||
			target == PurchaseOrderClosed
	}
	return false
}

// PurchaseOrder cabecera de una orden de compra a proveedor.
type PurchaseOrder struct {
	ID           string
	CompanyID    string
	OrderNumber  string
	SupplierID   string // cuenta proveedora (opcional)
	Status       PurchaseOrderStatus
	Currency     string
	Notes        string
	ExpectedDate *time.Time
	TotalAmount  decimal.Decimal
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Items        []*PurchaseOrderItem
}

// PurchaseOrderItem línea de una orden de compra.
type PurchaseOrderItem struct {
	ID               string
	OrderID          string
	ProductID        string
	Description      string
	QuantityOrdered  decimal.Decimal
	QuantityReceived decimal.Decimal
	UnitCost         decimal.Decimal
}

// Validate revisa cantidad > 0, costo > 0 y que ninguno pase de 4 decimales.
func (i *PurchaseOrderItem) Validate() error {
	if i.ProductID == "" {
		return fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if !i.QuantityOrdered.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: quantity_ordered debe ser positiva", domain.ErrInvalidInput)
	}
	if !i.UnitCost.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: unit_cost debe ser positivo", domain.ErrInvalidInput)
	}
	if ExceedsScale(i.QuantityOrdered, QuantityScale) || ExceedsScale(i.UnitCost, QuantityScale) {
		return fmt.Errorf("%w: quantity_ordered y unit_cost admiten máximo %d decimales", domain.ErrInvalidInput, QuantityScale)
	}
	return nil
}

// Remaining cantidad pendiente de recibir, nunca negativa.
func (i *PurchaseOrderItem) Remaining() decimal.Decimal {
	r := i.QuantityOrdered.Sub(i.QuantityReceived)
	if r.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return r
}

// LineTotal quantity_ordered × unit_cost.
func (i *PurchaseOrderItem) LineTotal() decimal.Decimal {
	return i.QuantityOrdered.Mul(i.UnitCost)
}

// RecalculateTotal suma las líneas y redondea a 2 decimales.
func (o *PurchaseOrder) RecalculateTotal() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	o.TotalAmount = total.Round(2)
}

// IsFullyReceived true si todas las líneas de la orden están completas.
func (o *PurchaseOrder) IsFullyReceived() bool {
	for _, it := range o.Items {
		if it.QuantityReceived.LessThan(it.QuantityOrdered) {
			return false
		}
	}
	return true
}

func (o *PurchaseOrder) anyReceived() bool {
	for _, it := range o.Items {
		if it.QuantityReceived.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}

// IsLate true si la fecha esperada ya pasó y la orden no está cerrada de ninguna forma.
func (o *PurchaseOrder) IsLate(now time.Time) bool {
	if o.ExpectedDate == nil || o.Status.IsTerminal() {
		return false
	}
	return o.ExpectedDate.Before(now)
}

// EnsureEditable solo los borradores pueden editarse o eliminarse.
func (o *PurchaseOrder) EnsureEditable() error {
	if o.Status != PurchaseOrderDraft {
		return fmt.Errorf("%w: la orden %s está en estado %s", domain.ErrInvalidTransition, o.OrderNumber, o.Status)
	}
	return nil
}

func (o *PurchaseOrder) transition(target PurchaseOrderStatus, now time.Time) error {
	if !o.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = now
	return nil
}

// Send draft -> sent.
func (o *PurchaseOrder) Send(now time.Time) error {
	if o.Status != PurchaseOrderDraft {
		return fmt.Errorf("%w: solo se envían borradores", domain.ErrInvalidTransition)
	}
	return o.transition(PurchaseOrderSent, now)
}

// Cancel permitido en draft o en sent mientras no se haya recibido nada.
func (o *PurchaseOrder) Cancel(now time.Time) error {
	if o.anyReceived() {
		return fmt.Errorf("%w: la orden ya tiene recepciones, use close", domain.ErrInvalidTransition)
	}
	return o.transition(PurchaseOrderCancelled, now)
}

// Close da por terminada una orden enviada o parcialmente recibida; lo pendiente no llegará.
func (o *PurchaseOrder) Close(now time.Time) error {
	return o.transition(PurchaseOrderClosed, now)
}

// Receive aplica una recepción sobre las líneas de la orden.
// Sin recepciones explícitas se recibe todo lo pendiente; con recepciones, las líneas omitidas
// no se tocan. Cada cantidad se recorta a [0, pendiente]. La cabecera pasa a received solo
// cuando todas las líneas de la orden están completas, no solo las incluidas en la solicitud.
// Una orden ya recibida, cerrada o cancelada no admite recepciones.
func (o *PurchaseOrder) Receive(receipts []LineQuantity, now time.Time) ([]LineOutcome, error) {
	if !o.Status.IsOpen() {
		return nil, fmt.Errorf("%w: la orden debe estar enviada para recibir (estado %s)", domain.ErrInvalidTransition, o.Status)
	}
	known := make(map[string]bool, len(o.Items))
	for _, it := range o.Items {
		known[it.ID] = true
	}
	explicit, err := indexLineRequests(receipts, known)
	if err != nil {
		return nil, err
	}

	outcomes := make([]LineOutcome, 0, len(o.Items))
	for _, it := range o.Items {
		remaining := it.Remaining()
		requested := remaining
		if len(receipts) > 0 {
			q, ok := explicit[it.ID]
			if !ok {
				continue
			}
			requested = q
		}
		applied := clampToRemaining(requested, remaining)
		it.QuantityReceived = it.QuantityReceived.Add(applied)
		outcomes = append(outcomes, LineOutcome{
			LineID:    it.ID,
			ProductID: it.ProductID,
			Requested: requested,
			Applied:   applied,
		})
	}

	switch {
	case o.IsFullyReceived():
		err = o.transition(PurchaseOrderReceived, now)
	case o.anyReceived():
		err = o.transition(PurchaseOrderPartiallyReceived, now)
	}
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}
