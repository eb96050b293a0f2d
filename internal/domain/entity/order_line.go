package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/domain"
)

// Series de numeración de órdenes.
const (
	SeriesSalesOrder    = "SO"
	SeriesPurchaseOrder = "PO"
)

// FormatOrderNumber arma el número legible de una orden (SO-0001, PO-0042).
func FormatOrderNumber(series string, seq int64) string {
	return fmt.Sprintf("%s-%04d", series, seq)
}

// Escalas de las columnas NUMERIC: cantidades y montos unitarios con 4 decimales, descuentos con 2.
const (
	QuantityScale int32 = 4
	DiscountScale int32 = 2
)

// ExceedsScale indica si d tiene más decimales de los que admite la columna.
func ExceedsScale(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Truncate(places))
}

// LineQuantity cantidad solicitada para una línea concreta de una orden (despacho o recepción).
type LineQuantity struct {
	LineID   string
	Quantity decimal.Decimal
}

// LineOutcome resultado por línea de un despacho o recepción.
// Requested es lo pedido por el cliente (o el pendiente completo si no envió cantidades);
// Applied es lo que efectivamente se movió tras recortar a [0, pendiente].
type LineOutcome struct {
	LineID    string
	ProductID string
	Requested decimal.Decimal
	Applied   decimal.Decimal
}

// Clamped indica si la cantidad aplicada difiere de la solicitada.
func (o LineOutcome) Clamped() bool {
	return !o.Requested.Equal(o.Applied)
}

// clampToRemaining recorta q al rango [0, remaining].
func clampToRemaining(q, remaining decimal.Decimal) decimal.Decimal {
	if q.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if remaining.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return decimal.Min(q, remaining)
}

// indexLineRequests valida las solicitudes contra las líneas reales de la orden antes de mutar nada.
// Línea desconocida -> ErrInvalidReference; línea repetida o sin id -> ErrInvalidInput.
func indexLineRequests(requests []LineQuantity, known map[string]bool) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(requests))
	for _, r := range requests {
		if r.LineID == "" {
			return nil, fmt.Errorf("%w: line_id requerido", domain.ErrInvalidInput)
		}
		if !known[r.LineID] {
			return nil, fmt.Errorf("%w: la línea %s no pertenece a la orden", domain.ErrInvalidReference, r.LineID)
		}
		if ExceedsScale(r.Quantity, QuantityScale) {
			return nil, fmt.Errorf("%w: quantity admite máximo %d decimales", domain.ErrInvalidInput, QuantityScale)
		}
		if _, dup := out[r.LineID]; dup {
			return nil, fmt.Errorf("%w: línea %s repetida", domain.ErrInvalidInput, r.LineID)
		}
		out[r.LineID] = r.Quantity
	}
	return out, nil
}
