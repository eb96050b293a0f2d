package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura de venta.
const (
	InvoiceDraft     = "draft"
	InvoiceSent      = "sent"
	InvoicePaid      = "paid"
	InvoiceCancelled = "cancelled"
)

// Invoice cabecera de factura (solo lectura; la emite el módulo de facturación).
type Invoice struct {
	ID            string
	CompanyID     string
	AccountID     string
	InvoiceNumber string
	Amount        decimal.Decimal
	Currency      string
	Status        string
	DueDate       *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsUnpaid true para facturas emitidas o en borrador que aún no se cobran.
func (i *Invoice) IsUnpaid() bool {
	return i.Status == InvoiceDraft || i.Status == InvoiceSent
}

// DaysOverdue días completos de atraso respecto a now; 0 si no está vencida.
func (i *Invoice) DaysOverdue(now time.Time) int {
	if i.DueDate == nil || !i.DueDate.Before(now) {
		return 0
	}
	return int(now.Sub(*i.DueDate).Hours() / 24)
}
