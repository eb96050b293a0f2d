package documents

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento.
const (
	KindSalesOrder    = "sales_order"
	KindPurchaseOrder = "purchase_order"
)

// OrderDocument vista desnormalizada de una orden, lista para renderizar.
type OrderDocument struct {
	Kind           string
	Issuer         string
	OrderID        string
	OrderNumber    string
	Status         string
	IssueDate      time.Time
	DueDate        *time.Time
	Currency       string
	CounterpartyID string
	Counterparty   string
	Notes          string
	Lines          []DocumentLine
	Total          decimal.Decimal
}

// DocumentLine línea de la orden con el avance (despachado o recibido).
type DocumentLine struct {
	LineID      string
	SKU         string
	Description string
	Unit        string
	Quantity    decimal.Decimal
	Done        decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

// PDFGenerator renderiza una orden como PDF.
type PDFGenerator interface {
	GenerateOrderPDF(ctx context.Context, doc *OrderDocument) ([]byte, error)
}

// OrderXMLEncoder serializa una orden de compra como UBL 2.1 Order.
type OrderXMLEncoder interface {
	EncodeOrder(ctx context.Context, doc *OrderDocument) ([]byte, error)
}
