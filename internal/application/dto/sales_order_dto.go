package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrderItemRequest línea de una orden de venta.
type SalesOrderItemRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	Description string          `json:"description" validate:"max=500"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
}

// CreateSalesOrderRequest body de POST /api/sales-orders.
type CreateSalesOrderRequest struct {
	AccountID string                  `json:"account_id"`
	DealID    string                  `json:"deal_id"`
	Currency  string                  `json:"currency" validate:"omitempty,len=3"`
	Notes     string                  `json:"notes" validate:"max=2000"`
	DueDate   *time.Time              `json:"due_date"`
	Items     []SalesOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateSalesOrderRequest body de PUT /api/sales-orders/:id (solo borradores).
// Si Items viene, reemplaza todas las líneas y se recalcula el total.
type UpdateSalesOrderRequest struct {
	AccountID *string                 `json:"account_id"`
	DealID    *string                 `json:"deal_id"`
	Currency  *string                 `json:"currency" validate:"omitempty,len=3"`
	Notes     *string                 `json:"notes" validate:"omitempty,max=2000"`
	DueDate   *time.Time              `json:"due_date"`
	Items     []SalesOrderItemRequest `json:"items" validate:"omitempty,min=1,dive"`
}

// LineQuantityRequest cantidad para una línea concreta (despacho o recepción).
// En recepciones también se acepta quantity_received; si viene, tiene prioridad.
type LineQuantityRequest struct {
	ItemID           string           `json:"item_id" validate:"required"`
	Quantity         decimal.Decimal  `json:"quantity"`
	QuantityReceived *decimal.Decimal `json:"quantity_received,omitempty"`
}

// Amount cantidad efectiva de la línea.
func (r LineQuantityRequest) Amount() decimal.Decimal {
	if r.QuantityReceived != nil {
		return *r.QuantityReceived
	}
	return r.Quantity
}

// FulfillRequest body de POST /api/sales-orders/:id/fulfill.
// Sin items se despacha todo lo pendiente; con items, las líneas omitidas despachan su pendiente completo.
type FulfillRequest struct {
	WarehouseID string                `json:"warehouse_id" validate:"required"`
	Items       []LineQuantityRequest `json:"items" validate:"omitempty,dive"`
}

// SalesOrderItemResponse línea de orden de venta.
type SalesOrderItemResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Description       string          `json:"description,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Discount          decimal.Decimal `json:"discount"`
	FulfilledQuantity decimal.Decimal `json:"fulfilled_quantity"`
	Remaining         decimal.Decimal `json:"remaining"`
	LineTotal         decimal.Decimal `json:"line_total"`
}

// SalesOrderResponse orden de venta con sus líneas.
type SalesOrderResponse struct {
	ID          string                   `json:"id"`
	OrderNumber string                   `json:"order_number"`
	AccountID   string                   `json:"account_id,omitempty"`
	DealID      string                   `json:"deal_id,omitempty"`
	Status      string                   `json:"status"`
	Currency    string                   `json:"currency"`
	Notes       string                   `json:"notes,omitempty"`
	DueDate     *time.Time               `json:"due_date,omitempty"`
	TotalAmount decimal.Decimal          `json:"total_amount"`
	CreatedBy   string                   `json:"created_by,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	Items       []SalesOrderItemResponse `json:"items"`
}

// SalesOrderListResponse lista paginada de órdenes de venta.
type SalesOrderListResponse struct {
	Items []SalesOrderResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// LineOutcomeResponse resultado por línea de un despacho o recepción.
// Clamped indica que lo aplicado difiere de lo solicitado.
type LineOutcomeResponse struct {
	ItemID    string          `json:"item_id"`
	ProductID string          `json:"product_id"`
	Requested decimal.Decimal `json:"requested"`
	Applied   decimal.Decimal `json:"applied"`
	Clamped   bool            `json:"clamped"`
}

// FulfillmentResponse resultado de un despacho.
type FulfillmentResponse struct {
	Order     SalesOrderResponse    `json:"order"`
	Lines     []LineOutcomeResponse `json:"lines"`
	Movements []MovementResponse    `json:"movements"`
}
