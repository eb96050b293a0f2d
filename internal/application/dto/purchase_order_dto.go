package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderItemRequest línea de una orden de compra.
type PurchaseOrderItemRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	Description     string          `json:"description" validate:"max=500"`
	QuantityOrdered decimal.Decimal `json:"quantity_ordered"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest body de POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID   string                     `json:"supplier_id"`
	Currency     string                     `json:"currency" validate:"omitempty,len=3"`
	Notes        string                     `json:"notes" validate:"max=2000"`
	ExpectedDate *time.Time                 `json:"expected_date"`
	Items        []PurchaseOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdatePurchaseOrderRequest body de PUT /api/purchase-orders/:id (solo borradores).
type UpdatePurchaseOrderRequest struct {
	SupplierID   *string                    `json:"supplier_id"`
	Currency     *string                    `json:"currency" validate:"omitempty,len=3"`
	Notes        *string                    `json:"notes" validate:"omitempty,max=2000"`
	ExpectedDate *time.Time                 `json:"expected_date"`
	Items        []PurchaseOrderItemRequest `json:"items" validate:"omitempty,min=1,dive"`
}

// ReceiveRequest body de POST /api/purchase-orders/:id/receive.
type ReceiveRequest struct {
	WarehouseID string                `json:"warehouse_id" validate:"required"`
	Items       []LineQuantityRequest `json:"items" validate:"omitempty,dive"`
}

// PurchaseOrderItemResponse línea de orden de compra.
type PurchaseOrderItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Description      string          `json:"description,omitempty"`
	QuantityOrdered  decimal.Decimal `json:"quantity_ordered"`
	QuantityReceived decimal.Decimal `json:"quantity_received"`
	Remaining        decimal.Decimal `json:"remaining"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// PurchaseOrderResponse orden de compra con sus líneas.
type PurchaseOrderResponse struct {
	ID           string                      `json:"id"`
	OrderNumber  string                      `json:"order_number"`
	SupplierID   string                      `json:"supplier_id,omitempty"`
	Status       string                      `json:"status"`
	Currency     string                      `json:"currency"`
	Notes        string                      `json:"notes,omitempty"`
	ExpectedDate *time.Time                  `json:"expected_date,omitempty"`
	TotalAmount  decimal.Decimal             `json:"total_amount"`
	CreatedBy    string                      `json:"created_by,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	Items        []PurchaseOrderItemResponse `json:"items"`
}

// PurchaseOrderListResponse lista paginada de órdenes de compra.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ReceiptResponse resultado de una recepción.
type ReceiptResponse struct {
	Order     PurchaseOrderResponse `json:"order"`
	Lines     []LineOutcomeResponse `json:"lines"`
	Movements []MovementResponse    `json:"movements"`
}
