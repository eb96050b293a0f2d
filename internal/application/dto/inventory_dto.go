package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevelResponse existencias derivadas de un producto en una bodega.
type StockLevelResponse struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	Unit          string          `json:"unit"`
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	OnHand        decimal.Decimal `json:"on_hand"`
	Reserved      decimal.Decimal `json:"reserved"`
	Available     decimal.Decimal `json:"available"`
	ReorderLevel  decimal.Decimal `json:"reorder_level"`
	IsLowStock    bool            `json:"is_low_stock"`
}

// StockLevelListResponse reporte de existencias.
type StockLevelListResponse struct {
	Items []StockLevelResponse `json:"items"`
	Total int                  `json:"total"`
}

// ProductAvailabilityResponse on-hand, reservado y disponible de un producto.
type ProductAvailabilityResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id,omitempty"`
	OnHand      decimal.Decimal `json:"on_hand"`
	Reserved    decimal.Decimal `json:"reserved"`
	Available   decimal.Decimal `json:"available"`
	IsLowStock  bool            `json:"is_low_stock"`
}

// MovementResponse fila del libro de inventario.
type MovementResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	Type          string          `json:"type"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementListResponse página del libro.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementListRequest filtros del libro (query string).
type MovementListRequest struct {
	ProductID   string `query:"product_id"`
	WarehouseID string `query:"warehouse_id"`
	Type        string `query:"type" validate:"omitempty,oneof=purchase sale transfer adjustment return"`
	PageRequest
}

// AdjustmentRequest body de POST /api/inventory/adjustment.
// Quantity es con signo y distinta de cero.
type AdjustmentRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Type        string          `json:"type" validate:"omitempty,oneof=adjustment return"`
	Notes       string          `json:"notes" validate:"max=500"`
}

// TransferRequest body de POST /api/inventory/transfers.
type TransferRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	FromWarehouseID string          `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string          `json:"to_warehouse_id" validate:"required,nefield=FromWarehouseID"`
	Quantity        decimal.Decimal `json:"quantity"`
	Notes           string          `json:"notes" validate:"max=500"`
}

// TransferResponse las dos filas generadas por una transferencia.
type TransferResponse struct {
	Out MovementResponse `json:"out"`
	In  MovementResponse `json:"in"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un SKU en o bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	OnHand            decimal.Decimal `json:"on_hand"`
	Reserved          decimal.Decimal `json:"reserved"`
	Available         decimal.Decimal `json:"available"`
	ReorderLevel      decimal.Decimal `json:"reorder_level"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
}
