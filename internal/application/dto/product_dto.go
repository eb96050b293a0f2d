package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU            string          `json:"sku" validate:"required,min=1,max=100"`
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	Description    string          `json:"description" validate:"max=2000"`
	Unit           string          `json:"unit" validate:"omitempty,max=20"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	ReorderLevel   decimal.Decimal `json:"reorder_level"`
	TrackInventory *bool           `json:"track_inventory"`
}

// UpdateProductRequest entrada para actualizar un producto. El stock nunca se edita aquí.
type UpdateProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string          `json:"description" validate:"omitempty,max=2000"`
	Unit           *string          `json:"unit" validate:"omitempty,max=20"`
	CostPrice      *decimal.Decimal `json:"cost_price"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	ReorderLevel   *decimal.Decimal `json:"reorder_level"`
	TrackInventory *bool            `json:"track_inventory"`
	IsActive       *bool            `json:"is_active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Unit           string          `json:"unit"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	ReorderLevel   decimal.Decimal `json:"reorder_level"`
	TrackInventory bool            `json:"track_inventory"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
