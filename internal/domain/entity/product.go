package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo de la empresa.
// No guarda stock: el disponible se deriva siempre del libro de movimientos.
type Product struct {
	ID             string
	CompanyID      string
	SKU            string // código único por empresa
	Name           string
	Description    string
	Unit           string // unidad de medida (unit, kg, box...)
	CostPrice      decimal.Decimal
	SalePrice      decimal.Decimal
	ReorderLevel   decimal.Decimal // 0 = sin punto de reorden
	TrackInventory bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WatchesReorder indica si el producto participa en la alerta de stock bajo.
func (p *Product) WatchesReorder() bool {
	return p.TrackInventory && p.ReorderLevel.GreaterThan(decimal.Zero)
}
