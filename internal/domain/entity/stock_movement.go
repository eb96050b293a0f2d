package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementPurchase   = "purchase"   // recepción de orden de compra
	MovementSale       = "sale"       // despacho de orden de venta
	MovementTransfer   = "transfer"   // entre bodegas (dos filas)
	MovementAdjustment = "adjustment" // ajuste manual
	MovementReturn     = "return"     // devolución
)

// Tipos de referencia de un movimiento.
const (
	ReferenceSalesOrder    = "sales_order"
	ReferencePurchaseOrder = "purchase_order"
	ReferenceManual        = "manual"
	ReferenceTransfer      = "transfer"
)

// StockMovement es un hecho inmutable del libro de inventario.
// Las filas nunca se actualizan ni se eliminan: una corrección es un nuevo movimiento compensatorio.
type StockMovement struct {
	ID            string
	CompanyID     string
	ProductID     string
	WarehouseID   string
	Type          string          // purchase, sale, transfer, adjustment, return
	QuantityDelta decimal.Decimal // positivo = entrada, negativo = salida
	ReferenceType string
	ReferenceID   string
	Notes         string
	CreatedBy     string // UserID
	CreatedAt     time.Time
}

// IsValidMovementType indica si t es un tipo de movimiento conocido.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementPurchase, MovementSale, MovementTransfer, MovementAdjustment, MovementReturn:
		return true
	}
	return false
}

// MovementFilter filtros del listado del libro.
type MovementFilter struct {
	ProductID     string
	WarehouseID   string
	Type          string
	ReferenceType string
	ReferenceID   string
}

// StockBalance saldo derivado de un par (producto, bodega).
type StockBalance struct {
	ProductID   string
	WarehouseID string
	OnHand      decimal.Decimal
}
