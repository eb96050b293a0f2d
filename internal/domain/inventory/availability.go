package inventory

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// ReservedByProduct suma por producto lo pendiente de las líneas de órdenes abiertas.
// Cada línea se recorta a >= 0 antes de sumar; los productos sin reserva no aparecen.
func ReservedByProduct(orders []*entity.SalesOrder) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, o := range orders {
		if !o.Status.IsOpen() {
			continue
		}
		for _, it := range o.Items {
			out[it.ProductID] = out[it.ProductID].Add(it.Remaining())
		}
	}
	return out
}

// Available max(0, onHand − reserved).
func Available(onHand, reserved decimal.Decimal) decimal.Decimal {
	a := onHand.Sub(reserved)
	if a.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return a
}

// IsLowStock onHand <= reorder_level, solo para productos con seguimiento y punto de reorden.
func IsLowStock(p *entity.Product, onHand decimal.Decimal) bool {
	if !p.WatchesReorder() {
		return false
	}
	return onHand.LessThanOrEqual(p.ReorderLevel)
}

// StockLevel fila del reporte de existencias (producto × bodega).
type StockLevel struct {
	ProductID     string
	SKU           string
	ProductName   string
	Unit          string
	WarehouseID   string
	WarehouseName string
	OnHand        decimal.Decimal
	Reserved      decimal.Decimal
	Available     decimal.Decimal
	ReorderLevel  decimal.Decimal
	IsLowStock    bool
}

// BuildStockLevels arma el reporte de existencias a partir de los saldos agregados del libro
// y de lo reservado por producto. Reserved es global al producto; el disponible por bodega
// se calcula contra ese total. El bajo stock se evalúa sobre el on-hand total del producto.
func BuildStockLevels(
	products []*entity.Product,
	warehouses []*entity.Warehouse,
	balances []entity.StockBalance,
	reserved map[string]decimal.Decimal,
) []StockLevel {
	onHand := make(map[[2]string]decimal.Decimal, len(balances))
	productTotal := make(map[string]decimal.Decimal)
	for _, b := range balances {
		onHand[[2]string{b.ProductID, b.WarehouseID}] = b.OnHand
		productTotal[b.ProductID] = productTotal[b.ProductID].Add(b.OnHand)
	}

	levels := make([]StockLevel, 0, len(products)*len(warehouses))
	for _, p := range products {
		if !p.IsActive || !p.TrackInventory {
			continue
		}
		res := reserved[p.ID]
		low := IsLowStock(p, productTotal[p.ID])
		for _, w := range warehouses {
			qty := onHand[[2]string{p.ID, w.ID}]
			levels = append(levels, StockLevel{
				ProductID:     p.ID,
				SKU:           p.SKU,
				ProductName:   p.Name,
				Unit:          p.Unit,
				WarehouseID:   w.ID,
				WarehouseName: w.Name,
				OnHand:        qty,
				Reserved:      res,
				Available:     Available(qty, res),
				ReorderLevel:  p.ReorderLevel,
				IsLowStock:    low,
			})
		}
	}
	sort.SliceStable(levels, func(i, j int) bool {
		if levels[i].SKU != levels[j].SKU {
			return levels[i].SKU < levels[j].SKU
		}
		return levels[i].WarehouseName < levels[j].WarehouseName
	})
	return levels
}
