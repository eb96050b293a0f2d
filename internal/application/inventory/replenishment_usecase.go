package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/domain/inventory"
)

// Replenishment lista los productos en o bajo su punto de reorden con la cantidad sugerida
// de pedido: lo necesario para llegar a 2 × reorder_level de disponible.
// Se ordena por disponible ascendente (los más urgentes primero).
func (uc *StockUseCase) Replenishment(ctx context.Context, companyID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.repos.Products.ListTracked(ctx, companyID)
	if err != nil {
		return nil, err
	}
	onHand, err := uc.repos.Movements.OnHandByProduct(ctx, companyID)
	if err != nil {
		return nil, err
	}
	reserved, err := uc.repos.SalesOrders.ReservedByProduct(ctx, companyID)
	if err != nil {
		return nil, err
	}

	two := decimal.NewFromInt(2)
	out := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, p := range products {
		qty := onHand[p.ID]
		if !p.IsActive || !inventory.IsLowStock(p, qty) {
			continue
		}
		res := reserved[p.ID]
		avail := inventory.Available(qty, res)
		suggested := p.ReorderLevel.Mul(two).Sub(avail)
		if suggested.LessThan(decimal.Zero) {
			suggested = decimal.Zero
		}
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ProductID:         p.ID,
			SKU:               p.SKU,
			ProductName:       p.Name,
			OnHand:            qty,
			Reserved:          res,
			Available:         avail,
			ReorderLevel:      p.ReorderLevel,
			SuggestedOrderQty: suggested,
			UnitCost:          p.CostPrice,
			EstimatedCost:     suggested.Mul(p.CostPrice).Round(2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Available.Equal(out[j].Available) {
			return out[i].Available.LessThan(out[j].Available)
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}
