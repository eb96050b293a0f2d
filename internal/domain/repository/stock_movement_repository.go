package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// StockMovementRepository puerto del libro de inventario. Solo inserta y lee: no hay Update ni Delete.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, companyID string, filter entity.MovementFilter, limit, offset int) ([]*entity.StockMovement, int, error)
	// OnHand suma quantity_delta del producto; warehouseID vacío = todas las bodegas.
	OnHand(ctx context.Context, companyID, productID, warehouseID string) (decimal.Decimal, error)
	// Balances agrega el libro por (producto, bodega); warehouseID vacío = todas.
	Balances(ctx context.Context, companyID, warehouseID string) ([]entity.StockBalance, error)
	// OnHandByProduct agrega el libro por producto sobre todas las bodegas.
	OnHandByProduct(ctx context.Context, companyID string) (map[string]decimal.Decimal, error)
	// HasMovements indica si la bodega tiene filas en el libro.
	HasMovements(ctx context.Context, companyID, warehouseID string) (bool, error)
}
