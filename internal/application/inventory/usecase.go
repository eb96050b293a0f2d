package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/inventory"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// StockUseCase consultas del libro y movimientos manuales (ajustes y transferencias).
// On-hand, reservado y disponible se derivan en cada consulta; no hay contadores persistidos.
type StockUseCase struct {
	repos ports.Repos
	tx    ports.TxRunner
	log   *logger.Logger
	now   ports.Clock
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(repos ports.Repos, tx ports.TxRunner, log *logger.Logger) *StockUseCase {
	return &StockUseCase{repos: repos, tx: tx, log: log, now: time.Now}
}

// WithClock reemplaza la fuente de tiempo (tests).
func (uc *StockUseCase) WithClock(clock ports.Clock) *StockUseCase {
	uc.now = clock
	return uc
}

// StockLevels reporte producto × bodega; warehouseID vacío = todas las bodegas.
func (uc *StockUseCase) StockLevels(ctx context.Context, companyID, warehouseID string) (*dto.StockLevelListResponse, error) {
	warehouses, err := uc.repos.Warehouses.ListAll(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if warehouseID != "" {
		var only []*entity.Warehouse
		for _, w := range warehouses {
			if w.ID == warehouseID {
				only = append(only, w)
			}
		}
		if len(only) == 0 {
			return nil, domain.ErrNotFound
		}
		warehouses = only
	}
	products, err := uc.repos.Products.ListTracked(ctx, companyID)
	if err != nil {
		return nil, err
	}
	balances, err := uc.repos.Movements.Balances(ctx, companyID, "")
	if err != nil {
		return nil, err
	}
	reserved, err := uc.repos.SalesOrders.ReservedByProduct(ctx, companyID)
	if err != nil {
		return nil, err
	}

	levels := inventory.BuildStockLevels(products, warehouses, balances, reserved)
	items := make([]dto.StockLevelResponse, 0, len(levels))
	for _, l := range levels {
		items = append(items, dto.StockLevelResponse{
			ProductID:     l.ProductID,
			SKU:           l.SKU,
			ProductName:   l.ProductName,
			Unit:          l.Unit,
			WarehouseID:   l.WarehouseID,
			WarehouseName: l.WarehouseName,
			OnHand:        l.OnHand,
			Reserved:      l.Reserved,
			Available:     l.Available,
			ReorderLevel:  l.ReorderLevel,
			IsLowStock:    l.IsLowStock,
		})
	}
	return &dto.StockLevelListResponse{Items: items, Total: len(items)}, nil
}

// Availability on-hand, reservado y disponible de un producto (opcionalmente en una bodega).
func (uc *StockUseCase) Availability(ctx context.Context, companyID, productID, warehouseID string) (*dto.ProductAvailabilityResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if warehouseID != "" {
		wh, err := uc.repos.Warehouses.GetByID(ctx, companyID, warehouseID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.ErrNotFound
		}
	}
	onHand, err := uc.repos.Movements.OnHand(ctx, companyID, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	total := onHand
	if warehouseID != "" {
		if total, err = uc.repos.Movements.OnHand(ctx, companyID, productID, ""); err != nil {
			return nil, err
		}
	}
	reserved, err := uc.repos.SalesOrders.Reserved(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	return &dto.ProductAvailabilityResponse{
		ProductID:   productID,
		WarehouseID: warehouseID,
		OnHand:      onHand,
		Reserved:    reserved,
		Available:   inventory.Available(onHand, reserved),
		IsLowStock:  inventory.IsLowStock(product, total),
	}, nil
}

// Movements página del libro, más recientes primero.
func (uc *StockUseCase) Movements(ctx context.Context, companyID string, in dto.MovementListRequest) (*dto.MovementListResponse, error) {
	in.DefaultPage()
	if in.Type != "" && !entity.IsValidMovementType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	filter := entity.MovementFilter{ProductID: in.ProductID, WarehouseID: in.WarehouseID, Type: in.Type}
	list, total, err := uc.repos.Movements.List(ctx, companyID, filter, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.MovementListResponse{
		Items: ToMovementResponses(list),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// ProductHistory libro de un producto concreto; el producto debe ser de la empresa.
func (uc *StockUseCase) ProductHistory(ctx context.Context, companyID, productID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.Movements(ctx, companyID, dto.MovementListRequest{ProductID: productID, PageRequest: page})
}
