package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// WarehouseUseCase casos de uso CRUD para bodegas.
// Marcar una bodega como default desmarca las demás en la misma transacción.
type WarehouseUseCase struct {
	repos ports.Repos
	tx    ports.TxRunner
	now   ports.Clock
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repos ports.Repos, tx ports.TxRunner) *WarehouseUseCase {
	return &WarehouseUseCase{repos: repos, tx: tx, now: time.Now}
}

// Create crea una nueva bodega.
func (uc *WarehouseUseCase) Create(ctx context.Context, companyID string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	now := uc.now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		Location:  in.Location,
		IsDefault: in.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		if warehouse.IsDefault {
			if err := r.Warehouses.ClearDefault(ctx, companyID, warehouse.ID); err != nil {
				return err
			}
		}
		return r.Warehouses.Create(ctx, warehouse)
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega de la empresa.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.repos.Warehouses.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}
	return toWarehouseResponse(warehouse), nil
}

// Update actualiza una bodega.
func (uc *WarehouseUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	var out *entity.Warehouse
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		warehouse, err := r.Warehouses.GetByID(ctx, companyID, id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			warehouse.Name = *in.Name
		}
		if in.Location != nil {
			warehouse.Location = *in.Location
		}
		if in.IsDefault != nil {
			warehouse.IsDefault = *in.IsDefault
			if warehouse.IsDefault {
				if err := r.Warehouses.ClearDefault(ctx, companyID, warehouse.ID); err != nil {
					return err
				}
			}
		}
		warehouse.UpdatedAt = uc.now()
		if err := r.Warehouses.Update(ctx, warehouse); err != nil {
			return err
		}
		out = warehouse
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(out), nil
}

// List lista las bodegas de la empresa.
func (uc *WarehouseUseCase) List(ctx context.Context, companyID string) (*dto.WarehouseListResponse, error) {
	list, err := uc.repos.Warehouses.ListAll(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: len(items), Total: len(items)},
	}, nil
}

// Delete elimina una bodega. No se permite borrar la bodega por defecto ni una con movimientos
// en el libro (las filas del libro nunca se borran).
func (uc *WarehouseUseCase) Delete(ctx context.Context, companyID, id string) error {
	return uc.tx.Run(ctx, func(r ports.Repos) error {
		warehouse, err := r.Warehouses.GetByID(ctx, companyID, id)
		if err != nil {
			return err
		}
		if warehouse == nil {
			return domain.ErrNotFound
		}
		if warehouse.IsDefault {
			return fmt.Errorf("%w: no se puede eliminar la bodega por defecto", domain.ErrConflict)
		}
		used, err := r.Movements.HasMovements(ctx, companyID, id)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: la bodega tiene movimientos de inventario", domain.ErrConflict)
		}
		return r.Warehouses.Delete(ctx, companyID, id)
	})
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		CompanyID: w.CompanyID,
		Name:      w.Name,
		Location:  w.Location,
		IsDefault: w.IsDefault,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
