package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Search     string
	OnlyActive bool
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Todas las lecturas filtran por companyID; un producto de otra empresa se reporta como inexistente (nil, nil).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
	GetByIDs(ctx context.Context, companyID string, ids []string) (map[string]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateCost(ctx context.Context, companyID, productID string, cost decimal.Decimal) error
	List(ctx context.Context, companyID string, filter ProductFilter, limit, offset int) ([]*entity.Product, int, error)
	ListTracked(ctx context.Context, companyID string) ([]*entity.Product, error)
}
