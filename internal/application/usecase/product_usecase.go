package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock nunca se edita: se deriva del libro.
// Los productos no se eliminan, se desactivan.
type ProductUseCase struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, now: time.Now}
}

// Create crea un nuevo producto. SKU repetido en la empresa -> ErrDuplicate.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validatePrices(in.CostPrice, in.SalePrice, in.ReorderLevel); err != nil {
		return nil, err
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "unit"
	}
	track := true
	if in.TrackInventory != nil {
		track = *in.TrackInventory
	}
	now := uc.now()
	product := &entity.Product{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		SKU:            strings.TrimSpace(in.SKU),
		Name:           in.Name,
		Description:    in.Description,
		Unit:           unit,
		CostPrice:      in.CostPrice,
		SalePrice:      in.SalePrice,
		ReorderLevel:   in.ReorderLevel,
		TrackInventory: track,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto de la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza campos de catálogo.
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Unit != nil && strings.TrimSpace(*in.Unit) != "" {
		product.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.CostPrice != nil {
		product.CostPrice = *in.CostPrice
	}
	if in.SalePrice != nil {
		product.SalePrice = *in.SalePrice
	}
	if in.ReorderLevel != nil {
		product.ReorderLevel = *in.ReorderLevel
	}
	if in.TrackInventory != nil {
		product.TrackInventory = *in.TrackInventory
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if err := validatePrices(product.CostPrice, product.SalePrice, product.ReorderLevel); err != nil {
		return nil, err
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Deactivate desactiva el producto (soft delete).
func (uc *ProductUseCase) Deactivate(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	inactive := false
	return uc.Update(ctx, companyID, id, dto.UpdateProductRequest{IsActive: &inactive})
}

// List lista productos por empresa con paginación.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, filter repository.ProductFilter, limit, offset int) (*dto.ProductListResponse, error) {
	list, total, err := uc.repo.List(ctx, companyID, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

func validatePrices(cost, sale, reorder decimal.Decimal) error {
	if cost.LessThan(decimal.Zero) || sale.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: los precios no pueden ser negativos", domain.ErrInvalidInput)
	}
	if reorder.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: reorder_level no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:             p.ID,
		CompanyID:      p.CompanyID,
		SKU:            p.SKU,
		Name:           p.Name,
		Description:    p.Description,
		Unit:           p.Unit,
		CostPrice:      p.CostPrice,
		SalePrice:      p.SalePrice,
		ReorderLevel:   p.ReorderLevel,
		TrackInventory: p.TrackInventory,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
