package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/memory"
)

func TestProduct_Create(t *testing.T) {
	uc := NewProductUseCase(memory.New().Repos().Products)
	ctx := context.Background()

	p, err := uc.Create(ctx, company, dto.CreateProductRequest{SKU: " TOR-10 ", Name: "Tornillo", CostPrice: decimal.NewFromInt(2)})
	require.NoError(t, err)
	assert.Equal(t, "TOR-10", p.SKU)
	assert.Equal(t, "unit", p.Unit)
	assert.True(t, p.TrackInventory)
	assert.True(t, p.IsActive)

	_, err = uc.Create(ctx, company, dto.CreateProductRequest{SKU: "tor-10", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// El SKU es único por empresa, no global.
	_, err = uc.Create(ctx, "c-2", dto.CreateProductRequest{SKU: "TOR-10", Name: "Tornillo"})
	assert.NoError(t, err)

	_, err = uc.Create(ctx, company, dto.CreateProductRequest{SKU: "NEG", Name: "Negativo", SalePrice: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProduct_UpdateYDeactivate(t *testing.T) {
	uc := NewProductUseCase(memory.New().Repos().Products)
	ctx := context.Background()

	a, err := uc.Create(ctx, company, dto.CreateProductRequest{SKU: "A-1", Name: "Arandela"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, company, dto.CreateProductRequest{SKU: "B-1", Name: "Broca"})
	require.NoError(t, err)

	name := "Arandela plana"
	reorder := decimal.NewFromInt(12)
	up, err := uc.Update(ctx, company, a.ID, dto.UpdateProductRequest{Name: &name, ReorderLevel: &reorder})
	require.NoError(t, err)
	assert.Equal(t, "Arandela plana", up.Name)
	assert.True(t, up.ReorderLevel.Equal(reorder))

	negative := decimal.NewFromInt(-3)
	_, err = uc.Update(ctx, company, a.ID, dto.UpdateProductRequest{ReorderLevel: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	off, err := uc.Deactivate(ctx, company, a.ID)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	active, err := uc.List(ctx, company, repository.ProductFilter{OnlyActive: true}, 20, 0)
	require.NoError(t, err)
	require.Len(t, active.Items, 1)
	assert.Equal(t, "B-1", active.Items[0].SKU)

	found, err := uc.List(ctx, company, repository.ProductFilter{Search: "arandela"}, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, found.Page.Total)

	_, err = uc.Deactivate(ctx, company, "p-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
