package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/memory"
)

const company = "c-1"

func newWarehouseUseCase(t *testing.T) (*WarehouseUseCase, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewWarehouseUseCase(store.Repos(), memory.NewTxRunner(store)), store
}

func TestWarehouse_UnaSolaPorDefecto(t *testing.T) {
	uc, _ := newWarehouseUseCase(t)
	ctx := context.Background()

	a, err := uc.Create(ctx, company, dto.CreateWarehouseRequest{Name: "Principal", IsDefault: true})
	require.NoError(t, err)
	b, err := uc.Create(ctx, company, dto.CreateWarehouseRequest{Name: "Norte", IsDefault: true})
	require.NoError(t, err)

	got, err := uc.GetByID(ctx, company, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	yes := true
	_, err = uc.Update(ctx, company, a.ID, dto.UpdateWarehouseRequest{IsDefault: &yes})
	require.NoError(t, err)

	list, err := uc.List(ctx, company)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	defaults := 0
	for _, w := range list.Items {
		if w.IsDefault {
			defaults++
			assert.Equal(t, a.ID, w.ID)
		}
	}
	assert.Equal(t, 1, defaults)
	assert.NotEqual(t, a.ID, b.ID)

	_, err = uc.Create(ctx, company, dto.CreateWarehouseRequest{Name: "principal"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.GetByID(ctx, "otra", a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWarehouse_Delete(t *testing.T) {
	uc, store := newWarehouseUseCase(t)
	ctx := context.Background()

	def, err := uc.Create(ctx, company, dto.CreateWarehouseRequest{Name: "Principal", IsDefault: true})
	require.NoError(t, err)
	used, err := uc.Create(ctx, company, dto.CreateWarehouseRequest{Name: "Norte"})
	require.NoError(t, err)
	empty, err := uc.Create(ctx, company, dto.CreateWarehouseRequest{Name: "Sur"})
	require.NoError(t, err)
	require.NoError(t, store.Repos().Movements.Append(ctx, &entity.StockMovement{
		ID: "m-1", CompanyID: company, ProductID: "p-1", WarehouseID: used.ID,
		Type: entity.MovementAdjustment, QuantityDelta: decimal.NewFromInt(3),
	}))

	assert.ErrorIs(t, uc.Delete(ctx, company, def.ID), domain.ErrConflict)
	assert.ErrorIs(t, uc.Delete(ctx, company, used.ID), domain.ErrConflict)
	assert.ErrorIs(t, uc.Delete(ctx, company, "wh-404"), domain.ErrNotFound)
	require.NoError(t, uc.Delete(ctx, company, empty.ID))

	_, err = uc.GetByID(ctx, company, empty.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
