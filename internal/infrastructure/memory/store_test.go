package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

func TestTxRunner_RollbackDescartaCambios(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx := NewTxRunner(s)
	boom := errors.New("boom")

	err := tx.Run(ctx, func(r ports.Repos) error {
		require.NoError(t, r.Movements.Append(ctx, &entity.StockMovement{
			ID: "m1", CompanyID: "c1", ProductID: "p1", WarehouseID: "w1",
			Type: entity.MovementAdjustment, QuantityDelta: decimal.NewFromInt(5), CreatedAt: time.Now(),
		}))
		n, err := r.Sequences.Next(ctx, "c1", entity.SeriesSalesOrder)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return boom
	})
	require.ErrorIs(t, err, boom)

	onHand, err := s.Repos().Movements.OnHand(ctx, "c1", "p1", "")
	require.NoError(t, err)
	assert.True(t, onHand.IsZero())

	n, err := s.Repos().Sequences.Next(ctx, "c1", entity.SeriesSalesOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "el contador no avanza si la tx falla")
}

func TestTxRunner_CommitPublica(t *testing.T) {
	ctx := context.Background()
	s := New()
	tx := NewTxRunner(s)

	err := tx.Run(ctx, func(r ports.Repos) error {
		return r.Warehouses.Create(ctx, &entity.Warehouse{ID: "w1", CompanyID: "c1", Name: "Central"})
	})
	require.NoError(t, err)

	w, err := s.Repos().Warehouses.GetByID(ctx, "c1", "w1")
	require.NoError(t, err)
	require.NotNil(t, w)

	other, err := s.Repos().Warehouses.GetByID(ctx, "c2", "w1")
	require.NoError(t, err)
	assert.Nil(t, other, "otra empresa no ve la bodega")
}

func TestProductRepo_SKUDuplicado(t *testing.T) {
	ctx := context.Background()
	repo := New().Repos().Products

	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "p1", CompanyID: "c1", SKU: "SKU-1"}))
	err := repo.Create(ctx, &entity.Product{ID: "p2", CompanyID: "c1", SKU: "sku-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	assert.NoError(t, repo.Create(ctx, &entity.Product{ID: "p3", CompanyID: "c2", SKU: "SKU-1"}))
}

func TestSalesOrderRepo_ReservedSoloOrdenesAbiertas(t *testing.T) {
	ctx := context.Background()
	repo := New().Repos().SalesOrders
	mk := func(id string, status entity.SalesOrderStatus, qty, done int64) *entity.SalesOrder {
		return &entity.SalesOrder{
			ID: id, CompanyID: "c1", OrderNumber: id, Status: status,
			Items: []*entity.SalesOrderItem{{
				ID: id + "-1", ProductID: "p1",
				Quantity: decimal.NewFromInt(qty), FulfilledQuantity: decimal.NewFromInt(done),
			}},
		}
	}
	require.NoError(t, repo.Create(ctx, mk("o1", entity.SalesOrderConfirmed, 10, 0)))
	require.NoError(t, repo.Create(ctx, mk("o2", entity.SalesOrderPartiallyFulfilled, 10, 4)))
	require.NoError(t, repo.Create(ctx, mk("o3", entity.SalesOrderDraft, 10, 0)))
	require.NoError(t, repo.Create(ctx, mk("o4", entity.SalesOrderCancelled, 10, 2)))

	reserved, err := repo.Reserved(ctx, "c1", "p1")
	require.NoError(t, err)
	assert.True(t, reserved.Equal(decimal.NewFromInt(16)), reserved.String())
}

func TestStockMovementRepo_ListMasRecientesPrimero(t *testing.T) {
	ctx := context.Background()
	repo := New().Repos().Movements
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, repo.Append(ctx, &entity.StockMovement{
			ID: id, CompanyID: "c1", ProductID: "p1", WarehouseID: "w1",
			Type: entity.MovementAdjustment, QuantityDelta: decimal.NewFromInt(1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, total, err := repo.List(ctx, "c1", entity.MovementFilter{ProductID: "p1"}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "m3", list[0].ID)
	assert.Equal(t, "m2", list[1].ID)
}
