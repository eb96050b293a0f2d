//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/migration"
	"github.com/jhoicas/stockflow-api/pkg/config"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// newTestPool levanta un PostgreSQL efímero, aplica las migraciones y devuelve un pool.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("stockflow_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migration.New(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	companyID   string
	productID   string
	warehouseID string
}

func seedCatalog(t *testing.T, ctx context.Context, repos ports.Repos) fixture {
	t.Helper()
	now := time.Now().UTC()
	f := fixture{companyID: uuid.NewString(), productID: uuid.NewString(), warehouseID: uuid.NewString()}
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{
		ID: f.productID, CompanyID: f.companyID, SKU: "SKU-1", Name: "Tornillo", Unit: "unit",
		ReorderLevel: decimal.NewFromInt(5), TrackInventory: true, IsActive: true,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{
		ID: f.warehouseID, CompanyID: f.companyID, Name: "Central", IsDefault: true,
		CreatedAt: now, UpdatedAt: now,
	}))
	return f
}

func movement(f fixture, qty int64) *entity.StockMovement {
	return &entity.StockMovement{
		ID: uuid.NewString(), CompanyID: f.companyID, ProductID: f.productID, WarehouseID: f.warehouseID,
		Type: entity.MovementAdjustment, QuantityDelta: decimal.NewFromInt(qty),
		ReferenceType: entity.ReferenceManual, CreatedAt: time.Now().UTC(),
	}
}

func TestIntegration_LibroYSaldos(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repos := NewRepos(pool)
	f := seedCatalog(t, ctx, repos)

	require.NoError(t, repos.Movements.Append(ctx, movement(f, 10)))
	require.NoError(t, repos.Movements.Append(ctx, movement(f, -3)))

	onHand, err := repos.Movements.OnHand(ctx, f.companyID, f.productID, "")
	require.NoError(t, err)
	assert.True(t, onHand.Equal(decimal.NewFromInt(7)), onHand.String())

	balances, err := repos.Movements.Balances(ctx, f.companyID, f.warehouseID)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].OnHand.Equal(decimal.NewFromInt(7)))

	_, err = pool.Exec(ctx, `UPDATE stock_movements SET quantity_delta = 1 WHERE company_id = $1`, f.companyID)
	assert.Error(t, err, "el libro rechaza UPDATE")
}

func TestIntegration_TxRunnerRollback(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	f := seedCatalog(t, ctx, NewRepos(pool))
	boom := errors.New("boom")

	err := NewTxRunner(pool).Run(ctx, func(r ports.Repos) error {
		require.NoError(t, r.Locks.Lock(ctx, f.companyID, "stock:"+f.productID))
		require.NoError(t, r.Movements.Append(ctx, movement(f, 5)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	onHand, err := NewRepos(pool).Movements.OnHand(ctx, f.companyID, f.productID, "")
	require.NoError(t, err)
	assert.True(t, onHand.IsZero())
}

func TestIntegration_SecuenciaYReservado(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repos := NewRepos(pool)
	f := seedCatalog(t, ctx, repos)

	for want := int64(1); want <= 3; want++ {
		n, err := repos.Sequences.Next(ctx, f.companyID, entity.SeriesSalesOrder)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	now := time.Now().UTC()
	order := &entity.SalesOrder{
		ID: uuid.NewString(), CompanyID: f.companyID, OrderNumber: entity.FormatOrderNumber(entity.SeriesSalesOrder, 1),
		Status: entity.SalesOrderConfirmed, Currency: "EUR", CreatedAt: now, UpdatedAt: now,
		Items: []*entity.SalesOrderItem{{
			ID: uuid.NewString(), ProductID: f.productID,
			Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(2), FulfilledQuantity: decimal.NewFromInt(4),
		}},
	}
	order.RecalculateTotal()
	require.NoError(t, repos.SalesOrders.Create(ctx, order))

	reserved, err := repos.SalesOrders.Reserved(ctx, f.companyID, f.productID)
	require.NoError(t, err)
	assert.True(t, reserved.Equal(decimal.NewFromInt(6)), reserved.String())

	got, err := repos.SalesOrders.GetByID(ctx, f.companyID, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "SO-0001", got.OrderNumber)
	assert.Empty(t, got.AccountID)
	require.Len(t, got.Items, 1)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(20)))
}

func TestIntegration_SeñalesDescartadasSobrevivenDeleteActive(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	repos := NewRepos(pool)
	companyID := uuid.NewString()
	now := time.Now().UTC()

	mk := func(entityID string, dismissed bool) *entity.Signal {
		return &entity.Signal{
			ID: uuid.NewString(), CompanyID: companyID, Type: entity.SignalLowStock, Severity: entity.SeverityWarning,
			EntityType: entity.EntityProduct, EntityID: entityID, Title: "Stock bajo", IsDismissed: dismissed,
			IsRead: dismissed, CreatedAt: now,
		}
	}
	require.NoError(t, repos.Signals.InsertBatch(ctx, []*entity.Signal{mk("p1", false), mk("p2", true)}))

	n, err := repos.Signals.DeleteActive(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	dismissed, err := repos.Signals.ListDismissed(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, dismissed, 1)
	assert.Equal(t, "p2", dismissed[0].EntityID)

	sum, err := repos.Signals.Summary(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Total)
}
