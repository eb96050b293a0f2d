package purchasing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

const company = "c-1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	uc    *PurchaseOrderUseCase
	store *memory.Store
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	repos := store.Repos()
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "wh-1", CompanyID: company, Name: "Principal", IsDefault: true}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p-1", CompanyID: company, SKU: "A", Name: "Alfa", CostPrice: d("2"), TrackInventory: true, IsActive: true}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "p-2", CompanyID: company, SKU: "B", Name: "Beta", TrackInventory: true, IsActive: true}))
	store.SeedAccounts(&entity.Account{ID: "sup-1", CompanyID: company, Name: "Tornillos SA", AccountType: entity.AccountSupplier})

	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	uc := NewPurchaseOrderUseCase(repos, memory.NewTxRunner(store), logger.Nop()).
		WithClock(func() time.Time { return now })
	return &fixture{uc: uc, store: store, ctx: ctx}
}

func (f *fixture) sent(t *testing.T, items ...dto.PurchaseOrderItemRequest) *dto.PurchaseOrderResponse {
	t.Helper()
	po, err := f.uc.Create(f.ctx, company, "u-1", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", Items: items})
	require.NoError(t, err)
	po, err = f.uc.Send(f.ctx, company, po.ID)
	require.NoError(t, err)
	return po
}

func (f *fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.store.Repos().Products.GetByID(f.ctx, company, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f *fixture) onHand(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	q, err := f.store.Repos().Movements.OnHand(f.ctx, company, id, "")
	require.NoError(t, err)
	return q
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	po, err := f.uc.Create(f.ctx, company, "u-1", dto.CreatePurchaseOrderRequest{
		SupplierID: "sup-1",
		Items: []dto.PurchaseOrderItemRequest{
			{ProductID: "p-1", QuantityOrdered: d("10"), UnitCost: d("2.5")},
			{ProductID: "p-2", QuantityOrdered: d("3"), UnitCost: d("1")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-0001", po.OrderNumber)
	assert.Equal(t, "draft", po.Status)
	assert.True(t, po.TotalAmount.Equal(d("28")), po.TotalAmount.String())

	_, err = f.uc.Create(f.ctx, company, "u-1", dto.CreatePurchaseOrderRequest{
		SupplierID: "sup-404",
		Items:      []dto.PurchaseOrderItemRequest{{ProductID: "p-1", QuantityOrdered: d("1"), UnitCost: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestReceive_ParcialYCompleto(t *testing.T) {
	f := newFixture(t)
	po := f.sent(t,
		dto.PurchaseOrderItemRequest{ProductID: "p-1", QuantityOrdered: d("10"), UnitCost: d("4")},
		dto.PurchaseOrderItemRequest{ProductID: "p-2", QuantityOrdered: d("5"), UnitCost: d("1")},
	)

	// Solo la primera línea, con más de lo pedido: se recorta.
	res, err := f.uc.Receive(f.ctx, company, "u-1", po.ID, dto.ReceiveRequest{
		WarehouseID: "wh-1",
		Items:       []dto.LineQuantityRequest{{ItemID: po.Items[0].ID, Quantity: d("12")}},
	})
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.True(t, res.Lines[0].Applied.Equal(d("10")))
	assert.True(t, res.Lines[0].Clamped)
	// La línea 1 está completa pero la 2 no: la cabecera sigue parcial.
	assert.Equal(t, "partially_received", res.Order.Status)
	assert.True(t, f.onHand(t, "p-1").Equal(d("10")))
	assert.True(t, f.onHand(t, "p-2").IsZero())

	res, err = f.uc.Receive(f.ctx, company, "u-1", po.ID, dto.ReceiveRequest{WarehouseID: "wh-1"})
	require.NoError(t, err)
	assert.Equal(t, "received", res.Order.Status)
	require.Len(t, res.Movements, 1)
	assert.Equal(t, entity.MovementPurchase, res.Movements[0].Type)
	assert.True(t, f.onHand(t, "p-2").Equal(d("5")))

	// Una orden recibida no admite más recepciones, aunque la línea no exista.
	_, err = f.uc.Receive(f.ctx, company, "u-1", po.ID, dto.ReceiveRequest{
		WarehouseID: "wh-1",
		Items:       []dto.LineQuantityRequest{{ItemID: "no-such-line", Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.True(t, f.onHand(t, "p-1").Equal(d("10")))
	assert.True(t, f.onHand(t, "p-2").Equal(d("5")))
}

func TestReceive_AliasQuantityReceived(t *testing.T) {
	f := newFixture(t)
	po := f.sent(t, dto.PurchaseOrderItemRequest{ProductID: "p-1", QuantityOrdered: d("10"), UnitCost: d("4")})
	qty := d("3")

	res, err := f.uc.Receive(f.ctx, company, "u-1", po.ID, dto.ReceiveRequest{
		WarehouseID: "wh-1",
		Items:       []dto.LineQuantityRequest{{ItemID: po.Items[0].ID, QuantityReceived: &qty}},
	})
	require.NoError(t, err)
	assert.True(t, res.Lines[0].Applied.Equal(d("3")))
	assert.Equal(t, "partially_received", res.Order.Status)
}

func TestReceive_OrdenCerradaOCancelada(t *testing.T) {
	f := newFixture(t)
	closed := f.sent(t, dto.PurchaseOrderItemRequest{ProductID: "p-1", QuantityOrdered: d("4"), UnitCost: d("1")})
	_, err := f.uc.Close(f.ctx, company, closed.ID)
	require.NoError(t, err)
	cancelled := f.sent(t, dto.PurchaseOrderItemRequest{ProductID: "p-1", QuantityOrdered: d("4"), UnitCost: d("1")})
	_, err = f.uc.Cancel(f.ctx, company, cancelled.ID)
	require.NoError(t, err)

	for _, id := range []string{closed.ID, cancelled.ID} {
		_, err := f.uc.Receive(f.ctx, company, "u-1", id, dto.ReceiveRequest{WarehouseID: "wh-1"})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	assert.True(t, f.onHand(t, "p-1").IsZero())
}

type recordingLocker struct{ scopes []string }

func (l *recordingLocker) Lock(_ context.Context, _, scope string) error {
	l.scopes = append(l.scopes, scope)
	return nil
}

func TestLockReceivedProducts_OrdenYSinRepetir(t *testing.T) {
	locker := &recordingLocker{}
	outcomes := []entity.LineOutcome{
		{LineID: "l-1", ProductID: "p-9", Applied: d("1")},
		{LineID: "l-2", ProductID: "p-3", Applied: d("2")},
		{LineID: "l-3", ProductID: "p-9", Applied: d("1")},
		{LineID: "l-4", ProductID: "p-5", Applied: d("0")},
	}
	require.NoError(t, lockReceivedProducts(context.Background(), ports.Repos{Locks: locker}, company, outcomes))
	assert.Equal(t, []string{"stock:p-3", "stock:p-9"}, locker.scopes)
}

func TestReceive_CostoPromedio(t *testing.T) {
	f := newFixture(t)
	first := f.sent(t, dto.PurchaseOrderItemRequest{ProductID: "p-1", QuantityOrdered: d("10"), UnitCost: d("4")})
	_, err := f.uc.Receive(f.ctx, company, "u-1", first.ID, dto.ReceiveRequest{WarehouseID: "wh-1"})
	require.NoError(t, err)
	// Sin existencias previas el costo pasa a ser el de la entrada.
	assert.True(t, f.product(t, "p-1").CostPrice.Equal(d("4")))

	second := f.sent(t, dto.PurchaseOrderItemRequest{ProductID: "p-1", QuantityOrdered: d("10"), UnitCost: d("7")})
	_, err = f.uc.Receive(f.ctx, company, "u-1", second.ID, dto.ReceiveRequest{WarehouseID: "wh-1"})
	require.NoError(t, err)
	assert.True(t, f.product(t, "p-1").CostPrice.Equal(d("5.5")), f.product(t, "p-1").CostPrice.String())
}

func TestTransiciones(t *testing.T) {
	f := newFixture(t)
	draft, err := f.uc.Create(f.ctx, company, "u-1", dto.CreatePurchaseOrderRequest{
		Items: []dto.PurchaseOrderItemRequest{{ProductID: "p-1", QuantityOrdered: d("4"), UnitCost: d("1")}},
	})
	require.NoError(t, err)

	_, err = f.uc.Receive(f.ctx, company, "u-1", draft.ID, dto.ReceiveRequest{WarehouseID: "wh-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	po := f.sent(t, dto.PurchaseOrderItemRequest{ProductID: "p-1", QuantityOrdered: d("4"), UnitCost: d("1")})
	_, err = f.uc.Send(f.ctx, company, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.ErrorIs(t, f.uc.Delete(f.ctx, company, po.ID), domain.ErrInvalidTransition)

	_, err = f.uc.Receive(f.ctx, company, "u-1", po.ID, dto.ReceiveRequest{
		WarehouseID: "wh-1",
		Items:       []dto.LineQuantityRequest{{ItemID: po.Items[0].ID, Quantity: d("1")}},
	})
	require.NoError(t, err)
	// Con recepciones ya no se cancela; se cierra.
	_, err = f.uc.Cancel(f.ctx, company, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	closed, err := f.uc.Close(f.ctx, company, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "closed", closed.Status)

	cancelled, err := f.uc.Cancel(f.ctx, company, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
}

func TestDeleteYList(t *testing.T) {
	f := newFixture(t)
	draft, err := f.uc.Create(f.ctx, company, "u-1", dto.CreatePurchaseOrderRequest{
		SupplierID: "sup-1",
		Items:      []dto.PurchaseOrderItemRequest{{ProductID: "p-1", QuantityOrdered: d("1"), UnitCost: d("1")}},
	})
	require.NoError(t, err)
	f.sent(t, dto.PurchaseOrderItemRequest{ProductID: "p-1", QuantityOrdered: d("1"), UnitCost: d("1")})

	sent, err := f.uc.List(f.ctx, company, repository.PurchaseOrderFilter{Status: entity.PurchaseOrderSent}, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, sent.Page.Total)

	bySupplier, err := f.uc.List(f.ctx, company, repository.PurchaseOrderFilter{SupplierID: "sup-1"}, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, bySupplier.Page.Total)

	require.NoError(t, f.uc.Delete(f.ctx, company, draft.ID))
	_, err = f.uc.GetByID(f.ctx, company, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
