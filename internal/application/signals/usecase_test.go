package signals

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	domainsignals "github.com/jhoicas/stockflow-api/internal/domain/signals"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

const company = "c-1"

type fixture struct {
	uc  *SignalsUseCase
	ctx context.Context
	now time.Time
}

// newFixture siembra una condición por regla: producto sin stock, factura vencida hace
// 10 días, negocio y lead sin movimiento y una compra atrasada.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	store := memory.New()
	repos := store.Repos()

	require.NoError(t, repos.Products.Create(f.ctx, &entity.Product{
		ID: "p-1", CompanyID: company, SKU: "A", Name: "Alfa", Unit: "unit",
		ReorderLevel: decimal.NewFromInt(5), TrackInventory: true, IsActive: true,
	}))
	due := f.now.AddDate(0, 0, -10)
	store.SeedInvoices(&entity.Invoice{
		ID: "inv-1", CompanyID: company, InvoiceNumber: "FV-1", Amount: decimal.NewFromInt(100),
		Currency: "COP", Status: entity.InvoiceSent, DueDate: &due,
	})
	store.SeedDeals(&entity.Deal{
		ID: "deal-1", CompanyID: company, Title: "Renovación", Stage: "proposal",
		UpdatedAt: f.now.AddDate(0, 0, -30),
	})
	store.SeedAccounts(&entity.Account{
		ID: "acc-1", CompanyID: company, Name: "Frío SAS", AccountType: entity.AccountCustomer,
		PipelineStage: entity.PipelineLead, UpdatedAt: f.now.AddDate(0, 0, -40),
	})
	expected := f.now.AddDate(0, 0, -2)
	require.NoError(t, repos.PurchaseOrders.Create(f.ctx, &entity.PurchaseOrder{
		ID: "po-1", CompanyID: company, OrderNumber: "PO-0001", Status: entity.PurchaseOrderSent,
		ExpectedDate: &expected,
	}))

	f.uc = NewSignalsUseCase(repos, memory.NewTxRunner(store), domainsignals.DefaultRules(domainsignals.DefaultThresholds()), logger.Nop()).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) active(t *testing.T) []dto.SignalResponse {
	t.Helper()
	list, err := f.uc.List(f.ctx, company, false, dto.PageRequest{})
	require.NoError(t, err)
	return list.Items
}

func findType(items []dto.SignalResponse, typ string) *dto.SignalResponse {
	for i := range items {
		if items[i].Type == typ {
			return &items[i]
		}
	}
	return nil
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.Refresh(f.ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Removed)
	assert.Equal(t, 5, res.Generated)
	assert.Equal(t, 0, res.Suppressed)
	assert.Equal(t, dto.SignalSummaryResponse{Total: 5, Critical: 1, Warning: 3, Info: 1, Unread: 5}, res.Summary)

	items := f.active(t)
	require.Len(t, items, 5)
	low := findType(items, entity.SignalLowStock)
	require.NotNil(t, low)
	assert.Equal(t, entity.SeverityCritical, low.Severity)
	assert.Equal(t, "p-1", low.EntityID)
	assert.Equal(t, f.now, low.CreatedAt)
	assert.Equal(t, entity.SeverityWarning, findType(items, entity.SignalOverdueInvoice).Severity)
	assert.Equal(t, "po-1", findType(items, entity.SignalLateDelivery).EntityID)
	assert.Equal(t, entity.SeverityInfo, findType(items, entity.SignalStaleLead).Severity)

	// Reejecutar sin cambios reemplaza el conjunto por uno equivalente.
	again, err := f.uc.Refresh(f.ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 5, again.Removed)
	assert.Equal(t, 5, again.Generated)
	after := f.active(t)
	require.Len(t, after, 5)
	for i := range items {
		assert.Equal(t, items[i].Type, after[i].Type)
		assert.Equal(t, items[i].EntityID, after[i].EntityID)
		assert.NotEqual(t, items[i].ID, after[i].ID)
	}
}

func TestDismiss_SobreviveAlRefresh(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Refresh(f.ctx, company)
	require.NoError(t, err)

	inv := findType(f.active(t), entity.SignalOverdueInvoice)
	require.NotNil(t, inv)
	dismissed, err := f.uc.Dismiss(f.ctx, company, inv.ID)
	require.NoError(t, err)
	assert.True(t, dismissed.IsDismissed)
	assert.True(t, dismissed.IsRead)

	res, err := f.uc.Refresh(f.ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Removed)
	assert.Equal(t, 4, res.Generated)
	assert.Equal(t, 1, res.Suppressed)
	assert.Nil(t, findType(f.active(t), entity.SignalOverdueInvoice))

	all, err := f.uc.List(f.ctx, company, true, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 5)

	// Al volverse crítica la factura es una condición distinta y reaparece.
	f.now = f.now.AddDate(0, 0, 10)
	res, err = f.uc.Refresh(f.ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Suppressed)
	again := findType(f.active(t), entity.SignalOverdueInvoice)
	require.NotNil(t, again)
	assert.Equal(t, entity.SeverityCritical, again.Severity)
}

func TestRestore(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Refresh(f.ctx, company)
	require.NoError(t, err)

	deal := findType(f.active(t), entity.SignalStaleDeal)
	require.NotNil(t, deal)
	_, err = f.uc.Dismiss(f.ctx, company, deal.ID)
	require.NoError(t, err)

	sum, err := f.uc.Summary(f.ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Total)

	restored, err := f.uc.Restore(f.ctx, company, deal.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDismissed)

	res, err := f.uc.Refresh(f.ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Removed)
	assert.Equal(t, 5, res.Generated)
	assert.Equal(t, 0, res.Suppressed)
}

func TestMarkReadYDismissAll(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Refresh(f.ctx, company)
	require.NoError(t, err)

	items := f.active(t)
	read, err := f.uc.MarkRead(f.ctx, company, items[0].ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.False(t, read.IsDismissed)

	sum, err := f.uc.Summary(f.ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 4, sum.Unread)

	_, err = f.uc.Dismiss(f.ctx, company, items[1].ID)
	require.NoError(t, err)

	n, err := f.uc.DismissAll(f.ctx, company)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Empty(t, f.active(t))

	// Los descartados explícitos se conservan para seguir suprimiendo su condición.
	all, err := f.uc.List(f.ctx, company, true, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 1)

	_, err = f.uc.MarkRead(f.ctx, company, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.Dismiss(f.ctx, "otra", items[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
