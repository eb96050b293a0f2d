package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/memory"
)

const company = "c-1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// recorder guarda el último documento recibido por el generador.
type recorder struct {
	last *OrderDocument
	err  error
}

func (r *recorder) GenerateOrderPDF(_ context.Context, doc *OrderDocument) ([]byte, error) {
	r.last = doc
	return []byte("%PDF"), r.err
}

func (r *recorder) EncodeOrder(_ context.Context, doc *OrderDocument) ([]byte, error) {
	r.last = doc
	return []byte("<Order/>"), r.err
}

type fixture struct {
	uc    *DocumentsUseCase
	pdf   *recorder
	xml   *recorder
	store *memory.Store
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{pdf: &recorder{}, xml: &recorder{}, store: memory.New(), ctx: context.Background()}
	repos := f.store.Repos()
	require.NoError(t, repos.Products.Create(f.ctx, &entity.Product{ID: "p-1", CompanyID: company, SKU: "TOR-10", Name: "Tornillo", Unit: "unit", IsActive: true}))
	f.store.SeedAccounts(
		&entity.Account{ID: "cli-1", CompanyID: company, Name: "Ferretería Centro", AccountType: entity.AccountCustomer},
		&entity.Account{ID: "sup-1", CompanyID: company, Name: "Tornillos SA", AccountType: entity.AccountSupplier},
	)
	created := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	require.NoError(t, repos.SalesOrders.Create(f.ctx, &entity.SalesOrder{
		ID: "so-1", CompanyID: company, OrderNumber: "SO-0007", AccountID: "cli-1",
		Status: entity.SalesOrderPartiallyFulfilled, Currency: "COP", TotalAmount: d("34.5"), CreatedAt: created,
		Items: []*entity.SalesOrderItem{
			{ID: "l-1", ProductID: "p-1", Quantity: d("4"), UnitPrice: d("5"), Discount: d("10"), FulfilledQuantity: d("1")},
			{ID: "l-2", ProductID: "p-borrado", Description: "", Quantity: d("1"), UnitPrice: d("16.5")},
		},
	}))
	for _, po := range []*entity.PurchaseOrder{
		{ID: "po-draft", Status: entity.PurchaseOrderDraft},
		{ID: "po-sent", Status: entity.PurchaseOrderSent, SupplierID: "sup-1"},
		{ID: "po-cancel", Status: entity.PurchaseOrderCancelled},
	} {
		po.CompanyID = company
		po.OrderNumber = "PO-" + po.ID[3:]
		po.Currency = "COP"
		po.CreatedAt = created
		po.Items = []*entity.PurchaseOrderItem{{ID: "pl-1", ProductID: "p-1", QuantityOrdered: d("10"), QuantityReceived: d("0"), UnitCost: d("2.5")}}
		require.NoError(t, repos.PurchaseOrders.Create(f.ctx, po))
	}
	f.uc = NewDocumentsUseCase(repos, f.pdf, f.xml, "Stockflow Test")
	return f
}

func TestSalesOrderPDF(t *testing.T) {
	f := newFixture(t)

	b, name, err := f.uc.SalesOrderPDF(f.ctx, company, "so-1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(b))
	assert.Equal(t, "orden_venta_SO-0007.pdf", name)

	doc := f.pdf.last
	require.NotNil(t, doc)
	assert.Equal(t, KindSalesOrder, doc.Kind)
	assert.Equal(t, "Stockflow Test", doc.Issuer)
	assert.Equal(t, "Ferretería Centro", doc.Counterparty)
	assert.Equal(t, string(entity.SalesOrderPartiallyFulfilled), doc.Status)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "TOR-10", doc.Lines[0].SKU)
	assert.Equal(t, "Tornillo", doc.Lines[0].Description)
	assert.True(t, doc.Lines[0].Total.Equal(d("18")))
	assert.True(t, doc.Lines[0].Done.Equal(d("1")))
	// Producto inexistente: se imprime el id.
	assert.Equal(t, "p-borrado", doc.Lines[1].SKU)
	assert.Equal(t, "Producto p-borrado", doc.Lines[1].Description)

	_, _, err = f.uc.SalesOrderPDF(f.ctx, "otra", "so-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPurchaseOrderPDF(t *testing.T) {
	f := newFixture(t)

	_, name, err := f.uc.PurchaseOrderPDF(f.ctx, company, "po-draft")
	require.NoError(t, err)
	assert.Equal(t, "orden_compra_PO-draft.pdf", name)
	assert.Equal(t, KindPurchaseOrder, f.pdf.last.Kind)
	assert.Empty(t, f.pdf.last.Counterparty)
	assert.True(t, f.pdf.last.Lines[0].Total.Equal(d("25")))

	f.pdf.err = errors.New("fuente no disponible")
	_, _, err = f.uc.PurchaseOrderPDF(f.ctx, company, "po-sent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
}

func TestPurchaseOrderUBL(t *testing.T) {
	f := newFixture(t)

	b, name, err := f.uc.PurchaseOrderUBL(f.ctx, company, "po-sent")
	require.NoError(t, err)
	assert.Equal(t, "<Order/>", string(b))
	assert.Equal(t, "orden_compra_PO-sent.xml", name)
	assert.Equal(t, "sup-1", f.xml.last.CounterpartyID)
	assert.Equal(t, "Tornillos SA", f.xml.last.Counterparty)

	for _, id := range []string{"po-draft", "po-cancel"} {
		_, _, err := f.uc.PurchaseOrderUBL(f.ctx, company, id)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, id)
	}
	_, _, err = f.uc.PurchaseOrderUBL(f.ctx, company, "po-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
