package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/application/documents"
	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/application/purchasing"
	"github.com/jhoicas/stockflow-api/internal/application/sales"
	"github.com/jhoicas/stockflow-api/internal/application/signals"
	"github.com/jhoicas/stockflow-api/internal/application/usecase"
	domainsignals "github.com/jhoicas/stockflow-api/internal/domain/signals"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/cache"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/ubl"
	apphttp "github.com/jhoicas/stockflow-api/internal/interfaces/http"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

type fakePDF struct{}

func (fakePDF) GenerateOrderPDF(_ context.Context, doc *documents.OrderDocument) ([]byte, error) {
	return []byte("%PDF-fake " + doc.OrderNumber), nil
}

type testAPI struct {
	app   *fiber.App
	store *memory.Store
	token string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.New()
	repos := store.Repos()
	tx := memory.NewTxRunner(store)
	log := logger.Nop()
	idem := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = idem.Close() })

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC:     usecase.NewWarehouseUseCase(repos, tx),
		ProductUC:       usecase.NewProductUseCase(repos.Products),
		StockUC:         inventory.NewStockUseCase(repos, tx, log),
		SalesOrderUC:    sales.NewSalesOrderUseCase(repos, tx, log),
		PurchaseOrderUC: purchasing.NewPurchaseOrderUseCase(repos, tx, log),
		SignalsUC:       signals.NewSignalsUseCase(repos, tx, domainsignals.DefaultRules(domainsignals.DefaultThresholds()), log),
		DocumentsUC:     documents.NewDocumentsUseCase(repos, fakePDF{}, ubl.NewOrderEncoder(), "Stockflow Test"),
		Idempotency:     idem,
		IdempotencyTTL:  time.Hour,
		JWTSecret:       testJWTSecret,
		Logger:          log,
	})
	return &testAPI{app: app, store: store, token: tokenForRole(t, "admin")}
}

type result struct {
	status  int
	body    map[string]any
	raw     []byte
	headers http.Header
}

func (a *testAPI) do(t *testing.T, method, path string, body any, headers ...string) result {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", a.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := result{status: resp.StatusCode, raw: raw, headers: resp.Header}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

// seedCatalog crea una bodega y un producto y devuelve sus IDs.
func (a *testAPI) seedCatalog(t *testing.T, reorder float64) (warehouseID, productID string) {
	t.Helper()
	wh := a.do(t, http.MethodPost, "/api/warehouses", map[string]any{"name": "Principal", "is_default": true})
	require.Equal(t, http.StatusCreated, wh.status, string(wh.raw))
	p := a.do(t, http.MethodPost, "/api/products", map[string]any{
		"sku": "TOR-10", "name": "Tornillo", "cost_price": 2, "sale_price": 5, "reorder_level": reorder,
	})
	require.Equal(t, http.StatusCreated, p.status, string(p.raw))
	return wh.body["id"].(string), p.body["id"].(string)
}

func (a *testAPI) adjust(t *testing.T, warehouseID, productID string, qty float64) {
	t.Helper()
	r := a.do(t, http.MethodPost, "/api/inventory/adjustment", map[string]any{
		"product_id": productID, "warehouse_id": warehouseID, "quantity": qty,
	})
	require.Equal(t, http.StatusCreated, r.status, string(r.raw))
}

func (a *testAPI) availability(t *testing.T, productID string) (onHand, reserved, available float64) {
	t.Helper()
	r := a.do(t, http.MethodGet, "/api/inventory/availability/"+productID, nil)
	require.Equal(t, http.StatusOK, r.status, string(r.raw))
	return r.body["on_hand"].(float64), r.body["reserved"].(float64), r.body["available"].(float64)
}

func TestSalesOrderFlow(t *testing.T) {
	api := newTestAPI(t)
	whID, productID := api.seedCatalog(t, 0)
	api.adjust(t, whID, productID, 10)

	created := api.do(t, http.MethodPost, "/api/sales-orders", map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": 4, "unit_price": 5}},
	})
	require.Equal(t, http.StatusCreated, created.status, string(created.raw))
	assert.Equal(t, "draft", created.body["status"])
	assert.Equal(t, "SO-0001", created.body["order_number"])
	assert.Equal(t, 20.0, created.body["total_amount"])
	orderID := created.body["id"].(string)

	// Un borrador no reserva.
	_, reserved, _ := api.availability(t, productID)
	assert.Equal(t, 0.0, reserved)

	confirmed := api.do(t, http.MethodPost, "/api/sales-orders/"+orderID+"/confirm", nil)
	require.Equal(t, http.StatusOK, confirmed.status)
	onHand, reserved, available := api.availability(t, productID)
	assert.Equal(t, []float64{10, 4, 6}, []float64{onHand, reserved, available})

	again := api.do(t, http.MethodPost, "/api/sales-orders/"+orderID+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, again.status)
	assert.Equal(t, "INVALID_TRANSITION", again.body["code"])

	itemID := confirmed.body["items"].([]any)[0].(map[string]any)["id"].(string)
	fulfilled := api.do(t, http.MethodPost, "/api/sales-orders/"+orderID+"/fulfill", map[string]any{
		"warehouse_id": whID,
		"items":        []map[string]any{{"item_id": itemID, "quantity": 9}},
	})
	require.Equal(t, http.StatusOK, fulfilled.status, string(fulfilled.raw))
	order := fulfilled.body["order"].(map[string]any)
	assert.Equal(t, "fulfilled", order["status"])
	line := fulfilled.body["lines"].([]any)[0].(map[string]any)
	assert.Equal(t, 4.0, line["applied"])
	assert.Equal(t, true, line["clamped"])
	assert.Len(t, fulfilled.body["movements"], 1)

	onHand, reserved, available = api.availability(t, productID)
	assert.Equal(t, []float64{6, 0, 6}, []float64{onHand, reserved, available})

	// Despachar de nuevo una orden completa no escribe en el libro.
	noop := api.do(t, http.MethodPost, "/api/sales-orders/"+orderID+"/fulfill", map[string]any{"warehouse_id": whID})
	require.Equal(t, http.StatusOK, noop.status)
	assert.Empty(t, noop.body["movements"])
	onHand, _, _ = api.availability(t, productID)
	assert.Equal(t, 6.0, onHand)

	cancel := api.do(t, http.MethodDelete, "/api/sales-orders/"+orderID, nil)
	assert.Equal(t, http.StatusConflict, cancel.status)

	pdf := api.do(t, http.MethodGet, "/api/sales-orders/"+orderID+"/pdf", nil)
	require.Equal(t, http.StatusOK, pdf.status)
	assert.Equal(t, "application/pdf", pdf.headers.Get("Content-Type"))
	assert.Contains(t, pdf.headers.Get("Content-Disposition"), "orden_venta_SO-0001.pdf")
	assert.True(t, bytes.HasPrefix(pdf.raw, []byte("%PDF")))
}

func TestSalesOrder_Validacion(t *testing.T) {
	api := newTestAPI(t)

	r := api.do(t, http.MethodPost, "/api/sales-orders", map[string]any{"currency": "EURO"})
	require.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "VALIDATION", r.body["code"])
	fields := r.body["fields"].(map[string]any)
	assert.Contains(t, fields, "items")
	assert.Contains(t, fields, "currency")

	missing := api.do(t, http.MethodPost, "/api/sales-orders", map[string]any{
		"items": []map[string]any{{"product_id": "no-existe", "quantity": 1, "unit_price": 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, missing.status)
	assert.Equal(t, "INVALID_REFERENCE", missing.body["code"])

	bad := api.do(t, http.MethodGet, "/api/sales-orders?status=shipped", nil)
	assert.Equal(t, http.StatusBadRequest, bad.status)
}

func TestPurchaseOrderFlow(t *testing.T) {
	api := newTestAPI(t)
	whID, productID := api.seedCatalog(t, 0)

	created := api.do(t, http.MethodPost, "/api/purchase-orders", map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity_ordered": 10, "unit_cost": 4}},
	})
	require.Equal(t, http.StatusCreated, created.status, string(created.raw))
	assert.Equal(t, "PO-0001", created.body["order_number"])
	orderID := created.body["id"].(string)

	draftUBL := api.do(t, http.MethodGet, "/api/purchase-orders/"+orderID+"/ubl", nil)
	assert.Equal(t, http.StatusConflict, draftUBL.status)

	early := api.do(t, http.MethodPost, "/api/purchase-orders/"+orderID+"/receive", map[string]any{"warehouse_id": whID})
	assert.Equal(t, http.StatusConflict, early.status)

	sent := api.do(t, http.MethodPost, "/api/purchase-orders/"+orderID+"/send", nil)
	require.Equal(t, http.StatusOK, sent.status)
	itemID := sent.body["items"].([]any)[0].(map[string]any)["id"].(string)

	partial := api.do(t, http.MethodPost, "/api/purchase-orders/"+orderID+"/receive", map[string]any{
		"warehouse_id": whID,
		"items":        []map[string]any{{"item_id": itemID, "quantity": 3}},
	})
	require.Equal(t, http.StatusOK, partial.status, string(partial.raw))
	assert.Equal(t, "partially_received", partial.body["order"].(map[string]any)["status"])
	onHand, _, _ := api.availability(t, productID)
	assert.Equal(t, 3.0, onHand)

	rest := api.do(t, http.MethodPost, "/api/purchase-orders/"+orderID+"/receive", map[string]any{"warehouse_id": whID})
	require.Equal(t, http.StatusOK, rest.status)
	assert.Equal(t, "received", rest.body["order"].(map[string]any)["status"])
	onHand, _, _ = api.availability(t, productID)
	assert.Equal(t, 10.0, onHand)

	x := api.do(t, http.MethodGet, "/api/purchase-orders/"+orderID+"/ubl", nil)
	require.Equal(t, http.StatusOK, x.status)
	assert.Contains(t, x.headers.Get("Content-Type"), "application/xml")
	assert.Contains(t, string(x.raw), "<cbc:ID>PO-0001</cbc:ID>")

	del := api.do(t, http.MethodDelete, "/api/purchase-orders/"+orderID, nil)
	assert.Equal(t, http.StatusConflict, del.status)
}

func TestInventory_IdempotencyKey(t *testing.T) {
	api := newTestAPI(t)
	whID, productID := api.seedCatalog(t, 0)
	body := map[string]any{"product_id": productID, "warehouse_id": whID, "quantity": 5}

	first := api.do(t, http.MethodPost, "/api/inventory/adjustment", body, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, first.status)
	second := api.do(t, http.MethodPost, "/api/inventory/adjustment", body, apphttp.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusConflict, second.status)
	assert.Equal(t, "DUPLICATE_REQUEST", second.body["code"])

	onHand, _, _ := api.availability(t, productID)
	assert.Equal(t, 5.0, onHand)

	// Una petición fallida libera la clave.
	bad := map[string]any{"product_id": productID, "warehouse_id": whID, "quantity": 0}
	r := api.do(t, http.MethodPost, "/api/inventory/adjustment", bad, apphttp.HeaderIdempotencyKey, "k-2")
	require.Equal(t, http.StatusBadRequest, r.status)
	r = api.do(t, http.MethodPost, "/api/inventory/adjustment", body, apphttp.HeaderIdempotencyKey, "k-2")
	assert.Equal(t, http.StatusCreated, r.status)
}

func TestInventory_TransferSinStock(t *testing.T) {
	api := newTestAPI(t)
	whID, productID := api.seedCatalog(t, 0)
	other := api.do(t, http.MethodPost, "/api/warehouses", map[string]any{"name": "Secundaria"})
	require.Equal(t, http.StatusCreated, other.status)
	api.adjust(t, whID, productID, 2)

	r := api.do(t, http.MethodPost, "/api/inventory/transfers", map[string]any{
		"product_id": productID, "from_warehouse_id": whID, "to_warehouse_id": other.body["id"], "quantity": 3,
	})
	assert.Equal(t, http.StatusConflict, r.status)
	assert.Equal(t, "INSUFFICIENT_STOCK", r.body["code"])

	same := api.do(t, http.MethodPost, "/api/inventory/transfers", map[string]any{
		"product_id": productID, "from_warehouse_id": whID, "to_warehouse_id": whID, "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, same.status)
}

func TestCatalog_RolesYTenant(t *testing.T) {
	api := newTestAPI(t)
	_, productID := api.seedCatalog(t, 0)

	api.token = tokenForRole(t, "vendedor")
	r := api.do(t, http.MethodPost, "/api/products", map[string]any{"sku": "X", "name": "X"})
	assert.Equal(t, http.StatusForbidden, r.status)
	// Lectura permitida a cualquier rol.
	r = api.do(t, http.MethodGet, "/api/products/"+productID, nil)
	assert.Equal(t, http.StatusOK, r.status)

	// Otro tenant no ve el producto.
	api.token = tokenFor(t, "00000000-0000-0000-0000-0000000000ff", "admin")
	r = api.do(t, http.MethodGet, "/api/products/"+productID, nil)
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, "NOT_FOUND", r.body["code"])
}

func TestWarehouse_DeleteDefault(t *testing.T) {
	api := newTestAPI(t)
	whID, _ := api.seedCatalog(t, 0)
	r := api.do(t, http.MethodDelete, "/api/warehouses/"+whID, nil)
	assert.Equal(t, http.StatusConflict, r.status)
	assert.Equal(t, "CONFLICT", r.body["code"])
}

func TestSignals_RefreshYDescartePersistente(t *testing.T) {
	api := newTestAPI(t)
	_, productID := api.seedCatalog(t, 5)

	r := api.do(t, http.MethodPost, "/api/signals/refresh", nil)
	require.Equal(t, http.StatusOK, r.status, string(r.raw))
	assert.Equal(t, 1.0, r.body["generated"])

	list := api.do(t, http.MethodGet, "/api/signals", nil)
	require.Equal(t, http.StatusOK, list.status)
	items := list.body["items"].([]any)
	require.Len(t, items, 1)
	sig := items[0].(map[string]any)
	assert.Equal(t, "low_stock", sig["signal_type"])
	assert.Equal(t, productID, sig["entity_id"])

	d := api.do(t, http.MethodPost, "/api/signals/"+sig["id"].(string)+"/dismiss", nil)
	require.Equal(t, http.StatusOK, d.status)
	assert.Equal(t, true, d.body["is_dismissed"])

	r = api.do(t, http.MethodPost, "/api/signals/refresh", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, 0.0, r.body["generated"])
	assert.Equal(t, 1.0, r.body["suppressed"])

	summary := api.do(t, http.MethodGet, "/api/signals/summary", nil)
	assert.Equal(t, 0.0, summary.body["total"])

	all := api.do(t, http.MethodGet, "/api/signals?include_dismissed=true", nil)
	assert.Len(t, all.body["items"], 1)

	missing := api.do(t, http.MethodPost, "/api/signals/no-existe/read", nil)
	assert.Equal(t, http.StatusNotFound, missing.status)
}

func TestRutas_IDMalFormado(t *testing.T) {
	api := newTestAPI(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/sales-orders/abc"},
		{http.MethodPost, "/api/sales-orders/abc/fulfill"},
		{http.MethodGet, "/api/purchase-orders/1234/ubl"},
		{http.MethodPut, "/api/products/no-es-uuid"},
		{http.MethodGet, "/api/warehouses/xyz"},
		{http.MethodGet, "/api/inventory/availability/abc"},
		{http.MethodPost, "/api/signals/abc/dismiss"},
	} {
		r := api.do(t, tc.method, tc.path, map[string]any{})
		assert.Equal(t, http.StatusNotFound, r.status, tc.path)
		assert.Equal(t, "NOT_FOUND", r.body["code"], tc.path)
	}
}

func TestPurchaseOrder_RecibirOrdenCompletaYAliasQuantityReceived(t *testing.T) {
	api := newTestAPI(t)
	whID, productID := api.seedCatalog(t, 0)

	created := api.do(t, http.MethodPost, "/api/purchase-orders", map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity_ordered": 10, "unit_cost": 4}},
	})
	require.Equal(t, http.StatusCreated, created.status, string(created.raw))
	orderID := created.body["id"].(string)
	sent := api.do(t, http.MethodPost, "/api/purchase-orders/"+orderID+"/send", nil)
	require.Equal(t, http.StatusOK, sent.status)
	itemID := sent.body["items"].([]any)[0].(map[string]any)["id"].(string)

	r := api.do(t, http.MethodPost, "/api/purchase-orders/"+orderID+"/receive", map[string]any{
		"warehouse_id": whID,
		"items":        []map[string]any{{"item_id": itemID, "quantity_received": 100}},
	})
	require.Equal(t, http.StatusOK, r.status, string(r.raw))
	assert.Equal(t, "received", r.body["order"].(map[string]any)["status"])
	assert.Equal(t, 10.0, r.body["lines"].([]any)[0].(map[string]any)["applied"])

	again := api.do(t, http.MethodPost, "/api/purchase-orders/"+orderID+"/receive", map[string]any{
		"warehouse_id": whID,
		"items":        []map[string]any{{"item_id": "no-such-line", "quantity_received": 1}},
	})
	assert.Equal(t, http.StatusConflict, again.status)
	assert.Equal(t, "INVALID_TRANSITION", again.body["code"])
	onHand, _, _ := api.availability(t, productID)
	assert.Equal(t, 10.0, onHand)
}
