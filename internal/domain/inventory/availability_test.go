package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func order(status entity.SalesOrderStatus, items ...*entity.SalesOrderItem) *entity.SalesOrder {
	return &entity.SalesOrder{Status: status, Items: items}
}

func line(productID, qty, fulfilled string) *entity.SalesOrderItem {
	return &entity.SalesOrderItem{ProductID: productID, Quantity: d(qty), FulfilledQuantity: d(fulfilled)}
}

func TestReserved_SoloOrdenesAbiertas(t *testing.T) {
	orders := []*entity.SalesOrder{
		order(entity.SalesOrderDraft, line("p1", "5", "0")),
		order(entity.SalesOrderConfirmed, line("p1", "10", "0"), line("p2", "3", "0")),
		order(entity.SalesOrderPartiallyFulfilled, line("p1", "8", "6")),
		order(entity.SalesOrderFulfilled, line("p1", "4", "4")),
		order(entity.SalesOrderCancelled, line("p1", "7", "0")),
	}
	reserved := ReservedByProduct(orders)
	assert.True(t, d("12").Equal(reserved["p1"]), "10 confirmado + 2 pendientes del parcial")
	assert.True(t, d("3").Equal(reserved["p2"]))
	assert.NotContains(t, reserved, "p3")
}

func TestReserved_LineaSobredespachadaNoRestaReserva(t *testing.T) {
	orders := []*entity.SalesOrder{
		order(entity.SalesOrderPartiallyFulfilled, line("p1", "5", "7"), line("p1", "4", "1")),
	}
	got := ReservedByProduct(orders)["p1"]
	assert.True(t, d("3").Equal(got), "la línea con fulfilled > quantity aporta 0, no -2; got %s", got)
}

func TestAvailable_NuncaNegativo(t *testing.T) {
	cases := []struct {
		onHand, reserved, want string
	}{
		{"10", "3", "7"},
		{"3", "10", "0"},
		{"-2", "0", "0"},
		{"0", "0", "0"},
	}
	for _, tc := range cases {
		got := Available(d(tc.onHand), d(tc.reserved))
		assert.True(t, d(tc.want).Equal(got), "onHand=%s reserved=%s -> %s", tc.onHand, tc.reserved, got)
	}
}

func TestIsLowStock(t *testing.T) {
	tracked := &entity.Product{TrackInventory: true, ReorderLevel: d("5")}
	assert.True(t, IsLowStock(tracked, d("5")), "igual al punto de reorden es bajo")
	assert.True(t, IsLowStock(tracked, d("2")))
	assert.False(t, IsLowStock(tracked, d("6")))

	untracked := &entity.Product{TrackInventory: false, ReorderLevel: d("5")}
	assert.False(t, IsLowStock(untracked, d("0")))

	noReorder := &entity.Product{TrackInventory: true, ReorderLevel: decimal.Zero}
	assert.False(t, IsLowStock(noReorder, d("-3")))
}

func TestBuildStockLevels(t *testing.T) {
	products := []*entity.Product{
		{ID: "p1", SKU: "A-1", Name: "Tornillo", IsActive: true, TrackInventory: true, ReorderLevel: d("5")},
		{ID: "p2", SKU: "B-1", Name: "Servicio", IsActive: true, TrackInventory: false},
		{ID: "p3", SKU: "C-1", Name: "Viejo", IsActive: false, TrackInventory: true},
	}
	warehouses := []*entity.Warehouse{{ID: "w1", Name: "Central"}, {ID: "w2", Name: "Norte"}}
	balances := []entity.StockBalance{
		{ProductID: "p1", WarehouseID: "w1", OnHand: d("3")},
		{ProductID: "p1", WarehouseID: "w2", OnHand: d("1")},
	}
	reserved := map[string]decimal.Decimal{"p1": d("2")}

	levels := BuildStockLevels(products, warehouses, balances, reserved)
	require.Len(t, levels, 2, "solo productos activos con seguimiento")

	assert.Equal(t, "w1", levels[0].WarehouseID)
	assert.True(t, d("3").Equal(levels[0].OnHand))
	assert.True(t, d("1").Equal(levels[0].Available))
	assert.True(t, levels[0].IsLowStock, "on-hand total 4 <= 5")

	assert.Equal(t, "w2", levels[1].WarehouseID)
	assert.True(t, levels[1].Available.IsZero(), "1 - 2 se recorta a 0")
}

func TestWeightedAverageCost(t *testing.T) {
	got := WeightedAverageCost(d("10"), d("2"), d("10"), d("4"))
	assert.True(t, d("3").Equal(got), "got %s", got)

	assert.True(t, d("7").Equal(WeightedAverageCost(d("0"), d("2"), d("5"), d("7"))))
	assert.True(t, d("2").Equal(WeightedAverageCost(d("10"), d("2"), d("0"), d("9"))))
}
