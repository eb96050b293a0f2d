package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/stockflow-api/internal/application/documents"
	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/application/purchasing"
	"github.com/jhoicas/stockflow-api/internal/application/sales"
	"github.com/jhoicas/stockflow-api/internal/application/signals"
	"github.com/jhoicas/stockflow-api/internal/application/usecase"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// Roles que pueden modificar el catálogo (bodegas y productos).
var catalogRoles = []string{"admin", "bodeguero"}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC     *usecase.WarehouseUseCase
	ProductUC       *usecase.ProductUseCase
	StockUC         *inventory.StockUseCase
	SalesOrderUC    *sales.SalesOrderUseCase
	PurchaseOrderUC *purchasing.PurchaseOrderUseCase
	SignalsUC       *signals.SignalsUseCase
	DocumentsUC     *documents.DocumentsUseCase
	Idempotency     ports.IdempotencyStore
	IdempotencyTTL  time.Duration
	JWTSecret       string
	Logger          *logger.Logger
}

// Router registra las rutas de la API. Todo lo que cuelga de /api exige Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	idem := Idempotency(deps.Idempotency, deps.IdempotencyTTL, log.Named("idempotency"))
	catalogWrite := RequireRole(catalogRoles...)
	idParam := RequireUUIDParam("id", log)
	productIDParam := RequireUUIDParam("product_id", log)

	// Warehouses
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, log)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Post("/", catalogWrite, warehouseHandler.Create)
	warehouses.Get("/:id", idParam, warehouseHandler.GetByID)
	warehouses.Put("/:id", idParam, catalogWrite, warehouseHandler.Update)
	warehouses.Delete("/:id", idParam, catalogWrite, warehouseHandler.Delete)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, log)
	products.Get("/", productHandler.List)
	products.Post("/", catalogWrite, productHandler.Create)
	products.Get("/:id", idParam, productHandler.GetByID)
	products.Put("/:id", idParam, catalogWrite, productHandler.Update)
	products.Post("/:id/deactivate", idParam, catalogWrite, productHandler.Deactivate)

	// Inventory: existencias y libro
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.StockUC, log)
	inv.Get("/", inventoryHandler.StockLevels)
	inv.Get("/movements", inventoryHandler.Movements)
	inv.Get("/movements/:product_id", productIDParam, inventoryHandler.ProductHistory)
	inv.Get("/availability/:product_id", productIDParam, inventoryHandler.Availability)
	inv.Get("/replenishment-list", inventoryHandler.Replenishment)
	inv.Post("/adjustment", idem, inventoryHandler.Adjust)
	inv.Post("/transfers", idem, inventoryHandler.Transfer)

	// Sales orders
	so := api.Group("/sales-orders")
	soHandler := NewSalesOrderHandler(deps.SalesOrderUC, deps.DocumentsUC, log)
	so.Get("/", soHandler.List)
	so.Post("/", soHandler.Create)
	so.Get("/:id", idParam, soHandler.GetByID)
	so.Put("/:id", idParam, soHandler.Update)
	so.Delete("/:id", idParam, soHandler.Cancel)
	so.Post("/:id/confirm", idParam, soHandler.Confirm)
	so.Post("/:id/fulfill", idParam, idem, soHandler.Fulfill)
	so.Post("/:id/cancel", idParam, soHandler.Cancel)
	so.Post("/:id/discard", idParam, soHandler.Discard)
	so.Get("/:id/pdf", idParam, soHandler.PDF)

	// Purchase orders
	po := api.Group("/purchase-orders")
	poHandler := NewPurchaseOrderHandler(deps.PurchaseOrderUC, deps.DocumentsUC, log)
	po.Get("/", poHandler.List)
	po.Post("/", poHandler.Create)
	po.Get("/:id", idParam, poHandler.GetByID)
	po.Put("/:id", idParam, poHandler.Update)
	po.Delete("/:id", idParam, poHandler.Delete)
	po.Post("/:id/send", idParam, poHandler.Send)
	po.Post("/:id/receive", idParam, idem, poHandler.Receive)
	po.Post("/:id/cancel", idParam, poHandler.Cancel)
	po.Post("/:id/close", idParam, poHandler.Close)
	po.Get("/:id/pdf", idParam, poHandler.PDF)
	po.Get("/:id/ubl", idParam, poHandler.UBL)

	// Signals
	sig := api.Group("/signals")
	signalHandler := NewSignalHandler(deps.SignalsUC, log)
	sig.Get("/", signalHandler.List)
	sig.Get("/summary", signalHandler.Summary)
	sig.Post("/refresh", signalHandler.Refresh)
	sig.Post("/dismiss-all", signalHandler.DismissAll)
	sig.Post("/:id/read", idParam, signalHandler.MarkRead)
	sig.Post("/:id/dismiss", idParam, signalHandler.Dismiss)
	sig.Post("/:id/restore", idParam, signalHandler.Restore)
}

// RequireUUIDParam responde 404 si el parámetro de ruta no es un UUID: ningún recurso
// puede tener ese id.
func RequireUUIDParam(name string, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := uuid.Validate(c.Params(name)); err != nil {
			return writeError(c, log, fmt.Errorf("%w: %s %q", domain.ErrNotFound, name, c.Params(name)))
		}
		return c.Next()
	}
}
