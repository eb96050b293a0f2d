package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// InventoryHandler maneja existencias, el libro de movimientos y la reposición (protegido).
type InventoryHandler struct {
	uc  *inventory.StockUseCase
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// StockLevels godoc
// @Summary      Existencias por producto y bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega (UUID)"
// @Success      200  {object}  dto.StockLevelListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) StockLevels(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.StockLevels(c.Context(), companyID, c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Availability godoc
// @Summary      On-hand, reservado y disponible de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    path   string  true   "ID del producto"
// @Param        warehouse_id  query  string  false  "Bodega (vacío = todas)"
// @Success      200  {object}  dto.ProductAvailabilityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/availability/{product_id} [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	productID := c.Params("product_id")
	if productID == "" {
		return missingID(c)
	}
	out, err := h.uc.Availability(c.Context(), companyID, productID, c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Libro de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        type          query  string  false  "purchase | sale | transfer | adjustment | return"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	in := dto.MovementListRequest{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Type:        c.Query("type"),
		PageRequest: pageFromQuery(c),
	}
	if !validateStruct(c, &in) {
		return nil
	}
	out, err := h.uc.Movements(c.Context(), companyID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ProductHistory godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "ID del producto"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{product_id} [get]
func (h *InventoryHandler) ProductHistory(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	productID := c.Params("product_id")
	if productID == "" {
		return missingID(c)
	}
	out, err := h.uc.ProductHistory(c.Context(), companyID, productID, pageFromQuery(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste manual de inventario
// @Description  quantity con signo: positiva entra, negativa sale. Acepta Idempotency-Key.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "product_id, warehouse_id, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustment [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustmentRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Adjust(c.Context(), companyID, GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transfer godoc
// @Summary      Transferencia entre bodegas
// @Description  Genera dos filas transfer (salida y entrada) en la misma transacción. Acepta Idempotency-Key.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, from_warehouse_id, to_warehouse_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.TransferRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Transfer(c.Context(), companyID, GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Productos con disponible en o bajo su punto de reorden y la cantidad sugerida de compra.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	list, err := h.uc.Replenishment(c.Context(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
