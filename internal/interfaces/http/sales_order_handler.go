package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockflow-api/internal/application/documents"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/sales"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

const salesOrderStatuses = "draft confirmed partially_fulfilled fulfilled cancelled"

// SalesOrderHandler órdenes de venta: CRUD de borradores, transiciones y despacho.
type SalesOrderHandler struct {
	uc   *sales.SalesOrderUseCase
	docs *documents.DocumentsUseCase
	log  *logger.Logger
}

// NewSalesOrderHandler construye el handler.
func NewSalesOrderHandler(uc *sales.SalesOrderUseCase, docs *documents.DocumentsUseCase, log *logger.Logger) *SalesOrderHandler {
	return &SalesOrderHandler{uc: uc, docs: docs, log: log}
}

// Create godoc
// @Summary      Crear orden de venta (borrador)
// @Tags         sales-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSalesOrderRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.SalesOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales-orders [post]
func (h *SalesOrderHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.CreateSalesOrderRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Create(c.Context(), companyID, GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes de venta
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        status      query  string  false  "Estado"
// @Param        account_id  query  string  false  "Cliente"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SalesOrderListResponse
// @Router       /api/sales-orders [get]
func (h *SalesOrderHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	status := c.Query("status")
	if err := validate.Var(status, "omitempty,oneof="+salesOrderStatuses); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "status inválido", Fields: map[string]string{"status": "debe ser uno de: " + salesOrderStatuses}})
	}
	filter := repository.SalesOrderFilter{
		Status:    entity.SalesOrderStatus(status),
		AccountID: c.Query("account_id"),
	}
	out, err := h.uc.List(c.Context(), companyID, filter, pageFromQuery(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden de venta
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.SalesOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id} [get]
func (h *SalesOrderHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.uc.GetByID(c.Context(), companyID, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar orden de venta (solo borrador)
// @Tags         sales-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la orden"
// @Param        body  body  dto.UpdateSalesOrderRequest  true  "Campos a cambiar; items reemplaza todas las líneas"
// @Success      200   {object}  dto.SalesOrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id} [put]
func (h *SalesOrderHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.UpdateSalesOrderRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Update(c.Context(), companyID, id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Confirm godoc
// @Summary      Confirmar orden de venta
// @Description  draft -> confirmed. Desde aquí reserva stock.
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.SalesOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/confirm [post]
func (h *SalesOrderHandler) Confirm(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Confirm)
}

// Cancel godoc
// @Summary      Cancelar orden de venta
// @Description  Permitido desde draft, confirmed o partially_fulfilled. Lo ya despachado no se revierte.
// @Tags         sales-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.SalesOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/cancel [post]
// @Router       /api/sales-orders/{id} [delete]
func (h *SalesOrderHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Cancel)
}

func (h *SalesOrderHandler) transition(c *fiber.Ctx, apply func(ctx context.Context, companyID, id string) (*dto.SalesOrderResponse, error)) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := apply(c.Context(), companyID, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Discard godoc
// @Summary      Eliminar borrador de orden de venta
// @Tags         sales-orders
// @Security     Bearer
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/discard [post]
func (h *SalesOrderHandler) Discard(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if err := h.uc.Discard(c.Context(), companyID, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Fulfill godoc
// @Summary      Despachar orden de venta
// @Description  Sin items despacha todo lo pendiente. Cantidades mayores a lo pendiente se recortan.
// @Description  Sobre una orden ya despachada no hace nada. Acepta Idempotency-Key.
// @Tags         sales-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la orden"
// @Param        body  body  dto.FulfillRequest  true  "warehouse_id e items opcionales"
// @Success      200   {object}  dto.FulfillmentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/fulfill [post]
func (h *SalesOrderHandler) Fulfill(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.FulfillRequest
	if !bindAndValidate(c, &in) {
		return nil
	}
	out, err := h.uc.Fulfill(c.Context(), companyID, GetUserID(c), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Orden de venta en PDF
// @Tags         sales-orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales-orders/{id}/pdf [get]
func (h *SalesOrderHandler) PDF(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	body, name, err := h.docs.SalesOrderPDF(c.Context(), companyID, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendAttachment(c, "application/pdf", name, body)
}
