package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/signals"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// SignalHandler alertas derivadas: listado, resumen, regeneración y flags de lectura.
type SignalHandler struct {
	uc  *signals.SignalsUseCase
	log *logger.Logger
}

// NewSignalHandler construye el handler.
func NewSignalHandler(uc *signals.SignalsUseCase, log *logger.Logger) *SignalHandler {
	return &SignalHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar señales
// @Tags         signals
// @Security     Bearer
// @Produce      json
// @Param        include_dismissed  query  bool  false  "Incluir descartadas"
// @Param        limit              query  int   false  "Límite"  default(20)
// @Param        offset             query  int   false  "Offset"  default(0)
// @Success      200  {object}  dto.SignalListResponse
// @Router       /api/signals [get]
func (h *SignalHandler) List(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.List(c.Context(), companyID, c.QueryBool("include_dismissed", false), pageFromQuery(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Conteo de señales por severidad
// @Tags         signals
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SignalSummaryResponse
// @Router       /api/signals/summary [get]
func (h *SignalHandler) Summary(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Summary(c.Context(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Refresh godoc
// @Summary      Regenerar señales
// @Description  Reemplaza las señales activas por las que producen las reglas ahora. Las descartadas no reaparecen.
// @Tags         signals
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SignalRefreshResponse
// @Router       /api/signals/refresh [post]
func (h *SignalHandler) Refresh(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Refresh(c.Context(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// MarkRead godoc
// @Summary      Marcar señal como leída
// @Tags         signals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la señal"
// @Success      200  {object}  dto.SignalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/signals/{id}/read [post]
func (h *SignalHandler) MarkRead(c *fiber.Ctx) error {
	return h.flag(c, h.uc.MarkRead)
}

// Dismiss godoc
// @Summary      Descartar señal
// @Tags         signals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la señal"
// @Success      200  {object}  dto.SignalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/signals/{id}/dismiss [post]
func (h *SignalHandler) Dismiss(c *fiber.Ctx) error {
	return h.flag(c, h.uc.Dismiss)
}

// Restore godoc
// @Summary      Restaurar señal descartada
// @Tags         signals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la señal"
// @Success      200  {object}  dto.SignalResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/signals/{id}/restore [post]
func (h *SignalHandler) Restore(c *fiber.Ctx) error {
	return h.flag(c, h.uc.Restore)
}

func (h *SignalHandler) flag(c *fiber.Ctx, apply func(ctx context.Context, companyID, id string) (*dto.SignalResponse, error)) error {
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

// DismissAll godoc
// @Summary      Descartar todas las señales activas
// @Tags         signals
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/signals/dismiss-all [post]
func (h *SignalHandler) DismissAll(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	n, err := h.uc.DismissAll(c.Context(), companyID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"dismissed": n})
}
