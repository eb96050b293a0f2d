package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// HeaderIdempotencyKey cabecera opcional en los POST que escriben en el libro.
const HeaderIdempotencyKey = "Idempotency-Key"

// Idempotency rechaza con 409 una petición cuya Idempotency-Key ya se procesó para el tenant.
// Sin cabecera la petición pasa sin control. Si el handler responde con error la clave se
// libera para permitir el reintento.
func Idempotency(store ports.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || store == nil {
			return c.Next()
		}
		if len(key) > 255 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		scoped := GetCompanyID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key

		ctx := c.Context()
		fresh, err := store.MarkProcessed(ctx, scoped, ttl)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("idempotency: no se pudo registrar la clave")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_UNAVAILABLE", Message: "no se pudo verificar la clave de idempotencia"})
		}
		if !fresh {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_REQUEST", Message: "la petición con esta Idempotency-Key ya fue procesada"})
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if ferr := store.Forget(ctx, scoped); ferr != nil {
				log.Warn().Err(ferr).Str("key", key).Msg("idempotency: no se pudo liberar la clave")
			}
		}
		return err
	}
}
