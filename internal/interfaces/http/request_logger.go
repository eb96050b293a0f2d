package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// RequestLogger registra cada petición con zerolog: método, ruta, status y latencia.
// 5xx sale en Error, 4xx en Warn y el resto en Info.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("company_id", GetCompanyID(c)).
			Msg("request")
		return err
	}
}
