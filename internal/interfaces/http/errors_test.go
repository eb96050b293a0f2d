package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{domain.ErrNotFound, 404, "NOT_FOUND", domain.ErrNotFound.Error()},
		{fmt.Errorf("%w: bodega w-1", domain.ErrNotFound), 404, "NOT_FOUND", "bodega w-1"},
		{fmt.Errorf("%w: quantity debe ser > 0", domain.ErrInvalidInput), 400, "VALIDATION", "quantity debe ser > 0"},
		{domain.ErrInvalidReference, 422, "INVALID_REFERENCE", domain.ErrInvalidReference.Error()},
		{domain.ErrInvalidTransition, 409, "INVALID_TRANSITION", domain.ErrInvalidTransition.Error()},
		{domain.ErrInsufficientStock, 409, "INSUFFICIENT_STOCK", domain.ErrInsufficientStock.Error()},
		{domain.ErrDuplicate, 409, "DUPLICATE", domain.ErrDuplicate.Error()},
		{errors.New("pq: conexión rechazada"), 500, "INTERNAL", "error interno"},
	}
	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.err.Error(), func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return writeError(c, logger.Nop(), tt.err) })
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestPageFromQuery(t *testing.T) {
	tests := []struct {
		query         string
		limit, offset int
	}{
		{"", 20, 0},
		{"?limit=500&offset=10", 100, 10},
		{"?limit=-1&offset=-5", 20, 0},
	}
	for _, tt := range tests {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error { return c.JSON(pageFromQuery(c)) })
		resp, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil), -1)
		require.NoError(t, err)
		var page dto.PageRequest
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
		resp.Body.Close()
		assert.Equal(t, tt.limit, page.Limit, tt.query)
		assert.Equal(t, tt.offset, page.Offset, tt.query)
	}
}
