package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// AppendMovement inserta una fila inmutable en el libro. Verifica que producto y bodega
// existan en la empresa del movimiento; si no, ErrNotFound. Debe llamarse con los repos
// de la transacción del caller.
func AppendMovement(ctx context.Context, r ports.Repos, m *entity.StockMovement) error {
	if m.CompanyID == "" || m.ProductID == "" || m.WarehouseID == "" {
		return domain.ErrInvalidInput
	}
	if !entity.IsValidMovementType(m.Type) {
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, m.Type)
	}
	if m.QuantityDelta.IsZero() {
		return fmt.Errorf("%w: quantity_delta no puede ser 0", domain.ErrInvalidInput)
	}
	if entity.ExceedsScale(m.QuantityDelta, entity.QuantityScale) {
		return fmt.Errorf("%w: quantity_delta admite máximo %d decimales", domain.ErrInvalidInput, entity.QuantityScale)
	}
	product, err := r.Products.GetByID(ctx, m.CompanyID, m.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, m.ProductID)
	}
	warehouse, err := r.Warehouses.GetByID(ctx, m.CompanyID, m.WarehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, m.WarehouseID)
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return r.Movements.Append(ctx, m)
}

// StockLockScope ámbito del advisory lock que serializa saldo y costo de un producto.
func StockLockScope(productID string) string {
	return "stock:" + productID
}

// NewOrderMovement arma el movimiento de una línea despachada o recibida.
func NewOrderMovement(companyID, warehouseID, userID string, kind, refType, refID string, line entity.LineOutcome, sign int64, now time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		ProductID:     line.ProductID,
		WarehouseID:   warehouseID,
		Type:          kind,
		QuantityDelta: line.Applied.Mul(decimal.NewFromInt(sign)),
		ReferenceType: refType,
		ReferenceID:   refID,
		CreatedBy:     userID,
		CreatedAt:     now,
	}
}

// ToMovementResponse convierte una fila del libro a su DTO.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		WarehouseID:   m.WarehouseID,
		Type:          m.Type,
		QuantityDelta: m.QuantityDelta,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// ToMovementResponses convierte una lista de filas.
func ToMovementResponses(list []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// ToLineOutcomeResponses convierte los resultados por línea de un despacho o recepción.
func ToLineOutcomeResponses(lines []entity.LineOutcome) []dto.LineOutcomeResponse {
	out := make([]dto.LineOutcomeResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.LineOutcomeResponse{
			ItemID:    l.LineID,
			ProductID: l.ProductID,
			Requested: l.Requested,
			Applied:   l.Applied,
			Clamped:   l.Clamped(),
		})
	}
	return out
}

// ToLineQuantities convierte el payload HTTP en solicitudes tipadas por línea.
func ToLineQuantities(in []dto.LineQuantityRequest) []entity.LineQuantity {
	if len(in) == 0 {
		return nil
	}
	out := make([]entity.LineQuantity, 0, len(in))
	for _, l := range in {
		out = append(out, entity.LineQuantity{LineID: l.ItemID, Quantity: l.Amount()})
	}
	return out
}
