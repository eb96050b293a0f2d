package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// Adjust registra un ajuste manual (o una devolución) con cantidad con signo.
// Un ajuste puede dejar el on-hand negativo: corrige un conteo, no valida existencias.
func (uc *StockUseCase) Adjust(ctx context.Context, companyID, userID string, in dto.AdjustmentRequest) (*dto.MovementResponse, error) {
	if in.Quantity.IsZero() {
		return nil, fmt.Errorf("%w: quantity debe ser distinta de 0", domain.ErrInvalidInput)
	}
	kind := in.Type
	if kind == "" {
		kind = entity.MovementAdjustment
	}
	if kind != entity.MovementAdjustment && kind != entity.MovementReturn {
		return nil, fmt.Errorf("%w: type debe ser adjustment o return", domain.ErrInvalidInput)
	}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		ProductID:     in.ProductID,
		WarehouseID:   in.WarehouseID,
		Type:          kind,
		QuantityDelta: in.Quantity,
		ReferenceType: entity.ReferenceManual,
		Notes:         in.Notes,
		CreatedBy:     userID,
		CreatedAt:     uc.now(),
	}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		return AppendMovement(ctx, r, mov)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("company_id", companyID).
		Str("product_id", mov.ProductID).
		Str("warehouse_id", mov.WarehouseID).
		Str("type", kind).
		Str("quantity", mov.QuantityDelta.String()).
		Msg("ajuste de inventario registrado")
	out := ToMovementResponse(mov)
	return &out, nil
}

// Transfer mueve existencias entre dos bodegas: una fila negativa en origen y una positiva
// en destino, en la misma transacción. El on-hand del origen debe cubrir la cantidad.
func (uc *StockUseCase) Transfer(ctx context.Context, companyID, userID string, in dto.TransferRequest) (*dto.TransferResponse, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: quantity debe ser positiva", domain.ErrInvalidInput)
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, fmt.Errorf("%w: origen y destino deben ser distintos", domain.ErrInvalidInput)
	}
	now := uc.now()
	transferID := uuid.New().String()
	out := &entity.StockMovement{
		CompanyID:     companyID,
		ProductID:     in.ProductID,
		WarehouseID:   in.FromWarehouseID,
		Type:          entity.MovementTransfer,
		QuantityDelta: in.Quantity.Neg(),
		ReferenceType: entity.ReferenceTransfer,
		ReferenceID:   transferID,
		Notes:         in.Notes,
		CreatedBy:     userID,
		CreatedAt:     now,
	}
	inbound := *out
	inbound.WarehouseID = in.ToWarehouseID
	inbound.QuantityDelta = in.Quantity

	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		// Serializa transferencias del mismo producto para que dos salidas no lean el mismo saldo.
		if err := r.Locks.Lock(ctx, companyID, StockLockScope(in.ProductID)); err != nil {
			return err
		}
		onHand, err := r.Movements.OnHand(ctx, companyID, in.ProductID, in.FromWarehouseID)
		if err != nil {
			return err
		}
		if onHand.LessThan(in.Quantity) {
			return fmt.Errorf("%w: disponible en origen %s", domain.ErrInsufficientStock, onHand.String())
		}
		if err := AppendMovement(ctx, r, out); err != nil {
			return err
		}
		return AppendMovement(ctx, r, &inbound)
	})
	if err != nil {
		return nil, err
	}
	return &dto.TransferResponse{Out: ToMovementResponse(out), In: ToMovementResponse(&inbound)}, nil
}
