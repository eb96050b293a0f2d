package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

const defaultCurrency = "EUR"

// SalesOrderUseCase máquina de estados de órdenes de venta y despacho contra el libro.
type SalesOrderUseCase struct {
	repos ports.Repos
	tx    ports.TxRunner
	log   *logger.Logger
	now   ports.Clock
}

// NewSalesOrderUseCase construye el caso de uso.
func NewSalesOrderUseCase(repos ports.Repos, tx ports.TxRunner, log *logger.Logger) *SalesOrderUseCase {
	return &SalesOrderUseCase{repos: repos, tx: tx, log: log, now: time.Now}
}

// WithClock reemplaza la fuente de tiempo (tests).
func (uc *SalesOrderUseCase) WithClock(clock ports.Clock) *SalesOrderUseCase {
	uc.now = clock
	return uc
}

// Create valida las líneas contra el catálogo de la empresa, calcula el total y persiste
// la orden en draft. El número SO-#### se toma del contador en la misma transacción.
func (uc *SalesOrderUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateSalesOrderRequest) (*dto.SalesOrderResponse, error) {
	now := uc.now()
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	order := &entity.SalesOrder{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		AccountID: in.AccountID,
		DealID:    in.DealID,
		Status:    entity.SalesOrderDraft,
		Currency:  currency,
		Notes:     in.Notes,
		DueDate:   in.DueDate,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	items, err := buildItems(order.ID, in.Items)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.RecalculateTotal()

	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		if err := checkReferences(ctx, r, companyID, order); err != nil {
			return err
		}
		seq, err := r.Sequences.Next(ctx, companyID, entity.SeriesSalesOrder)
		if err != nil {
			return err
		}
		order.OrderNumber = entity.FormatOrderNumber(entity.SeriesSalesOrder, seq)
		return r.SalesOrders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return ToSalesOrderResponse(order), nil
}

// GetByID obtiene una orden de la empresa con sus líneas.
func (uc *SalesOrderUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.SalesOrderResponse, error) {
	order, err := uc.get(ctx, uc.repos, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToSalesOrderResponse(order), nil
}

// Order devuelve la entidad completa (documentos PDF).
func (uc *SalesOrderUseCase) Order(ctx context.Context, companyID, id string) (*entity.SalesOrder, error) {
	return uc.get(ctx, uc.repos, companyID, id)
}

// List lista órdenes con filtros de estado y cliente.
func (uc *SalesOrderUseCase) List(ctx context.Context, companyID string, filter repository.SalesOrderFilter, page dto.PageRequest) (*dto.SalesOrderListResponse, error) {
	page.DefaultPage()
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, filter.Status)
	}
	list, total, err := uc.repos.SalesOrders.List(ctx, companyID, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SalesOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *ToSalesOrderResponse(o))
	}
	return &dto.SalesOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update modifica un borrador. Si vienen líneas se reemplazan y se recalcula el total.
func (uc *SalesOrderUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateSalesOrderRequest) (*dto.SalesOrderResponse, error) {
	var order *entity.SalesOrder
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		order, err = r.SalesOrders.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := order.EnsureEditable(); err != nil {
			return err
		}
		if in.AccountID != nil {
			order.AccountID = *in.AccountID
		}
		if in.DealID != nil {
			order.DealID = *in.DealID
		}
		if in.Currency != nil && strings.TrimSpace(*in.Currency) != "" {
			order.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
		}
		if in.Notes != nil {
			order.Notes = *in.Notes
		}
		if in.DueDate != nil {
			order.DueDate = in.DueDate
		}
		replace := len(in.Items) > 0
		if replace {
			items, err := buildItems(order.ID, in.Items)
			if err != nil {
				return err
			}
			order.Items = items
			order.RecalculateTotal()
		}
		if err := checkReferences(ctx, r, companyID, order); err != nil {
			return err
		}
		order.UpdatedAt = uc.now()
		if replace {
			if err := r.SalesOrders.ReplaceItems(ctx, order); err != nil {
				return err
			}
		}
		return r.SalesOrders.UpdateHeader(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return ToSalesOrderResponse(order), nil
}

// Discard elimina físicamente un borrador y sus líneas.
func (uc *SalesOrderUseCase) Discard(ctx context.Context, companyID, id string) error {
	return uc.tx.Run(ctx, func(r ports.Repos) error {
		order, err := r.SalesOrders.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := order.EnsureEditable(); err != nil {
			return err
		}
		return r.SalesOrders.Delete(ctx, companyID, id)
	})
}

// Confirm draft -> confirmed; desde aquí la orden reserva stock.
func (uc *SalesOrderUseCase) Confirm(ctx context.Context, companyID, id string) (*dto.SalesOrderResponse, error) {
	return uc.transition(ctx, companyID, id, func(o *entity.SalesOrder, now time.Time) error {
		return o.Confirm(now)
	})
}

// Cancel cancela una orden no despachada por completo. No genera movimientos: lo ya
// despachado queda en el libro y la reserva pendiente se libera.
func (uc *SalesOrderUseCase) Cancel(ctx context.Context, companyID, id string) (*dto.SalesOrderResponse, error) {
	return uc.transition(ctx, companyID, id, func(o *entity.SalesOrder, now time.Time) error {
		return o.Cancel(now)
	})
}

func (uc *SalesOrderUseCase) transition(ctx context.Context, companyID, id string, apply func(*entity.SalesOrder, time.Time) error) (*dto.SalesOrderResponse, error) {
	var order *entity.SalesOrder
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		order, err = r.SalesOrders.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := apply(order, uc.now()); err != nil {
			return err
		}
		return r.SalesOrders.UpdateHeader(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return ToSalesOrderResponse(order), nil
}

// Fulfill despacha la orden desde una bodega. Lee las líneas con la orden bloqueada,
// recorta cada cantidad a lo pendiente, registra un movimiento negativo (sale) por cada
// línea con cantidad positiva y avanza el estado; todo en una sola transacción.
func (uc *SalesOrderUseCase) Fulfill(ctx context.Context, companyID, userID, id string, in dto.FulfillRequest) (*dto.FulfillmentResponse, error) {
	requests := inventory.ToLineQuantities(in.Items)
	var (
		order     *entity.SalesOrder
		outcomes  []entity.LineOutcome
		movements []*entity.StockMovement
	)
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		order, err = r.SalesOrders.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		wh, err := r.Warehouses.GetByID(ctx, companyID, in.WarehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, in.WarehouseID)
		}

		now := uc.now()
		outcomes, err = order.Fulfill(requests, now)
		if err != nil {
			return err
		}
		for _, line := range outcomes {
			if !line.Applied.GreaterThan(decimal.Zero) {
				continue
			}
			mov := inventory.NewOrderMovement(companyID, wh.ID, userID,
				entity.MovementSale, entity.ReferenceSalesOrder, order.ID, line, -1, now)
			if err := inventory.AppendMovement(ctx, r, mov); err != nil {
				return err
			}
			movements = append(movements, mov)
		}
		if len(movements) == 0 && len(outcomes) == 0 {
			return nil
		}
		return r.SalesOrders.UpdateFulfillment(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	for _, line := range outcomes {
		if line.Clamped() {
			uc.log.Warn().
				Str("company_id", companyID).
				Str("order_id", order.ID).
				Str("item_id", line.LineID).
				Str("requested", line.Requested.String()).
				Str("applied", line.Applied.String()).
				Msg("cantidad de despacho recortada al pendiente")
		}
	}
	uc.log.Info().
		Str("company_id", companyID).
		Str("order", order.OrderNumber).
		Str("status", string(order.Status)).
		Int("movements", len(movements)).
		Msg("orden de venta despachada")

	return &dto.FulfillmentResponse{
		Order:     *ToSalesOrderResponse(order),
		Lines:     inventory.ToLineOutcomeResponses(outcomes),
		Movements: inventory.ToMovementResponses(movements),
	}, nil
}

func (uc *SalesOrderUseCase) get(ctx context.Context, r ports.Repos, companyID, id string) (*entity.SalesOrder, error) {
	order, err := r.SalesOrders.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func buildItems(orderID string, in []dto.SalesOrderItemRequest) ([]*entity.SalesOrderItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: la orden necesita al menos una línea", domain.ErrInvalidInput)
	}
	items := make([]*entity.SalesOrderItem, 0, len(in))
	for _, it := range in {
		item := &entity.SalesOrderItem{
			ID:                uuid.New().String(),
			OrderID:           orderID,
			ProductID:         it.ProductID,
			Description:       it.Description,
			Quantity:          it.Quantity,
			UnitPrice:         it.UnitPrice,
			Discount:          it.Discount,
			FulfilledQuantity: decimal.Zero,
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// checkReferences productos, cliente y oportunidad deben pertenecer a la empresa.
func checkReferences(ctx context.Context, r ports.Repos, companyID string, order *entity.SalesOrder) error {
	ids := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := r.Products.GetByIDs(ctx, companyID, ids)
	if err != nil {
		return err
	}
	for _, it := range order.Items {
		if _, ok := products[it.ProductID]; !ok {
			return fmt.Errorf("%w: producto %s no pertenece al catálogo", domain.ErrInvalidReference, it.ProductID)
		}
	}
	if order.AccountID != "" {
		acc, err := r.Accounts.GetByID(ctx, companyID, order.AccountID)
		if err != nil {
			return err
		}
		if acc == nil {
			return fmt.Errorf("%w: cliente %s", domain.ErrInvalidReference, order.AccountID)
		}
	}
	if order.DealID != "" {
		deal, err := r.Deals.GetByID(ctx, companyID, order.DealID)
		if err != nil {
			return err
		}
		if deal == nil {
			return fmt.Errorf("%w: oportunidad %s", domain.ErrInvalidReference, order.DealID)
		}
	}
	return nil
}

// ToSalesOrderResponse convierte la entidad a su DTO.
func ToSalesOrderResponse(o *entity.SalesOrder) *dto.SalesOrderResponse {
	if o == nil {
		return nil
	}
	items := make([]dto.SalesOrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.SalesOrderItemResponse{
			ID:                it.ID,
			ProductID:         it.ProductID,
			Description:       it.Description,
			Quantity:          it.Quantity,
			UnitPrice:         it.UnitPrice,
			Discount:          it.Discount,
			FulfilledQuantity: it.FulfilledQuantity,
			Remaining:         it.Remaining(),
			LineTotal:         it.LineTotal().Round(2),
		})
	}
	return &dto.SalesOrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		AccountID:   o.AccountID,
		DealID:      o.DealID,
		Status:      string(o.Status),
		Currency:    o.Currency,
		Notes:       o.Notes,
		DueDate:     o.DueDate,
		TotalAmount: o.TotalAmount,
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Items:       items,
	}
}
