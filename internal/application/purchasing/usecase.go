package purchasing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/application/inventory"
	"github.com/jhoicas/stockflow-api/internal/application/ports"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stockflow-api/internal/domain/inventory"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

const defaultCurrency = "EUR"

// PurchaseOrderUseCase máquina de estados de órdenes de compra y recepción contra el libro.
type PurchaseOrderUseCase struct {
	repos ports.Repos
	tx    ports.TxRunner
	log   *logger.Logger
	now   ports.Clock
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(repos ports.Repos, tx ports.TxRunner, log *logger.Logger) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{repos: repos, tx: tx, log: log, now: time.Now}
}

// WithClock reemplaza la fuente de tiempo (tests).
func (uc *PurchaseOrderUseCase) WithClock(clock ports.Clock) *PurchaseOrderUseCase {
	uc.now = clock
	return uc
}

// Create persiste una orden de compra en draft con número PO-#### y total Σ cantidad × costo.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	now := uc.now()
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	order := &entity.PurchaseOrder{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		SupplierID:   in.SupplierID,
		Status:       entity.PurchaseOrderDraft,
		Currency:     currency,
		Notes:        in.Notes,
		ExpectedDate: in.ExpectedDate,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
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
		seq, err := r.Sequences.Next(ctx, companyID, entity.SeriesPurchaseOrder)
		if err != nil {
			return err
		}
		order.OrderNumber = entity.FormatOrderNumber(entity.SeriesPurchaseOrder, seq)
		return r.PurchaseOrders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return ToPurchaseOrderResponse(order), nil
}

// GetByID obtiene una orden de compra de la empresa.
func (uc *PurchaseOrderUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.PurchaseOrderResponse, error) {
	order, err := uc.Order(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToPurchaseOrderResponse(order), nil
}

// Order devuelve la entidad completa (documentos PDF y UBL).
func (uc *PurchaseOrderUseCase) Order(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	order, err := uc.repos.PurchaseOrders.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// List lista órdenes de compra con filtros de estado y proveedor.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, companyID string, filter repository.PurchaseOrderFilter, page dto.PageRequest) (*dto.PurchaseOrderListResponse, error) {
	page.DefaultPage()
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, filter.Status)
	}
	list, total, err := uc.repos.PurchaseOrders.List(ctx, companyID, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *ToPurchaseOrderResponse(o))
	}
	return &dto.PurchaseOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update modifica un borrador; si vienen líneas se reemplazan y se recalcula el total.
func (uc *PurchaseOrderUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	var order *entity.PurchaseOrder
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		order, err = r.PurchaseOrders.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := order.EnsureEditable(); err != nil {
			return err
		}
		if in.SupplierID != nil {
			order.SupplierID = *in.SupplierID
		}
		if in.Currency != nil && strings.TrimSpace(*in.Currency) != "" {
			order.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
		}
		if in.Notes != nil {
			order.Notes = *in.Notes
		}
		if in.ExpectedDate != nil {
			order.ExpectedDate = in.ExpectedDate
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
			if err := r.PurchaseOrders.ReplaceItems(ctx, order); err != nil {
				return err
			}
		}
		return r.PurchaseOrders.UpdateHeader(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return ToPurchaseOrderResponse(order), nil
}

// Delete elimina un borrador y sus líneas.
func (uc *PurchaseOrderUseCase) Delete(ctx context.Context, companyID, id string) error {
	return uc.tx.Run(ctx, func(r ports.Repos) error {
		order, err := r.PurchaseOrders.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := order.EnsureEditable(); err != nil {
			return err
		}
		return r.PurchaseOrders.Delete(ctx, companyID, id)
	})
}

// Send draft -> sent.
func (uc *PurchaseOrderUseCase) Send(ctx context.Context, companyID, id string) (*dto.PurchaseOrderResponse, error) {
	return uc.transition(ctx, companyID, id, func(o *entity.PurchaseOrder, now time.Time) error {
		return o.Send(now)
	})
}

// Cancel draft o sent sin recepciones -> cancelled.
func (uc *PurchaseOrderUseCase) Cancel(ctx context.Context, companyID, id string) (*dto.PurchaseOrderResponse, error) {
	return uc.transition(ctx, companyID, id, func(o *entity.PurchaseOrder, now time.Time) error {
		return o.Cancel(now)
	})
}

// Close sent o partially_received -> closed; lo pendiente deja de esperarse.
func (uc *PurchaseOrderUseCase) Close(ctx context.Context, companyID, id string) (*dto.PurchaseOrderResponse, error) {
	return uc.transition(ctx, companyID, id, func(o *entity.PurchaseOrder, now time.Time) error {
		return o.Close(now)
	})
}

func (uc *PurchaseOrderUseCase) transition(ctx context.Context, companyID, id string, apply func(*entity.PurchaseOrder, time.Time) error) (*dto.PurchaseOrderResponse, error) {
	var order *entity.PurchaseOrder
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		order, err = r.PurchaseOrders.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := apply(order, uc.now()); err != nil {
			return err
		}
		return r.PurchaseOrders.UpdateHeader(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return ToPurchaseOrderResponse(order), nil
}

// Receive registra mercancía recibida en una bodega. Cada cantidad se recorta a lo
// pendiente de su línea; por cada línea con cantidad positiva se agrega un movimiento
// positivo (purchase) y se actualiza el costo promedio del producto. Todo en una transacción
// con la orden bloqueada.
func (uc *PurchaseOrderUseCase) Receive(ctx context.Context, companyID, userID, id string, in dto.ReceiveRequest) (*dto.ReceiptResponse, error) {
	receipts := inventory.ToLineQuantities(in.Items)
	var (
		order     *entity.PurchaseOrder
		outcomes  []entity.LineOutcome
		movements []*entity.StockMovement
	)
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		order, err = r.PurchaseOrders.GetForUpdate(ctx, companyID, id)
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
		outcomes, err = order.Receive(receipts, now)
		if err != nil {
			return err
		}
		if err := lockReceivedProducts(ctx, r, companyID, outcomes); err != nil {
			return err
		}
		costs := make(map[string]decimal.Decimal, len(order.Items))
		for _, it := range order.Items {
			costs[it.ID] = it.UnitCost
		}
		for _, line := range outcomes {
			if !line.Applied.GreaterThan(decimal.Zero) {
				continue
			}
			if err := updateAverageCost(ctx, r, companyID, line, costs[line.LineID]); err != nil {
				return err
			}
			mov := inventory.NewOrderMovement(companyID, wh.ID, userID,
				entity.MovementPurchase, entity.ReferencePurchaseOrder, order.ID, line, 1, now)
			if err := inventory.AppendMovement(ctx, r, mov); err != nil {
				return err
			}
			movements = append(movements, mov)
		}
		if len(outcomes) == 0 {
			return nil
		}
		return r.PurchaseOrders.UpdateReceipt(ctx, order)
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
				Msg("cantidad recibida recortada al pendiente")
		}
	}
	uc.log.Info().
		Str("company_id", companyID).
		Str("order", order.OrderNumber).
		Str("status", string(order.Status)).
		Int("movements", len(movements)).
		Msg("orden de compra recibida")

	return &dto.ReceiptResponse{
		Order:     *ToPurchaseOrderResponse(order),
		Lines:     inventory.ToLineOutcomeResponses(outcomes),
		Movements: inventory.ToMovementResponses(movements),
	}, nil
}

// lockReceivedProducts toma el lock stock:<producto> de cada producto que entra, en orden de id,
// para que dos recepciones concurrentes del mismo producto no pisen el costo promedio.
func lockReceivedProducts(ctx context.Context, r ports.Repos, companyID string, outcomes []entity.LineOutcome) error {
	ids := make([]string, 0, len(outcomes))
	seen := make(map[string]bool, len(outcomes))
	for _, line := range outcomes {
		if line.Applied.GreaterThan(decimal.Zero) && !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := r.Locks.Lock(ctx, companyID, inventory.StockLockScope(id)); err != nil {
			return err
		}
	}
	return nil
}

// updateAverageCost recalcula el costo promedio ponderado con el on-hand previo a la entrada.
// El caller debe tener el lock stock:<producto>.
func updateAverageCost(ctx context.Context, r ports.Repos, companyID string, line entity.LineOutcome, unitCost decimal.Decimal) error {
	product, err := r.Products.GetByID(ctx, companyID, line.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
	}
	onHand, err := r.Movements.OnHand(ctx, companyID, line.ProductID, "")
	if err != nil {
		return err
	}
	cost := domaininv.WeightedAverageCost(onHand, product.CostPrice, line.Applied, unitCost)
	if cost.Equal(product.CostPrice) {
		return nil
	}
	return r.Products.UpdateCost(ctx, companyID, product.ID, cost)
}

func buildItems(orderID string, in []dto.PurchaseOrderItemRequest) ([]*entity.PurchaseOrderItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: la orden necesita al menos una línea", domain.ErrInvalidInput)
	}
	items := make([]*entity.PurchaseOrderItem, 0, len(in))
	for _, it := range in {
		item := &entity.PurchaseOrderItem{
			ID:               uuid.New().String(),
			OrderID:          orderID,
			ProductID:        it.ProductID,
			Description:      it.Description,
			QuantityOrdered:  it.QuantityOrdered,
			QuantityReceived: decimal.Zero,
			UnitCost:         it.UnitCost,
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// checkReferences productos del catálogo de la empresa y proveedor (cuenta supplier o both).
func checkReferences(ctx context.Context, r ports.Repos, companyID string, order *entity.PurchaseOrder) error {
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
	if order.SupplierID != "" {
		acc, err := r.Accounts.GetByID(ctx, companyID, order.SupplierID)
		if err != nil {
			return err
		}
		if acc == nil || !acc.CanSupply() {
			return fmt.Errorf("%w: proveedor %s", domain.ErrInvalidReference, order.SupplierID)
		}
	}
	return nil
}

// ToPurchaseOrderResponse convierte la entidad a su DTO.
func ToPurchaseOrderResponse(o *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	if o == nil {
		return nil
	}
	items := make([]dto.PurchaseOrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.PurchaseOrderItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			Description:      it.Description,
			QuantityOrdered:  it.QuantityOrdered,
			QuantityReceived: it.QuantityReceived,
			Remaining:        it.Remaining(),
			UnitCost:         it.UnitCost,
			LineTotal:        it.LineTotal().Round(2),
		})
	}
	return &dto.PurchaseOrderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		SupplierID:   o.SupplierID,
		Status:       string(o.Status),
		Currency:     o.Currency,
		Notes:        o.Notes,
		ExpectedDate: o.ExpectedDate,
		TotalAmount:  o.TotalAmount,
		CreatedBy:    o.CreatedBy,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Items:        items,
	}
}
