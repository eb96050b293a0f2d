package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `id, company_id, order_number, COALESCE(supplier_id::text, ''), status, currency,
	notes, expected_date, total_amount, created_by, created_at, updated_at`

// PurchaseOrderRepo órdenes de compra sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.OrderNumber, &o.SupplierID, &o.Status, &o.Currency,
		&o.Notes, &o.ExpectedDate, &o.TotalAmount, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserta cabecera y líneas.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	b := &pgx.Batch{}
	b.Queue(`
		INSERT INTO purchase_orders (id, company_id, order_number, supplier_id, status, currency, notes,
			expected_date, total_amount, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.CompanyID, o.OrderNumber, nullable(o.SupplierID), o.Status, o.Currency, o.Notes,
		o.ExpectedDate, o.TotalAmount, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	queuePurchaseItems(b, o)
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, o.OrderNumber)
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

func queuePurchaseItems(b *pgx.Batch, o *entity.PurchaseOrder) {
	for i, it := range o.Items {
		b.Queue(`
			INSERT INTO purchase_order_items (id, order_id, line_no, product_id, description,
				quantity_ordered, quantity_received, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, o.ID, i+1, it.ProductID, it.Description, it.QuantityOrdered, it.QuantityReceived, it.UnitCost,
		)
	}
}

// GetByID orden con sus líneas.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE company_id = $1 AND id = $2`, companyID, id)
}

// GetForUpdate bloquea la fila de la orden hasta el fin de la transacción.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query, companyID, id string) (*entity.PurchaseOrder, error) {
	if !isUUID(id) {
		return nil, nil
	}
	o, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *PurchaseOrderRepo) loadItems(ctx context.Context, orderIDs []string) (map[string][]*entity.PurchaseOrderItem, error) {
	out := make(map[string][]*entity.PurchaseOrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, description, quantity_ordered, quantity_received, unit_cost
		FROM purchase_order_items WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, line_no`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load purchase order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Description,
			&it.QuantityOrdered, &it.QuantityReceived, &it.UnitCost); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], &it)
	}
	return out, rows.Err()
}

// List órdenes paginadas con sus líneas.
func (r *PurchaseOrderRepo) List(ctx context.Context, companyID string, f repository.PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, int, error) {
	where := []string{"company_id = $1"}
	args := []any{companyID}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.SupplierID != "" {
		args = append(args, f.SupplierID)
		where = append(where, fmt.Sprintf("supplier_id::text = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchase orders: %w", err)
	}
	args = append(args, limit, offset)
	list, err := r.queryHeaders(ctx, fmt.Sprintf(`SELECT %s FROM purchase_orders WHERE %s
		ORDER BY created_at DESC, order_number DESC LIMIT $%d OFFSET $%d`,
		purchaseOrderColumns, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListAwaitingDelivery órdenes con fecha esperada aún pendientes de recibir.
func (r *PurchaseOrderRepo) ListAwaitingDelivery(ctx context.Context, companyID string) ([]*entity.PurchaseOrder, error) {
	list, err := r.queryHeaders(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders
		WHERE company_id = $1 AND expected_date IS NOT NULL
			AND status NOT IN ('received', 'closed', 'cancelled')
		ORDER BY order_number`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list awaiting delivery: %w", err)
	}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PurchaseOrderRepo) queryHeaders(ctx context.Context, query string, args ...any) ([]*entity.PurchaseOrder, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		o, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *PurchaseOrderRepo) attachItems(ctx context.Context, list []*entity.PurchaseOrder) error {
	ids := make([]string, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return err
	}
	for _, o := range list {
		o.Items = items[o.ID]
	}
	return nil
}

// UpdateHeader persiste cabecera y estado.
func (r *PurchaseOrderRepo) UpdateHeader(ctx context.Context, o *entity.PurchaseOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET supplier_id = $3, status = $4, currency = $5, notes = $6,
			expected_date = $7, total_amount = $8, updated_at = $9
		WHERE company_id = $1 AND id = $2`,
		o.CompanyID, o.ID, nullable(o.SupplierID), o.Status, o.Currency, o.Notes,
		o.ExpectedDate, o.TotalAmount, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems borra y vuelve a insertar las líneas.
func (r *PurchaseOrderRepo) ReplaceItems(ctx context.Context, o *entity.PurchaseOrder) error {
	b := &pgx.Batch{}
	b.Queue(`DELETE FROM purchase_order_items WHERE order_id = $1`, o.ID)
	queuePurchaseItems(b, o)
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("replace purchase order items: %w", err)
	}
	return nil
}

// UpdateReceipt persiste quantity_received por línea y la cabecera.
func (r *PurchaseOrderRepo) UpdateReceipt(ctx context.Context, o *entity.PurchaseOrder) error {
	b := &pgx.Batch{}
	for _, it := range o.Items {
		b.Queue(`UPDATE purchase_order_items SET quantity_received = $2 WHERE id = $1`, it.ID, it.QuantityReceived)
	}
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("update received quantities: %w", err)
	}
	return r.UpdateHeader(ctx, o)
}

// Delete elimina la orden (las líneas caen en cascada).
func (r *PurchaseOrderRepo) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM purchase_orders WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
