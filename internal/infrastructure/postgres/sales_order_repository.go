package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

const salesOrderColumns = `id, company_id, order_number, COALESCE(account_id::text, ''), COALESCE(deal_id::text, ''),
	status, currency, notes, due_date, total_amount, created_by, created_at, updated_at`

// reservedSQL Σ pendiente de líneas de órdenes de venta abiertas.
const reservedSQL = `
	SELECT i.product_id, COALESCE(SUM(GREATEST(i.quantity - i.fulfilled_quantity, 0)), 0)
	FROM sales_order_items i
	JOIN sales_orders o ON o.id = i.order_id
	WHERE o.company_id = $1 AND o.status IN ('confirmed', 'partially_fulfilled')`

// SalesOrderRepo órdenes de venta sobre PostgreSQL.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

func scanSalesOrder(row pgx.Row) (*entity.SalesOrder, error) {
	var o entity.SalesOrder
	err := row.Scan(
		&o.ID, &o.CompanyID, &o.OrderNumber, &o.AccountID, &o.DealID,
		&o.Status, &o.Currency, &o.Notes, &o.DueDate, &o.TotalAmount, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserta cabecera y líneas en un solo batch.
func (r *SalesOrderRepo) Create(ctx context.Context, o *entity.SalesOrder) error {
	b := &pgx.Batch{}
	b.Queue(`
		INSERT INTO sales_orders (id, company_id, order_number, account_id, deal_id, status, currency, notes,
			due_date, total_amount, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID, o.CompanyID, o.OrderNumber, nullable(o.AccountID), nullable(o.DealID), o.Status, o.Currency,
		o.Notes, o.DueDate, o.TotalAmount, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	)
	queueSalesItems(b, o)
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, o.OrderNumber)
		}
		return fmt.Errorf("insert sales order: %w", err)
	}
	return nil
}

func queueSalesItems(b *pgx.Batch, o *entity.SalesOrder) {
	for i, it := range o.Items {
		b.Queue(`
			INSERT INTO sales_order_items (id, order_id, line_no, product_id, description, quantity,
				unit_price, discount, fulfilled_quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, o.ID, i+1, it.ProductID, it.Description, it.Quantity, it.UnitPrice, it.Discount, it.FulfilledQuantity,
		)
	}
}

// GetByID orden con sus líneas.
func (r *SalesOrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.SalesOrder, error) {
	return r.get(ctx, `SELECT `+salesOrderColumns+` FROM sales_orders WHERE company_id = $1 AND id = $2`, companyID, id)
}

// GetForUpdate bloquea la fila de la orden hasta el fin de la transacción.
func (r *SalesOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.SalesOrder, error) {
	return r.get(ctx, `SELECT `+salesOrderColumns+` FROM sales_orders WHERE company_id = $1 AND id = $2 FOR UPDATE`, companyID, id)
}

func (r *SalesOrderRepo) get(ctx context.Context, query, companyID, id string) (*entity.SalesOrder, error) {
	if !isUUID(id) {
		return nil, nil
	}
	o, err := scanSalesOrder(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *SalesOrderRepo) loadItems(ctx context.Context, orderIDs []string) (map[string][]*entity.SalesOrderItem, error) {
	out := make(map[string][]*entity.SalesOrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, description, quantity, unit_price, discount, fulfilled_quantity
		FROM sales_order_items WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, line_no`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("load sales order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SalesOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Description, &it.Quantity,
			&it.UnitPrice, &it.Discount, &it.FulfilledQuantity); err != nil {
			return nil, fmt.Errorf("scan sales order item: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], &it)
	}
	return out, rows.Err()
}

// List órdenes paginadas (más recientes primero) con sus líneas.
func (r *SalesOrderRepo) List(ctx context.Context, companyID string, f repository.SalesOrderFilter, limit, offset int) ([]*entity.SalesOrder, int, error) {
	where := []string{"company_id = $1"}
	args := []any{companyID}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.AccountID != "" {
		args = append(args, f.AccountID)
		where = append(where, fmt.Sprintf("account_id::text = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales_orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales orders: %w", err)
	}
	args = append(args, limit, offset)
	rows, err := r.q.Query(ctx, fmt.Sprintf(`SELECT %s FROM sales_orders WHERE %s
		ORDER BY created_at DESC, order_number DESC LIMIT $%d OFFSET $%d`,
		salesOrderColumns, cond, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales orders: %w", err)
	}
	var list []*entity.SalesOrder
	ids := []string{}
	for rows.Next() {
		o, err := scanSalesOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan sales order: %w", err)
		}
		list = append(list, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list sales orders: %w", err)
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, o := range list {
		o.Items = items[o.ID]
	}
	return list, total, nil
}

// UpdateHeader persiste cabecera y estado.
func (r *SalesOrderRepo) UpdateHeader(ctx context.Context, o *entity.SalesOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales_orders SET account_id = $3, deal_id = $4, status = $5, currency = $6, notes = $7,
			due_date = $8, total_amount = $9, updated_at = $10
		WHERE company_id = $1 AND id = $2`,
		o.CompanyID, o.ID, nullable(o.AccountID), nullable(o.DealID), o.Status, o.Currency, o.Notes,
		o.DueDate, o.TotalAmount, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sales order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems borra y vuelve a insertar las líneas.
func (r *SalesOrderRepo) ReplaceItems(ctx context.Context, o *entity.SalesOrder) error {
	b := &pgx.Batch{}
	b.Queue(`DELETE FROM sales_order_items WHERE order_id = $1`, o.ID)
	queueSalesItems(b, o)
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("replace sales order items: %w", err)
	}
	return nil
}

// UpdateFulfillment persiste fulfilled_quantity por línea y la cabecera.
func (r *SalesOrderRepo) UpdateFulfillment(ctx context.Context, o *entity.SalesOrder) error {
	b := &pgx.Batch{}
	for _, it := range o.Items {
		b.Queue(`UPDATE sales_order_items SET fulfilled_quantity = $2 WHERE id = $1`, it.ID, it.FulfilledQuantity)
	}
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("update fulfilled quantities: %w", err)
	}
	return r.UpdateHeader(ctx, o)
}

// Delete elimina la orden (las líneas caen en cascada).
func (r *SalesOrderRepo) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales_orders WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete sales order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReservedByProduct reservado por producto sobre órdenes abiertas.
func (r *SalesOrderRepo) ReservedByProduct(ctx context.Context, companyID string) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, reservedSQL+` GROUP BY i.product_id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("reserved by product: %w", err)
	}
	defer rows.Close()
	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var id string
		var qty decimal.Decimal
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan reserved: %w", err)
		}
		out[id] = qty
	}
	return out, rows.Err()
}

// Reserved reservado de un producto.
func (r *SalesOrderRepo) Reserved(ctx context.Context, companyID, productID string) (decimal.Decimal, error) {
	if !isUUID(productID) {
		return decimal.Zero, nil
	}
	var qty decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(GREATEST(i.quantity - i.fulfilled_quantity, 0)), 0)
		FROM sales_order_items i
		JOIN sales_orders o ON o.id = i.order_id
		WHERE o.company_id = $1 AND o.status IN ('confirmed', 'partially_fulfilled') AND i.product_id = $2`,
		companyID, productID).Scan(&qty)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reserved: %w", err)
	}
	return qty, nil
}
