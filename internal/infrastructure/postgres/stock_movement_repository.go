package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de inventario sobre PostgreSQL. La tabla tiene un trigger que
// rechaza UPDATE y DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append inserta un movimiento.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, company_id, product_id, warehouse_id, movement_type, quantity_delta,
			reference_type, reference_id, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.ProductID, m.WarehouseID, m.Type, m.QuantityDelta,
		m.ReferenceType, m.ReferenceID, m.Notes, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append stock movement: %w", err)
	}
	return nil
}

// List movimientos filtrados, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, companyID string, f entity.MovementFilter, limit, offset int) ([]*entity.StockMovement, int, error) {
	where := []string{"company_id = $1"}
	args := []any{companyID}
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("product_id::text", f.ProductID)
	add("warehouse_id::text", f.WarehouseID)
	add("movement_type", f.Type)
	add("reference_type", f.ReferenceType)
	add("reference_id", f.ReferenceID)
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock movements: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, company_id, product_id, warehouse_id, movement_type, quantity_delta,
			reference_type, reference_id, notes, created_by, created_at
		FROM stock_movements WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(
			&m.ID, &m.CompanyID, &m.ProductID, &m.WarehouseID, &m.Type, &m.QuantityDelta,
			&m.ReferenceType, &m.ReferenceID, &m.Notes, &m.CreatedBy, &m.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, total, rows.Err()
}

// OnHand Σ quantity_delta del producto (en una bodega o en todas).
func (r *StockMovementRepo) OnHand(ctx context.Context, companyID, productID, warehouseID string) (decimal.Decimal, error) {
	if !isUUID(productID) {
		return decimal.Zero, nil
	}
	query := `
		SELECT COALESCE(SUM(quantity_delta), 0)
		FROM stock_movements
		WHERE company_id = $1 AND product_id = $2 AND ($3 = '' OR warehouse_id::text = $3)`
	var onHand decimal.Decimal
	if err := r.q.QueryRow(ctx, query, companyID, productID, warehouseID).Scan(&onHand); err != nil {
		return decimal.Zero, fmt.Errorf("on hand: %w", err)
	}
	return onHand, nil
}

// Balances saldo por (producto, bodega).
func (r *StockMovementRepo) Balances(ctx context.Context, companyID, warehouseID string) ([]entity.StockBalance, error) {
	query := `
		SELECT product_id, warehouse_id, SUM(quantity_delta)
		FROM stock_movements
		WHERE company_id = $1 AND ($2 = '' OR warehouse_id::text = $2)
		GROUP BY product_id, warehouse_id
		ORDER BY product_id, warehouse_id`
	rows, err := r.q.Query(ctx, query, companyID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("stock balances: %w", err)
	}
	defer rows.Close()

	var out []entity.StockBalance
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.ProductID, &b.WarehouseID, &b.OnHand); err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// OnHandByProduct saldo total por producto.
func (r *StockMovementRepo) OnHandByProduct(ctx context.Context, companyID string) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, SUM(quantity_delta)
		FROM stock_movements WHERE company_id = $1
		GROUP BY product_id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("on hand by product: %w", err)
	}
	defer rows.Close()

	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var id string
		var qty decimal.Decimal
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan on hand: %w", err)
		}
		out[id] = qty
	}
	return out, rows.Err()
}

// HasMovements indica si la bodega tiene al menos una fila en el libro.
func (r *StockMovementRepo) HasMovements(ctx context.Context, companyID, warehouseID string) (bool, error) {
	if !isUUID(warehouseID) {
		return false, nil
	}
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_movements WHERE company_id = $1 AND warehouse_id = $2)`,
		companyID, warehouseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("warehouse has movements: %w", err)
	}
	return exists, nil
}
