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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, company_id, sku, name, description, unit, cost_price, sale_price,
	reorder_level, track_inventory, is_active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &p.Unit, &p.CostPrice, &p.SalePrice,
		&p.ReorderLevel, &p.TrackInventory, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.SKU, p.Name, p.Description, p.Unit, p.CostPrice, p.SalePrice,
		p.ReorderLevel, p.TrackInventory, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, p.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto de la empresa.
func (r *ProductRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE company_id = $1 AND id = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByIDs carga varios productos en una sola consulta; los ausentes no aparecen en el mapa.
func (r *ProductRepo) GetByIDs(ctx context.Context, companyID string, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	ids = onlyUUIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE company_id = $1 AND id = ANY($2::uuid[])`
	list, err := r.queryList(ctx, query, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

// Update actualiza los campos de catálogo.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET sku = $3, name = $4, description = $5, unit = $6, cost_price = $7,
			sale_price = $8, reorder_level = $9, track_inventory = $10, is_active = $11, updated_at = $12
		WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		p.CompanyID, p.ID, p.SKU, p.Name, p.Description, p.Unit, p.CostPrice,
		p.SalePrice, p.ReorderLevel, p.TrackInventory, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, p.SKU)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateCost fija el costo promedio tras una recepción.
func (r *ProductRepo) UpdateCost(ctx context.Context, companyID, productID string, cost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET cost_price = $3, updated_at = NOW() WHERE company_id = $1 AND id = $2`,
		companyID, productID, cost)
	if err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List listado paginado con búsqueda por SKU o nombre.
func (r *ProductRepo) List(ctx context.Context, companyID string, filter repository.ProductFilter, limit, offset int) ([]*entity.Product, int, error) {
	where := []string{"company_id = $1"}
	args := []any{companyID}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(sku ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	if filter.OnlyActive {
		where = append(where, "is_active")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY sku LIMIT $%d OFFSET $%d`,
		productColumns, cond, len(args)-1, len(args))
	list, err := r.queryList(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return list, total, nil
}

// ListTracked productos activos que controlan inventario.
func (r *ProductRepo) ListTracked(ctx context.Context, companyID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE company_id = $1 AND track_inventory AND is_active ORDER BY sku`
	list, err := r.queryList(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list tracked products: %w", err)
	}
	return list, nil
}

func (r *ProductRepo) queryList(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
