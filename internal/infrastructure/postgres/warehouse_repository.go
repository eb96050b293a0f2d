package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, company_id, name, location, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		w.ID, w.CompanyID, w.Name, w.Location, w.IsDefault, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: bodega %s", domain.ErrDuplicate, w.Name)
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega de la empresa.
func (r *WarehouseRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Warehouse, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := `
		SELECT id, company_id, name, location, is_default, created_at, updated_at
		FROM warehouses WHERE company_id = $1 AND id = $2`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, companyID, id).Scan(
		&w.ID, &w.CompanyID, &w.Name, &w.Location, &w.IsDefault, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// Update actualiza una bodega existente.
func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	query := `
		UPDATE warehouses SET name = $3, location = $4, is_default = $5, updated_at = $6
		WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, w.CompanyID, w.ID, w.Name, w.Location, w.IsDefault, w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: bodega %s", domain.ErrDuplicate, w.Name)
		}
		return fmt.Errorf("update warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearDefault quita la marca por defecto del resto de bodegas de la empresa.
func (r *WarehouseRepo) ClearDefault(ctx context.Context, companyID, exceptID string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE warehouses SET is_default = FALSE, updated_at = NOW()
		 WHERE company_id = $1 AND is_default AND id::text <> $2`,
		companyID, exceptID)
	if err != nil {
		return fmt.Errorf("clear default warehouse: %w", err)
	}
	return nil
}

// ListAll lista las bodegas de la empresa ordenadas por nombre.
func (r *WarehouseRepo) ListAll(ctx context.Context, companyID string) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, company_id, name, location, is_default, created_at, updated_at
		FROM warehouses WHERE company_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.CompanyID, &w.Name, &w.Location, &w.IsDefault, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// Delete elimina una bodega. Si tiene movimientos la FK lo impide (ErrConflict).
func (r *WarehouseRepo) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM warehouses WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: la bodega tiene movimientos", domain.ErrConflict)
		}
		return fmt.Errorf("delete warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
