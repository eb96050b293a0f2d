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

var _ repository.SignalRepository = (*SignalRepo)(nil)

const signalColumns = `id, company_id, signal_type, severity, entity_type, entity_id, title, body,
	is_read, is_dismissed, created_at`

// críticas primero; el resto del orden es estable entre refrescos
const signalOrder = `ORDER BY CASE severity WHEN 'critical' THEN 0 WHEN 'warning' THEN 1 ELSE 2 END,
	signal_type, entity_id`

// SignalRepo señales derivadas sobre PostgreSQL.
type SignalRepo struct {
	q Querier
}

// NewSignalRepository construye el adaptador.
func NewSignalRepository(q Querier) *SignalRepo {
	return &SignalRepo{q: q}
}

func scanSignal(row pgx.Row) (*entity.Signal, error) {
	var s entity.Signal
	err := row.Scan(&s.ID, &s.CompanyID, &s.Type, &s.Severity, &s.EntityType, &s.EntityID,
		&s.Title, &s.Body, &s.IsRead, &s.IsDismissed, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List señales paginadas; includeDismissed incluye las descartadas.
func (r *SignalRepo) List(ctx context.Context, companyID string, includeDismissed bool, limit, offset int) ([]*entity.Signal, int, error) {
	cond := `company_id = $1 AND ($2 OR NOT is_dismissed)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM signals WHERE `+cond, companyID, includeDismissed).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count signals: %w", err)
	}
	list, err := r.query(ctx, `SELECT `+signalColumns+` FROM signals WHERE `+cond+` `+signalOrder+` LIMIT $3 OFFSET $4`,
		companyID, includeDismissed, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list signals: %w", err)
	}
	return list, total, nil
}

// ListDismissed señales descartadas (suprimen condiciones iguales en el próximo refresh).
func (r *SignalRepo) ListDismissed(ctx context.Context, companyID string) ([]*entity.Signal, error) {
	list, err := r.query(ctx, `SELECT `+signalColumns+` FROM signals WHERE company_id = $1 AND is_dismissed `+signalOrder, companyID)
	if err != nil {
		return nil, fmt.Errorf("list dismissed signals: %w", err)
	}
	return list, nil
}

// GetByID obtiene una señal de la empresa.
func (r *SignalRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Signal, error) {
	if !isUUID(id) {
		return nil, nil
	}
	s, err := scanSignal(r.q.QueryRow(ctx, `SELECT `+signalColumns+` FROM signals WHERE company_id = $1 AND id = $2`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get signal: %w", err)
	}
	return s, nil
}

// InsertBatch inserta todas las señales en un solo batch.
func (r *SignalRepo) InsertBatch(ctx context.Context, signals []*entity.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, s := range signals {
		b.Queue(`INSERT INTO signals (`+signalColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			s.ID, s.CompanyID, s.Type, s.Severity, s.EntityType, s.EntityID, s.Title, s.Body,
			s.IsRead, s.IsDismissed, s.CreatedAt)
	}
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("insert signals: %w", err)
	}
	return nil
}

// DeleteActive elimina las señales no descartadas.
func (r *SignalRepo) DeleteActive(ctx context.Context, companyID string) (int, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM signals WHERE company_id = $1 AND NOT is_dismissed`, companyID)
	if err != nil {
		return 0, fmt.Errorf("delete active signals: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// SetFlags fija leída/descartada.
func (r *SignalRepo) SetFlags(ctx context.Context, companyID, id string, read, dismissed bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE signals SET is_read = $3, is_dismissed = $4 WHERE company_id = $1 AND id = $2`,
		companyID, id, read, dismissed)
	if err != nil {
		return fmt.Errorf("update signal flags: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Summary conteos por severidad sobre las no descartadas.
func (r *SignalRepo) Summary(ctx context.Context, companyID string) (entity.SignalSummary, error) {
	var s entity.SignalSummary
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE severity = 'critical'),
			COUNT(*) FILTER (WHERE severity = 'warning'),
			COUNT(*) FILTER (WHERE severity = 'info'),
			COUNT(*) FILTER (WHERE NOT is_read)
		FROM signals WHERE company_id = $1 AND NOT is_dismissed`, companyID,
	).Scan(&s.Total, &s.Critical, &s.Warning, &s.Info, &s.Unread)
	if err != nil {
		return entity.SignalSummary{}, fmt.Errorf("signal summary: %w", err)
	}
	return s, nil
}

func (r *SignalRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Signal, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*entity.Signal
	for rows.Next() {
		s, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
