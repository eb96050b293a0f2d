package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var (
	_ repository.AccountRepository = (*AccountRepo)(nil)
	_ repository.DealRepository    = (*DealRepo)(nil)
	_ repository.InvoiceRepository = (*InvoiceRepo)(nil)
)

// AccountRepo lectura de cuentas CRM.
type AccountRepo struct {
	q Querier
}

// NewAccountRepository construye el adaptador.
func NewAccountRepository(q Querier) *AccountRepo {
	return &AccountRepo{q: q}
}

// GetByID obtiene una cuenta de la empresa.
func (r *AccountRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Account, error) {
	if !isUUID(id) {
		return nil, nil
	}
	var a entity.Account
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, name, account_type, pipeline_stage, created_at, updated_at
		FROM accounts WHERE company_id = $1 AND id = $2`, companyID, id,
	).Scan(&a.ID, &a.CompanyID, &a.Name, &a.AccountType, &a.PipelineStage, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// ListByPipelineStage cuentas en una etapa del pipeline.
func (r *AccountRepo) ListByPipelineStage(ctx context.Context, companyID, stage string) ([]*entity.Account, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, name, account_type, pipeline_stage, created_at, updated_at
		FROM accounts WHERE company_id = $1 AND pipeline_stage = $2 ORDER BY id`, companyID, stage)
	if err != nil {
		return nil, fmt.Errorf("list accounts by stage: %w", err)
	}
	defer rows.Close()
	var list []*entity.Account
	for rows.Next() {
		var a entity.Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Name, &a.AccountType, &a.PipelineStage, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// DealRepo lectura de oportunidades.
type DealRepo struct {
	q Querier
}

// NewDealRepository construye el adaptador.
func NewDealRepository(q Querier) *DealRepo {
	return &DealRepo{q: q}
}

const dealColumns = `id, company_id, COALESCE(account_id::text, ''), title, stage, value, created_at, updated_at`

// GetByID obtiene una oportunidad de la empresa.
func (r *DealRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Deal, error) {
	if !isUUID(id) {
		return nil, nil
	}
	var d entity.Deal
	err := r.q.QueryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE company_id = $1 AND id = $2`, companyID, id).
		Scan(&d.ID, &d.CompanyID, &d.AccountID, &d.Title, &d.Stage, &d.Value, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get deal: %w", err)
	}
	return &d, nil
}

// ListOpen oportunidades que no están ganadas ni perdidas.
func (r *DealRepo) ListOpen(ctx context.Context, companyID string) ([]*entity.Deal, error) {
	rows, err := r.q.Query(ctx, `SELECT `+dealColumns+` FROM deals
		WHERE company_id = $1 AND stage NOT IN ('won', 'lost') ORDER BY id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list open deals: %w", err)
	}
	defer rows.Close()
	var list []*entity.Deal
	for rows.Next() {
		var d entity.Deal
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.AccountID, &d.Title, &d.Stage, &d.Value, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// InvoiceRepo lectura de facturas.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// ListUnpaid facturas en borrador o enviadas.
func (r *InvoiceRepo) ListUnpaid(ctx context.Context, companyID string) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, COALESCE(account_id::text, ''), invoice_number, amount, currency, status,
			due_date, created_at, updated_at
		FROM invoices WHERE company_id = $1 AND status IN ('draft', 'sent') ORDER BY id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list unpaid invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var i entity.Invoice
		if err := rows.Scan(&i.ID, &i.CompanyID, &i.AccountID, &i.InvoiceNumber, &i.Amount, &i.Currency,
			&i.Status, &i.DueDate, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}
