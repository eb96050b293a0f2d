package repository

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// AccountRepository lectura de cuentas CRM.
type AccountRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.Account, error)
	ListByPipelineStage(ctx context.Context, companyID, stage string) ([]*entity.Account, error)
}

// DealRepository lectura de oportunidades.
type DealRepository interface {
	GetByID(ctx context.Context, companyID, id string) (*entity.Deal, error)
	ListOpen(ctx context.Context, companyID string) ([]*entity.Deal, error)
}

// InvoiceRepository lectura de facturas.
type InvoiceRepository interface {
	ListUnpaid(ctx context.Context, companyID string) ([]*entity.Invoice, error)
}
