package entity

import "time"

// Etapas del pipeline comercial de una cuenta.
const (
	PipelineLead     = "lead"
	PipelineProspect = "prospect"
	PipelineCustomer = "customer"
	PipelineChurned  = "churned"
)

// Tipos de cuenta.
const (
	AccountCustomer = "customer"
	AccountSupplier = "supplier"
	AccountBoth     = "both"
)

// Account cuenta CRM (cliente o proveedor). Solo lectura para este servicio:
// la administran los módulos de CRM.
type Account struct {
	ID            string
	CompanyID     string
	Name          string
	AccountType   string
	PipelineStage string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanSupply indica si la cuenta puede ser proveedor de una orden de compra.
func (a *Account) CanSupply() bool {
	return a.AccountType == AccountSupplier || a.AccountType == AccountBoth
}
