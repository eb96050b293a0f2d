package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Etapas cerradas de una oportunidad.
const (
	DealWon  = "won"
	DealLost = "lost"
)

// Deal oportunidad comercial (solo lectura).
type Deal struct {
	ID        string
	CompanyID string
	AccountID string
	Title     string
	Stage     string
	Value     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen true mientras la oportunidad no esté ganada ni perdida.
func (d *Deal) IsOpen() bool {
	return d.Stage != DealWon && d.Stage != DealLost
}
