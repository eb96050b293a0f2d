package entity

import "time"

// Severidades de una señal.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Tipos de señal generados por el motor de reglas.
const (
	SignalOverdueInvoice = "overdue_invoice"
	SignalLowStock       = "low_stock"
	SignalStaleDeal      = "stale_deal"
	SignalLateDelivery   = "late_delivery"
	SignalStaleLead      = "stale_lead"
)

// Tipos de entidad referenciada por una señal.
const (
	EntityInvoice       = "invoice"
	EntityProduct       = "product"
	EntityDeal          = "deal"
	EntityPurchaseOrder = "purchase_order"
	EntityAccount       = "account"
)

// Signal alerta derivada. La produce y reemplaza el motor de reglas; solo Read/Dismissed
// cambian por acción del usuario.
type Signal struct {
	ID          string
	CompanyID   string
	Type        string
	Severity    string
	EntityType  string
	EntityID    string
	Title       string
	Body        string
	IsRead      bool
	IsDismissed bool
	CreatedAt   time.Time
}

// SameCondition true si ambas señales describen la misma condición (tipo, entidad y severidad).
// Una señal descartada suprime a las regeneradas con la misma condición; si la severidad
// escala, la nueva señal vuelve a aparecer.
func (s *Signal) SameCondition(o *Signal) bool {
	return s.Type == o.Type && s.EntityType == o.EntityType && s.EntityID == o.EntityID && s.Severity == o.Severity
}

// SignalSummary conteos sobre las señales no descartadas.
type SignalSummary struct {
	Total    int
	Critical int
	Warning  int
	Info     int
	Unread   int
}
