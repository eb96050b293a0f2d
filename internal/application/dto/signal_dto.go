package dto

import "time"

// SignalResponse alerta derivada.
type SignalResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"signal_type"`
	Severity    string    `json:"severity"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	IsRead      bool      `json:"is_read"`
	IsDismissed bool      `json:"is_dismissed"`
	CreatedAt   time.Time `json:"created_at"`
}

// SignalListResponse lista paginada de señales.
type SignalListResponse struct {
	Items []SignalResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}

// SignalSummaryResponse conteos por severidad sobre las señales no descartadas.
type SignalSummaryResponse struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
	Unread   int `json:"unread"`
}

// SignalRefreshResponse resultado de una regeneración.
type SignalRefreshResponse struct {
	Removed    int                   `json:"removed"`
	Generated  int                   `json:"generated"`
	Suppressed int                   `json:"suppressed"`
	Summary    SignalSummaryResponse `json:"summary"`
}
