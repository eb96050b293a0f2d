package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario (multi-bodega).
// A lo sumo una bodega por empresa tiene IsDefault.
type Warehouse struct {
	ID        string
	CompanyID string
	Name      string
	Location  string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
