package entity

// Role rol del actor que opera sobre órdenes e inventario.
type Role string

const (
	RoleTechnician Role = "Técnico"
	RoleReception  Role = "Recepción"
	RoleAdmin      Role = "Administrador"
)

// Roles lista cerrada de roles válidos.
var Roles = []Role{RoleTechnician, RoleReception, RoleAdmin}
