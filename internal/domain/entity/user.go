package entity

import "time"

// Roles de acceso. Superadmin es operador de plataforma (sin empresa fija);
// admin es miembro del tenant indicado en CompanyID.
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
)

// User usuario de la aplicación (solo lo que el core necesita: login y rol).
type User struct {
	ID           int64
	CompanyID    *int64 // nil para operadores de plataforma
	Email        string
	Name         string
	PasswordHash string
	Role         string
	Status       string // active, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOperator informa si el usuario es operador de plataforma.
func (u *User) IsOperator() bool {
	return u.Role == RoleSuperadmin
}
