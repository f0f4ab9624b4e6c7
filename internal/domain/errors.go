package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrNameRequired = errors.New("name es requerido")
	// ErrDuplicateKey violación del índice único de instance_key. Los repos
	// traducen el 23505 de PostgreSQL a este sentinel para que el allocator
	// pueda reintentar con una clave derivada.
	ErrDuplicateKey = errors.New("instance_key duplicada")
)

// KeyConflictError colisión de instance_key con otro tenant. El mensaje
// nombra la clave exacta en conflicto para que el caller pueda corregirla.
type KeyConflictError struct {
	Key          string
	OwnerCompany int64
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("instance_key %q ya está en uso por otra empresa", e.Key)
}

// Is permite errors.Is(err, domain.ErrConflict).
func (e *KeyConflictError) Is(target error) bool {
	return target == ErrConflict
}
