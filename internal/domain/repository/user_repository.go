package repository

import (
	"context"

	"github.com/jhoicas/Conversa-api/internal/domain/entity"
)

// UserRepository lo mínimo que el core necesita de usuarios: login.
type UserRepository interface {
	// FindByEmail devuelve nil, nil si no existe.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
