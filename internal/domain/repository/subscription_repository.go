package repository

import (
	"context"

	"github.com/jhoicas/Conversa-api/internal/domain/entity"
)

// SubscriptionRepository espejo de suscripciones (una por empresa).
type SubscriptionRepository interface {
	// Upsert crea o actualiza la suscripción de la empresa.
	Upsert(ctx context.Context, sub *entity.Subscription) error
}

// PlanRepository lectura de planes comerciales.
type PlanRepository interface {
	// GetByID devuelve nil, nil si el plan no existe.
	GetByID(ctx context.Context, id int64) (*entity.Plan, error)
}
