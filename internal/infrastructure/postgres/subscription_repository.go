package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/internal/domain/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)
var _ repository.PlanRepository = (*PlanRepo)(nil)

// SubscriptionRepo espejo de suscripciones sobre PostgreSQL.
type SubscriptionRepo struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository construye el adaptador de suscripciones.
func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{pool: pool}
}

// Upsert crea o actualiza la suscripción de la empresa (una por tenant).
func (r *SubscriptionRepo) Upsert(ctx context.Context, sub *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (company_id, plan_id, status, amount, period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (company_id) DO UPDATE
		SET plan_id = EXCLUDED.plan_id,
		    status = EXCLUDED.status,
		    amount = EXCLUDED.amount,
		    period_end = EXCLUDED.period_end,
		    updated_at = now()`
	_, err := r.pool.Exec(ctx, query, sub.CompanyID, sub.PlanID, sub.Status, sub.Amount, sub.PeriodEnd)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// PlanRepo lectura de planes comerciales.
type PlanRepo struct {
	pool *pgxpool.Pool
}

// NewPlanRepository construye el adaptador de planes.
func NewPlanRepository(pool *pgxpool.Pool) *PlanRepo {
	return &PlanRepo{pool: pool}
}

// GetByID devuelve nil, nil si el plan no existe.
func (r *PlanRepo) GetByID(ctx context.Context, id int64) (*entity.Plan, error) {
	var p entity.Plan
	err := r.pool.QueryRow(ctx, `SELECT id, name, price FROM plans WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Price)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &p, nil
}
