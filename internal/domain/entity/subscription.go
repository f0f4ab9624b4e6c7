package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan plan comercial de la plataforma.
type Plan struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// Subscription espejo de suscripción de una empresa: plan_id y due_date del
// tenant se reflejan aquí como plan y fin de período en cada escritura.
type Subscription struct {
	ID        int64
	CompanyID int64
	PlanID    int64
	Status    string // active, past_due, canceled
	Amount    decimal.Decimal
	PeriodEnd *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
