package ports

import (
	"context"
	"time"
)

// Tipos de evento del ciclo de vida de tenants.
const (
	EventTenantProvisioned = "tenant.provisioned"
	EventTenantUpdated     = "tenant.updated"
	EventTenantSeeded      = "tenant.seeded"
	EventTenantPurged      = "tenant.purged"
)

// TenantEvent evento publicado post-commit en el bus (best-effort: una falla
// de publicación se loguea y no afecta la operación ya confirmada).
type TenantEvent struct {
	Type      string    `json:"type"`
	CompanyID int64     `json:"company_id"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher puerto de salida hacia el bus de eventos.
type EventPublisher interface {
	Publish(ctx context.Context, ev TenantEvent) error
}
