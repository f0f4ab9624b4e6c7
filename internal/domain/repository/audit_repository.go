package repository

import (
	"context"

	"github.com/jhoicas/Conversa-api/internal/domain/entity"
)

// AuditLogRepository registro de auditoría de acciones sobre tenants.
type AuditLogRepository interface {
	Record(ctx context.Context, log *entity.AuditLog) error
}
