package ports

import (
	"context"

	"github.com/jhoicas/Conversa-api/internal/domain/entity"
)

// StatusCache cache de corta vida del estado de conexión por instance_key.
// Un miss (o cualquier falla del backend) se reporta como ok=false; el caller
// cae a la DB o al gateway.
type StatusCache interface {
	GetStatus(ctx context.Context, instanceKey string) (entity.InstanceStatus, bool)
	SetStatus(ctx context.Context, instanceKey string, status entity.InstanceStatus)
	// Invalidate elimina la entrada (instancia borrada o clave renombrada).
	Invalidate(ctx context.Context, instanceKey string)
}
