package entity

import (
	"encoding/json"
	"time"
)

// Acciones auditadas del ciclo de vida de tenants.
const (
	AuditCompanyCreated = "company.created"
	AuditCompanyUpdated = "company.updated"
	AuditCompanyDeleted = "company.deleted"
	AuditCompanySeeded  = "company.seeded"
)

// AuditLog registro de auditoría. Detail lleva JSON libre; en la eliminación
// de un tenant contiene el snapshot pre-borrado de la empresa y el conteo de
// filas purgadas por tabla.
type AuditLog struct {
	ID        string // uuid
	CompanyID *int64 // nil cuando la empresa ya no existe (post-purge)
	Actor     string // email o id del usuario que ejecutó la acción
	Action    string
	Detail    json.RawMessage
	CreatedAt time.Time
}
