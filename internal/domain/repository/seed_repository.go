package repository

import "context"

// SeedRepository enriquecimiento post-commit de un tenant recién creado.
// Cada método es idempotente (verifica existencia antes de insertar) para que
// un seeding incompleto pueda re-ejecutarse sin duplicar filas.
type SeedRepository interface {
	// EnsureDefaultStage crea la etapa inicial del pipeline CRM.
	EnsureDefaultStage(ctx context.Context, companyID int64) error
	// EnsureSampleLead crea un lead de ejemplo en la etapa inicial.
	EnsureSampleLead(ctx context.Context, companyID int64) error
	// EnsureSampleAgent crea el agente IA de ejemplo.
	EnsureSampleAgent(ctx context.Context, companyID int64) error
	// EnsureMessageTemplates crea los tres templates de mensaje iniciales.
	EnsureMessageTemplates(ctx context.Context, companyID int64) error
}
