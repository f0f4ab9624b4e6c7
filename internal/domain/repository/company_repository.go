package repository

import (
	"context"

	"github.com/jhoicas/Conversa-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	// Create persiste la empresa y asigna ID.
	Create(ctx context.Context, c *entity.Company) error
	// GetByID devuelve nil, nil si la empresa no existe.
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
	Update(ctx context.Context, c *entity.Company) error
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
	// SyncLegacyInstance mantiene evolution_instance/evolution_apikey en sync
	// con la instancia #1 (compatibilidad con clientes de instancia única).
	SyncLegacyInstance(ctx context.Context, companyID int64, instanceKey, apiKey string) error
	MarkSeedCompleted(ctx context.Context, companyID int64) error
}
