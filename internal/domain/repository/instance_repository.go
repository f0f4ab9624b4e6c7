package repository

import (
	"context"

	"github.com/jhoicas/Conversa-api/internal/domain/entity"
)

// InstanceRepository puerto de persistencia para CompanyInstance.
type InstanceRepository interface {
	// ListByCompany devuelve las instancias de la empresa en orden de id ascendente.
	ListByCompany(ctx context.Context, companyID int64) ([]*entity.CompanyInstance, error)
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.CompanyInstance, error)
	Create(ctx context.Context, inst *entity.CompanyInstance) error
	Update(ctx context.Context, inst *entity.CompanyInstance) error
	UpdateStatus(ctx context.Context, id int64, status entity.InstanceStatus) error
	Delete(ctx context.Context, id int64) error
	CountByCompany(ctx context.Context, companyID int64) (int, error)
	// KeysOwnedByOthers devuelve, de las claves dadas, las que ya pertenecen a
	// una empresa distinta de companyID (clave -> empresa dueña). Es el
	// pre-chequeo amigable; la fuente de verdad es el índice único.
	KeysOwnedByOthers(ctx context.Context, keys []string, companyID int64) (map[string]int64, error)
}
