package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Conversa-api/internal/domain"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/internal/domain/repository"
)

// Asegura que InstanceRepo implementa repository.InstanceRepository.
var _ repository.InstanceRepository = (*InstanceRepo)(nil)

// InstanceRepo implementación del puerto InstanceRepository sobre PostgreSQL.
// El índice único sobre instance_key es la fuente de verdad de la unicidad
// global; el 23505 se traduce a domain.ErrDuplicateKey.
type InstanceRepo struct {
	pool *pgxpool.Pool
}

// NewInstanceRepository construye el adaptador de persistencia para instancias.
func NewInstanceRepository(pool *pgxpool.Pool) *InstanceRepo {
	return &InstanceRepo{pool: pool}
}

const instanceColumns = `id, company_id, name, instance_key, api_key, status, created_at, updated_at`

// ListByCompany devuelve las instancias de la empresa en orden de id ascendente.
func (r *InstanceRepo) ListByCompany(ctx context.Context, companyID int64) ([]*entity.CompanyInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM company_instances WHERE company_id = $1 ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()

	var list []*entity.CompanyInstance
	for rows.Next() {
		var i entity.CompanyInstance
		if err := rows.Scan(&i.ID, &i.CompanyID, &i.Name, &i.InstanceKey, &i.APIKey, &i.Status, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}

// GetByID devuelve nil, nil si la instancia no existe.
func (r *InstanceRepo) GetByID(ctx context.Context, id int64) (*entity.CompanyInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM company_instances WHERE id = $1`
	var i entity.CompanyInstance
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&i.ID, &i.CompanyID, &i.Name, &i.InstanceKey, &i.APIKey, &i.Status, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get instance: %w", err)
	}
	return &i, nil
}

// Create inserta la instancia y asigna el id generado.
func (r *InstanceRepo) Create(ctx context.Context, inst *entity.CompanyInstance) error {
	query := `
		INSERT INTO company_instances (company_id, name, instance_key, api_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		inst.CompanyID, inst.Name, inst.InstanceKey, inst.APIKey, inst.Status,
	).Scan(&inst.ID, &inst.CreatedAt, &inst.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert instance %q: %w", inst.InstanceKey, domain.ErrDuplicateKey)
		}
		return fmt.Errorf("insert instance: %w", err)
	}
	return nil
}

// Update actualiza nombre, clave y secreto.
func (r *InstanceRepo) Update(ctx context.Context, inst *entity.CompanyInstance) error {
	query := `
		UPDATE company_instances
		SET name = $2, instance_key = $3, api_key = $4, updated_at = now()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, inst.ID, inst.Name, inst.InstanceKey, inst.APIKey)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update instance %q: %w", inst.InstanceKey, domain.ErrDuplicateKey)
		}
		return fmt.Errorf("update instance: %w", err)
	}
	return nil
}

// UpdateStatus persiste solo el estado de conexión.
func (r *InstanceRepo) UpdateStatus(ctx context.Context, id int64, status entity.InstanceStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE company_instances SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update instance status: %w", err)
	}
	return nil
}

// Delete elimina una instancia por id.
func (r *InstanceRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM company_instances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete instance: %w", err)
	}
	return nil
}

// CountByCompany cantidad de instancias del tenant.
func (r *InstanceRepo) CountByCompany(ctx context.Context, companyID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM company_instances WHERE company_id = $1`, companyID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count instances: %w", err)
	}
	return n, nil
}

// KeysOwnedByOthers devuelve las claves dadas que pertenecen a otra empresa.
func (r *InstanceRepo) KeysOwnedByOthers(ctx context.Context, keys []string, companyID int64) (map[string]int64, error) {
	query := `
		SELECT instance_key, company_id
		FROM company_instances
		WHERE instance_key = ANY($1) AND company_id <> $2`
	rows, err := r.pool.Query(ctx, query, keys, companyID)
	if err != nil {
		return nil, fmt.Errorf("check keys: %w", err)
	}
	defer rows.Close()

	owners := make(map[string]int64)
	for rows.Next() {
		var key string
		var owner int64
		if err := rows.Scan(&key, &owner); err != nil {
			return nil, fmt.Errorf("scan key owner: %w", err)
		}
		owners[key] = owner
	}
	return owners, rows.Err()
}
