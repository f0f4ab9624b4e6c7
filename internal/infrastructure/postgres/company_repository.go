package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

const companyColumns = `
	id, name, tax_id, city, state, phone,
	operation_type, category, operational_profile,
	max_instances, whatsapp_limit, instagram_limit, messenger_limit,
	whatsapp_enabled, instagram_enabled, messenger_enabled,
	evolution_instance, evolution_apikey,
	instagram_app_id, instagram_app_secret, instagram_page_id,
	instagram_business_id, instagram_access_token, instagram_status,
	plan_id, due_date, seed_completed, created_at, updated_at`

// Create persiste un nuevo tenant y asigna el id generado.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	query := `
		INSERT INTO companies (
			name, tax_id, city, state, phone,
			operation_type, category, operational_profile,
			max_instances, whatsapp_limit, instagram_limit, messenger_limit,
			whatsapp_enabled, instagram_enabled, messenger_enabled,
			evolution_instance, evolution_apikey,
			instagram_app_id, instagram_app_secret, instagram_page_id,
			instagram_business_id, instagram_access_token, instagram_status,
			plan_id, due_date, seed_completed, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28
		) RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		c.Name, c.TaxID, c.City, c.State, c.Phone,
		c.OperationType, c.Category, c.OperationalProfile,
		c.MaxInstances, c.WhatsappLimit, c.InstagramLimit, c.MessengerLimit,
		c.WhatsappEnabled, c.InstagramEnabled, c.MessengerEnabled,
		c.EvolutionInstance, c.EvolutionAPIKey,
		c.InstagramAppID, c.InstagramAppSecret, c.InstagramPageID,
		c.InstagramBusinessID, c.InstagramAccessToken, c.InstagramStatus,
		c.PlanID, c.DueDate, c.SeedCompleted, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID. Devuelve nil, nil si no existe.
func (r *CompanyRepo) GetByID(ctx context.Context, id int64) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	c, err := scanCompany(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// Update actualiza la fila completa del tenant, incluidos token y estado de
// Instagram: la máquina de estados se resuelve en el caso de uso y acá se
// escribe atómicamente con el resto.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	query := `
		UPDATE companies SET
			name = $2, tax_id = $3, city = $4, state = $5, phone = $6,
			operation_type = $7, category = $8, operational_profile = $9,
			max_instances = $10, whatsapp_limit = $11, instagram_limit = $12, messenger_limit = $13,
			whatsapp_enabled = $14, instagram_enabled = $15, messenger_enabled = $16,
			evolution_instance = $17, evolution_apikey = $18,
			instagram_app_id = $19, instagram_app_secret = $20, instagram_page_id = $21,
			instagram_business_id = $22, instagram_access_token = $23, instagram_status = $24,
			plan_id = $25, due_date = $26, updated_at = $27
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.TaxID, c.City, c.State, c.Phone,
		c.OperationType, c.Category, c.OperationalProfile,
		c.MaxInstances, c.WhatsappLimit, c.InstagramLimit, c.MessengerLimit,
		c.WhatsappEnabled, c.InstagramEnabled, c.MessengerEnabled,
		c.EvolutionInstance, c.EvolutionAPIKey,
		c.InstagramAppID, c.InstagramAppSecret, c.InstagramPageID,
		c.InstagramBusinessID, c.InstagramAccessToken, c.InstagramStatus,
		c.PlanID, c.DueDate, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// List devuelve tenants con paginación.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// SyncLegacyInstance refleja la instancia #1 en los campos legacy.
func (r *CompanyRepo) SyncLegacyInstance(ctx context.Context, companyID int64, instanceKey, apiKey string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE companies SET evolution_instance = $2, evolution_apikey = $3, updated_at = now() WHERE id = $1`,
		companyID, instanceKey, apiKey,
	)
	if err != nil {
		return fmt.Errorf("sync legacy instance: %w", err)
	}
	return nil
}

// MarkSeedCompleted marca el seeding del tenant como completo.
func (r *CompanyRepo) MarkSeedCompleted(ctx context.Context, companyID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE companies SET seed_completed = true, updated_at = now() WHERE id = $1`,
		companyID,
	)
	if err != nil {
		return fmt.Errorf("mark seed completed: %w", err)
	}
	return nil
}

// rowScanner abstrae pgx.Row y pgx.Rows para compartir el scan.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(
		&c.ID, &c.Name, &c.TaxID, &c.City, &c.State, &c.Phone,
		&c.OperationType, &c.Category, &c.OperationalProfile,
		&c.MaxInstances, &c.WhatsappLimit, &c.InstagramLimit, &c.MessengerLimit,
		&c.WhatsappEnabled, &c.InstagramEnabled, &c.MessengerEnabled,
		&c.EvolutionInstance, &c.EvolutionAPIKey,
		&c.InstagramAppID, &c.InstagramAppSecret, &c.InstagramPageID,
		&c.InstagramBusinessID, &c.InstagramAccessToken, &c.InstagramStatus,
		&c.PlanID, &c.DueDate, &c.SeedCompleted, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
