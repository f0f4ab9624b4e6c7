package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Conversa-api/internal/domain/repository"
)

var _ repository.SeedRepository = (*SeedRepo)(nil)

// SeedRepo datos base de un tenant recién creado. Cada Ensure* usa
// ON CONFLICT / NOT EXISTS para que re-ejecutar el seeding no duplique filas.
type SeedRepo struct {
	pool *pgxpool.Pool
}

// NewSeedRepository construye el adaptador de seeding.
func NewSeedRepository(pool *pgxpool.Pool) *SeedRepo {
	return &SeedRepo{pool: pool}
}

// EnsureDefaultStage crea la etapa inicial del pipeline CRM.
func (r *SeedRepo) EnsureDefaultStage(ctx context.Context, companyID int64) error {
	query := `
		INSERT INTO crm_stages (company_id, name, position, is_default, created_at, updated_at)
		SELECT $1, 'Novo contato', 1, true, now(), now()
		WHERE NOT EXISTS (SELECT 1 FROM crm_stages WHERE company_id = $1 AND is_default)`
	if _, err := r.pool.Exec(ctx, query, companyID); err != nil {
		return fmt.Errorf("seed default stage: %w", err)
	}
	return nil
}

// EnsureSampleLead crea un lead de ejemplo en la etapa default.
func (r *SeedRepo) EnsureSampleLead(ctx context.Context, companyID int64) error {
	query := `
		INSERT INTO leads (company_id, stage_id, name, phone, source, created_at, updated_at)
		SELECT $1, s.id, 'Lead de exemplo', '+5511999999999', 'seed', now(), now()
		FROM crm_stages s
		WHERE s.company_id = $1 AND s.is_default
		  AND NOT EXISTS (SELECT 1 FROM leads WHERE company_id = $1 AND source = 'seed')`
	if _, err := r.pool.Exec(ctx, query, companyID); err != nil {
		return fmt.Errorf("seed sample lead: %w", err)
	}
	return nil
}

// EnsureSampleAgent crea el agente IA de ejemplo.
func (r *SeedRepo) EnsureSampleAgent(ctx context.Context, companyID int64) error {
	query := `
		INSERT INTO ai_agents (company_id, name, prompt, is_active, created_at, updated_at)
		SELECT $1, 'Assistente', 'Você é um assistente de atendimento cordial e objetivo.', false, now(), now()
		WHERE NOT EXISTS (SELECT 1 FROM ai_agents WHERE company_id = $1)`
	if _, err := r.pool.Exec(ctx, query, companyID); err != nil {
		return fmt.Errorf("seed sample agent: %w", err)
	}
	return nil
}

// EnsureMessageTemplates crea los tres templates iniciales.
func (r *SeedRepo) EnsureMessageTemplates(ctx context.Context, companyID int64) error {
	templates := []struct {
		name, body string
	}{
		{"boas_vindas", "Olá {{nome}}! Obrigado pelo contato, em que podemos ajudar?"},
		{"follow_up", "Olá {{nome}}, tudo bem? Passando para saber se ainda tem interesse."},
		{"agradecimento", "Obrigado pela preferência, {{nome}}! Estamos à disposição."},
	}
	for _, t := range templates {
		query := `
			INSERT INTO message_templates (company_id, name, body, created_at, updated_at)
			SELECT $1, $2, $3, now(), now()
			WHERE NOT EXISTS (SELECT 1 FROM message_templates WHERE company_id = $1 AND name = $2)`
		if _, err := r.pool.Exec(ctx, query, companyID, t.name, t.body); err != nil {
			return fmt.Errorf("seed template %s: %w", t.name, err)
		}
	}
	return nil
}
