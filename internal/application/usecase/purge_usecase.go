package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Conversa-api/internal/application/dto"
	"github.com/jhoicas/Conversa-api/internal/application/ports"
	"github.com/jhoicas/Conversa-api/internal/domain"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/internal/domain/repository"
	"github.com/jhoicas/Conversa-api/pkg/logger"
)

// PurgeUseCase eliminación en cascada de un tenant. Toda la purga corre
// dentro de UNA transacción en el ejecutor: cualquier falla revierte todo,
// nunca hay borrado parcial.
type PurgeUseCase struct {
	companies repository.CompanyRepository
	purger    ports.TenantPurger
	audits    repository.AuditLogRepository
	events    ports.EventPublisher
	log       *logger.Logger
}

// NewPurgeUseCase construye el caso de uso de purga.
func NewPurgeUseCase(
	companies repository.CompanyRepository,
	purger ports.TenantPurger,
	audits repository.AuditLogRepository,
	events ports.EventPublisher,
	log *logger.Logger,
) *PurgeUseCase {
	return &PurgeUseCase{companies: companies, purger: purger, audits: audits, events: events, log: log}
}

// purgeSnapshot lo que queda en la auditoría después de borrar el tenant.
type purgeSnapshot struct {
	Company     *entity.Company  `json:"company"`
	RowsByTable map[string]int64 `json:"rows_by_table"`
}

// Delete purga el tenant completo. En éxito devuelve el conteo por tabla y
// registra auditoría con el snapshot pre-borrado; en falla propaga el
// *purge.ConstraintError con tabla/constraint para diagnóstico del operador.
func (uc *PurgeUseCase) Delete(ctx context.Context, actor Actor, id int64) (*dto.DeleteCompanyResponse, error) {
	company, err := uc.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	result, err := uc.purger.Purge(ctx, id)
	if err != nil {
		uc.log.Error().Err(err).Int64("company_id", id).Msg("purga de tenant falló; transacción revertida")
		return nil, err
	}

	// La auditoría referencia el snapshot pre-borrado; company_id va nil
	// porque la fila ya no existe.
	detail, merr := json.Marshal(purgeSnapshot{Company: company, RowsByTable: result.RowsByTable})
	if merr != nil {
		uc.log.Warn().Err(merr).Int64("company_id", id).Msg("serializar snapshot de purga")
	}
	audit := &entity.AuditLog{
		ID:        uuid.New().String(),
		CompanyID: nil,
		Actor:     actor.Email,
		Action:    entity.AuditCompanyDeleted,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := uc.audits.Record(ctx, audit); err != nil {
		uc.log.Warn().Err(err).Int64("company_id", id).Msg("registrar auditoría de purga")
	}

	ev := ports.TenantEvent{Type: ports.EventTenantPurged, CompanyID: id, Timestamp: time.Now()}
	if err := uc.events.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Int64("company_id", id).Msg("publicar evento de purga")
	}

	uc.log.Info().Int64("company_id", id).Str("company", company.Name).
		Int("tables", len(result.RowsByTable)).Msg("tenant eliminado")

	return &dto.DeleteCompanyResponse{
		Message:     "empresa eliminada",
		RowsByTable: result.RowsByTable,
	}, nil
}
