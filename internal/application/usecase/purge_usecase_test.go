package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Conversa-api/internal/application/dto"
	"github.com/jhoicas/Conversa-api/internal/application/ports"
	"github.com/jhoicas/Conversa-api/internal/application/usecase"
	"github.com/jhoicas/Conversa-api/internal/domain"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/internal/domain/purge"
	"github.com/jhoicas/Conversa-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests PurgeUseCase — eliminación en cascada de tenants
// ──────────────────────────────────────────────────────────────────────────────

type purgeHarness struct {
	uc        *usecase.PurgeUseCase
	companies *fakeCompanyRepo
	purger    *fakePurger
	audits    *fakeAudits
	events    *fakeEvents
}

func newPurgeHarness() *purgeHarness {
	h := &purgeHarness{
		companies: newFakeCompanyRepo(),
		purger:    &fakePurger{rows: map[string]int64{"leads": 12, "companies": 1}},
		audits:    &fakeAudits{},
		events:    &fakeEvents{},
	}
	h.uc = usecase.NewPurgeUseCase(h.companies, h.purger, h.audits, h.events, logger.Nop())
	return h
}

func TestPurge_EmpresaInexistente(t *testing.T) {
	h := newPurgeHarness()
	_, err := h.uc.Delete(context.Background(), operator, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, h.audits.records, "sin purga no hay auditoría")
}

func TestPurge_ExitoDevuelveConteos(t *testing.T) {
	h := newPurgeHarness()
	company := &entity.Company{Name: "Condenada"}
	require.NoError(t, h.companies.Create(context.Background(), company))

	out, err := h.uc.Delete(context.Background(), operator, company.ID)
	require.NoError(t, err)

	assert.Equal(t, "empresa eliminada", out.Message)
	assert.Equal(t, int64(12), out.RowsByTable["leads"])

	// Auditoría con snapshot pre-borrado y company_id nil (la fila ya no existe).
	require.Len(t, h.audits.records, 1)
	audit := h.audits.records[0]
	assert.Equal(t, entity.AuditCompanyDeleted, audit.Action)
	assert.Nil(t, audit.CompanyID)
	assert.Equal(t, operator.Email, audit.Actor)

	var snapshot struct {
		Company     *entity.Company  `json:"company"`
		RowsByTable map[string]int64 `json:"rows_by_table"`
	}
	require.NoError(t, json.Unmarshal(audit.Detail, &snapshot))
	assert.Equal(t, "Condenada", snapshot.Company.Name)
	assert.Equal(t, int64(12), snapshot.RowsByTable["leads"])

	assert.Contains(t, h.events.types(), ports.EventTenantPurged)
}

// Una violación de constraint aborta la purga: el error llega con tabla y
// constraint, y no se registra auditoría ni evento.
func TestPurge_ConstraintPropagaDetalle(t *testing.T) {
	h := newPurgeHarness()
	company := &entity.Company{Name: "Protegida"}
	require.NoError(t, h.companies.Create(context.Background(), company))
	h.purger.err = &purge.ConstraintError{
		Table:      "leads",
		Constraint: "leads_stage_id_fkey",
		Detail:     "still referenced",
	}

	_, err := h.uc.Delete(context.Background(), operator, company.ID)
	require.Error(t, err)

	var cerr *purge.ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "leads", cerr.Table)
	assert.Equal(t, "leads_stage_id_fkey", cerr.Constraint)

	assert.Empty(t, h.audits.records)
	assert.Empty(t, h.events.published)
}

// El response serializado expone rows_by_table para el operador.
func TestPurge_ResponseSerializable(t *testing.T) {
	h := newPurgeHarness()
	company := &entity.Company{Name: "Serial"}
	require.NoError(t, h.companies.Create(context.Background(), company))

	out, err := h.uc.Delete(context.Background(), operator, company.ID)
	require.NoError(t, err)

	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded dto.DeleteCompanyResponse
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, out.RowsByTable, decoded.RowsByTable)
}
