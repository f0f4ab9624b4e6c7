package purge_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Conversa-api/internal/domain/purge"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests BuildPlan — orden topológico del registro real
// ──────────────────────────────────────────────────────────────────────────────

func buildPlanOrder(t *testing.T) map[string]int {
	t.Helper()
	plan, err := purge.BuildPlan()
	require.NoError(t, err, "el registro real debe producir un plan válido")

	order := make(map[string]int, plan.Len())
	for i, step := range plan.Steps() {
		order[step.Name] = i
	}
	return order
}

// Toda tabla declarada en el registro aparece exactamente una vez en el plan,
// más el paso final de companies.
func TestBuildPlan_Completo(t *testing.T) {
	plan, err := purge.BuildPlan()
	require.NoError(t, err)

	assert.Equal(t, len(purge.Registry)+1, plan.Len(),
		"el plan debe contener todas las tablas declaradas más companies")

	seen := make(map[string]bool, plan.Len())
	for _, step := range plan.Steps() {
		assert.False(t, seen[step.Name], "tabla %s repetida en el plan", step.Name)
		seen[step.Name] = true
	}
	for _, tbl := range purge.Registry {
		assert.True(t, seen[tbl.Name], "tabla %s declarada pero ausente del plan", tbl.Name)
	}
}

// Propiedad central: cada dependencia After se purga antes que su dependiente.
func TestBuildPlan_RespetaDependencias(t *testing.T) {
	order := buildPlanOrder(t)

	for _, tbl := range purge.Registry {
		for _, before := range tbl.After {
			assert.Less(t, order[before], order[tbl.Name],
				"%s debe purgarse antes que %s", before, tbl.Name)
		}
	}
}

func TestBuildPlan_CompaniesAlFinal(t *testing.T) {
	plan, err := purge.BuildPlan()
	require.NoError(t, err)

	last := plan.Steps()[plan.Len()-1]
	assert.Equal(t, "companies", last.Name, "companies siempre es el último paso")
}

// Casos puntuales del pipeline: leads va después de todo lo que lo referencia
// y antes de sus stages.
func TestBuildPlan_LeadsAntesDeStages(t *testing.T) {
	order := buildPlanOrder(t)

	assert.Less(t, order["appointments"], order["leads"])
	assert.Less(t, order["sales"], order["leads"])
	assert.Less(t, order["conversations"], order["leads"])
	assert.Less(t, order["leads"], order["crm_stages"])
	assert.Less(t, order["crm_stages"], order["companies"])
}

func TestBuildPlan_Deterministico(t *testing.T) {
	a, err := purge.BuildPlan()
	require.NoError(t, err)
	b, err := purge.BuildPlan()
	require.NoError(t, err)

	require.Equal(t, a.Len(), b.Len())
	for i := range a.Steps() {
		assert.Equal(t, a.Steps()[i].Name, b.Steps()[i].Name,
			"dos builds del mismo registro deben producir el mismo orden")
	}
}

// Todo SQL del plan está parametrizado con el id del tenant.
func TestBuildPlan_SQLParametrizado(t *testing.T) {
	plan, err := purge.BuildPlan()
	require.NoError(t, err)

	for _, step := range plan.Steps() {
		assert.True(t, strings.HasPrefix(step.SQL, "DELETE FROM "), "paso %s", step.Name)
		assert.Contains(t, step.SQL, "$1", "paso %s debe filtrar por el tenant", step.Name)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests de validación del grafo (registros sintéticos)
// ──────────────────────────────────────────────────────────────────────────────

func TestBuildPlan_CicloDetectado(t *testing.T) {
	registry := []purge.Table{
		{Name: "a", SQL: "DELETE FROM a WHERE company_id = $1", After: []string{"b"}},
		{Name: "b", SQL: "DELETE FROM b WHERE company_id = $1", After: []string{"a"}},
	}
	_, err := purge.BuildPlanFrom(registry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ciclo")
}

func TestBuildPlan_ReferenciaDesconocida(t *testing.T) {
	registry := []purge.Table{
		{Name: "a", SQL: "DELETE FROM a WHERE company_id = $1", After: []string{"fantasma"}},
	}
	_, err := purge.BuildPlanFrom(registry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fantasma")
}

func TestBuildPlan_TablaDuplicada(t *testing.T) {
	registry := []purge.Table{
		{Name: "a", SQL: "DELETE FROM a WHERE company_id = $1"},
		{Name: "a", SQL: "DELETE FROM a WHERE company_id = $1"},
	}
	_, err := purge.BuildPlanFrom(registry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dos veces")
}
