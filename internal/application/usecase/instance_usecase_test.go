package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Conversa-api/internal/application/dto"
	"github.com/jhoicas/Conversa-api/internal/application/usecase"
	"github.com/jhoicas/Conversa-api/internal/domain"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Arnés de test: usecase de instancias con fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type instanceHarness struct {
	uc        *usecase.InstanceUseCase
	instances *fakeInstanceRepo
	companies *fakeCompanyRepo
	gateway   *fakeGateway
	cache     *fakeCache
}

func newInstanceHarness() *instanceHarness {
	instances := newFakeInstanceRepo()
	companies := newFakeCompanyRepo()
	gateway := newFakeGateway()
	cache := newFakeCache()
	uc := usecase.NewInstanceUseCase(instances, companies, gateway, cache, "global-key", logger.Nop())
	return &instanceHarness{uc: uc, instances: instances, companies: companies, gateway: gateway, cache: cache}
}

func (h *instanceHarness) addCompany(t *testing.T, c *entity.Company) *entity.Company {
	t.Helper()
	if c.MaxInstances == 0 {
		c.MaxInstances = 1
	}
	require.NoError(t, h.companies.Create(context.Background(), c))
	return c
}

func (h *instanceHarness) addInstance(t *testing.T, companyID int64, key string) *entity.CompanyInstance {
	t.Helper()
	inst := &entity.CompanyInstance{
		CompanyID:   companyID,
		Name:        key,
		InstanceKey: key,
		Status:      entity.InstanceDisconnected,
	}
	require.NoError(t, h.instances.Create(context.Background(), inst))
	return inst
}

func keysOf(list []*entity.CompanyInstance) []string {
	out := make([]string, 0, len(list))
	for _, inst := range list {
		out = append(out, inst.InstanceKey)
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests GuardKeys
// ──────────────────────────────────────────────────────────────────────────────

func TestGuardKeys_ClaveDeOtraEmpresa(t *testing.T) {
	h := newInstanceHarness()
	owner := h.addCompany(t, &entity.Company{Name: "Dueña"})
	h.addInstance(t, owner.ID, "mystore")

	err := h.uc.GuardKeys(context.Background(), 0, []string{"My Store"})
	require.Error(t, err)

	var kerr *domain.KeyConflictError
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "mystore", kerr.Key, "el error debe nombrar la clave exacta en conflicto")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGuardKeys_ClavePropiaNoConflicta(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Propia"})
	h.addInstance(t, company.ID, "mystore")

	assert.NoError(t, h.uc.GuardKeys(context.Background(), company.ID, []string{"mystore"}))
}

func TestGuardKeys_SinClavesEsNoOp(t *testing.T) {
	h := newInstanceHarness()
	assert.NoError(t, h.uc.GuardKeys(context.Background(), 0, nil))
	assert.NoError(t, h.uc.GuardKeys(context.Background(), 0, []string{"", "  ", "!!!"}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Reconcile — allocator de instancias
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcile_CreaDesdeDefiniciones(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja", MaxInstances: 2})

	defs := []dto.InstanceDefinition{
		{Name: "Principal", InstanceKey: "Loja Principal"},
		{Name: "Filial", InstanceKey: "loja_filial"},
	}
	require.NoError(t, h.uc.Reconcile(context.Background(), company, defs))

	list, err := h.instances.ListByCompany(context.Background(), company.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"loja_principal", "loja_filial"}, keysOf(list),
		"las claves se sanitizan al crear")

	// Campos legacy reflejan la instancia #1.
	stored, _ := h.companies.GetByID(context.Background(), company.ID)
	assert.Equal(t, "loja_principal", stored.EvolutionInstance)
}

// Una definición pareada sin clave conserva la clave almacenada: el routing
// del gateway nunca se borra por un campo vacío.
func TestReconcile_DefinicionSinClaveConservaRouting(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja"})
	existing := h.addInstance(t, company.ID, "loja_principal")

	defs := []dto.InstanceDefinition{{Name: "Renombrada", InstanceKey: ""}}
	require.NoError(t, h.uc.Reconcile(context.Background(), company, defs))

	stored, _ := h.instances.GetByID(context.Background(), existing.ID)
	assert.Equal(t, "Renombrada", stored.Name, "el nombre sí se actualiza")
	assert.Equal(t, "loja_principal", stored.InstanceKey, "la clave almacenada se conserva")
}

// Una definición NUEVA sin clave se omite: no hay routing que crear.
func TestReconcile_NuevaSinClaveSeOmite(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja"})

	defs := []dto.InstanceDefinition{{Name: "Sin clave", InstanceKey: "   "}}
	require.NoError(t, h.uc.Reconcile(context.Background(), company, defs))

	list, _ := h.instances.ListByCompany(context.Background(), company.ID)
	assert.Empty(t, list)
}

func TestReconcile_MatchPorID(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja", MaxInstances: 3})
	first := h.addInstance(t, company.ID, "uno")
	second := h.addInstance(t, company.ID, "dos")

	// La definición con id apunta a la SEGUNDA instancia aunque venga primera
	// en la lista.
	defs := []dto.InstanceDefinition{
		{ID: &second.ID, Name: "Dos renombrada", InstanceKey: "dos_v2"},
	}
	require.NoError(t, h.uc.Reconcile(context.Background(), company, defs))

	one, _ := h.instances.GetByID(context.Background(), first.ID)
	two, _ := h.instances.GetByID(context.Background(), second.ID)
	assert.Equal(t, "uno", one.InstanceKey, "la instancia no referenciada queda intacta")
	assert.Equal(t, "dos_v2", two.InstanceKey)
	assert.Equal(t, "Dos renombrada", two.Name)
}

// Las definiciones sin id se parean posicionalmente contra las instancias en
// orden de id ascendente (contrato de clientes legacy).
func TestReconcile_PareoPosicional(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja", MaxInstances: 2})
	first := h.addInstance(t, company.ID, "uno")
	second := h.addInstance(t, company.ID, "dos")

	defs := []dto.InstanceDefinition{
		{Name: "Primera", InstanceKey: "uno_v2"},
		{Name: "Segunda", InstanceKey: "dos_v2"},
	}
	require.NoError(t, h.uc.Reconcile(context.Background(), company, defs))

	one, _ := h.instances.GetByID(context.Background(), first.ID)
	two, _ := h.instances.GetByID(context.Background(), second.ID)
	assert.Equal(t, "uno_v2", one.InstanceKey)
	assert.Equal(t, "dos_v2", two.InstanceKey)
}

// Bajar max_instances recorta el exceso borrando el id más alto primero.
func TestReconcile_TopeRecortaMasNuevasPrimero(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja", MaxInstances: 3})
	h.addInstance(t, company.ID, "uno")
	h.addInstance(t, company.ID, "dos")
	h.addInstance(t, company.ID, "tres")

	company.MaxInstances = 1
	require.NoError(t, h.uc.Reconcile(context.Background(), company, nil))

	list, _ := h.instances.ListByCompany(context.Background(), company.ID)
	require.Len(t, list, 1)
	assert.Equal(t, "uno", list[0].InstanceKey, "sobrevive la instancia más antigua")
	assert.Contains(t, h.cache.invalidated, "dos")
	assert.Contains(t, h.cache.invalidated, "tres")
}

// Subir max_instances sin definiciones nuevas no inventa instancias.
func TestReconcile_SubirTopeNoCreaInstancias(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja"})
	h.addInstance(t, company.ID, "uno")

	company.MaxInstances = 5
	require.NoError(t, h.uc.Reconcile(context.Background(), company, nil))

	list, _ := h.instances.ListByCompany(context.Background(), company.ID)
	assert.Len(t, list, 1)
}

// Carrera contra el índice único: el primer intento choca y el retry usa una
// clave derivada del tenant.
func TestReconcile_ColisionReintentaConClaveDerivada(t *testing.T) {
	h := newInstanceHarness()
	other := h.addCompany(t, &entity.Company{Name: "Otra"})
	h.addInstance(t, other.ID, "mystore")

	company := h.addCompany(t, &entity.Company{Name: "Nueva"})
	defs := []dto.InstanceDefinition{{Name: "Principal", InstanceKey: "mystore"}}
	require.NoError(t, h.uc.Reconcile(context.Background(), company, defs))

	list, _ := h.instances.ListByCompany(context.Background(), company.ID)
	require.Len(t, list, 1)
	assert.NotEqual(t, "mystore", list[0].InstanceKey)
	assert.Contains(t, list[0].InstanceKey, "mystore_", "la clave derivada parte de la original")
}

// Sin instancias restantes, los campos legacy de la empresa se limpian.
func TestReconcile_SinInstanciasLimpiaLegacy(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja", EvolutionInstance: "vieja"})
	h.addInstance(t, company.ID, "vieja")

	company.MaxInstances = 1
	require.NoError(t, h.uc.Reconcile(context.Background(), company, nil))

	// Borramos manualmente y reconciliamos de nuevo para quedar en cero.
	list, _ := h.instances.ListByCompany(context.Background(), company.ID)
	for _, inst := range list {
		require.NoError(t, h.instances.Delete(context.Background(), inst.ID))
	}
	require.NoError(t, h.uc.Reconcile(context.Background(), company, nil))

	stored, _ := h.companies.GetByID(context.Background(), company.ID)
	assert.Empty(t, stored.EvolutionInstance)
	assert.Empty(t, stored.EvolutionAPIKey)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests SyncStatuses
// ──────────────────────────────────────────────────────────────────────────────

func TestSyncStatuses_NormalizaYPersiste(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja", MaxInstances: 3})
	open := h.addInstance(t, company.ID, "abierta")
	unknown := h.addInstance(t, company.ID, "desconocida")
	failing := h.addInstance(t, company.ID, "caida")

	require.NoError(t, h.instances.UpdateStatus(context.Background(), failing.ID, entity.InstanceConnected))
	h.gateway.states["abierta"] = "open"
	// "desconocida" no está registrada en el gateway -> 404
	h.gateway.errs["caida"] = assert.AnError

	list, err := h.uc.SyncStatuses(context.Background(), company)
	require.NoError(t, err)
	require.Len(t, list, 3)

	byKey := make(map[string]entity.InstanceStatus)
	for _, inst := range list {
		byKey[inst.InstanceKey] = inst.Status
	}
	assert.Equal(t, entity.InstanceConnected, byKey["abierta"], "open -> connected")
	assert.Equal(t, entity.InstanceDisconnected, byKey["desconocida"], "404 -> disconnected")
	assert.Equal(t, entity.InstanceConnected, byKey["caida"],
		"una falla de red conserva el estado almacenado")

	// Lo sincronizado queda persistido y cacheado.
	stored, _ := h.instances.GetByID(context.Background(), open.ID)
	assert.Equal(t, entity.InstanceConnected, stored.Status)
	cached, ok := h.cache.entries["abierta"]
	assert.True(t, ok)
	assert.Equal(t, entity.InstanceConnected, cached)

	storedUnknown, _ := h.instances.GetByID(context.Background(), unknown.ID)
	assert.Equal(t, entity.InstanceDisconnected, storedUnknown.Status)
}

func TestListInstances_SinSyncUsaCache(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja"})
	h.addInstance(t, company.ID, "loja")
	h.cache.entries["loja"] = entity.InstanceConnecting

	list, err := h.uc.ListInstances(context.Background(), company, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.InstanceConnecting, list[0].Status, "el cache superpone el estado")
	assert.Empty(t, h.gateway.calls, "sin sync no se consulta el gateway")
}

func TestListInstances_ConSyncConsultaGateway(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja"})
	h.addInstance(t, company.ID, "loja")
	h.gateway.states["loja"] = "connecting"

	list, err := h.uc.ListInstances(context.Background(), company, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.InstanceConnecting, list[0].Status)
	assert.Equal(t, []string{"loja"}, h.gateway.calls)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests UpdateInstance
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateInstance_DeOtraEmpresaEsNotFound(t *testing.T) {
	h := newInstanceHarness()
	owner := h.addCompany(t, &entity.Company{Name: "Dueña"})
	inst := h.addInstance(t, owner.ID, "ajena")
	intruder := h.addCompany(t, &entity.Company{Name: "Intrusa"})

	name := "robada"
	_, err := h.uc.UpdateInstance(context.Background(), intruder.ID, inst.ID, dto.UpdateInstanceRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"una instancia de otro tenant no se revela, se reporta como inexistente")
}

func TestUpdateInstance_RenombreInvalidaCache(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja"})
	inst := h.addInstance(t, company.ID, "vieja")
	h.cache.entries["vieja"] = entity.InstanceConnected

	newKey := "Nueva Clave"
	out, err := h.uc.UpdateInstance(context.Background(), company.ID, inst.ID, dto.UpdateInstanceRequest{InstanceKey: &newKey})
	require.NoError(t, err)
	assert.Equal(t, "nueva_clave", out.InstanceKey)
	assert.Contains(t, h.cache.invalidated, "vieja")

	// Los campos legacy siguen a la instancia #1.
	stored, _ := h.companies.GetByID(context.Background(), company.ID)
	assert.Equal(t, "nueva_clave", stored.EvolutionInstance)
}

func TestUpdateInstance_ClaveDeOtroTenantConflicta(t *testing.T) {
	h := newInstanceHarness()
	other := h.addCompany(t, &entity.Company{Name: "Otra"})
	h.addInstance(t, other.ID, "tomada")
	company := h.addCompany(t, &entity.Company{Name: "Propia"})
	inst := h.addInstance(t, company.ID, "propia")

	taken := "tomada"
	_, err := h.uc.UpdateInstance(context.Background(), company.ID, inst.ID, dto.UpdateInstanceRequest{InstanceKey: &taken})
	var kerr *domain.KeyConflictError
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "tomada", kerr.Key)
}

// El secreto de la instancia sigue el tri-estado: reenviar el valor redactado
// no pisa el almacenado.
func TestUpdateInstance_APIKeyTriEstado(t *testing.T) {
	h := newInstanceHarness()
	company := h.addCompany(t, &entity.Company{Name: "Loja"})
	inst := h.addInstance(t, company.ID, "loja")
	inst.APIKey = "secreto-real"
	require.NoError(t, h.instances.Update(context.Background(), inst))

	masked := "***real"
	out, err := h.uc.UpdateInstance(context.Background(), company.ID, inst.ID, dto.UpdateInstanceRequest{APIKey: &masked})
	require.NoError(t, err)
	assert.Equal(t, "secreto-real", out.APIKey, "el placeholder conserva el secreto")

	empty := ""
	out, err = h.uc.UpdateInstance(context.Background(), company.ID, inst.ID, dto.UpdateInstanceRequest{APIKey: &empty})
	require.NoError(t, err)
	assert.Empty(t, out.APIKey, "el vacío explícito borra el secreto")
}
