package usecase_test

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Conversa-api/internal/application/ports"
	"github.com/jhoicas/Conversa-api/internal/domain"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia y de salida.
// Emulan los contratos relevantes: ids autoincrementales, listados por id
// ascendente y el índice único global de instance_key.
// ──────────────────────────────────────────────────────────────────────────────

type fakeCompanyRepo struct {
	nextID    int64
	companies map[int64]*entity.Company
	createErr error
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[int64]*entity.Company)}
}

func (r *fakeCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.companies[c.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepo) Update(_ context.Context, c *entity.Company) error {
	if _, ok := r.companies[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	r.companies[c.ID] = &cp
	return nil
}

func (r *fakeCompanyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	ids := make([]int64, 0, len(r.companies))
	for id := range r.companies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*entity.Company, 0, limit)
	for i, id := range ids {
		if i < offset || len(out) >= limit {
			continue
		}
		cp := *r.companies[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCompanyRepo) SyncLegacyInstance(_ context.Context, companyID int64, instanceKey, apiKey string) error {
	if c, ok := r.companies[companyID]; ok {
		c.EvolutionInstance = instanceKey
		c.EvolutionAPIKey = apiKey
	}
	return nil
}

func (r *fakeCompanyRepo) MarkSeedCompleted(_ context.Context, companyID int64) error {
	if c, ok := r.companies[companyID]; ok {
		c.SeedCompleted = true
	}
	return nil
}

type fakeInstanceRepo struct {
	nextID    int64
	instances map[int64]*entity.CompanyInstance
}

func newFakeInstanceRepo() *fakeInstanceRepo {
	return &fakeInstanceRepo{instances: make(map[int64]*entity.CompanyInstance)}
}

// keyTaken emula el índice único global sobre instance_key.
func (r *fakeInstanceRepo) keyTaken(key string, selfID int64) bool {
	for _, inst := range r.instances {
		if inst.InstanceKey == key && inst.ID != selfID {
			return true
		}
	}
	return false
}

func (r *fakeInstanceRepo) ListByCompany(_ context.Context, companyID int64) ([]*entity.CompanyInstance, error) {
	out := make([]*entity.CompanyInstance, 0)
	for _, inst := range r.instances {
		if inst.CompanyID == companyID {
			cp := *inst
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeInstanceRepo) GetByID(_ context.Context, id int64) (*entity.CompanyInstance, error) {
	inst, ok := r.instances[id]
	if !ok {
		return nil, nil
	}
	cp := *inst
	return &cp, nil
}

func (r *fakeInstanceRepo) Create(_ context.Context, inst *entity.CompanyInstance) error {
	if r.keyTaken(inst.InstanceKey, 0) {
		return domain.ErrDuplicateKey
	}
	r.nextID++
	inst.ID = r.nextID
	inst.CreatedAt = time.Now()
	inst.UpdatedAt = inst.CreatedAt
	cp := *inst
	r.instances[inst.ID] = &cp
	return nil
}

func (r *fakeInstanceRepo) Update(_ context.Context, inst *entity.CompanyInstance) error {
	if _, ok := r.instances[inst.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.keyTaken(inst.InstanceKey, inst.ID) {
		return domain.ErrDuplicateKey
	}
	inst.UpdatedAt = time.Now()
	cp := *inst
	r.instances[inst.ID] = &cp
	return nil
}

func (r *fakeInstanceRepo) UpdateStatus(_ context.Context, id int64, status entity.InstanceStatus) error {
	inst, ok := r.instances[id]
	if !ok {
		return domain.ErrNotFound
	}
	inst.Status = status
	return nil
}

func (r *fakeInstanceRepo) Delete(_ context.Context, id int64) error {
	delete(r.instances, id)
	return nil
}

func (r *fakeInstanceRepo) CountByCompany(ctx context.Context, companyID int64) (int, error) {
	list, _ := r.ListByCompany(ctx, companyID)
	return len(list), nil
}

func (r *fakeInstanceRepo) KeysOwnedByOthers(_ context.Context, keys []string, companyID int64) (map[string]int64, error) {
	owners := make(map[string]int64)
	for _, key := range keys {
		for _, inst := range r.instances {
			if inst.InstanceKey == key && inst.CompanyID != companyID {
				owners[key] = inst.CompanyID
			}
		}
	}
	return owners, nil
}

// fakeGateway responde por clave; las claves no registradas devuelven 404.
type fakeGateway struct {
	states map[string]string
	errs   map[string]error
	calls  []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{states: make(map[string]string), errs: make(map[string]error)}
}

func (g *fakeGateway) ConnectionState(_ context.Context, _ string, instanceKey string) (string, error) {
	g.calls = append(g.calls, instanceKey)
	if err, ok := g.errs[instanceKey]; ok {
		return "", err
	}
	state, ok := g.states[instanceKey]
	if !ok {
		return "", ports.ErrUnknownInstance
	}
	return state, nil
}

type fakeCache struct {
	entries     map[string]entity.InstanceStatus
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]entity.InstanceStatus)}
}

func (c *fakeCache) GetStatus(_ context.Context, instanceKey string) (entity.InstanceStatus, bool) {
	s, ok := c.entries[instanceKey]
	return s, ok
}

func (c *fakeCache) SetStatus(_ context.Context, instanceKey string, status entity.InstanceStatus) {
	c.entries[instanceKey] = status
}

func (c *fakeCache) Invalidate(_ context.Context, instanceKey string) {
	delete(c.entries, instanceKey)
	c.invalidated = append(c.invalidated, instanceKey)
}

// fakeValidator valida credenciales; tokenErr/pageErr simulan fallas de la
// Graph API. calls cuenta invocaciones para verificar que el round-trip de un
// token enmascarado NO dispara validación.
type fakeValidator struct {
	tokenErr error
	pageErr  error
	calls    int
}

func (v *fakeValidator) ValidateToken(_ context.Context, _ string) error {
	v.calls++
	return v.tokenErr
}

func (v *fakeValidator) ValidatePage(_ context.Context, _, _ string) error {
	v.calls++
	return v.pageErr
}

type fakeEvents struct {
	published []ports.TenantEvent
}

func (e *fakeEvents) Publish(_ context.Context, ev ports.TenantEvent) error {
	e.published = append(e.published, ev)
	return nil
}

func (e *fakeEvents) types() []string {
	out := make([]string, 0, len(e.published))
	for _, ev := range e.published {
		out = append(out, ev.Type)
	}
	return out
}

type fakeAudits struct {
	records []*entity.AuditLog
}

func (a *fakeAudits) Record(_ context.Context, log *entity.AuditLog) error {
	a.records = append(a.records, log)
	return nil
}

// fakeSeeds cuenta ejecuciones por paso; failStage simula la falla de un paso.
type fakeSeeds struct {
	stageCalls, leadCalls, agentCalls, templateCalls int
	failStage                                        error
}

func (s *fakeSeeds) EnsureDefaultStage(_ context.Context, _ int64) error {
	s.stageCalls++
	return s.failStage
}
func (s *fakeSeeds) EnsureSampleLead(_ context.Context, _ int64) error {
	s.leadCalls++
	return nil
}
func (s *fakeSeeds) EnsureSampleAgent(_ context.Context, _ int64) error {
	s.agentCalls++
	return nil
}
func (s *fakeSeeds) EnsureMessageTemplates(_ context.Context, _ int64) error {
	s.templateCalls++
	return nil
}

type fakePlans struct {
	plans map[int64]*entity.Plan
}

func (p *fakePlans) GetByID(_ context.Context, id int64) (*entity.Plan, error) {
	if p.plans == nil {
		return nil, nil
	}
	return p.plans[id], nil
}

type fakeSubscriptions struct {
	upserts []*entity.Subscription
}

func (s *fakeSubscriptions) Upsert(_ context.Context, sub *entity.Subscription) error {
	s.upserts = append(s.upserts, sub)
	return nil
}

// fakePurger devuelve conteos fijos o la falla de constraint configurada.
type fakePurger struct {
	rows map[string]int64
	err  error
}

func (p *fakePurger) Purge(_ context.Context, _ int64) (*ports.PurgeResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &ports.PurgeResult{RowsByTable: p.rows}, nil
}
