package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Conversa-api/internal/application/dto"
	"github.com/jhoicas/Conversa-api/internal/application/ports"
	"github.com/jhoicas/Conversa-api/internal/domain"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/internal/domain/repository"
	"github.com/jhoicas/Conversa-api/internal/domain/tenancy"
	"github.com/jhoicas/Conversa-api/pkg/logger"
)

// Actor identidad del caller resuelta por el middleware de auth.
type Actor struct {
	UserID    int64
	CompanyID int64
	Email     string
	Role      string
}

// IsOperator informa si el caller es operador de plataforma.
func (a Actor) IsOperator() bool { return a.Role == entity.RoleSuperadmin }

// CompanyUseCase ciclo de vida de tenants: aprovisionamiento, actualización
// (incluida la máquina de estados de credenciales Instagram) y seeding.
type CompanyUseCase struct {
	companies     repository.CompanyRepository
	instanceUC    *InstanceUseCase
	seeds         repository.SeedRepository
	plans         repository.PlanRepository
	subscriptions repository.SubscriptionRepository
	audits        repository.AuditLogRepository
	validator     ports.CredentialValidator
	events        ports.EventPublisher
	log           *logger.Logger
}

// NewCompanyUseCase construye el caso de uso de tenants.
func NewCompanyUseCase(
	companies repository.CompanyRepository,
	instanceUC *InstanceUseCase,
	seeds repository.SeedRepository,
	plans repository.PlanRepository,
	subscriptions repository.SubscriptionRepository,
	audits repository.AuditLogRepository,
	validator ports.CredentialValidator,
	events ports.EventPublisher,
	log *logger.Logger,
) *CompanyUseCase {
	return &CompanyUseCase{
		companies:     companies,
		instanceUC:    instanceUC,
		seeds:         seeds,
		plans:         plans,
		subscriptions: subscriptions,
		audits:        audits,
		validator:     validator,
		events:        events,
		log:           log,
	}
}

// Create aprovisiona un tenant: guard de claves, inserción de la fila de
// companies con perfil derivado, seeding de instancias y de datos base.
//
// El guard corre ANTES de cualquier escritura: una colisión de clave rechaza
// el request completo sin estado parcial. Después del commit de la empresa,
// instancias y seed son best-effort: una falla ahí se loguea y el tenant
// queda existiendo, posiblemente incompleto (seed_completed=false permite
// detectarlo y re-ejecutar con Seed).
func (uc *CompanyUseCase) Create(ctx context.Context, actor Actor, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrNameRequired
	}

	defs, err := dto.DecodeInstanceDefinitions(in.Instances)
	if err != nil {
		// Definiciones malformadas no tumban el aprovisionamiento: se tratan
		// como "sin definiciones".
		uc.log.Warn().Err(err).Str("company", in.Name).Msg("instances malformado; se ignora")
		defs = nil
	}

	candidates := make([]string, 0, len(defs)+1)
	if in.EvolutionInstance != "" {
		candidates = append(candidates, in.EvolutionInstance)
	}
	for _, d := range defs {
		candidates = append(candidates, d.InstanceKey)
	}
	if err := uc.instanceUC.GuardKeys(ctx, 0, candidates); err != nil {
		return nil, err
	}

	now := time.Now()
	company := &entity.Company{
		Name:               strings.TrimSpace(in.Name),
		TaxID:              in.TaxID,
		City:               in.City,
		State:              in.State,
		Phone:              in.Phone,
		OperationType:      in.OperationType,
		Category:           in.Category,
		OperationalProfile: tenancy.DeriveProfile(in.OperationType, in.Category),
		MaxInstances:       1,
		EvolutionInstance:  tenancy.SanitizeInstanceKey(in.EvolutionInstance),
		EvolutionAPIKey:    in.EvolutionAPIKey,

		InstagramAppID:       in.InstagramAppID,
		InstagramAppSecret:   in.InstagramAppSecret,
		InstagramPageID:      in.InstagramPageID,
		InstagramBusinessID:  in.InstagramBusinessID,
		InstagramAccessToken: in.InstagramAccessToken,
		InstagramStatus:      entity.InstagramInativo,

		PlanID:    in.PlanID,
		DueDate:   in.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.MaxInstances != nil && *in.MaxInstances >= 1 {
		company.MaxInstances = *in.MaxInstances
	}
	company.WhatsappLimit = intOr(in.WhatsappLimit, 0)
	company.InstagramLimit = intOr(in.InstagramLimit, 0)
	company.MessengerLimit = intOr(in.MessengerLimit, 0)
	company.WhatsappEnabled = boolOr(in.WhatsappEnabled, len(defs) > 0 || company.EvolutionInstance != "")
	company.InstagramEnabled = boolOr(in.InstagramEnabled, false)
	company.MessengerEnabled = boolOr(in.MessengerEnabled, false)

	// Validación de credenciales Instagram también en alta, cuando vienen
	// token y página; misma máquina de estados que en update.
	if in.InstagramAccessToken != "" && !tenancy.IsMasked(in.InstagramAccessToken) {
		uc.runCredentialCheck(ctx, company, in.InstagramEnabled)
	}

	if err := uc.companies.Create(ctx, company); err != nil {
		return nil, err
	}

	// Seeding de instancias: definiciones explícitas, o exactamente una desde
	// los campos legacy, o ninguna.
	seedDefs := defs
	if len(seedDefs) == 0 && company.EvolutionInstance != "" {
		seedDefs = []dto.InstanceDefinition{{
			Name:        company.Name,
			InstanceKey: company.EvolutionInstance,
			APIKey:      optional(in.EvolutionAPIKey),
		}}
	}
	if err := uc.instanceUC.Reconcile(ctx, company, seedDefs); err != nil {
		uc.log.Error().Err(err).Int64("company_id", company.ID).Msg("seeding de instancias falló; el tenant existe sin instancias")
	}

	uc.mirrorSubscription(ctx, company)
	uc.seedBaseline(ctx, company)
	uc.recordAudit(ctx, actor, entity.AuditCompanyCreated, &company.ID, nil)
	uc.publish(ctx, ports.EventTenantProvisioned, company.ID)

	return uc.buildResponse(ctx, company)
}

// Update actualización parcial del tenant. Callers no-operadores: solo su
// propia empresa, y sus campos de capacidad/plan se ignoran en silencio
// (se pisan server-side con los valores almacenados).
func (uc *CompanyUseCase) Update(ctx context.Context, actor Actor, id int64, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.IsOperator() && actor.CompanyID != id {
		return nil, domain.ErrForbidden
	}
	if !actor.IsOperator() {
		// Silenciosamente ignorados, no rechazados: el front de tenant manda
		// el objeto completo de vuelta.
		in.MaxInstances = nil
		in.WhatsappLimit = nil
		in.InstagramLimit = nil
		in.MessengerLimit = nil
		in.PlanID = nil
		in.DueDate = nil
	}

	defs, err := dto.DecodeInstanceDefinitions(in.Instances)
	if err != nil {
		uc.log.Warn().Err(err).Int64("company_id", id).Msg("instances malformado; se ignora")
		defs = nil
	}

	candidates := make([]string, 0, len(defs)+1)
	if in.EvolutionInstance != nil {
		candidates = append(candidates, *in.EvolutionInstance)
	}
	for _, d := range defs {
		candidates = append(candidates, d.InstanceKey)
	}
	if err := uc.instanceUC.GuardKeys(ctx, id, candidates); err != nil {
		return nil, err
	}

	applyString(&company.Name, in.Name)
	applyString(&company.TaxID, in.TaxID)
	applyString(&company.City, in.City)
	applyString(&company.State, in.State)
	applyString(&company.Phone, in.Phone)
	applyString(&company.OperationType, in.OperationType)
	applyString(&company.Category, in.Category)
	company.OperationalProfile = tenancy.DeriveProfile(company.OperationType, company.Category)

	if in.MaxInstances != nil && *in.MaxInstances >= 1 {
		company.MaxInstances = *in.MaxInstances
	}
	applyInt(&company.WhatsappLimit, in.WhatsappLimit)
	applyInt(&company.InstagramLimit, in.InstagramLimit)
	applyInt(&company.MessengerLimit, in.MessengerLimit)
	applyBool(&company.WhatsappEnabled, in.WhatsappEnabled)
	applyBool(&company.MessengerEnabled, in.MessengerEnabled)

	if in.EvolutionInstance != nil {
		company.EvolutionInstance = tenancy.SanitizeInstanceKey(*in.EvolutionInstance)
	}
	company.EvolutionAPIKey = tenancy.ApplySecret(company.EvolutionAPIKey, in.EvolutionAPIKey)

	applyString(&company.InstagramAppID, in.InstagramAppID)
	applyString(&company.InstagramPageID, in.InstagramPageID)
	applyString(&company.InstagramBusinessID, in.InstagramBusinessID)
	company.InstagramAppSecret = tenancy.ApplySecret(company.InstagramAppSecret, in.InstagramAppSecret)

	uc.applyInstagramMachine(ctx, company, in)

	if in.PlanID != nil {
		company.PlanID = in.PlanID
	}
	if in.DueDate != nil {
		company.DueDate = in.DueDate
	}
	company.UpdatedAt = time.Now()

	// Estado/token resultantes se escriben atómicamente con el resto de la fila.
	if err := uc.companies.Update(ctx, company); err != nil {
		return nil, err
	}

	// Reconciliación best-effort: una falla acá no revierte la fila del
	// tenant, que es la fuente de verdad (ventana de inconsistencia asumida).
	if err := uc.instanceUC.Reconcile(ctx, company, defs); err != nil {
		uc.log.Error().Err(err).Int64("company_id", company.ID).Msg("reconciliación de instancias falló")
	}

	uc.mirrorSubscription(ctx, company)
	uc.recordAudit(ctx, actor, entity.AuditCompanyUpdated, &company.ID, nil)
	uc.publish(ctx, ports.EventTenantUpdated, company.ID)

	return uc.buildResponse(ctx, company)
}

// applyInstagramMachine evalúa la máquina de estados del canal Instagram
// sobre la entidad ya parcheada:
//
//	token ausente o enmascarado  -> token y status almacenados intactos
//	token vacío explícito        -> INATIVO, canal apagado
//	token nuevo + page id        -> validar; ok -> ATIVO y canal encendido;
//	                                falla -> ERRO, flag tal como fue enviado
func (uc *CompanyUseCase) applyInstagramMachine(ctx context.Context, company *entity.Company, in dto.UpdateCompanyRequest) {
	action, token := tenancy.ResolveSecret(in.InstagramAccessToken)
	switch action {
	case tenancy.SecretKeep:
		applyBool(&company.InstagramEnabled, in.InstagramEnabled)
	case tenancy.SecretClear:
		company.InstagramAccessToken = ""
		company.InstagramStatus = entity.InstagramInativo
		company.InstagramEnabled = false
	case tenancy.SecretSet:
		company.InstagramAccessToken = token
		uc.runCredentialCheck(ctx, company, in.InstagramEnabled)
	}
}

// runCredentialCheck dos llamadas a la Graph API: el token identifica a un
// caller y puede acceder a la página configurada.
func (uc *CompanyUseCase) runCredentialCheck(ctx context.Context, company *entity.Company, submittedEnabled *bool) {
	token := company.InstagramAccessToken
	pageID := company.InstagramPageID

	fail := func(reason error) {
		uc.log.Warn().Err(reason).Int64("company_id", company.ID).
			Str("page_id", pageID).Msg("validación de credenciales Instagram falló")
		company.InstagramStatus = entity.InstagramErro
		// El flag queda tal como fue enviado, no se fuerza.
		applyBool(&company.InstagramEnabled, submittedEnabled)
	}

	if pageID == "" {
		fail(domain.ErrInvalidInput)
		return
	}
	if err := uc.validator.ValidateToken(ctx, token); err != nil {
		fail(err)
		return
	}
	if err := uc.validator.ValidatePage(ctx, pageID, token); err != nil {
		fail(err)
		return
	}
	company.InstagramStatus = entity.InstagramAtivo
	company.InstagramEnabled = true
}

// GetByID devuelve el tenant (o nil, nil si no existe). No-operadores solo
// pueden leer su propia empresa.
func (uc *CompanyUseCase) GetByID(ctx context.Context, actor Actor, id int64) (*dto.CompanyResponse, error) {
	if !actor.IsOperator() && actor.CompanyID != id {
		return nil, domain.ErrForbidden
	}
	company, err := uc.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, nil
	}
	return uc.buildResponse(ctx, company)
}

// List lista tenants con paginación (solo operadores; lo gatea el router).
func (uc *CompanyUseCase) List(ctx context.Context, limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.companies.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCompanyResponse(c, nil))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Seed re-ejecuta el enriquecimiento base de un tenant. Idempotente: cada
// paso verifica existencia antes de insertar.
func (uc *CompanyUseCase) Seed(ctx context.Context, actor Actor, id int64) (*dto.CompanyResponse, error) {
	company, err := uc.companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	uc.seedBaseline(ctx, company)
	uc.recordAudit(ctx, actor, entity.AuditCompanySeeded, &company.ID, nil)
	return uc.buildResponse(ctx, company)
}

// seedBaseline datos base del tenant: etapa CRM default, lead de ejemplo,
// agente IA de ejemplo y tres templates. Best-effort: fallas se loguean y no
// son fatales; seed_completed solo se marca cuando todo pasó.
func (uc *CompanyUseCase) seedBaseline(ctx context.Context, company *entity.Company) {
	steps := []struct {
		name string
		fn   func(context.Context, int64) error
	}{
		{"default_stage", uc.seeds.EnsureDefaultStage},
		{"sample_lead", uc.seeds.EnsureSampleLead},
		{"sample_agent", uc.seeds.EnsureSampleAgent},
		{"message_templates", uc.seeds.EnsureMessageTemplates},
	}
	ok := true
	for _, step := range steps {
		if err := step.fn(ctx, company.ID); err != nil {
			ok = false
			uc.log.Error().Err(err).Int64("company_id", company.ID).
				Str("step", step.name).Msg("paso de seeding falló")
		}
	}
	if !ok {
		return
	}
	if err := uc.companies.MarkSeedCompleted(ctx, company.ID); err != nil {
		uc.log.Error().Err(err).Int64("company_id", company.ID).Msg("marcar seed_completed")
		return
	}
	company.SeedCompleted = true
	uc.publish(ctx, ports.EventTenantSeeded, company.ID)
}

// mirrorSubscription refleja plan_id/due_date en la suscripción de la
// empresa. Best-effort.
func (uc *CompanyUseCase) mirrorSubscription(ctx context.Context, company *entity.Company) {
	if company.PlanID == nil {
		return
	}
	plan, err := uc.plans.GetByID(ctx, *company.PlanID)
	if err != nil || plan == nil {
		uc.log.Warn().Err(err).Int64("company_id", company.ID).
			Int64("plan_id", *company.PlanID).Msg("plan no resuelto; no se refleja la suscripción")
		return
	}
	sub := &entity.Subscription{
		CompanyID: company.ID,
		PlanID:    plan.ID,
		Status:    "active",
		Amount:    plan.Price,
		PeriodEnd: company.DueDate,
	}
	if err := uc.subscriptions.Upsert(ctx, sub); err != nil {
		uc.log.Error().Err(err).Int64("company_id", company.ID).Msg("reflejar suscripción")
	}
}

func (uc *CompanyUseCase) recordAudit(ctx context.Context, actor Actor, action string, companyID *int64, detail []byte) {
	log := &entity.AuditLog{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Actor:     actor.Email,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := uc.audits.Record(ctx, log); err != nil {
		uc.log.Warn().Err(err).Str("action", action).Msg("registrar auditoría")
	}
}

func (uc *CompanyUseCase) publish(ctx context.Context, eventType string, companyID int64) {
	ev := ports.TenantEvent{Type: eventType, CompanyID: companyID, Timestamp: time.Now()}
	if err := uc.events.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).Str("event", eventType).Int64("company_id", companyID).Msg("publicar evento")
	}
}

func (uc *CompanyUseCase) buildResponse(ctx context.Context, company *entity.Company) (*dto.CompanyResponse, error) {
	instances, err := uc.instanceUC.ListInstances(ctx, company, false)
	if err != nil {
		uc.log.Warn().Err(err).Int64("company_id", company.ID).Msg("listar instancias para respuesta")
	}
	return toCompanyResponse(company, instances), nil
}

// toCompanyResponse mapea la entidad a respuesta HTTP con secretos redactados.
func toCompanyResponse(c *entity.Company, instances []*entity.CompanyInstance) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	resp := &dto.CompanyResponse{
		ID:                 c.ID,
		Name:               c.Name,
		TaxID:              c.TaxID,
		City:               c.City,
		State:              c.State,
		Phone:              c.Phone,
		OperationType:      c.OperationType,
		Category:           c.Category,
		OperationalProfile: string(c.OperationalProfile),
		MaxInstances:       c.MaxInstances,
		WhatsappLimit:      c.WhatsappLimit,
		InstagramLimit:     c.InstagramLimit,
		MessengerLimit:     c.MessengerLimit,
		WhatsappEnabled:    c.WhatsappEnabled,
		InstagramEnabled:   c.InstagramEnabled,
		MessengerEnabled:   c.MessengerEnabled,
		EvolutionInstance:  c.EvolutionInstance,
		EvolutionAPIKey:    tenancy.MaskSecret(c.EvolutionAPIKey),

		InstagramAppID:       c.InstagramAppID,
		InstagramAppSecret:   tenancy.MaskSecret(c.InstagramAppSecret),
		InstagramPageID:      c.InstagramPageID,
		InstagramBusinessID:  c.InstagramBusinessID,
		InstagramAccessToken: tenancy.MaskSecret(c.InstagramAccessToken),
		InstagramStatus:      string(c.InstagramStatus),

		PlanID:        c.PlanID,
		DueDate:       c.DueDate,
		SeedCompleted: c.SeedCompleted,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	for _, inst := range instances {
		resp.Instances = append(resp.Instances, toInstanceResponse(inst))
	}
	return resp
}

func toInstanceResponse(i *entity.CompanyInstance) dto.InstanceResponse {
	return dto.InstanceResponse{
		ID:          i.ID,
		CompanyID:   i.CompanyID,
		Name:        i.Name,
		InstanceKey: i.InstanceKey,
		APIKey:      tenancy.MaskSecret(i.APIKey),
		Status:      string(i.Status),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// Helpers de parcheo de campos opcionales.

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func applyInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func applyBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
