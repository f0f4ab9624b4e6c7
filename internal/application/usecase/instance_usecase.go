package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Conversa-api/internal/application/dto"
	"github.com/jhoicas/Conversa-api/internal/application/ports"
	"github.com/jhoicas/Conversa-api/internal/domain"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/internal/domain/repository"
	"github.com/jhoicas/Conversa-api/internal/domain/tenancy"
	"github.com/jhoicas/Conversa-api/pkg/logger"
)

// InstanceUseCase instancias de canal: guard de unicidad, reconciliación
// (allocator), sincronización de estado y actualización directa.
type InstanceUseCase struct {
	instances repository.InstanceRepository
	companies repository.CompanyRepository
	gateway   ports.GatewayClient
	cache     ports.StatusCache
	globalKey string // apikey global del gateway (último fallback)
	log       *logger.Logger
}

// NewInstanceUseCase construye el caso de uso de instancias.
func NewInstanceUseCase(
	instances repository.InstanceRepository,
	companies repository.CompanyRepository,
	gateway ports.GatewayClient,
	cache ports.StatusCache,
	globalKey string,
	log *logger.Logger,
) *InstanceUseCase {
	return &InstanceUseCase{
		instances: instances,
		companies: companies,
		gateway:   gateway,
		cache:     cache,
		globalKey: globalKey,
		log:       log,
	}
}

// GuardKeys verifica que ninguna de las claves propuestas pertenezca a OTRA
// empresa. Es el pre-chequeo amigable (nombra la clave exacta en conflicto);
// la fuente de verdad sigue siendo el índice único, manejado en applyDefinition.
// companyID = 0 en aprovisionamiento (todavía no hay empresa propia).
func (uc *InstanceUseCase) GuardKeys(ctx context.Context, companyID int64, keys []string) error {
	sanitized := make([]string, 0, len(keys))
	for _, k := range keys {
		if s := tenancy.SanitizeInstanceKey(k); s != "" {
			sanitized = append(sanitized, s)
		}
	}
	if len(sanitized) == 0 {
		return nil
	}
	owners, err := uc.instances.KeysOwnedByOthers(ctx, sanitized, companyID)
	if err != nil {
		return fmt.Errorf("verificar unicidad de claves: %w", err)
	}
	// Se reporta la primera en orden de envío para que el error sea estable.
	for _, k := range sanitized {
		if owner, taken := owners[k]; taken {
			return &domain.KeyConflictError{Key: k, OwnerCompany: owner}
		}
	}
	return nil
}

// Reconcile hace converger las instancias almacenadas de la empresa hacia las
// definiciones deseadas y aplica el tope max_instances.
//
// Match por id cuando la definición lo trae; las definiciones sin id se
// parean posicionalmente contra las instancias restantes en orden de id
// ascendente (contrato de clientes legacy que reenvían la lista completa).
// Una definición sin clave nunca borra el routing existente; una definición
// nueva sin clave se omite en silencio. El tope se aplica al final borrando
// el exceso de id más alto primero. Subir max_instances sin definiciones
// nuevas NO crea instancias: inventar claves placeholder podría colisionar.
func (uc *InstanceUseCase) Reconcile(ctx context.Context, company *entity.Company, defs []dto.InstanceDefinition) error {
	existing, err := uc.instances.ListByCompany(ctx, company.ID)
	if err != nil {
		return fmt.Errorf("listar instancias: %w", err)
	}

	byID := make(map[int64]*entity.CompanyInstance, len(existing))
	for _, inst := range existing {
		byID[inst.ID] = inst
	}

	type pairing struct {
		def  dto.InstanceDefinition
		inst *entity.CompanyInstance // nil = crear
	}
	matched := make(map[int64]bool, len(existing))
	pairs := make([]pairing, 0, len(defs))
	var positional []dto.InstanceDefinition

	for _, def := range defs {
		if def.ID != nil {
			if inst, ok := byID[*def.ID]; ok && !matched[inst.ID] {
				matched[inst.ID] = true
				pairs = append(pairs, pairing{def: def, inst: inst})
				continue
			}
			// Id desconocido (o repetido): se trata como definición nueva.
			uc.log.Warn().Int64("company_id", company.ID).Int64("instance_id", *def.ID).
				Msg("definición referencia instancia inexistente; se trata como nueva")
		}
		positional = append(positional, def)
	}

	cursor := 0
	for _, def := range positional {
		var target *entity.CompanyInstance
		for cursor < len(existing) {
			cand := existing[cursor]
			cursor++
			if !matched[cand.ID] {
				matched[cand.ID] = true
				target = cand
				break
			}
		}
		pairs = append(pairs, pairing{def: def, inst: target})
	}

	for _, p := range pairs {
		if err := uc.applyDefinition(ctx, company, p.def, p.inst); err != nil {
			return err
		}
	}

	if err := uc.enforceCap(ctx, company); err != nil {
		return err
	}
	return uc.syncLegacyFields(ctx, company.ID)
}

// applyDefinition actualiza la instancia pareada o crea una nueva. En
// violación del índice único (carrera con otra reconciliación) reintenta una
// vez con una clave derivada del tenant más un sufijo aleatorio.
func (uc *InstanceUseCase) applyDefinition(ctx context.Context, company *entity.Company, def dto.InstanceDefinition, inst *entity.CompanyInstance) error {
	if inst == nil {
		key := tenancy.SanitizeInstanceKey(def.InstanceKey)
		if key == "" {
			return nil // nueva sin clave: se omite
		}
		fresh := &entity.CompanyInstance{
			CompanyID:   company.ID,
			Name:        def.Name,
			InstanceKey: key,
			APIKey:      tenancy.ApplySecret("", def.APIKey),
			Status:      entity.InstanceDisconnected,
		}
		err := uc.instances.Create(ctx, fresh)
		if errors.Is(err, domain.ErrDuplicateKey) {
			retry := uc.deriveRetryKey(key, company.ID)
			uc.log.Warn().Str("instance_key", key).Str("retry_key", retry).
				Int64("company_id", company.ID).Msg("colisión de instance_key al crear; reintentando con clave derivada")
			fresh.InstanceKey = retry
			err = uc.instances.Create(ctx, fresh)
		}
		if err != nil {
			return fmt.Errorf("crear instancia %q: %w", fresh.InstanceKey, err)
		}
		return nil
	}

	inst.Name = def.Name
	oldKey := inst.InstanceKey
	if key := tenancy.SanitizeInstanceKey(def.InstanceKey); key != "" {
		inst.InstanceKey = key
	}
	// Clave ausente o vacía: se conserva la almacenada (nunca borrar routing).
	inst.APIKey = tenancy.ApplySecret(inst.APIKey, def.APIKey)

	err := uc.instances.Update(ctx, inst)
	if errors.Is(err, domain.ErrDuplicateKey) {
		retry := uc.deriveRetryKey(inst.InstanceKey, company.ID)
		uc.log.Warn().Str("instance_key", inst.InstanceKey).Str("retry_key", retry).
			Int64("company_id", company.ID).Msg("colisión de instance_key al actualizar; reintentando con clave derivada")
		inst.InstanceKey = retry
		err = uc.instances.Update(ctx, inst)
	}
	if err != nil {
		return fmt.Errorf("actualizar instancia %d: %w", inst.ID, err)
	}
	if oldKey != inst.InstanceKey {
		uc.cache.Invalidate(ctx, oldKey)
	}
	return nil
}

func (uc *InstanceUseCase) deriveRetryKey(key string, companyID int64) string {
	return fmt.Sprintf("%s_%d_%d", key, companyID, uuid.New().ID())
}

// enforceCap borra el exceso sobre max_instances, id más alto primero.
func (uc *InstanceUseCase) enforceCap(ctx context.Context, company *entity.Company) error {
	max := company.MaxInstances
	if max < 1 {
		max = 1
	}
	current, err := uc.instances.ListByCompany(ctx, company.ID)
	if err != nil {
		return fmt.Errorf("listar instancias para tope: %w", err)
	}
	count := len(current)
	for i := len(current) - 1; i >= 0 && count > max; i-- {
		excess := current[i]
		count--
		if err := uc.instances.Delete(ctx, excess.ID); err != nil {
			return fmt.Errorf("borrar instancia excedente %d: %w", excess.ID, err)
		}
		uc.cache.Invalidate(ctx, excess.InstanceKey)
		uc.log.Info().Int64("company_id", company.ID).Int64("instance_id", excess.ID).
			Str("instance_key", excess.InstanceKey).Msg("instancia excedente eliminada por tope de capacidad")
	}
	return nil
}

// syncLegacyFields refleja la instancia #1 (id más bajo) en los campos legacy
// de la empresa; sin instancias, los limpia.
func (uc *InstanceUseCase) syncLegacyFields(ctx context.Context, companyID int64) error {
	current, err := uc.instances.ListByCompany(ctx, companyID)
	if err != nil {
		return fmt.Errorf("listar instancias para sync legacy: %w", err)
	}
	key, apiKey := "", ""
	if len(current) > 0 {
		key, apiKey = current[0].InstanceKey, current[0].APIKey
	}
	if err := uc.companies.SyncLegacyInstance(ctx, companyID, key, apiKey); err != nil {
		return fmt.Errorf("sync campos legacy: %w", err)
	}
	return nil
}

// SyncStatuses consulta el gateway por cada instancia almacenada y persiste
// el estado normalizado solo cuando cambió. Fallas por instancia (red, non-2xx
// distinto de 404) se loguean y dejan el estado almacenado intacto; la pasada
// continúa con la siguiente instancia. Las llamadas son secuenciales: la
// latencia escala lineal con el número de instancias, aceptable porque
// max_instances es chico por tenant.
func (uc *InstanceUseCase) SyncStatuses(ctx context.Context, company *entity.Company) ([]*entity.CompanyInstance, error) {
	list, err := uc.instances.ListByCompany(ctx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("listar instancias: %w", err)
	}
	for _, inst := range list {
		apiKey := uc.resolveAPIKey(company, inst)
		state, err := uc.gateway.ConnectionState(ctx, apiKey, inst.InstanceKey)
		var status entity.InstanceStatus
		switch {
		case err == nil:
			status = tenancy.NormalizeGatewayState(state)
		case errors.Is(err, ports.ErrUnknownInstance):
			// El gateway no conoce la clave: desconectado, no error.
			status = entity.InstanceDisconnected
		default:
			uc.log.Warn().Err(err).Str("instance_key", inst.InstanceKey).
				Int64("company_id", company.ID).Msg("sync de estado falló; se conserva el estado almacenado")
			continue
		}
		if status != inst.Status {
			if err := uc.instances.UpdateStatus(ctx, inst.ID, status); err != nil {
				uc.log.Warn().Err(err).Int64("instance_id", inst.ID).Msg("persistir estado sincronizado")
				continue
			}
			inst.Status = status
		}
		uc.cache.SetStatus(ctx, inst.InstanceKey, status)
	}
	return list, nil
}

// ListInstances lista las instancias de la empresa. Con sync=true ejecuta
// primero la sincronización contra el gateway; sin sync, superpone el estado
// cacheado cuando hay uno más fresco que el almacenado.
func (uc *InstanceUseCase) ListInstances(ctx context.Context, company *entity.Company, sync bool) ([]*entity.CompanyInstance, error) {
	if sync {
		return uc.SyncStatuses(ctx, company)
	}
	list, err := uc.instances.ListByCompany(ctx, company.ID)
	if err != nil {
		return nil, fmt.Errorf("listar instancias: %w", err)
	}
	for _, inst := range list {
		if status, ok := uc.cache.GetStatus(ctx, inst.InstanceKey); ok {
			inst.Status = status
		}
	}
	return list, nil
}

// UpdateInstance actualización directa de una instancia (nombre/clave/secreto).
// Rechaza con KeyConflictError si la clave nueva pertenece a otro tenant.
func (uc *InstanceUseCase) UpdateInstance(ctx context.Context, companyID, instanceID int64, in dto.UpdateInstanceRequest) (*entity.CompanyInstance, error) {
	inst, err := uc.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if inst == nil || inst.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil {
		inst.Name = *in.Name
	}
	oldKey := inst.InstanceKey
	if in.InstanceKey != nil {
		if key := tenancy.SanitizeInstanceKey(*in.InstanceKey); key != "" && key != inst.InstanceKey {
			if err := uc.GuardKeys(ctx, companyID, []string{key}); err != nil {
				return nil, err
			}
			inst.InstanceKey = key
		}
	}
	inst.APIKey = tenancy.ApplySecret(inst.APIKey, in.APIKey)

	if err := uc.instances.Update(ctx, inst); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			// Carrera entre el guard y el update: el índice único manda.
			return nil, &domain.KeyConflictError{Key: inst.InstanceKey}
		}
		return nil, fmt.Errorf("actualizar instancia %d: %w", instanceID, err)
	}
	if oldKey != inst.InstanceKey {
		uc.cache.Invalidate(ctx, oldKey)
	}
	if err := uc.syncLegacyFields(ctx, companyID); err != nil {
		uc.log.Warn().Err(err).Int64("company_id", companyID).Msg("sync legacy tras actualizar instancia")
	}
	return inst, nil
}

// resolveAPIKey clave efectiva para hablar con el gateway: la de la
// instancia, si no la de la empresa, y en último caso la global.
func (uc *InstanceUseCase) resolveAPIKey(company *entity.Company, inst *entity.CompanyInstance) string {
	if inst.APIKey != "" {
		return inst.APIKey
	}
	if company.EvolutionAPIKey != "" {
		return company.EvolutionAPIKey
	}
	return uc.globalKey
}
