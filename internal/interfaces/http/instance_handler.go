package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Conversa-api/internal/application/dto"
	"github.com/jhoicas/Conversa-api/internal/application/usecase"
	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/internal/domain/repository"
	"github.com/jhoicas/Conversa-api/internal/domain/tenancy"
)

// InstanceHandler maneja las peticiones HTTP de instancias de canal.
type InstanceHandler struct {
	uc        *usecase.InstanceUseCase
	companies repository.CompanyRepository
}

// NewInstanceHandler construye el handler.
func NewInstanceHandler(uc *usecase.InstanceUseCase, companies repository.CompanyRepository) *InstanceHandler {
	return &InstanceHandler{uc: uc, companies: companies}
}

// List godoc
// @Summary      Listar instancias de la empresa
// @Tags         instances
// @Security     Bearer
// @Produce      json
// @Param        id    path   int   true   "ID de la empresa"
// @Param        sync  query  bool  false  "Sincronizar estado contra el gateway"
// @Success      200   {object}  dto.InstanceListResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/companies/{id}/instances [get]
func (h *InstanceHandler) List(c *fiber.Ctx) error {
	company, errResp := h.resolveCompany(c)
	if company == nil {
		return errResp
	}
	sync := c.QueryBool("sync", false)
	list, err := h.uc.ListInstances(c.Context(), company, sync)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.InstanceListResponse{Items: make([]dto.InstanceResponse, 0, len(list)), Synced: sync}
	for _, inst := range list {
		out.Items = append(out.Items, toInstanceResponse(inst))
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar instancia
// @Tags         instances
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id          path  int  true  "ID de la empresa"
// @Param        instanceID  path  int  true  "ID de la instancia"
// @Param        body  body  dto.UpdateInstanceRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.InstanceResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/companies/{id}/instances/{instanceID} [put]
func (h *InstanceHandler) Update(c *fiber.Ctx) error {
	company, errResp := h.resolveCompany(c)
	if company == nil {
		return errResp
	}
	instanceID, err := strconv.ParseInt(c.Params("instanceID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "instanceID inválido"})
	}
	var in dto.UpdateInstanceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	inst, err := h.uc.UpdateInstance(c.Context(), company.ID, instanceID, in)
	if err != nil {
		return mapCompanyError(c, err)
	}
	return c.JSON(toInstanceResponse(inst))
}

// resolveCompany carga la empresa del path y valida el acceso del caller. En
// falla responde directo y devuelve company nil.
func (h *InstanceHandler) resolveCompany(c *fiber.Ctx) (*entity.Company, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id inválido"})
	}
	actor := GetActor(c)
	if !actor.IsOperator() && actor.CompanyID != id {
		return nil, c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin acceso a esta empresa"})
	}
	company, err := h.companies.GetByID(c.Context(), id)
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if company == nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "empresa no encontrada"})
	}
	return company, nil
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
