package dto

import (
	"encoding/json"
	"time"
)

// CreateCompanyRequest entrada para aprovisionar un tenant. Solo name es
// obligatorio; el resto son clasificación, capacidad, canales y secretos.
// Instances se decodifica con DecodeInstanceDefinitions (tolerante a la forma
// doble-encodeada legacy).
type CreateCompanyRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	TaxID string `json:"tax_id"`
	City  string `json:"city"`
	State string `json:"state"`
	Phone string `json:"phone"`

	OperationType string `json:"operation_type"`
	Category      string `json:"category"`

	MaxInstances   *int `json:"max_instances" validate:"omitempty,min=1"`
	WhatsappLimit  *int `json:"whatsapp_limit"`
	InstagramLimit *int `json:"instagram_limit"`
	MessengerLimit *int `json:"messenger_limit"`

	WhatsappEnabled  *bool `json:"whatsapp_enabled"`
	InstagramEnabled *bool `json:"instagram_enabled"`
	MessengerEnabled *bool `json:"messenger_enabled"`

	// Campos legacy de instancia única: si no vienen definiciones explícitas
	// se crea exactamente una instancia a partir de ellos.
	EvolutionInstance string `json:"evolution_instance"`
	EvolutionAPIKey   string `json:"evolution_apikey"`

	InstagramAppID       string `json:"instagram_app_id"`
	InstagramAppSecret   string `json:"instagram_app_secret"`
	InstagramPageID      string `json:"instagram_page_id"`
	InstagramBusinessID  string `json:"instagram_business_id"`
	InstagramAccessToken string `json:"instagram_access_token"`

	PlanID  *int64     `json:"plan_id"`
	DueDate *time.Time `json:"due_date"`

	Instances json.RawMessage `json:"instances,omitempty"`
}

// UpdateCompanyRequest actualización parcial de un tenant. Campos nil no se
// tocan. Los secretos (evolution_apikey, instagram_app_secret,
// instagram_access_token) siguen la convención tri-estado de tenancy.
// Los campos de capacidad/plan de callers no-operadores se sobreescriben
// server-side con los valores almacenados antes de aplicar nada.
type UpdateCompanyRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
	TaxID *string `json:"tax_id"`
	City  *string `json:"city"`
	State *string `json:"state"`
	Phone *string `json:"phone"`

	OperationType *string `json:"operation_type"`
	Category      *string `json:"category"`

	MaxInstances   *int `json:"max_instances" validate:"omitempty,min=1"`
	WhatsappLimit  *int `json:"whatsapp_limit"`
	InstagramLimit *int `json:"instagram_limit"`
	MessengerLimit *int `json:"messenger_limit"`

	WhatsappEnabled  *bool `json:"whatsapp_enabled"`
	InstagramEnabled *bool `json:"instagram_enabled"`
	MessengerEnabled *bool `json:"messenger_enabled"`

	EvolutionInstance *string `json:"evolution_instance"`
	EvolutionAPIKey   *string `json:"evolution_apikey"`

	InstagramAppID       *string `json:"instagram_app_id"`
	InstagramAppSecret   *string `json:"instagram_app_secret"`
	InstagramPageID      *string `json:"instagram_page_id"`
	InstagramBusinessID  *string `json:"instagram_business_id"`
	InstagramAccessToken *string `json:"instagram_access_token"`

	PlanID  *int64     `json:"plan_id"`
	DueDate *time.Time `json:"due_date"`

	Instances json.RawMessage `json:"instances,omitempty"`
}

// CompanyResponse tenant en respuestas HTTP. Secretos redactados.
type CompanyResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	City  string `json:"city"`
	State string `json:"state"`
	Phone string `json:"phone"`

	OperationType      string `json:"operation_type"`
	Category           string `json:"category"`
	OperationalProfile string `json:"operational_profile"`

	MaxInstances   int `json:"max_instances"`
	WhatsappLimit  int `json:"whatsapp_limit"`
	InstagramLimit int `json:"instagram_limit"`
	MessengerLimit int `json:"messenger_limit"`

	WhatsappEnabled  bool `json:"whatsapp_enabled"`
	InstagramEnabled bool `json:"instagram_enabled"`
	MessengerEnabled bool `json:"messenger_enabled"`

	EvolutionInstance string `json:"evolution_instance"`
	EvolutionAPIKey   string `json:"evolution_apikey,omitempty"`

	InstagramAppID       string `json:"instagram_app_id"`
	InstagramAppSecret   string `json:"instagram_app_secret,omitempty"`
	InstagramPageID      string `json:"instagram_page_id"`
	InstagramBusinessID  string `json:"instagram_business_id"`
	InstagramAccessToken string `json:"instagram_access_token,omitempty"`
	InstagramStatus      string `json:"instagram_status"`

	PlanID  *int64     `json:"plan_id"`
	DueDate *time.Time `json:"due_date"`

	SeedCompleted bool `json:"seed_completed"`

	Instances []InstanceResponse `json:"instances,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyListResponse lista paginada de tenants.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// DeleteCompanyResponse confirmación de purga con el conteo por tabla.
type DeleteCompanyResponse struct {
	Message     string           `json:"message"`
	RowsByTable map[string]int64 `json:"rows_by_table"`
}
