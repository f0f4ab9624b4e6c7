package entity

import "time"

// OperationalProfile perfil operacional derivado de operation_type/category.
// Es un cache desnormalizado calculado en cada escritura; nunca se setea directo.
type OperationalProfile string

const (
	ProfileGeneric     OperationalProfile = "GENERIC"
	ProfileClinica     OperationalProfile = "CLINICA"
	ProfileLoja        OperationalProfile = "LOJA"
	ProfileRestaurante OperationalProfile = "RESTAURANTE"
	ProfileLavajato    OperationalProfile = "LAVAJATO"
	ProfileTransporte  OperationalProfile = "TRANSPORTE"
)

// InstagramStatus máquina de estados del canal Instagram de una empresa.
type InstagramStatus string

const (
	InstagramInativo InstagramStatus = "INATIVO" // default / canal deshabilitado
	InstagramAtivo   InstagramStatus = "ATIVO"   // credenciales validadas
	InstagramErro    InstagramStatus = "ERRO"    // validación intentada y fallida
)

// Company representa un tenant del sistema. Cada empresa posee sus instancias
// de mensajería, leads y demás datos; nada sobrevive a la eliminación del tenant.
type Company struct {
	ID    int64
	Name  string
	TaxID string // CNPJ/NIT según país
	City  string
	State string
	Phone string

	// Clasificación
	OperationType      string // clients, patients, car-wash, restaurant, retail, drivers
	Category           string
	OperationalProfile OperationalProfile

	// Capacidad y canales
	MaxInstances     int // >= 1
	WhatsappLimit    int
	InstagramLimit   int
	MessengerLimit   int
	WhatsappEnabled  bool
	InstagramEnabled bool
	MessengerEnabled bool

	// Campos legacy de instancia única: se mantienen en sync con la instancia #1.
	EvolutionInstance string
	EvolutionAPIKey   string

	// Canal Instagram
	InstagramAppID       string
	InstagramAppSecret   string
	InstagramPageID      string
	InstagramBusinessID  string
	InstagramAccessToken string
	InstagramStatus      InstagramStatus

	// Suscripción
	PlanID  *int64
	DueDate *time.Time

	// Enriquecimiento post-commit (stage default, lead de ejemplo, agente, templates)
	SeedCompleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
