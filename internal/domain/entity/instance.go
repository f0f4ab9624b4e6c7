package entity

import "time"

// InstanceStatus estado de conexión visible para el tenant, normalizado
// desde la respuesta del gateway Evolution.
type InstanceStatus string

const (
	InstanceConnected    InstanceStatus = "connected"
	InstanceConnecting   InstanceStatus = "connecting"
	InstanceDisconnected InstanceStatus = "disconnected"
)

// CompanyInstance es una conexión de canal (registro WhatsApp en el gateway)
// perteneciente a una empresa.
//
// InstanceKey es único global entre TODOS los tenants: el namespace del gateway
// es infraestructura compartida. APIKey es opcional; si está vacío se usa el
// evolution_apikey de la empresa y en último caso la clave global configurada.
type CompanyInstance struct {
	ID          int64
	CompanyID   int64
	Name        string
	InstanceKey string
	APIKey      string
	Status      InstanceStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
