package ports

import (
	"context"
	"errors"
)

// ErrUnknownInstance el gateway no tiene registro de la clave consultada
// (HTTP 404). Para el tenant equivale a desconectado.
var ErrUnknownInstance = errors.New("el gateway no conoce la instancia")

// GatewayClient puerto de salida hacia el gateway Evolution (WhatsApp).
// La implementación concreta usa HTTP; para tests se inyecta un fake.
type GatewayClient interface {
	// ConnectionState consulta el estado de conexión crudo de la instancia
	// ("open", "connecting", ...). Devuelve ErrUnknownInstance en 404.
	ConnectionState(ctx context.Context, apiKey, instanceKey string) (string, error)
}
