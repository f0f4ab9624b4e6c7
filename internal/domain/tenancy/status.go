package tenancy

import (
	"strings"

	"github.com/jhoicas/Conversa-api/internal/domain/entity"
)

// NormalizeGatewayState mapea el estado crudo del gateway Evolution al enum
// visible para el tenant. El match es case-insensitive; cualquier valor
// desconocido (incluido el vacío que produce un 404 del gateway) se reporta
// como desconectado.
func NormalizeGatewayState(raw string) entity.InstanceStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open", "connected", "online":
		return entity.InstanceConnected
	case "connecting", "pairing":
		return entity.InstanceConnecting
	default:
		return entity.InstanceDisconnected
	}
}
