package ports

import "context"

// CredentialValidator puerto de salida hacia la Graph API de Meta para
// validar credenciales del canal Instagram.
type CredentialValidator interface {
	// ValidateToken verifica que el access token identifica a un caller (/me).
	ValidateToken(ctx context.Context, accessToken string) error
	// ValidatePage verifica que el token puede acceder a la página dada.
	ValidatePage(ctx context.Context, pageID, accessToken string) error
}
