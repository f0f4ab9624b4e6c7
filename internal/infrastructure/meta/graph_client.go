package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/Conversa-api/internal/application/ports"
)

// Asegura que GraphClient implementa ports.CredentialValidator.
var _ ports.CredentialValidator = (*GraphClient)(nil)

// GraphClient validación de credenciales Instagram contra la Graph API de
// Meta. Timeout explícito: la expiración se trata como falla de validación
// (el caller la traduce a ERRO), nunca como bloqueo del update.
type GraphClient struct {
	baseURL    string
	version    string
	httpClient *http.Client
}

// NewGraphClient construye el cliente. baseURL típico
// https://graph.facebook.com, version v18.0.
func NewGraphClient(baseURL, version string) *GraphClient {
	return &GraphClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		version:    version,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// graphError forma de error de la Graph API: {"error":{"message":...}}.
type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// ValidateToken verifica que el token identifica a un caller (GET /me).
func (c *GraphClient) ValidateToken(ctx context.Context, accessToken string) error {
	return c.get(ctx, "me", accessToken)
}

// ValidatePage verifica que el token accede a la página dada (GET /{pageID}).
func (c *GraphClient) ValidatePage(ctx context.Context, pageID, accessToken string) error {
	return c.get(ctx, url.PathEscape(pageID), accessToken)
}

func (c *GraphClient) get(ctx context.Context, path, accessToken string) error {
	endpoint := fmt.Sprintf("%s/%s/%s?fields=id,name&access_token=%s",
		c.baseURL, c.version, path, url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("armar request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("consultar graph api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var parsed graphError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return fmt.Errorf("graph api: %s", parsed.Error.Message)
	}
	return fmt.Errorf("graph api respondió %d", resp.StatusCode)
}
