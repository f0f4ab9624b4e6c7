package evolution

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

// Asegura que Client implementa ports.GatewayClient.
var _ ports.GatewayClient = (*Client)(nil)

// Client cliente HTTP del gateway Evolution (WhatsApp).
// Usa net/http de la stdlib con timeout explícito: una consulta colgada no
// debe bloquear indefinidamente el request que disparó el sync.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient construye el cliente con timeout de 10 s.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// connectionStateResponse el gateway responde en dos formas según versión:
// {"instance":{"state":"open"}} o {"state":"open"}.
type connectionStateResponse struct {
	Instance struct {
		State string `json:"state"`
	} `json:"instance"`
	State string `json:"state"`
}

// ConnectionState consulta GET /instance/connectionState/{instanceKey} con
// header apikey. Devuelve el estado crudo; 404 se traduce a
// ports.ErrUnknownInstance (el gateway no registra esa clave).
func (c *Client) ConnectionState(ctx context.Context, apiKey, instanceKey string) (string, error) {
	endpoint := fmt.Sprintf("%s/instance/connectionState/%s", c.baseURL, url.PathEscape(instanceKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("armar request: %w", err)
	}
	req.Header.Set("apikey", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("consultar gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ports.ErrUnknownInstance
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway respondió %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed connectionStateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decodificar respuesta: %w", err)
	}
	if parsed.Instance.State != "" {
		return parsed.Instance.State, nil
	}
	return parsed.State, nil
}
