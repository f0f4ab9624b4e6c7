package tenancy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Conversa-api/internal/domain/tenancy"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests SanitizeInstanceKey — contrato de claves del gateway
// ──────────────────────────────────────────────────────────────────────────────

func TestSanitizeInstanceKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"MyStore", "mystore"},
		{"my store 01", "my_store_01"},
		{"  loja-centro  ", "loja-centro"},
		{"Clínica São João", "clinica_sao_joao"},
		{"açaí&burger!", "acaiburger"},
		{"already_ok-123", "already_ok-123"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tenancy.SanitizeInstanceKey(tc.in), "input=%q", tc.in)
	}
}

// Sanitizar dos veces produce el mismo resultado: la clave almacenada ya está
// en forma canónica.
func TestSanitizeInstanceKey_Idempotente(t *testing.T) {
	once := tenancy.SanitizeInstanceKey("Restaurante Dois Irmãos")
	twice := tenancy.SanitizeInstanceKey(once)
	assert.Equal(t, once, twice)
}
