package tenancy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Conversa-api/internal/domain/entity"
	"github.com/jhoicas/Conversa-api/internal/domain/tenancy"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests DeriveProfile — derivación determinística del perfil operacional
// ──────────────────────────────────────────────────────────────────────────────

func TestDeriveProfile_PorOperationType(t *testing.T) {
	cases := []struct {
		operationType string
		want          entity.OperationalProfile
	}{
		{"patients", entity.ProfileClinica},
		{"retail", entity.ProfileLoja},
		{"restaurant", entity.ProfileRestaurante},
		{"car-wash", entity.ProfileLavajato},
		{"drivers", entity.ProfileTransporte},
		{"otra-cosa", entity.ProfileGeneric},
		{"", entity.ProfileGeneric},
	}
	for _, tc := range cases {
		got := tenancy.DeriveProfile(tc.operationType, "")
		assert.Equal(t, tc.want, got, "operation_type=%q", tc.operationType)
	}
}

func TestDeriveProfile_PorCategoria(t *testing.T) {
	// category también deriva: clientes antiguos mandan términos en portugués.
	assert.Equal(t, entity.ProfileClinica, tenancy.DeriveProfile("", "Clínica"))
	assert.Equal(t, entity.ProfileLoja, tenancy.DeriveProfile("", "varejo"))
	assert.Equal(t, entity.ProfileRestaurante, tenancy.DeriveProfile("", "Lanchonete"))
	assert.Equal(t, entity.ProfileLavajato, tenancy.DeriveProfile("", "lava-jato"))
	assert.Equal(t, entity.ProfileTransporte, tenancy.DeriveProfile("", "motoristas"))
}

// La prioridad es fija: patients gana aunque category apunte a otro perfil.
func TestDeriveProfile_PrioridadPatientsGana(t *testing.T) {
	got := tenancy.DeriveProfile("patients", "restaurante")
	assert.Equal(t, entity.ProfileClinica, got,
		"patients tiene prioridad sobre restaurant")
}

func TestDeriveProfile_CaseInsensitive(t *testing.T) {
	assert.Equal(t, entity.ProfileLoja, tenancy.DeriveProfile("RETAIL", ""))
	assert.Equal(t, entity.ProfileClinica, tenancy.DeriveProfile("  Patients  ", ""))
}
