package tenancy

import (
	"strings"

	"github.com/jhoicas/Conversa-api/internal/domain/entity"
)

// profileRule asocia palabras clave de operation_type/category a un perfil.
// El orden de las reglas es el orden de prioridad de la derivación.
type profileRule struct {
	profile  entity.OperationalProfile
	keywords []string
}

// Orden fijo de prioridad: patients → retail → restaurant → car-wash → drivers.
// Se aceptan los términos en inglés del enum y los sinónimos en portugués que
// llegan vía category desde clientes antiguos.
var profileRules = []profileRule{
	{entity.ProfileClinica, []string{"patients", "clinica", "clínica", "saude", "saúde"}},
	{entity.ProfileLoja, []string{"retail", "loja", "varejo"}},
	{entity.ProfileRestaurante, []string{"restaurant", "restaurante", "lanchonete"}},
	{entity.ProfileLavajato, []string{"car-wash", "carwash", "lavajato", "lava-jato"}},
	{entity.ProfileTransporte, []string{"drivers", "transporte", "motoristas"}},
}

// DeriveProfile calcula el operational_profile desde operation_type y category.
// Es determinístico: primera regla que matchee gana; sin match → GENERIC.
func DeriveProfile(operationType, category string) entity.OperationalProfile {
	op := normalizeTerm(operationType)
	cat := normalizeTerm(category)
	for _, rule := range profileRules {
		for _, kw := range rule.keywords {
			if op == kw || cat == kw {
				return rule.profile
			}
		}
	}
	return entity.ProfileGeneric
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
