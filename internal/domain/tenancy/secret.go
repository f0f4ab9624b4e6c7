package tenancy

import "strings"

// MaskedMarker es la marca de redacción que la UI devuelve en los campos
// secretos que no quiere tocar. Se mantiene por compatibilidad de wire, pero
// la decisión real es el tri-estado de ResolveSecret, no el substring.
const MaskedMarker = "***"

// SecretAction instrucción explícita de actualización para un campo secreto.
type SecretAction int

const (
	// SecretKeep deja el valor almacenado sin cambios.
	SecretKeep SecretAction = iota
	// SecretSet reemplaza el valor almacenado por el enviado.
	SecretSet
	// SecretClear borra el valor almacenado.
	SecretClear
)

// IsMasked informa si el valor enviado es el placeholder de redacción.
func IsMasked(s string) bool {
	return strings.Contains(s, MaskedMarker)
}

// ResolveSecret convierte el campo enviado (nil = ausente) en una instrucción
// tri-estado:
//
//	ausente            -> Keep
//	placeholder "***"  -> Keep (round-trip de la UI)
//	string vacío       -> Clear
//	cualquier otro     -> Set
func ResolveSecret(submitted *string) (SecretAction, string) {
	if submitted == nil {
		return SecretKeep, ""
	}
	v := *submitted
	if strings.TrimSpace(v) == "" {
		return SecretClear, ""
	}
	if IsMasked(v) {
		return SecretKeep, ""
	}
	return SecretSet, v
}

// ApplySecret aplica la instrucción sobre el valor almacenado y devuelve el
// valor final a persistir.
func ApplySecret(stored string, submitted *string) string {
	switch action, v := ResolveSecret(submitted); action {
	case SecretSet:
		return v
	case SecretClear:
		return ""
	default:
		return stored
	}
}

// MaskSecret redacta un secreto para respuestas HTTP: conserva los últimos 4
// caracteres cuando el valor es suficientemente largo.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return MaskedMarker
	}
	return MaskedMarker + s[len(s)-4:]
}
