package purge

import "fmt"

// ConstraintError violación de integridad durante la purga. Se expone el
// detalle de bajo nivel (tabla y constraint) tal cual: la audiencia es un
// operador diagnosticando una referencia no contemplada en el grafo.
type ConstraintError struct {
	Table      string
	Constraint string
	Detail     string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("violación de integridad en tabla %q (constraint %q): %s", e.Table, e.Constraint, e.Detail)
}
