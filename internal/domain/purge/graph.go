package purge

import (
	"fmt"
)

// Table declara una tabla dependiente de companies y cómo purgarla.
//
// SQL es la sentencia DELETE parametrizada con $1 = id de la empresa. After
// lista las tablas que deben purgarse ANTES que esta (sus hijas por FK): el
// store subyacente impone integridad referencial, así que cualquier fila
// borrada fuera de orden aborta la transacción con violación de constraint.
type Table struct {
	Name  string
	SQL   string
	After []string
}

// Plan secuencia de borrado topológicamente ordenada. Se construye una vez al
// arranque; un cambio de esquema solo requiere editar el registro de tablas,
// no re-derivar a mano la secuencia completa.
type Plan struct {
	steps []Table
}

// Steps devuelve la secuencia completa de borrado, terminando en companies.
func (p *Plan) Steps() []Table {
	return p.steps
}

// Len cantidad de pasos del plan.
func (p *Plan) Len() int { return len(p.steps) }

// BuildPlan ordena topológicamente el registro de tablas (Kahn, desempate por
// orden de declaración para que el plan sea determinístico) y agrega la fila
// de companies como paso final. Falla si el grafo tiene ciclos o referencias
// a tablas no declaradas.
func BuildPlan() (*Plan, error) {
	return BuildPlanFrom(Registry)
}

// BuildPlanFrom construye el plan desde un registro arbitrario.
func BuildPlanFrom(registry []Table) (*Plan, error) {
	index := make(map[string]int, len(registry))
	for i, t := range registry {
		if _, dup := index[t.Name]; dup {
			return nil, fmt.Errorf("purge: tabla %q declarada dos veces", t.Name)
		}
		index[t.Name] = i
	}

	// indegree[i] = cuántas tablas deben purgarse antes que registry[i]
	indegree := make([]int, len(registry))
	dependents := make(map[string][]int, len(registry))
	for i, t := range registry {
		for _, before := range t.After {
			if _, ok := index[before]; !ok {
				return nil, fmt.Errorf("purge: %q depende de tabla no declarada %q", t.Name, before)
			}
			indegree[i]++
			dependents[before] = append(dependents[before], i)
		}
	}

	steps := make([]Table, 0, len(registry)+1)
	done := make([]bool, len(registry))
	for len(steps) < len(registry) {
		progressed := false
		for i, t := range registry {
			if done[i] || indegree[i] != 0 {
				continue
			}
			done[i] = true
			progressed = true
			steps = append(steps, t)
			for _, dep := range dependents[t.Name] {
				indegree[dep]--
			}
		}
		if !progressed {
			return nil, fmt.Errorf("purge: ciclo en el grafo de dependencias")
		}
	}

	// La fila del tenant siempre va al final: todas las demás la referencian.
	steps = append(steps, Table{
		Name: "companies",
		SQL:  "DELETE FROM companies WHERE id = $1",
	})
	return &Plan{steps: steps}, nil
}
