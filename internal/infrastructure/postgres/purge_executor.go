package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Conversa-api/internal/application/ports"
	"github.com/jhoicas/Conversa-api/internal/domain/purge"
)

// Asegura que PurgeExecutor implementa ports.TenantPurger.
var _ ports.TenantPurger = (*PurgeExecutor)(nil)

// PurgeExecutor recorre el plan topológico de purga dentro de UNA transacción.
// Cualquier error revierte todo; una violación de FK (referencia no declarada
// en el grafo) se devuelve como *purge.ConstraintError con tabla y constraint
// tal cual los reporta PostgreSQL.
type PurgeExecutor struct {
	pool *pgxpool.Pool
	plan *purge.Plan
}

// NewPurgeExecutor construye el ejecutor con el plan ya ordenado.
func NewPurgeExecutor(pool *pgxpool.Pool, plan *purge.Plan) *PurgeExecutor {
	return &PurgeExecutor{pool: pool, plan: plan}
}

// Purge elimina todas las filas dependientes del tenant y su fila de
// companies, en el orden del plan.
func (e *PurgeExecutor) Purge(ctx context.Context, companyID int64) (*ports.PurgeResult, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result := &ports.PurgeResult{RowsByTable: make(map[string]int64, e.plan.Len())}
	for _, step := range e.plan.Steps() {
		tag, err := tx.Exec(ctx, step.SQL, companyID)
		if err != nil {
			if pgErr, ok := asForeignKeyViolation(err); ok {
				return nil, &purge.ConstraintError{
					Table:      pgErr.TableName,
					Constraint: pgErr.ConstraintName,
					Detail:     pgErr.Detail,
				}
			}
			return nil, fmt.Errorf("purgar tabla %s: %w", step.Name, err)
		}
		if rows := tag.RowsAffected(); rows > 0 {
			result.RowsByTable[step.Name] = rows
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return result, nil
}
