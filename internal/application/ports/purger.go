package ports

import "context"

// PurgeResult conteo de filas eliminadas por tabla en una purga exitosa.
type PurgeResult struct {
	RowsByTable map[string]int64 `json:"rows_by_table"`
}

// TenantPurger puerto hacia el ejecutor transaccional de purga. La
// implementación recorre el plan topológico dentro de UNA transacción; en
// falla devuelve *purge.ConstraintError y no borra nada.
type TenantPurger interface {
	Purge(ctx context.Context, companyID int64) (*PurgeResult, error)
}
