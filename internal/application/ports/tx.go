package ports

import (
	"context"

	"github.com/jhoicas/taller-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ninguna escritura persiste.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}
