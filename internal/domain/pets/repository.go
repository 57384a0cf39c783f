package pets

import "context"

// Repository solo ve filas vivas, salvo HardDelete.
// Update es condicional: escribe solo si la fila sigue viva y en expectedVersion.
type Repository interface {
	Create(ctx context.Context, p Pet) (int64, error)
	GetByID(ctx context.Context, id int64) (Pet, error)
	List(ctx context.Context) ([]Pet, error)
	Update(ctx context.Context, p Pet, expectedVersion int64) error
	HardDelete(ctx context.Context, id int64) error
}
