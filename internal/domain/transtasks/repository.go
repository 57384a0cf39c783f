package transtasks

import "context"

type Repository interface {
	Create(ctx context.Context, t TransTask) (int64, error)
	GetByID(ctx context.Context, id int64) (TransTask, error)
	List(ctx context.Context) ([]TransTask, error)
	Update(ctx context.Context, t TransTask, expectedVersion int64) error
	HardDelete(ctx context.Context, id int64) error
}
