package users

import "context"

// Repository solo ve usuarios vivos, salvo HardDelete.
type Repository interface {
	Create(ctx context.Context, u User) (int64, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User, expectedVersion int64) error
	HardDelete(ctx context.Context, id int64) error
}
