package pettypes

import "context"

type Repository interface {
	Create(ctx context.Context, pt PetType) (int64, error)
	GetByID(ctx context.Context, id int64) (PetType, error)
	List(ctx context.Context) ([]PetType, error)
	Update(ctx context.Context, pt PetType) error
	Delete(ctx context.Context, id int64) error
}
