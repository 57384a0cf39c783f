package memory

import (
	"context"

	"pet-admin-api/internal/domain/audit"
	"pet-admin-api/internal/domain/pets"
)

type petRepo struct {
	t *auditedTable[pets.Pet]
}

func NewPetRepo() pets.Repository {
	return &petRepo{t: newAuditedTable(
		func(p pets.Pet) int64 { return p.ID },
		func(p *pets.Pet, id int64) { p.ID = id },
		func(p pets.Pet) audit.Envelope { return p.Envelope },
	)}
}

func (r *petRepo) Create(_ context.Context, p pets.Pet) (int64, error) {
	return r.t.insert(p)
}

func (r *petRepo) GetByID(_ context.Context, id int64) (pets.Pet, error) {
	return r.t.get(id)
}

func (r *petRepo) List(_ context.Context) ([]pets.Pet, error) {
	return r.t.list(), nil
}

func (r *petRepo) Update(_ context.Context, p pets.Pet, expectedVersion int64) error {
	return r.t.update(p, expectedVersion)
}

func (r *petRepo) HardDelete(_ context.Context, id int64) error {
	return r.t.remove(id)
}
