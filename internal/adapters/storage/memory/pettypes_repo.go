package memory

import (
	"context"
	"sort"
	"sync"

	"pet-admin-api/internal/domain/pettypes"
)

// PetType no tiene auditoría: map simple, sin filtro de borrados.
type petTypeRepo struct {
	mu   sync.RWMutex
	seq  int64
	byID map[int64]pettypes.PetType
}

func NewPetTypeRepo() pettypes.Repository {
	return &petTypeRepo{byID: make(map[int64]pettypes.PetType)}
}

func (r *petTypeRepo) Create(_ context.Context, pt pettypes.PetType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pt.ID != 0 {
		return 0, errIDAssigned
	}
	r.seq++
	pt.ID = r.seq
	r.byID[pt.ID] = pt
	return pt.ID, nil
}

func (r *petTypeRepo) GetByID(_ context.Context, id int64) (pettypes.PetType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pt, ok := r.byID[id]
	if !ok {
		return pettypes.PetType{}, ErrNotFound
	}
	return pt, nil
}

func (r *petTypeRepo) List(_ context.Context) ([]pettypes.PetType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pettypes.PetType, 0, len(r.byID))
	for _, pt := range r.byID {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *petTypeRepo) Update(_ context.Context, pt pettypes.PetType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[pt.ID]; !ok {
		return ErrNotFound
	}
	r.byID[pt.ID] = pt
	return nil
}

func (r *petTypeRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
