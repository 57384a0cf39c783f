package memory

import (
	"context"

	"pet-admin-api/internal/domain/audit"
	"pet-admin-api/internal/domain/transtasks"
)

type transTaskRepo struct {
	t *auditedTable[transtasks.TransTask]
}

func NewTransTaskRepo() transtasks.Repository {
	return &transTaskRepo{t: newAuditedTable(
		func(tt transtasks.TransTask) int64 { return tt.ID },
		func(tt *transtasks.TransTask, id int64) { tt.ID = id },
		func(tt transtasks.TransTask) audit.Envelope { return tt.Envelope },
	)}
}

func (r *transTaskRepo) Create(_ context.Context, tt transtasks.TransTask) (int64, error) {
	return r.t.insert(tt)
}

func (r *transTaskRepo) GetByID(_ context.Context, id int64) (transtasks.TransTask, error) {
	return r.t.get(id)
}

func (r *transTaskRepo) List(_ context.Context) ([]transtasks.TransTask, error) {
	return r.t.list(), nil
}

func (r *transTaskRepo) Update(_ context.Context, tt transtasks.TransTask, expectedVersion int64) error {
	return r.t.update(tt, expectedVersion)
}

func (r *transTaskRepo) HardDelete(_ context.Context, id int64) error {
	return r.t.remove(id)
}
