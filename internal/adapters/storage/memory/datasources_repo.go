package memory

import (
	"context"

	"pet-admin-api/internal/domain/audit"
	"pet-admin-api/internal/domain/datasources"
)

type dataSourceRepo struct {
	t *auditedTable[datasources.DataSource]
}

func NewDataSourceRepo() datasources.Repository {
	return &dataSourceRepo{t: newAuditedTable(
		func(d datasources.DataSource) int64 { return d.ID },
		func(d *datasources.DataSource, id int64) { d.ID = id },
		func(d datasources.DataSource) audit.Envelope { return d.Envelope },
	)}
}

func (r *dataSourceRepo) Create(_ context.Context, d datasources.DataSource) (int64, error) {
	return r.t.insert(d)
}

func (r *dataSourceRepo) GetByID(_ context.Context, id int64) (datasources.DataSource, error) {
	return r.t.get(id)
}

func (r *dataSourceRepo) List(_ context.Context) ([]datasources.DataSource, error) {
	return r.t.list(), nil
}

func (r *dataSourceRepo) Update(_ context.Context, d datasources.DataSource, expectedVersion int64) error {
	return r.t.update(d, expectedVersion)
}

func (r *dataSourceRepo) HardDelete(_ context.Context, id int64) error {
	return r.t.remove(id)
}
