package postgres

import (
	"context"
	"database/sql"

	"pet-admin-api/internal/domain/datasources"
)

type DataSourcesRepo struct {
	db *sql.DB
}

func NewDataSourcesRepo(db *sql.DB) *DataSourcesRepo {
	return &DataSourcesRepo{db: db}
}

const dataSourceCols = `id, code, name, remark, db_type, db_host, db_port, db_name, db_username, db_password, ` + envelopeCols

// db_password guarda el ciphertext; este repo nunca ve la password en claro.
func (r *DataSourcesRepo) Create(ctx context.Context, d datasources.DataSource) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO data_sources (
			code, name, remark, db_type, db_host, db_port, db_name, db_username, db_password,
			version, created_by, created_date, last_modified_by, last_modified_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id
	`,
		d.Code,
		d.Name,
		d.Remark,
		d.DBType,
		d.DBHost,
		d.DBPort,
		d.DBName,
		d.DBUsername,
		d.PasswordCipher,
		d.Version,
		d.CreatedBy,
		d.CreatedAt,
		d.LastModifiedBy,
		d.LastModifiedAt,
	).Scan(&id)
	return id, err
}

func (r *DataSourcesRepo) GetByID(ctx context.Context, id int64) (datasources.DataSource, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+dataSourceCols+`
		FROM data_sources
		WHERE id = $1 AND deleted_date IS NULL
	`, id)

	d, err := scanDataSource(row)
	if err != nil {
		return datasources.DataSource{}, notFound(err)
	}
	return d, nil
}

func (r *DataSourcesRepo) List(ctx context.Context) ([]datasources.DataSource, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+dataSourceCols+`
		FROM data_sources
		WHERE deleted_date IS NULL
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]datasources.DataSource, 0)
	for rows.Next() {
		d, err := scanDataSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DataSourcesRepo) Update(ctx context.Context, d datasources.DataSource, expectedVersion int64) error {
	return casResult(r.db.ExecContext(ctx, `
		UPDATE data_sources
		SET
			code = $2,
			name = $3,
			remark = $4,
			db_type = $5,
			db_host = $6,
			db_port = $7,
			db_name = $8,
			db_username = $9,
			db_password = $10,
			version = $11,
			last_modified_by = $12,
			last_modified_date = $13,
			deleted_by = $14,
			deleted_date = $15
		WHERE id = $1 AND version = $16 AND deleted_date IS NULL
	`,
		d.ID,
		d.Code,
		d.Name,
		d.Remark,
		d.DBType,
		d.DBHost,
		d.DBPort,
		d.DBName,
		d.DBUsername,
		d.PasswordCipher,
		d.Version,
		d.LastModifiedBy,
		d.LastModifiedAt,
		nullInt64(d.DeletedBy),
		nullTime(d.Envelope),
		expectedVersion,
	))
}

func (r *DataSourcesRepo) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, r.db, "data_sources", id)
}

func scanDataSource(s scanner) (datasources.DataSource, error) {
	var (
		d   datasources.DataSource
		env envelopeScan
	)
	dest := append([]any{
		&d.ID, &d.Code, &d.Name, &d.Remark, &d.DBType, &d.DBHost, &d.DBPort,
		&d.DBName, &d.DBUsername, &d.PasswordCipher,
	}, env.dest(&d.Envelope)...)
	if err := s.Scan(dest...); err != nil {
		return datasources.DataSource{}, err
	}
	env.finish()
	return d, nil
}
