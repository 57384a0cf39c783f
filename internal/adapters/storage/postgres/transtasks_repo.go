package postgres

import (
	"context"
	"database/sql"

	"pet-admin-api/internal/domain/transtasks"
)

type TransTasksRepo struct {
	db *sql.DB
}

func NewTransTasksRepo(db *sql.DB) *TransTasksRepo {
	return &TransTasksRepo{db: db}
}

const transTaskCols = `id, data_source_id, table_name, table_comment, remark, row_count, last_trans_time, ` + envelopeCols

func (r *TransTasksRepo) Create(ctx context.Context, t transtasks.TransTask) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO trans_tasks (
			data_source_id, table_name, table_comment, remark, row_count, last_trans_time,
			version, created_by, created_date, last_modified_by, last_modified_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id
	`,
		t.DataSourceID,
		t.TableName,
		t.TableComment,
		t.Remark,
		t.RowCount,
		t.LastTransTime,
		t.Version,
		t.CreatedBy,
		t.CreatedAt,
		t.LastModifiedBy,
		t.LastModifiedAt,
	).Scan(&id)
	return id, err
}

func (r *TransTasksRepo) GetByID(ctx context.Context, id int64) (transtasks.TransTask, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transTaskCols+`
		FROM trans_tasks
		WHERE id = $1 AND deleted_date IS NULL
	`, id)

	t, err := scanTransTask(row)
	if err != nil {
		return transtasks.TransTask{}, notFound(err)
	}
	return t, nil
}

func (r *TransTasksRepo) List(ctx context.Context) ([]transtasks.TransTask, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transTaskCols+`
		FROM trans_tasks
		WHERE deleted_date IS NULL
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]transtasks.TransTask, 0)
	for rows.Next() {
		t, err := scanTransTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TransTasksRepo) Update(ctx context.Context, t transtasks.TransTask, expectedVersion int64) error {
	return casResult(r.db.ExecContext(ctx, `
		UPDATE trans_tasks
		SET
			data_source_id = $2,
			table_name = $3,
			table_comment = $4,
			remark = $5,
			row_count = $6,
			last_trans_time = $7,
			version = $8,
			last_modified_by = $9,
			last_modified_date = $10,
			deleted_by = $11,
			deleted_date = $12
		WHERE id = $1 AND version = $13 AND deleted_date IS NULL
	`,
		t.ID,
		t.DataSourceID,
		t.TableName,
		t.TableComment,
		t.Remark,
		t.RowCount,
		t.LastTransTime,
		t.Version,
		t.LastModifiedBy,
		t.LastModifiedAt,
		nullInt64(t.DeletedBy),
		nullTime(t.Envelope),
		expectedVersion,
	))
}

func (r *TransTasksRepo) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, r.db, "trans_tasks", id)
}

func scanTransTask(s scanner) (transtasks.TransTask, error) {
	var (
		t   transtasks.TransTask
		env envelopeScan
	)
	dest := append([]any{
		&t.ID, &t.DataSourceID, &t.TableName, &t.TableComment, &t.Remark, &t.RowCount, &t.LastTransTime,
	}, env.dest(&t.Envelope)...)
	if err := s.Scan(dest...); err != nil {
		return transtasks.TransTask{}, err
	}
	env.finish()
	t.LastTransTime = t.LastTransTime.UTC()
	return t, nil
}
