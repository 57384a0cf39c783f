package postgres

import (
	"context"
	"database/sql"

	"pet-admin-api/internal/domain/pettypes"
)

type PetTypesRepo struct {
	db *sql.DB
}

func NewPetTypesRepo(db *sql.DB) *PetTypesRepo {
	return &PetTypesRepo{db: db}
}

func (r *PetTypesRepo) Create(ctx context.Context, pt pettypes.PetType) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `INSERT INTO pet_types (color) VALUES ($1) RETURNING id`, pt.Color).Scan(&id)
	return id, err
}

func (r *PetTypesRepo) GetByID(ctx context.Context, id int64) (pettypes.PetType, error) {
	var pt pettypes.PetType
	err := r.db.QueryRowContext(ctx, `SELECT id, color FROM pet_types WHERE id = $1`, id).Scan(&pt.ID, &pt.Color)
	if err != nil {
		return pettypes.PetType{}, notFound(err)
	}
	return pt, nil
}

func (r *PetTypesRepo) List(ctx context.Context) ([]pettypes.PetType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, color FROM pet_types ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pettypes.PetType, 0)
	for rows.Next() {
		var pt pettypes.PetType
		if err := rows.Scan(&pt.ID, &pt.Color); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

func (r *PetTypesRepo) Update(ctx context.Context, pt pettypes.PetType) error {
	res, err := r.db.ExecContext(ctx, `UPDATE pet_types SET color = $2 WHERE id = $1`, pt.ID, pt.Color)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PetTypesRepo) Delete(ctx context.Context, id int64) error {
	return hardDelete(ctx, r.db, "pet_types", id)
}
