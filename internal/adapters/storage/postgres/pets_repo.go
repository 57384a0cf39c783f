package postgres

import (
	"context"
	"database/sql"

	"pet-admin-api/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petCols = `id, name, birth_date, pet_type_id, owner_id, ` + envelopeCols

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO pets (
			name, birth_date, pet_type_id, owner_id,
			version, created_by, created_date, last_modified_by, last_modified_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`,
		p.Name,
		nullString(p.BirthDate),
		nullInt64(p.PetTypeID),
		nullInt64(p.OwnerID),
		p.Version,
		p.CreatedBy,
		p.CreatedAt,
		p.LastModifiedBy,
		p.LastModifiedAt,
	).Scan(&id)
	return id, err
}

func (r *PetsRepo) GetByID(ctx context.Context, id int64) (pets.Pet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+petCols+`
		FROM pets
		WHERE id = $1 AND deleted_date IS NULL
	`, id)

	p, err := scanPet(row)
	if err != nil {
		return pets.Pet{}, notFound(err)
	}
	return p, nil
}

func (r *PetsRepo) List(ctx context.Context) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petCols+`
		FROM pets
		WHERE deleted_date IS NULL
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet, expectedVersion int64) error {
	return casResult(r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			birth_date = $3,
			pet_type_id = $4,
			owner_id = $5,
			version = $6,
			last_modified_by = $7,
			last_modified_date = $8,
			deleted_by = $9,
			deleted_date = $10
		WHERE id = $1 AND version = $11 AND deleted_date IS NULL
	`,
		p.ID,
		p.Name,
		nullString(p.BirthDate),
		nullInt64(p.PetTypeID),
		nullInt64(p.OwnerID),
		p.Version,
		p.LastModifiedBy,
		p.LastModifiedAt,
		nullInt64(p.DeletedBy),
		nullTime(p.Envelope),
		expectedVersion,
	))
}

func (r *PetsRepo) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, r.db, "pets", id)
}

func scanPet(s scanner) (pets.Pet, error) {
	var (
		p         pets.Pet
		birthDate sql.NullString
		petTypeID sql.NullInt64
		ownerID   sql.NullInt64
		env       envelopeScan
	)
	dest := append([]any{&p.ID, &p.Name, &birthDate, &petTypeID, &ownerID}, env.dest(&p.Envelope)...)
	if err := s.Scan(dest...); err != nil {
		return pets.Pet{}, err
	}
	env.finish()

	p.BirthDate = stringPtr(birthDate)
	p.PetTypeID = int64Ptr(petTypeID)
	p.OwnerID = int64Ptr(ownerID)
	return p, nil
}
