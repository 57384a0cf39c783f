package postgres

import (
	"context"
	"database/sql"
	"errors"

	"pet-admin-api/internal/domain/users"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// uniqueViolation es el SQLSTATE de un índice único (users_username_live_idx).
const uniqueViolation = "23505"

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userCols = `id, username, password, first_name, last_name, email, active, permissions, ` + envelopeCols

func (r *UsersRepo) Create(ctx context.Context, u users.User) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (
			username, password, first_name, last_name, email, active, permissions,
			version, created_by, created_date, last_modified_by, last_modified_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id
	`,
		u.Username,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		nullString(u.Email),
		u.Active,
		textArray(u.Permissions),
		u.Version,
		u.CreatedBy,
		u.CreatedAt,
		u.LastModifiedBy,
		u.LastModifiedAt,
	).Scan(&id)
	return id, duplicateUsername(err)
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE id = $1 AND deleted_date IS NULL
	`, id)

	u, err := scanUser(row, pgtype.NewMap())
	if err != nil {
		return users.User{}, notFound(err)
	}
	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE username = $1 AND deleted_date IS NULL
	`, username)

	u, err := scanUser(row, pgtype.NewMap())
	if err != nil {
		return users.User{}, notFound(err)
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userCols+`
		FROM users
		WHERE deleted_date IS NULL
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := pgtype.NewMap()
	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows, m)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UsersRepo) Update(ctx context.Context, u users.User, expectedVersion int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			username = $2,
			password = $3,
			first_name = $4,
			last_name = $5,
			email = $6,
			active = $7,
			permissions = $8,
			version = $9,
			last_modified_by = $10,
			last_modified_date = $11,
			deleted_by = $12,
			deleted_date = $13
		WHERE id = $1 AND version = $14 AND deleted_date IS NULL
	`,
		u.ID,
		u.Username,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		nullString(u.Email),
		u.Active,
		textArray(u.Permissions),
		u.Version,
		u.LastModifiedBy,
		u.LastModifiedAt,
		nullInt64(u.DeletedBy),
		nullTime(u.Envelope),
		expectedVersion,
	)
	return casResult(res, duplicateUsername(err))
}

func (r *UsersRepo) HardDelete(ctx context.Context, id int64) error {
	return hardDelete(ctx, r.db, "users", id)
}

// scanUser: permissions es TEXT[]; database/sql no sabe escanear arrays,
// se pasa por el SQLScanner de pgtype.
func scanUser(s scanner, m *pgtype.Map) (users.User, error) {
	var (
		u     users.User
		email sql.NullString
		perms []string
		env   envelopeScan
	)
	dest := append([]any{
		&u.ID, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName,
		&email, &u.Active, m.SQLScanner(&perms),
	}, env.dest(&u.Envelope)...)
	if err := s.Scan(dest...); err != nil {
		return users.User{}, err
	}
	env.finish()

	u.Email = stringPtr(email)
	u.Permissions = perms
	if u.Permissions == nil {
		u.Permissions = []string{}
	}
	return u, nil
}

// textArray evita mandar NULL a una columna NOT NULL.
func textArray(perms []string) []string {
	if perms == nil {
		return []string{}
	}
	return perms
}

// duplicateUsername traduce la violación del índice único a ErrConflict.
func duplicateUsername(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}
