package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pet-admin-api/internal/domain/audit"
)

// envelopeCols van siempre al final de cada SELECT.
const envelopeCols = `version, created_by, created_date, last_modified_by, last_modified_date, deleted_by, deleted_date`

type scanner interface {
	Scan(dest ...any) error
}

// envelopeScan junta los destinos de scan de audit.Envelope; deleted_* son nullables.
type envelopeScan struct {
	env       *audit.Envelope
	deletedBy sql.NullInt64
	deletedAt sql.NullTime
}

func (s *envelopeScan) dest(e *audit.Envelope) []any {
	s.env = e
	return []any{&e.Version, &e.CreatedBy, &e.CreatedAt, &e.LastModifiedBy, &e.LastModifiedAt, &s.deletedBy, &s.deletedAt}
}

func (s *envelopeScan) finish() {
	s.env.CreatedAt = s.env.CreatedAt.UTC()
	s.env.LastModifiedAt = s.env.LastModifiedAt.UTC()
	s.env.DeletedBy, s.env.DeletedAt = nil, nil
	if s.deletedBy.Valid && s.deletedAt.Valid {
		by, at := s.deletedBy.Int64, s.deletedAt.Time.UTC()
		s.env.DeletedBy, s.env.DeletedAt = &by, &at
	}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullTime(e audit.Envelope) sql.NullTime {
	if e.DeletedAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *e.DeletedAt, Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// casResult traduce un UPDATE condicional: 0 filas = la versión cambió o la fila ya no está viva.
func casResult(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func hardDelete(ctx context.Context, db *sql.DB, table string, id int64) error {
	res, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
