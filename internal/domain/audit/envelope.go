// Package audit define los campos de auditoría que comparten las entidades
// (versión, creador, último modificador y borrado lógico).
package audit

import "time"

// Envelope se embebe en cada entidad auditada.
// DeletedBy y DeletedAt van juntos: ambos nil (viva) o ambos seteados (borrada).
type Envelope struct {
	Version        int64      `json:"version"`
	CreatedBy      int64      `json:"created_by"`
	CreatedAt      time.Time  `json:"created_date"`
	LastModifiedBy int64      `json:"last_modified_by"`
	LastModifiedAt time.Time  `json:"last_modified_date"`
	DeletedBy      *int64     `json:"deleted_by,omitempty"`
	DeletedAt      *time.Time `json:"deleted_date,omitempty"`
}

func New(actor int64, now time.Time) Envelope {
	now = now.UTC()
	return Envelope{
		Version:        1,
		CreatedBy:      actor,
		CreatedAt:      now,
		LastModifiedBy: actor,
		LastModifiedAt: now,
	}
}

// Touch registra una modificación: +1 versión y nuevo modificador.
func (e *Envelope) Touch(actor int64, now time.Time) {
	e.Version++
	e.LastModifiedBy = actor
	e.LastModifiedAt = now.UTC()
}

// MarkDeleted no toca versión ni modificador.
func (e *Envelope) MarkDeleted(actor int64, now time.Time) {
	t := now.UTC()
	e.DeletedBy = &actor
	e.DeletedAt = &t
}

func (e Envelope) IsDeleted() bool {
	return e.DeletedBy != nil && e.DeletedAt != nil
}
