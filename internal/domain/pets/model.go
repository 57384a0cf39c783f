package pets

import (
	"time"

	"pet-admin-api/internal/domain/audit"
)

// Pet representa una mascota registrada. PetTypeID y OwnerID son referencias
// simples por id; la integridad queda a cargo del esquema.
type Pet struct {
	ID        int64
	Name      string
	BirthDate *string // formato libre, tal cual lo manda el cliente
	PetTypeID *int64
	OwnerID   *int64

	audit.Envelope
}

type CreateInput struct {
	Name      string  `json:"name"`
	BirthDate *string `json:"birth_date"`
	PetTypeID *int64  `json:"pet_type_id"`
	OwnerID   *int64  `json:"owner_id"`
}

type UpdateInput struct {
	ID        int64   `json:"pet_id"`
	Name      string  `json:"name"`
	BirthDate *string `json:"birth_date"`
	PetTypeID *int64  `json:"pet_type_id"`
	OwnerID   *int64  `json:"owner_id"`
}

// View es la proyección que ve el cliente (listado y detalle).
type View struct {
	ID        int64   `json:"pet_id"`
	Name      string  `json:"name"`
	BirthDate *string `json:"birth_date"`
	PetTypeID *int64  `json:"pet_type_id"`
	OwnerID   *int64  `json:"owner_id"`
	audit.Envelope
}

func newPet(in CreateInput, actor int64, now time.Time) Pet {
	return Pet{
		Name:      in.Name,
		BirthDate: in.BirthDate,
		PetTypeID: in.PetTypeID,
		OwnerID:   in.OwnerID,
		Envelope:  audit.New(actor, now),
	}
}

func (p *Pet) apply(in UpdateInput, actor int64, now time.Time) {
	p.Name = in.Name
	p.BirthDate = in.BirthDate
	p.PetTypeID = in.PetTypeID
	p.OwnerID = in.OwnerID
	p.Touch(actor, now)
}

func (p Pet) View() View {
	return View{
		ID:        p.ID,
		Name:      p.Name,
		BirthDate: p.BirthDate,
		PetTypeID: p.PetTypeID,
		OwnerID:   p.OwnerID,
		Envelope:  p.Envelope,
	}
}
