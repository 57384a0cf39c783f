package pettypes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-admin-api/internal/platform/validation"
	"pet-admin-api/internal/ports/events"
	"pet-admin-api/internal/ports/storage"
)

const entityName = "pet_type"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = storage.ErrNotFound
)

type Service struct {
	repo   Repository
	events events.Publisher
	now    func() time.Time
}

func NewService(repo Repository, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop()
	}
	return &Service{repo: repo, events: pub, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]PetType, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pet types: %w", err)
	}
	return items, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (PetType, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput, actor int64) (PetType, error) {
	pt := PetType{Color: strings.TrimSpace(in.Color)}

	var f validation.Fields
	f.Require("color", pt.Color)
	if err := f.Err(); err != nil {
		return PetType{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	id, err := s.repo.Create(ctx, pt)
	if err != nil {
		return PetType{}, fmt.Errorf("create pet type: %w", err)
	}
	pt.ID = id

	s.emit(ctx, events.ActionCreated, pt.ID, actor)
	return pt, nil
}

func (s *Service) Update(ctx context.Context, in UpdateInput, actor int64) (PetType, error) {
	pt := PetType{ID: in.ID, Color: strings.TrimSpace(in.Color)}

	var f validation.Fields
	f.RequireID("pet_type_id", pt.ID)
	f.Require("color", pt.Color)
	if err := f.Err(); err != nil {
		return PetType{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.repo.Update(ctx, pt); err != nil {
		return PetType{}, fmt.Errorf("update pet type %d: %w", pt.ID, err)
	}

	s.emit(ctx, events.ActionUpdated, pt.ID, actor)
	return pt, nil
}

// Delete es físico: los tipos de mascota no tienen borrado lógico.
func (s *Service) Delete(ctx context.Context, id int64, actor int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete pet type %d: %w", id, err)
	}
	s.emit(ctx, events.ActionHardDeleted, id, actor)
	return nil
}

func (s *Service) emit(ctx context.Context, action events.Action, id, actor int64) {
	events.Emit(ctx, s.events, events.Event{
		Entity: entityName,
		ID:     id,
		Action: action,
		Actor:  actor,
		At:     s.now().UTC(),
	})
}
