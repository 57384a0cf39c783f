package pets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-admin-api/internal/platform/validation"
	"pet-admin-api/internal/ports/auth"
	"pet-admin-api/internal/ports/events"
	"pet-admin-api/internal/ports/storage"
)

const entityName = "pet"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = storage.ErrNotFound
	ErrConflict     = storage.ErrConflict
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
	return &Service{
		repo:   repo,
		events: pub,
		now:    time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]View, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	out := make([]View, 0, len(items))
	for _, p := range items {
		out = append(out, p.View())
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (View, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return p.View(), nil
}

func (s *Service) Create(ctx context.Context, in CreateInput, actor auth.Actor) (View, error) {
	in.Name = strings.TrimSpace(in.Name)

	var f validation.Fields
	f.Require("name", in.Name)
	if err := f.Err(); err != nil {
		return View{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	p := newPet(in, actor.UserID, s.now())
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return View{}, fmt.Errorf("create pet: %w", err)
	}
	p.ID = id

	s.emit(ctx, events.ActionCreated, p, actor)
	return p.View(), nil
}

func (s *Service) Update(ctx context.Context, in UpdateInput, actor auth.Actor) (View, error) {
	in.Name = strings.TrimSpace(in.Name)

	var f validation.Fields
	f.RequireID("pet_id", in.ID)
	f.Require("name", in.Name)
	if err := f.Err(); err != nil {
		return View{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	p, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return View{}, err
	}

	prev := p.Version
	p.apply(in, actor.UserID, s.now())
	if err := s.repo.Update(ctx, p, prev); err != nil {
		return View{}, fmt.Errorf("update pet %d: %w", p.ID, err)
	}

	s.emit(ctx, events.ActionUpdated, p, actor)
	return p.View(), nil
}

func (s *Service) SoftDelete(ctx context.Context, id int64, actor auth.Actor) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	p.MarkDeleted(actor.UserID, s.now())
	if err := s.repo.Update(ctx, p, p.Version); err != nil {
		return fmt.Errorf("soft delete pet %d: %w", id, err)
	}

	s.emit(ctx, events.ActionSoftDeleted, p, actor)
	return nil
}

// HardDelete borra físicamente, esté o no borrada lógicamente.
func (s *Service) HardDelete(ctx context.Context, id int64, actor auth.Actor) error {
	if err := s.repo.HardDelete(ctx, id); err != nil {
		return fmt.Errorf("hard delete pet %d: %w", id, err)
	}
	events.Emit(ctx, s.events, events.Event{
		Entity: entityName, ID: id, Action: events.ActionHardDeleted, Actor: actor.UserID, At: s.now().UTC(),
	})
	return nil
}

func (s *Service) emit(ctx context.Context, action events.Action, p Pet, actor auth.Actor) {
	events.Emit(ctx, s.events, events.Event{
		Entity:  entityName,
		ID:      p.ID,
		Action:  action,
		Actor:   actor.UserID,
		Version: p.Version,
		At:      s.now().UTC(),
	})
}
