package transtasks

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

const entityName = "transtask"

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
	return &Service{repo: repo, events: pub, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]View, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trans tasks: %w", err)
	}
	out := make([]View, 0, len(items))
	for _, t := range items {
		out = append(out, t.View())
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (View, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return t.View(), nil
}

func (s *Service) Create(ctx context.Context, in CreateInput, actor auth.Actor) (View, error) {
	in.TableName = strings.TrimSpace(in.TableName)
	in.TableComment = strings.TrimSpace(in.TableComment)

	var f validation.Fields
	f.RequireID("data_source_id", in.DataSourceID)
	f.Require("table_name", in.TableName)
	f.Require("table_comment", in.TableComment)
	if err := f.Err(); err != nil {
		return View{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	t := newTask(in, actor.UserID, s.now())
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return View{}, fmt.Errorf("create trans task: %w", err)
	}
	t.ID = id

	s.emit(ctx, events.ActionCreated, t, actor)
	return t.View(), nil
}

func (s *Service) Update(ctx context.Context, in UpdateInput, actor auth.Actor) (View, error) {
	in.TableName = strings.TrimSpace(in.TableName)
	in.TableComment = strings.TrimSpace(in.TableComment)

	var f validation.Fields
	f.RequireID("trans_task_id", in.ID)
	f.RequireID("data_source_id", in.DataSourceID)
	f.Require("table_name", in.TableName)
	f.Require("table_comment", in.TableComment)
	if err := f.Err(); err != nil {
		return View{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	t, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return View{}, err
	}

	prev := t.Version
	t.apply(in, actor.UserID, s.now())
	if err := s.repo.Update(ctx, t, prev); err != nil {
		return View{}, fmt.Errorf("update trans task %d: %w", t.ID, err)
	}

	s.emit(ctx, events.ActionUpdated, t, actor)
	return t.View(), nil
}

func (s *Service) SoftDelete(ctx context.Context, id int64, actor auth.Actor) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	t.MarkDeleted(actor.UserID, s.now())
	if err := s.repo.Update(ctx, t, t.Version); err != nil {
		return fmt.Errorf("soft delete trans task %d: %w", id, err)
	}

	s.emit(ctx, events.ActionSoftDeleted, t, actor)
	return nil
}

func (s *Service) HardDelete(ctx context.Context, id int64, actor auth.Actor) error {
	if err := s.repo.HardDelete(ctx, id); err != nil {
		return fmt.Errorf("hard delete trans task %d: %w", id, err)
	}
	s.emit(ctx, events.ActionHardDeleted, TransTask{ID: id}, actor)
	return nil
}

func (s *Service) emit(ctx context.Context, action events.Action, t TransTask, actor auth.Actor) {
	events.Emit(ctx, s.events, events.Event{
		Entity:  entityName,
		ID:      t.ID,
		Action:  action,
		Actor:   actor.UserID,
		Version: t.Version,
		At:      s.now().UTC(),
	})
}
