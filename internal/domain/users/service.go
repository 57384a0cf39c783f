package users

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"pet-admin-api/internal/domain/audit"
	"pet-admin-api/internal/platform/credentials"
	"pet-admin-api/internal/platform/validation"
	"pet-admin-api/internal/ports/auth"
	"pet-admin-api/internal/ports/events"
	"pet-admin-api/internal/ports/storage"
)

const entityName = "user"

// SystemActor estampa lo que crea el proceso (bootstrap), no un usuario.
const SystemActor int64 = 0

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrInactiveUser     = errors.New("user is inactive")
	ErrNotFound         = storage.ErrNotFound
	ErrConflict         = storage.ErrConflict
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

func (s *Service) List(ctx context.Context) ([]ListView, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]ListView, 0, len(items))
	for _, u := range items {
		out = append(out, u.ListView())
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (DetailView, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return DetailView{}, err
	}
	return u.DetailView(), nil
}

func (s *Service) Create(ctx context.Context, in CreateInput, actor auth.Actor) (DetailView, error) {
	u, err := s.create(ctx, in, actor.UserID)
	if err != nil {
		return DetailView{}, err
	}
	s.emit(ctx, events.ActionCreated, u, actor.UserID)
	return u.DetailView(), nil
}

func (s *Service) create(ctx context.Context, in CreateInput, actor int64) (User, error) {
	in.Username = strings.TrimSpace(in.Username)

	var f validation.Fields
	f.Require("username", in.Username)
	f.Require("password", in.Password)
	if err := f.Err(); err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hash, err := credentials.HashPassword(in.Password)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	u := User{
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        in.Email,
		Active:       in.Active,
		Permissions:  slices.Clone(in.Permissions),
		Envelope:     audit.New(actor, s.now()),
	}
	id, err := s.repo.Create(ctx, u)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return u, nil
}

func (s *Service) Update(ctx context.Context, in UpdateInput, actor auth.Actor) (DetailView, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	var f validation.Fields
	f.RequireID("user_id", in.ID)
	f.Require("username", in.Username)
	if err := f.Err(); err != nil {
		return DetailView{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return DetailView{}, err
	}

	var hash string
	if in.Password != "" {
		if hash, err = credentials.HashPassword(in.Password); err != nil {
			return DetailView{}, fmt.Errorf("update user: %w", err)
		}
	}

	prev := u.Version
	u.apply(in, hash, actor.UserID, s.now())
	if err := s.repo.Update(ctx, u, prev); err != nil {
		return DetailView{}, fmt.Errorf("update user %d: %w", u.ID, err)
	}

	s.emit(ctx, events.ActionUpdated, u, actor.UserID)
	return u.DetailView(), nil
}

func (s *Service) SoftDelete(ctx context.Context, id int64, actor auth.Actor) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	u.MarkDeleted(actor.UserID, s.now())
	if err := s.repo.Update(ctx, u, u.Version); err != nil {
		return fmt.Errorf("soft delete user %d: %w", id, err)
	}

	s.emit(ctx, events.ActionSoftDeleted, u, actor.UserID)
	return nil
}

func (s *Service) HardDelete(ctx context.Context, id int64, actor auth.Actor) error {
	if err := s.repo.HardDelete(ctx, id); err != nil {
		return fmt.Errorf("hard delete user %d: %w", id, err)
	}
	s.emit(ctx, events.ActionHardDeleted, User{ID: id}, actor.UserID)
	return nil
}

// ActorByUsername implementa middleware.ActorLookup.
func (s *Service) ActorByUsername(ctx context.Context, username string) (auth.Actor, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return auth.Actor{}, err
	}
	return auth.Actor{UserID: u.ID, Username: u.Username}, nil
}

// Authenticate compara contra el hash bcrypt. Usuario inexistente y password
// incorrecta dan el mismo error para no revelar qué usernames existen.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrWrongCredentials
		}
		return User{}, fmt.Errorf("authenticate: %w", err)
	}
	if err := credentials.ComparePassword(u.PasswordHash, password); err != nil {
		return User{}, ErrWrongCredentials
	}
	if !u.Active {
		return User{}, ErrInactiveUser
	}
	return u, nil
}

// EnsureAdmin crea el admin inicial si no hay ningún usuario vivo.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string, permissions []string) (bool, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	u, err := s.create(ctx, CreateInput{
		Username:    username,
		Password:    password,
		FirstName:   "Admin",
		Active:      true,
		Permissions: permissions,
	}, SystemActor)
	if err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	s.emit(ctx, events.ActionCreated, u, SystemActor)
	return true, nil
}

func (s *Service) emit(ctx context.Context, action events.Action, u User, actor int64) {
	events.Emit(ctx, s.events, events.Event{
		Entity:  entityName,
		ID:      u.ID,
		Action:  action,
		Actor:   actor,
		Version: u.Version,
		At:      s.now().UTC(),
	})
}
