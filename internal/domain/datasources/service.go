package datasources

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-admin-api/internal/domain/audit"
	"pet-admin-api/internal/platform/validation"
	"pet-admin-api/internal/ports/auth"
	"pet-admin-api/internal/ports/events"
	"pet-admin-api/internal/ports/storage"
)

const entityName = "datasource"

// SupportedTypes son los db_type que sabe probar el prober.
var SupportedTypes = []string{"postgres", "postgresql", "mysql", "sqlite"}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = storage.ErrNotFound
	ErrConflict     = storage.ErrConflict
)

type Service struct {
	repo   Repository
	cipher Cipher
	prober Prober
	events events.Publisher
	now    func() time.Time
}

func NewService(repo Repository, cipher Cipher, prober Prober, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop()
	}
	return &Service{
		repo:   repo,
		cipher: cipher,
		prober: prober,
		events: pub,
		now:    time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]ListView, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list data sources: %w", err)
	}
	out := make([]ListView, 0, len(items))
	for _, d := range items {
		out = append(out, d.ListView())
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (DetailView, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return DetailView{}, err
	}
	return d.DetailView(), nil
}

func (s *Service) Create(ctx context.Context, in CreateInput, actor auth.Actor) (DetailView, error) {
	in = trimCreate(in)

	f := validateConnection(in.Code, in.Name, in.DBType, in.DBHost, in.DBName, in.DBUsername, in.DBPort)
	f.Require("db_password", in.DBPassword)
	if err := f.Err(); err != nil {
		return DetailView{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	enc, err := s.cipher.Encrypt(in.DBPassword)
	if err != nil {
		return DetailView{}, fmt.Errorf("encrypt data source password: %w", err)
	}

	d := DataSource{
		Code:           in.Code,
		Name:           in.Name,
		Remark:         in.Remark,
		DBType:         strings.ToLower(in.DBType),
		DBHost:         in.DBHost,
		DBPort:         in.DBPort,
		DBName:         in.DBName,
		DBUsername:     in.DBUsername,
		PasswordCipher: enc,
		Envelope:       audit.New(actor.UserID, s.now()),
	}
	id, err := s.repo.Create(ctx, d)
	if err != nil {
		return DetailView{}, fmt.Errorf("create data source: %w", err)
	}
	d.ID = id

	s.emit(ctx, events.ActionCreated, d, actor)
	return d.DetailView(), nil
}

func (s *Service) Update(ctx context.Context, in UpdateInput, actor auth.Actor) (DetailView, error) {
	in = trimUpdate(in)

	f := validateConnection(in.Code, in.Name, in.DBType, in.DBHost, in.DBName, in.DBUsername, in.DBPort)
	f.RequireID("data_source_id", in.ID)
	if err := f.Err(); err != nil {
		return DetailView{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	d, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return DetailView{}, err
	}

	var enc string
	if in.DBPassword != "" {
		if enc, err = s.cipher.Encrypt(in.DBPassword); err != nil {
			return DetailView{}, fmt.Errorf("encrypt data source password: %w", err)
		}
	}

	prev := d.Version
	in.DBType = strings.ToLower(in.DBType)
	d.apply(in, enc, actor.UserID, s.now())
	if err := s.repo.Update(ctx, d, prev); err != nil {
		return DetailView{}, fmt.Errorf("update data source %d: %w", d.ID, err)
	}

	s.emit(ctx, events.ActionUpdated, d, actor)
	return d.DetailView(), nil
}

func (s *Service) SoftDelete(ctx context.Context, id int64, actor auth.Actor) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	d.MarkDeleted(actor.UserID, s.now())
	if err := s.repo.Update(ctx, d, d.Version); err != nil {
		return fmt.Errorf("soft delete data source %d: %w", id, err)
	}

	s.emit(ctx, events.ActionSoftDeleted, d, actor)
	return nil
}

func (s *Service) HardDelete(ctx context.Context, id int64, actor auth.Actor) error {
	if err := s.repo.HardDelete(ctx, id); err != nil {
		return fmt.Errorf("hard delete data source %d: %w", id, err)
	}
	s.emit(ctx, events.ActionHardDeleted, DataSource{ID: id}, actor)
	return nil
}

// TestConnection descifra la credencial y abre una conexión descartable.
// Devuelve ok y un mensaje legible; ErrNotFound si la fuente no existe.
func (s *Service) TestConnection(ctx context.Context, id int64) (bool, string, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, "", err
	}

	password, err := s.cipher.Decrypt(d.PasswordCipher)
	if err != nil {
		return false, "stored credential could not be decrypted", fmt.Errorf("decrypt data source %d: %w", id, err)
	}

	err = s.prober.Probe(ctx, Target{
		Type:     d.DBType,
		Host:     d.DBHost,
		Port:     d.DBPort,
		Name:     d.DBName,
		Username: d.DBUsername,
		Password: password,
	})
	if err != nil {
		return false, "connection failed: " + err.Error(), nil
	}
	return true, "connection succeeded", nil
}

func validateConnection(code, name, dbType, host, dbName, username string, port int) *validation.Fields {
	f := &validation.Fields{}
	f.Require("code", code)
	f.Require("name", name)
	f.Require("db_type", dbType)
	if dbType != "" {
		f.Check(isSupported(dbType), "db_type must be one of "+strings.Join(SupportedTypes, ", "))
	}
	f.Require("db_name", dbName)

	// sqlite es un archivo local: host/usuario/puerto no aplican
	if !strings.EqualFold(dbType, "sqlite") {
		f.Require("db_host", host)
		f.Require("db_username", username)
		f.Check(port > 0 && port <= 65535, "db_port must be between 1 and 65535")
	}
	return f
}

func isSupported(dbType string) bool {
	for _, t := range SupportedTypes {
		if strings.EqualFold(t, dbType) {
			return true
		}
	}
	return false
}

func trimCreate(in CreateInput) CreateInput {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.DBType = strings.TrimSpace(in.DBType)
	in.DBHost = strings.TrimSpace(in.DBHost)
	in.DBName = strings.TrimSpace(in.DBName)
	in.DBUsername = strings.TrimSpace(in.DBUsername)
	return in
}

func trimUpdate(in UpdateInput) UpdateInput {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.DBType = strings.TrimSpace(in.DBType)
	in.DBHost = strings.TrimSpace(in.DBHost)
	in.DBName = strings.TrimSpace(in.DBName)
	in.DBUsername = strings.TrimSpace(in.DBUsername)
	return in
}

func (s *Service) emit(ctx context.Context, action events.Action, d DataSource, actor auth.Actor) {
	events.Emit(ctx, s.events, events.Event{
		Entity:  entityName,
		ID:      d.ID,
		Action:  action,
		Actor:   actor.UserID,
		Version: d.Version,
		At:      s.now().UTC(),
	})
}
