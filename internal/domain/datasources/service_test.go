package datasources

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"pet-admin-api/internal/platform/credentials"
	"pet-admin-api/internal/ports/auth"
)

type testRepo struct {
	seq  int64
	byID map[int64]DataSource

	// beforeUpdate simula otro writer entre la lectura y la escritura.
	beforeUpdate func()
}

func (r *testRepo) Create(_ context.Context, d DataSource) (int64, error) {
	r.seq++
	d.ID = r.seq
	r.byID[d.ID] = d
	return d.ID, nil
}

func (r *testRepo) GetByID(_ context.Context, id int64) (DataSource, error) {
	d, ok := r.byID[id]
	if !ok || d.IsDeleted() {
		return DataSource{}, ErrNotFound
	}
	return d, nil
}

func (r *testRepo) List(_ context.Context) ([]DataSource, error) {
	out := make([]DataSource, 0)
	for _, d := range r.byID {
		if !d.IsDeleted() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *testRepo) Update(_ context.Context, d DataSource, expectedVersion int64) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	cur, ok := r.byID[d.ID]
	if !ok || cur.IsDeleted() || cur.Version != expectedVersion {
		return ErrConflict
	}
	r.byID[d.ID] = d
	return nil
}

func (r *testRepo) HardDelete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// recordingProber guarda el último target y devuelve err.
type recordingProber struct {
	last Target
	err  error
}

func (p *recordingProber) Probe(_ context.Context, t Target) error {
	p.last = t
	return p.err
}

var actor = auth.Actor{UserID: 1, Username: "admin"}

func newTestService(t *testing.T) (*Service, *testRepo, *recordingProber) {
	t.Helper()
	c, err := credentials.NewCipher([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	repo := &testRepo{byID: map[int64]DataSource{}}
	prober := &recordingProber{}
	return NewService(repo, c, prober, nil), repo, prober
}

func validCreate() CreateInput {
	return CreateInput{
		Code:       "ds1",
		Name:       "Warehouse",
		DBType:     "postgres",
		DBHost:     "db.internal",
		DBPort:     5432,
		DBName:     "warehouse",
		DBUsername: "reader",
		DBPassword: "secret123",
	}
}

func TestCreate_StoresPasswordEncrypted(t *testing.T) {
	svc, repo, prober := newTestService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, validCreate(), actor)
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	stored := repo.byID[v.ID]
	if stored.PasswordCipher == "" || stored.PasswordCipher == "secret123" {
		t.Fatalf("expected encrypted password, got %q", stored.PasswordCipher)
	}

	ok, msg, err := svc.TestConnection(ctx, v.ID)
	if err != nil || !ok {
		t.Fatalf("expected probe ok, got ok=%v msg=%q err=%v", ok, msg, err)
	}
	if prober.last.Password != "secret123" {
		t.Fatalf("prober got %q, expected decrypted password", prober.last.Password)
	}
	if prober.last.Host != "db.internal" || prober.last.Port != 5432 || prober.last.Type != "postgres" {
		t.Fatalf("unexpected target %+v", prober.last)
	}
}

func TestTestConnection_ProbeFailure(t *testing.T) {
	svc, _, prober := newTestService(t)
	ctx := context.Background()

	v, _ := svc.Create(ctx, validCreate(), actor)
	prober.err = errors.New("connection refused")

	ok, msg, err := svc.TestConnection(ctx, v.ID)
	if err != nil {
		t.Fatalf("probe failure must not be a service error: %v", err)
	}
	if ok || msg != "connection failed: connection refused" {
		t.Fatalf("unexpected result ok=%v msg=%q", ok, msg)
	}

	if _, _, err := svc.TestConnection(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTestConnection_TamperedCredential(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	v, _ := svc.Create(ctx, validCreate(), actor)
	d := repo.byID[v.ID]
	raw, _ := base64.StdEncoding.DecodeString(d.PasswordCipher)
	raw[0] ^= 0xff
	d.PasswordCipher = base64.StdEncoding.EncodeToString(raw)
	repo.byID[v.ID] = d

	ok, _, err := svc.TestConnection(ctx, v.ID)
	if ok || !errors.Is(err, credentials.ErrInvalidCiphertext) {
		t.Fatalf("expected decrypt failure, got ok=%v err=%v", ok, err)
	}
}

func TestUpdate_EmptyPasswordKeepsCipher(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	v, _ := svc.Create(ctx, validCreate(), actor)
	before := repo.byID[v.ID].PasswordCipher

	in := UpdateInput{
		ID: v.ID, Code: "ds1", Name: "Warehouse 2", DBType: "postgres",
		DBHost: "db.internal", DBPort: 5433, DBName: "warehouse", DBUsername: "reader",
	}
	updated, err := svc.Update(ctx, in, actor)
	if err != nil {
		t.Fatalf("Update err: %v", err)
	}
	if updated.Version != 2 || updated.DBPort != 5433 {
		t.Fatalf("unexpected update %+v", updated)
	}
	if repo.byID[v.ID].PasswordCipher != before {
		t.Fatalf("password cipher changed without new password")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := validCreate()
	in.Name = ""
	in.DBType = "oracle"
	_, err := svc.Create(context.Background(), in, actor)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	lite := CreateInput{Code: "local", Name: "Local", DBType: "sqlite", DBName: "/tmp/x.db", DBPassword: "-"}
	if _, err := svc.Create(context.Background(), lite, actor); err != nil {
		t.Fatalf("sqlite must not require host/port/user: %v", err)
	}
}

func TestUpdate_StaleVersionConflicts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	v, _ := svc.Create(ctx, validCreate(), actor)

	repo.beforeUpdate = func() {
		winner := repo.byID[v.ID]
		winner.Name = "winner"
		winner.Touch(2, time.Now())
		repo.byID[v.ID] = winner
		repo.beforeUpdate = nil
	}

	in := UpdateInput{
		ID: v.ID, Code: "ds1", Name: "late", DBType: "postgres",
		DBHost: "db.internal", DBPort: 5432, DBName: "warehouse", DBUsername: "reader",
	}
	if _, err := svc.Update(ctx, in, actor); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if got := repo.byID[v.ID]; got.Name != "winner" || got.Version != 2 {
		t.Fatalf("expected the first write to survive, got %+v", got)
	}
}

func TestSoftDelete_HidesAndKeepsVersion(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	v, _ := svc.Create(ctx, validCreate(), actor)
	if err := svc.SoftDelete(ctx, v.ID, actor); err != nil {
		t.Fatalf("SoftDelete err: %v", err)
	}

	stored := repo.byID[v.ID]
	if stored.DeletedBy == nil || stored.DeletedAt == nil || *stored.DeletedBy != actor.UserID {
		t.Fatalf("expected both deletion fields, got %+v", stored.Envelope)
	}
	if stored.Version != 1 {
		t.Fatalf("soft delete must not bump version, got %d", stored.Version)
	}
	if _, err := svc.GetByID(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if items, _ := svc.List(ctx); len(items) != 0 {
		t.Fatalf("expected empty list, got %+v", items)
	}
	if _, _, err := svc.TestConnection(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("soft-deleted source must not be probed, got %v", err)
	}
}

func TestHardDelete_RemovesEvenSoftDeleted(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	v, _ := svc.Create(ctx, validCreate(), actor)
	_ = svc.SoftDelete(ctx, v.ID, actor)

	if err := svc.HardDelete(ctx, v.ID, actor); err != nil {
		t.Fatalf("HardDelete err: %v", err)
	}
	if _, ok := repo.byID[v.ID]; ok {
		t.Fatalf("expected row removed")
	}
	if err := svc.HardDelete(ctx, v.ID, actor); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second hard delete, got %v", err)
	}
}
