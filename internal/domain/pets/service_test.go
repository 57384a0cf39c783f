package pets

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-admin-api/internal/platform/validation"
	"pet-admin-api/internal/ports/auth"
	"pet-admin-api/internal/ports/events"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	seq  int64
	byID map[int64]Pet

	// beforeUpdate simula otro writer entre la lectura y la escritura.
	beforeUpdate func()
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Pet{}}
}

func (r *testRepo) Create(_ context.Context, p Pet) (int64, error) {
	r.seq++
	p.ID = r.seq
	r.byID[p.ID] = p
	return p.ID, nil
}

func (r *testRepo) GetByID(_ context.Context, id int64) (Pet, error) {
	p, ok := r.byID[id]
	if !ok || p.IsDeleted() {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *testRepo) List(_ context.Context) ([]Pet, error) {
	out := make([]Pet, 0)
	for i := int64(1); i <= r.seq; i++ {
		if p, ok := r.byID[i]; ok && !p.IsDeleted() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) Update(_ context.Context, p Pet, expectedVersion int64) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	cur, ok := r.byID[p.ID]
	if !ok || cur.IsDeleted() || cur.Version != expectedVersion {
		return ErrConflict
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) HardDelete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type recordingPublisher struct {
	got []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.got = append(p.got, e)
	return nil
}

// -------------------------
// Helpers
// -------------------------

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService() (*Service, *testRepo, *recordingPublisher, *fakeClock) {
	repo := newTestRepo()
	pub := &recordingPublisher{}
	clock := &fakeClock{t: time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)}

	svc := NewService(repo, pub)
	svc.now = clock.Now
	return svc, repo, pub, clock
}

var (
	alice = auth.Actor{UserID: 1, Username: "alice"}
	bob   = auth.Actor{UserID: 2, Username: "bob"}
)

func ptr[T any](v T) *T { return &v }

// -------------------------
// Tests
// -------------------------

func TestCreate_StartsAtVersionOne(t *testing.T) {
	svc, _, pub, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: " Milo ", PetTypeID: ptr(int64(2))}, alice)
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID err: %v", err)
	}
	if got.Version != 1 || got.CreatedBy != alice.UserID || got.LastModifiedBy != alice.UserID {
		t.Fatalf("unexpected envelope %+v", got.Envelope)
	}
	if got.DeletedBy != nil || got.DeletedAt != nil {
		t.Fatalf("expected live pet")
	}
	if got.Name != "Milo" {
		t.Fatalf("expected trimmed name, got %q", got.Name)
	}
	if len(pub.got) != 1 || pub.got[0].Action != events.ActionCreated || pub.got[0].ID != created.ID {
		t.Fatalf("expected created event, got %+v", pub.got)
	}
}

func TestCreate_RequiresName(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{Name: "  "}, alice)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	var verr *validation.Error
	if !errors.As(err, &verr) || verr.Error() != "name cannot be empty" {
		t.Fatalf("expected validation message, got %v", err)
	}
}

func TestUpdate_BumpsVersionKeepsCreator(t *testing.T) {
	svc, _, _, clock := newTestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, CreateInput{Name: "Milo"}, alice)
	createdAt := created.CreatedAt

	clock.Advance(time.Hour)
	updated, err := svc.Update(ctx, UpdateInput{ID: created.ID, Name: "Milo II", OwnerID: ptr(int64(2))}, bob)
	if err != nil {
		t.Fatalf("Update err: %v", err)
	}

	if updated.Version != 2 {
		t.Fatalf("expected version 2, got %d", updated.Version)
	}
	if updated.LastModifiedBy != bob.UserID || !updated.LastModifiedAt.Equal(clock.Now()) {
		t.Fatalf("modifier not stamped: %+v", updated.Envelope)
	}
	if updated.CreatedBy != alice.UserID || !updated.CreatedAt.Equal(createdAt) {
		t.Fatalf("creator changed: %+v", updated.Envelope)
	}
	if updated.Name != "Milo II" || updated.OwnerID == nil || *updated.OwnerID != 2 {
		t.Fatalf("fields not applied: %+v", updated)
	}
}

func TestUpdate_StaleVersionConflicts(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, CreateInput{Name: "Milo"}, alice)

	repo.beforeUpdate = func() {
		winner := repo.byID[created.ID]
		winner.Name = "winner"
		winner.Touch(bob.UserID, time.Now())
		repo.byID[created.ID] = winner
		repo.beforeUpdate = nil
	}

	_, err := svc.Update(ctx, UpdateInput{ID: created.ID, Name: "late"}, alice)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, _ := svc.GetByID(ctx, created.ID)
	if got.Name != "winner" || got.Version != 2 {
		t.Fatalf("expected the first write to survive, got %+v", got)
	}
}

func TestSoftDelete_HidesAndKeepsVersion(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, CreateInput{Name: "Milo"}, alice)
	b, _ := svc.Create(ctx, CreateInput{Name: "Luna"}, alice)

	if err := svc.SoftDelete(ctx, a.ID, bob); err != nil {
		t.Fatalf("SoftDelete err: %v", err)
	}

	stored := repo.byID[a.ID]
	if stored.DeletedBy == nil || stored.DeletedAt == nil || *stored.DeletedBy != bob.UserID {
		t.Fatalf("expected both deletion fields, got %+v", stored.Envelope)
	}
	if stored.Version != 1 {
		t.Fatalf("soft delete must not bump version, got %d", stored.Version)
	}

	if _, err := svc.GetByID(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after soft delete, got %v", err)
	}
	items, _ := svc.List(ctx)
	if len(items) != 1 || items[0].ID != b.ID {
		t.Fatalf("expected only %d listed, got %+v", b.ID, items)
	}

	if err := svc.SoftDelete(ctx, a.ID, bob); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected second soft delete to fail, got %v", err)
	}
}

func TestHardDelete_RemovesEvenSoftDeleted(t *testing.T) {
	svc, repo, pub, _ := newTestService()
	ctx := context.Background()

	p, _ := svc.Create(ctx, CreateInput{Name: "Milo"}, alice)
	_ = svc.SoftDelete(ctx, p.ID, alice)

	if err := svc.HardDelete(ctx, p.ID, alice); err != nil {
		t.Fatalf("HardDelete err: %v", err)
	}
	if _, ok := repo.byID[p.ID]; ok {
		t.Fatalf("expected row removed")
	}
	if err := svc.HardDelete(ctx, p.ID, alice); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second hard delete, got %v", err)
	}

	last := pub.got[len(pub.got)-1]
	if last.Action != events.ActionHardDeleted || last.ID != p.ID {
		t.Fatalf("expected hard delete event, got %+v", last)
	}
}
