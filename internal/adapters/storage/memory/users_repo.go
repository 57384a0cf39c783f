package memory

import (
	"context"
	"slices"

	"pet-admin-api/internal/domain/audit"
	"pet-admin-api/internal/domain/users"
)

type userRepo struct {
	t *auditedTable[users.User]
}

func NewUserRepo() users.Repository {
	t := newAuditedTable(
		func(u users.User) int64 { return u.ID },
		func(u *users.User, id int64) { u.ID = id },
		func(u users.User) audit.Envelope { return u.Envelope },
	)
	t.clone = func(u users.User) users.User {
		u.Permissions = slices.Clone(u.Permissions)
		return u
	}
	t.duplicate = func(existing, u users.User) bool { return existing.Username == u.Username }
	return &userRepo{t: t}
}

func (r *userRepo) Create(_ context.Context, u users.User) (int64, error) {
	return r.t.insert(u)
}

func (r *userRepo) GetByID(_ context.Context, id int64) (users.User, error) {
	return r.t.get(id)
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (users.User, error) {
	return r.t.find(func(u users.User) bool { return u.Username == username })
}

func (r *userRepo) List(_ context.Context) ([]users.User, error) {
	return r.t.list(), nil
}

func (r *userRepo) Update(_ context.Context, u users.User, expectedVersion int64) error {
	return r.t.update(u, expectedVersion)
}

func (r *userRepo) HardDelete(_ context.Context, id int64) error {
	return r.t.remove(id)
}
