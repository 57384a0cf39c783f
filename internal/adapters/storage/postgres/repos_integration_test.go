//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"pet-admin-api/internal/domain/audit"
	"pet-admin-api/internal/domain/datasources"
	"pet-admin-api/internal/domain/pets"
	"pet-admin-api/internal/domain/pettypes"
	"pet-admin-api/internal/domain/transtasks"
	"pet-admin-api/internal/domain/users"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// go test -tags integration ./internal/adapters/storage/postgres/ (requiere Docker)
type RepoSuite struct {
	suite.Suite

	container testcontainers.Container
	db        *sql.DB
	now       time.Time
}

func TestRepoSuite(t *testing.T) {
	suite.Run(t, new(RepoSuite))
}

func (s *RepoSuite) SetupSuite() {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	s.Require().NoError(err)
	s.container = c

	host, err := c.Host(ctx)
	s.Require().NoError(err)
	port, err := c.MappedPort(ctx, "5432")
	s.Require().NoError(err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())
	s.db, err = Open(ctx, dsn)
	s.Require().NoError(err)
	s.Require().NoError(RunMigrations(ctx, s.db))

	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (s *RepoSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RepoSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE users, pets, pet_types, data_sources, trans_tasks RESTART IDENTITY`)
	s.Require().NoError(err)
}

func (s *RepoSuite) TestMigrationsAreIdempotent() {
	s.Require().NoError(RunMigrations(context.Background(), s.db))
}

func (s *RepoSuite) TestPets_RoundTripAndCAS() {
	ctx := context.Background()
	repo := NewPetsRepo(s.db)

	bd := "2020-01-01"
	typeID := int64(3)
	id, err := repo.Create(ctx, pets.Pet{Name: "Rex", BirthDate: &bd, PetTypeID: &typeID, Envelope: audit.New(1, s.now)})
	s.Require().NoError(err)

	p, err := repo.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Equal("Rex", p.Name)
	s.Equal(bd, *p.BirthDate)
	s.Equal(typeID, *p.PetTypeID)
	s.Nil(p.OwnerID)
	s.Equal(int64(1), p.Version)
	s.True(p.CreatedAt.Equal(s.now))

	next := p
	next.Name = "Rex II"
	next.Touch(2, s.now.Add(time.Minute))
	s.Require().NoError(repo.Update(ctx, next, 1))

	stale := p
	stale.Name = "lost"
	stale.Touch(3, s.now.Add(time.Minute))
	s.Require().ErrorIs(repo.Update(ctx, stale, 1), ErrConflict)

	got, err := repo.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Equal("Rex II", got.Name)
	s.Equal(int64(2), got.Version)
	s.Equal(int64(2), got.LastModifiedBy)
}

func (s *RepoSuite) TestPets_SoftDeleteHidesRow() {
	ctx := context.Background()
	repo := NewPetsRepo(s.db)

	id, err := repo.Create(ctx, pets.Pet{Name: "Rex", Envelope: audit.New(1, s.now)})
	s.Require().NoError(err)
	_, err = repo.Create(ctx, pets.Pet{Name: "Luna", Envelope: audit.New(1, s.now)})
	s.Require().NoError(err)

	p, err := repo.GetByID(ctx, id)
	s.Require().NoError(err)
	p.MarkDeleted(7, s.now)
	s.Require().NoError(repo.Update(ctx, p, p.Version))

	_, err = repo.GetByID(ctx, id)
	s.Require().ErrorIs(err, ErrNotFound)

	list, err := repo.List(ctx)
	s.Require().NoError(err)
	s.Len(list, 1)

	var deletedBy int64
	s.Require().NoError(s.db.QueryRow(`SELECT deleted_by FROM pets WHERE id = $1`, id).Scan(&deletedBy))
	s.Equal(int64(7), deletedBy)

	s.Require().NoError(repo.HardDelete(ctx, id))
	s.Require().ErrorIs(repo.HardDelete(ctx, id), ErrNotFound)
}

func (s *RepoSuite) TestUsers_PermissionsArray() {
	ctx := context.Background()
	repo := NewUsersRepo(s.db)

	email := "a@example.com"
	id, err := repo.Create(ctx, users.User{
		Username: "alice", PasswordHash: "hash", Email: &email, Active: true,
		Permissions: []string{"/pet/*", "/user"}, Envelope: audit.New(0, s.now),
	})
	s.Require().NoError(err)

	u, err := repo.GetByUsername(ctx, "alice")
	s.Require().NoError(err)
	s.Equal(id, u.ID)
	s.Equal([]string{"/pet/*", "/user"}, u.Permissions)
	s.Equal(email, *u.Email)

	id2, err := repo.Create(ctx, users.User{Username: "bob", PasswordHash: "hash", Envelope: audit.New(0, s.now)})
	s.Require().NoError(err)
	bob, err := repo.GetByID(ctx, id2)
	s.Require().NoError(err)
	s.Empty(bob.Permissions)
	s.Nil(bob.Email)

	_, err = repo.Create(ctx, users.User{Username: "alice", PasswordHash: "x", Envelope: audit.New(0, s.now)})
	s.Require().ErrorIs(err, ErrConflict)
}

func (s *RepoSuite) TestPetTypes() {
	ctx := context.Background()
	repo := NewPetTypesRepo(s.db)

	id, err := repo.Create(ctx, pettypes.PetType{Color: "black"})
	s.Require().NoError(err)
	s.Require().NoError(repo.Update(ctx, pettypes.PetType{ID: id, Color: "white"}))

	got, err := repo.GetByID(ctx, id)
	s.Require().NoError(err)
	s.Equal("white", got.Color)

	s.Require().NoError(repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *RepoSuite) TestDataSourcesAndTransTasks() {
	ctx := context.Background()
	dsRepo := NewDataSourcesRepo(s.db)
	ttRepo := NewTransTasksRepo(s.db)

	dsID, err := dsRepo.Create(ctx, datasources.DataSource{
		Code: "erp", Name: "ERP", DBType: "postgres", DBHost: "db", DBPort: 5432,
		DBName: "erp", DBUsername: "ro", PasswordCipher: "ciphertext", Envelope: audit.New(1, s.now),
	})
	s.Require().NoError(err)

	d, err := dsRepo.GetByID(ctx, dsID)
	s.Require().NoError(err)
	s.Equal("ciphertext", d.PasswordCipher)
	s.Equal(5432, d.DBPort)

	ttID, err := ttRepo.Create(ctx, transtasks.TransTask{
		DataSourceID: dsID, TableName: "orders", TableComment: "pedidos",
		LastTransTime: s.now, Envelope: audit.New(1, s.now),
	})
	s.Require().NoError(err)

	tt, err := ttRepo.GetByID(ctx, ttID)
	s.Require().NoError(err)
	s.Equal(int64(0), tt.RowCount)
	s.True(tt.LastTransTime.Equal(s.now))
}
