package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	jwtauth "pet-admin-api/internal/adapters/auth/jwt"
	"pet-admin-api/internal/adapters/probe/sqlprobe"
	mem "pet-admin-api/internal/adapters/storage/memory"
	pg "pet-admin-api/internal/adapters/storage/postgres"
	memtokens "pet-admin-api/internal/adapters/tokens/memory"
	"pet-admin-api/internal/domain/datasources"
	"pet-admin-api/internal/domain/pets"
	"pet-admin-api/internal/domain/pettypes"
	"pet-admin-api/internal/domain/session"
	"pet-admin-api/internal/domain/transtasks"
	"pet-admin-api/internal/domain/users"
	"pet-admin-api/internal/middleware"
	"pet-admin-api/internal/platform/credentials"
	"pet-admin-api/internal/platform/logger"
	"pet-admin-api/internal/platform/response"
	"pet-admin-api/internal/ports/events"
	"pet-admin-api/internal/ports/tokens"

	_ "pet-admin-api/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// AdminPermissions: el admin inicial puede todo.
var AdminPermissions = []string{"/user/*", "/pet/*", "/pet_type/*", "/datasource/*", "/transtask/*"}

type Options struct {
	Logger logger.Logger

	Auth           jwtauth.Config
	CredentialsKey []byte

	// Opcionales: DB nil => repos in-memory; Tokens nil => store in-memory;
	// Events nil => no se publica nada; Prober nil => sqlprobe.
	DB     *sql.DB
	Tokens tokens.Store
	Events events.Publisher
	Prober datasources.Prober

	// SQLiteDir limita los archivos sqlite que puede probar el sqlprobe por defecto.
	SQLiteDir string

	// Admin inicial si no hay usuarios. Sin password no se crea.
	AdminUsername string
	AdminPassword string
}

func NewRouter(ctx context.Context, opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	jwtManager, err := jwtauth.NewManager(opts.Auth)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	cipher, err := credentials.NewCipher(opts.CredentialsKey)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	store := opts.Tokens
	if store == nil {
		store = memtokens.NewStore()
	}
	pub := opts.Events
	if pub == nil {
		pub = events.Nop()
	}
	prober := opts.Prober
	if prober == nil {
		prober = sqlprobe.New(0, opts.SQLiteDir)
	}

	var (
		userRepo       users.Repository
		petRepo        pets.Repository
		petTypeRepo    pettypes.Repository
		dataSourceRepo datasources.Repository
		transTaskRepo  transtasks.Repository
	)
	if opts.DB != nil {
		userRepo = pg.NewUsersRepo(opts.DB)
		petRepo = pg.NewPetsRepo(opts.DB)
		petTypeRepo = pg.NewPetTypesRepo(opts.DB)
		dataSourceRepo = pg.NewDataSourcesRepo(opts.DB)
		transTaskRepo = pg.NewTransTasksRepo(opts.DB)
	} else {
		log.Warn("no database configured, using in-memory repositories", nil)
		userRepo = mem.NewUserRepo()
		petRepo = mem.NewPetRepo()
		petTypeRepo = mem.NewPetTypeRepo()
		dataSourceRepo = mem.NewDataSourceRepo()
		transTaskRepo = mem.NewTransTaskRepo()
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo, pub)
	petsSvc := pets.NewService(petRepo, pub)
	petTypesSvc := pettypes.NewService(petTypeRepo, pub)
	dataSourcesSvc := datasources.NewService(dataSourceRepo, cipher, prober, pub)
	transTasksSvc := transtasks.NewService(transTaskRepo, pub)
	sessionSvc := session.NewService(usersSvc, jwtManager, store, jwtManager.TTL())

	if err := bootstrapAdmin(logger.WithContext(ctx, log), usersSvc, opts); err != nil {
		return nil, err
	}

	ident := middleware.NewIdentityResolver(jwtManager, usersSvc)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.OKWithData(w, "ok")
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.AuthGate(middleware.GateOptions{
			Verifier:      jwtManager,
			Revocations:   store,
			Public:        []string{"/login"},
			Authenticated: []string{"/logout"},
		}))

		// Rutas por módulo
		session.RegisterRoutes(api, sessionSvc)
		users.RegisterRoutes(api, usersSvc, ident)
		pets.RegisterRoutes(api, petsSvc, ident)
		pettypes.RegisterRoutes(api, petTypesSvc)
		datasources.RegisterRoutes(api, dataSourcesSvc, ident)
		transtasks.RegisterRoutes(api, transTasksSvc, ident)
	})

	return r, nil
}

func bootstrapAdmin(ctx context.Context, svc *users.Service, opts Options) error {
	if opts.AdminUsername == "" || opts.AdminPassword == "" {
		return nil
	}

	created, err := svc.EnsureAdmin(ctx, opts.AdminUsername, opts.AdminPassword, AdminPermissions)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}
	if created {
		logger.FromContext(ctx).Info("bootstrap admin created", map[string]any{"username": opts.AdminUsername})
	}
	return nil
}
