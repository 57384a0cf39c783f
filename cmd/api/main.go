package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	jwtauth "pet-admin-api/internal/adapters/auth/jwt"
	kafkapub "pet-admin-api/internal/adapters/events/kafka"
	"pet-admin-api/internal/adapters/events/logpub"
	pg "pet-admin-api/internal/adapters/storage/postgres"
	redisstore "pet-admin-api/internal/adapters/tokens/redis"
	"pet-admin-api/internal/platform/config"
	"pet-admin-api/internal/platform/logger"
	"pet-admin-api/internal/ports/events"
	"pet-admin-api/internal/ports/tokens"
	"pet-admin-api/internal/router"

	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
)

// @title pet-admin-api
// @version 1.0
// @description Backend de administración: usuarios, mascotas, orígenes de datos y tareas.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Usage:   "YAML config file (env vars override it)",
		Sources: cli.EnvVars("CONFIG_FILE"),
	}

	root := &cli.Command{
		Name:  "pet-admin-api",
		Usage: "Admin REST backend",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run HTTP server",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runServer(ctx, c.String("config"))
				},
			},
			{
				Name:  "migrate",
				Usage: "Apply pending database migrations and exit",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runMigrate(ctx, c.String("config"))
				},
			},
		},
		// sin subcomando => serve
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, c.String("config"))
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func load(path string) (config.Config, logger.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})
	return cfg, log, nil
}

func runMigrate(ctx context.Context, configPath string) error {
	cfg, log, err := load(configPath)
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return errors.New("migrate: database is not configured")
	}

	db, err := pg.Open(ctx, cfg.Database.ConnString())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pg.RunMigrations(ctx, db); err != nil {
		return err
	}
	log.Info("migrations applied", nil)
	return nil
}

func runServer(ctx context.Context, configPath string) error {
	cfg, log, err := load(configPath)
	if err != nil {
		return err
	}

	var db *sql.DB
	if cfg.Database.Enabled() {
		db, err = pg.Open(ctx, cfg.Database.ConnString())
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.Database.AutoMigrate {
			if err := pg.RunMigrations(ctx, db); err != nil {
				return err
			}
		}
	}

	var store tokens.Store
	if cfg.Redis.Enabled() {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis: ping: %w", err)
		}
		store = redisstore.NewStore(rdb)
	} else {
		log.Warn("no redis configured, using in-memory token store", nil)
	}

	var pub events.Publisher
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		w := kafkapub.NewWriter(brokers, cfg.Kafka.Topic)
		defer w.Close()
		pub = kafkapub.NewPublisher(w)
	} else {
		pub = logpub.NewPublisher(log)
	}

	handler, err := router.NewRouter(ctx, router.Options{
		Logger: log,
		Auth: jwtauth.Config{
			Secret:   []byte(cfg.Auth.Secret),
			Issuer:   cfg.Auth.Issuer,
			Subject:  cfg.Auth.Subject,
			Audience: cfg.Auth.Audience,
			TTL:      cfg.Auth.TokenTTL,
		},
		CredentialsKey: []byte(cfg.Credentials.Key),
		DB:             db,
		Tokens:         store,
		Events:         pub,
		SQLiteDir:      cfg.Probe.SQLiteDir,
		AdminUsername:  cfg.Bootstrap.AdminUsername,
		AdminPassword:  cfg.Bootstrap.AdminPassword,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", map[string]any{"addr": srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
