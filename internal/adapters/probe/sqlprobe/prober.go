package sqlprobe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pet-admin-api/internal/domain/datasources"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var (
	ErrUnsupportedType = errors.New("unsupported db_type")
	ErrSQLiteDisabled  = errors.New("sqlite probing is disabled")
	ErrSQLiteOutside   = errors.New("sqlite file is outside the allowed directory")
)

const defaultTimeout = 5 * time.Second

// Prober abre un *sql.DB descartable por cada prueba, hace ping y lo cierra.
// Implementa datasources.Prober.
type Prober struct {
	timeout time.Duration

	// sqliteDir es el único directorio donde se aceptan archivos sqlite. Vacío => sqlite deshabilitado.
	sqliteDir string
}

func New(timeout time.Duration, sqliteDir string) *Prober {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Prober{timeout: timeout, sqliteDir: strings.TrimSpace(sqliteDir)}
}

func (p *Prober) Probe(ctx context.Context, t datasources.Target) error {
	if strings.EqualFold(strings.TrimSpace(t.Type), "sqlite") {
		path, err := p.sqlitePath(t.Name)
		if err != nil {
			return err
		}
		t.Name = path
	}

	driver, dsn, err := connString(t)
	if err != nil {
		return err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", driver, err)
	}
	return nil
}

// connString arma driver y DSN según db_type. Para sqlite db_name es el path del archivo.
func connString(t datasources.Target) (string, string, error) {
	switch strings.ToLower(strings.TrimSpace(t.Type)) {
	case "postgres", "postgresql":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(t.Username, t.Password),
			Host:   net.JoinHostPort(t.Host, strconv.Itoa(t.Port)),
			Path:   "/" + t.Name,
		}
		q := url.Values{}
		q.Set("connect_timeout", "5")
		u.RawQuery = q.Encode()
		return "pgx", u.String(), nil

	case "mysql":
		cfg := mysql.NewConfig()
		cfg.User = t.Username
		cfg.Passwd = t.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
		cfg.DBName = t.Name
		cfg.Timeout = defaultTimeout
		return "mysql", cfg.FormatDSN(), nil

	case "sqlite":
		if strings.TrimSpace(t.Name) == "" {
			return "", "", fmt.Errorf("sqlite: db_name (file path) is required")
		}
		// mode=ro: solo lectura, y un archivo inexistente es un error, no una base nueva
		return "sqlite", "file:" + t.Name + "?mode=ro", nil

	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, t.Type)
	}
}

// sqlitePath resuelve name dentro de sqliteDir; relativo se toma desde sqliteDir.
func (p *Prober) sqlitePath(name string) (string, error) {
	if p.sqliteDir == "" {
		return "", ErrSQLiteDisabled
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("sqlite: db_name (file path) is required")
	}

	dir, err := filepath.Abs(p.sqliteDir)
	if err != nil {
		return "", fmt.Errorf("sqlite dir: %w", err)
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrSQLiteOutside, name)
	}
	return path, nil
}
