package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del proceso.
// Orden de carga: defaults -> archivo YAML -> variables de entorno.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Auth        AuthConfig        `yaml:"auth"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Log         LogConfig         `yaml:"log"`
	Bootstrap   BootstrapConfig   `yaml:"bootstrap"`
	Probe       ProbeConfig       `yaml:"probe"`
}

type ServerConfig struct {
	Host         string        `yaml:"host" env:"SERVER_HOST"`
	Port         int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig: si DSN viene, se usa tal cual. Si no, se arma con host/port/...
// Sin DSN ni host => repos in-memory (modo dev).
type DatabaseConfig struct {
	DSN         string `yaml:"dsn" env:"DB_DSN"`
	Host        string `yaml:"host" env:"DB_HOST"`
	Port        int    `yaml:"port" env:"DB_PORT"`
	Name        string `yaml:"name" env:"DB_NAME"`
	Username    string `yaml:"username" env:"DB_USERNAME"`
	Password    string `yaml:"password" env:"DB_PASSWORD"`
	SSLMode     string `yaml:"sslmode" env:"DB_SSLMODE"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.DSN) != "" || strings.TrimSpace(d.Host) != ""
}

func (d DatabaseConfig) ConnString() string {
	if dsn := strings.TrimSpace(d.DSN); dsn != "" {
		return dsn
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.Username, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisConfig: Addr vacío => token store in-memory.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

// KafkaConfig: Brokers separados por coma. Vacío => eventos al log.
type KafkaConfig struct {
	Brokers string `yaml:"brokers" env:"KAFKA_BROKERS"`
	Topic   string `yaml:"topic" env:"KAFKA_TOPIC"`
}

func (k KafkaConfig) BrokerList() []string {
	out := make([]string, 0)
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

type AuthConfig struct {
	Secret   string        `yaml:"secret" env:"AUTH_SECRET"`
	Issuer   string        `yaml:"issuer" env:"AUTH_ISSUER"`
	Subject  string        `yaml:"subject" env:"AUTH_SUBJECT"`
	Audience string        `yaml:"audience" env:"AUTH_AUDIENCE"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL"`
}

type CredentialsConfig struct {
	// Key AES-256: exactamente 32 bytes.
	Key string `yaml:"key" env:"CREDENTIALS_KEY"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
	App    string `yaml:"app" env:"APP_NAME"`
}

type BootstrapConfig struct {
	AdminUsername string `yaml:"admin_username" env:"BOOTSTRAP_ADMIN_USERNAME"`
	AdminPassword string `yaml:"admin_password" env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// ProbeConfig: SQLiteDir vacío => no se prueban fuentes sqlite.
type ProbeConfig struct {
	SQLiteDir string `yaml:"sqlite_dir" env:"PROBE_SQLITE_DIR"`
}

var (
	ErrMissingSecret     = errors.New("config: auth.secret is required")
	ErrInvalidCredsKey   = errors.New("config: credentials.key must be exactly 32 bytes")
	ErrInvalidServerPort = errors.New("config: server.port out of range")
)

func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Port:    5432,
			SSLMode: "disable",
		},
		Kafka: KafkaConfig{
			Topic: "entity-lifecycle",
		},
		Auth: AuthConfig{
			Issuer:   "pet-admin-api",
			Subject:  "pet-admin",
			Audience: "pet-admin",
			TokenTTL: 30 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			App:    "pet-admin-api",
		},
		Bootstrap: BootstrapConfig{
			AdminUsername: "admin",
		},
	}
}

// Load lee path (si no es vacío) y aplica overrides de entorno.
// Un path inexistente es error: si lo pasaron, se espera que exista.
func Load(path string) (Config, error) {
	cfg := Default()

	if p := strings.TrimSpace(path); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", p, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", p, err)
		}
	}

	// envdecode devuelve ErrNoTargetFieldsAreSet si no hay ninguna var seteada.
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return ErrMissingSecret
	}
	if len(c.Credentials.Key) != 32 {
		return ErrInvalidCredsKey
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return ErrInvalidServerPort
	}
	return nil
}
