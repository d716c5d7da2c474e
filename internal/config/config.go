package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ferdiebergado/friendsystem/internal/pkg/env"
	timex "github.com/ferdiebergado/friendsystem/internal/pkg/time"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	EnvProduction = "production"
)

type App struct {
	Env      string `json:"env,omitempty" yaml:"env,omitempty" env:"ENV"`
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" env:"LOG_LEVEL"`
	Key      string `json:"-" yaml:"-" env:"KEY"`
}

type Server struct {
	Port            int            `json:"port,omitempty" yaml:"port,omitempty" env:"PORT"`
	ReadTimeout     timex.Duration `json:"read_timeout,omitempty" yaml:"read_timeout,omitempty"`
	WriteTimeout    timex.Duration `json:"write_timeout,omitempty" yaml:"write_timeout,omitempty"`
	IdleTimeout     timex.Duration `json:"idle_timeout,omitempty" yaml:"idle_timeout,omitempty"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`
	MaxBodyBytes    int64          `json:"max_body_bytes,omitempty" yaml:"max_body_bytes,omitempty"`
}

type DB struct {
	Driver          string         `json:"driver,omitempty" yaml:"driver,omitempty" env:"DB_DRIVER"`
	Host            string         `json:"host,omitempty" yaml:"host,omitempty" env:"DB_HOST"`
	Port            int            `json:"port,omitempty" yaml:"port,omitempty" env:"DB_PORT"`
	User            string         `json:"user,omitempty" yaml:"user,omitempty" env:"DB_USER"`
	Password        string         `json:"-" yaml:"-" env:"DB_PASS"`
	Name            string         `json:"name,omitempty" yaml:"name,omitempty" env:"DB_NAME"`
	SSLMode         string         `json:"ssl_mode,omitempty" yaml:"ssl_mode,omitempty" env:"DB_SSLMODE"`
	Path            string         `json:"path,omitempty" yaml:"path,omitempty" env:"DB_PATH"`
	Migrate         bool           `json:"migrate,omitempty" yaml:"migrate,omitempty" env:"DB_MIGRATE"`
	MaxOpenConns    int            `json:"max_open_conns,omitempty" yaml:"max_open_conns,omitempty"`
	MaxIdleConns    int            `json:"max_idle_conns,omitempty" yaml:"max_idle_conns,omitempty"`
	ConnMaxIdleTime timex.Duration `json:"conn_max_idle_time,omitempty" yaml:"conn_max_idle_time,omitempty"`
	ConnMaxLifetime timex.Duration `json:"conn_max_lifetime,omitempty" yaml:"conn_max_lifetime,omitempty"`
	PingTimeout     timex.Duration `json:"ping_timeout,omitempty" yaml:"ping_timeout,omitempty"`
}

func (d *DB) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("driver", d.Driver),
		slog.String("host", d.Host),
		slog.Int("port", d.Port),
		slog.String("name", d.Name),
		slog.String("path", d.Path),
		slog.Bool("migrate", d.Migrate),
		slog.Int("max_open_conns", d.MaxOpenConns),
		slog.Int("max_idle_conns", d.MaxIdleConns),
		slog.Duration("ping_timeout", d.PingTimeout.Duration),
	)
}

type JWT struct {
	JTILength uint32         `json:"jti_length,omitempty" yaml:"jti_length,omitempty"`
	Issuer    string         `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Audience  string         `json:"audience,omitempty" yaml:"audience,omitempty"`
	TTL       timex.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

type Argon2 struct {
	Memory     uint32 `json:"memory,omitempty" yaml:"memory,omitempty"`
	Iterations uint32 `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	Threads    uint8  `json:"threads,omitempty" yaml:"threads,omitempty"`
	SaltLength uint32 `json:"salt_length,omitempty" yaml:"salt_length,omitempty"`
	KeyLength  uint32 `json:"key_length,omitempty" yaml:"key_length,omitempty"`
}

type Auth struct {
	ClientSecretHash string `json:"-" yaml:"-" env:"CLIENT_SECRET_HASH"`
}

type Cache struct {
	Size int            `json:"size,omitempty" yaml:"size,omitempty" env:"CACHE_SIZE"`
	TTL  timex.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

type Friends struct {
	MaxFriends int `json:"max_friends,omitempty" yaml:"max_friends,omitempty" env:"MAX_FRIENDS"`
}

type Notify struct {
	Enabled      bool           `json:"enabled,omitempty" yaml:"enabled,omitempty" env:"NOTIFY_ENABLED"`
	SendBuffer   int            `json:"send_buffer,omitempty" yaml:"send_buffer,omitempty"`
	WriteTimeout timex.Duration `json:"write_timeout,omitempty" yaml:"write_timeout,omitempty"`
	PongTimeout  timex.Duration `json:"pong_timeout,omitempty" yaml:"pong_timeout,omitempty"`
}

func (n *Notify) validate() []error {
	var errs []error
	if n.SendBuffer < 0 {
		errs = append(errs, fmt.Errorf("notify.send_buffer: %d is negative", n.SendBuffer))
	}
	if n.WriteTimeout.Duration <= 0 {
		errs = append(errs, errors.New("notify.write_timeout: must be positive"))
	}
	if n.PongTimeout.Duration <= 0 {
		errs = append(errs, errors.New("notify.pong_timeout: must be positive"))
	}
	return errs
}

type Config struct {
	App     *App     `json:"app,omitempty" yaml:"app,omitempty"`
	Server  *Server  `json:"server,omitempty" yaml:"server,omitempty"`
	DB      *DB      `json:"db,omitempty" yaml:"db,omitempty"`
	JWT     *JWT     `json:"jwt,omitempty" yaml:"jwt,omitempty"`
	Argon2  *Argon2  `json:"argon2,omitempty" yaml:"argon2,omitempty"`
	Auth    *Auth    `json:"auth,omitempty" yaml:"auth,omitempty"`
	Cache   *Cache   `json:"cache,omitempty" yaml:"cache,omitempty"`
	Friends *Friends `json:"friends,omitempty" yaml:"friends,omitempty"`
	Notify  *Notify  `json:"notify,omitempty" yaml:"notify,omitempty"`
}

func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("app", slog.GroupValue(
			slog.String("env", c.App.Env),
			slog.String("log_level", c.App.LogLevel),
		)),
		slog.Any("server", c.Server),
		slog.Any("db", c.DB),
		slog.Any("jwt", c.JWT),
		slog.Any("cache", c.Cache),
		slog.Any("friends", c.Friends),
		slog.Any("notify", c.Notify),
	)
}

// Default returns the configuration used for any setting the config file omits.
// The pool settings mirror a small HikariCP pool: ten connections, one idle, ten
// second connection timeout.
func Default() *Config {
	return &Config{
		App: &App{
			Env:      "development",
			LogLevel: "info",
		},
		Server: &Server{
			Port:            8888,
			ReadTimeout:     timex.Duration{Duration: 10 * time.Second},
			WriteTimeout:    timex.Duration{Duration: 10 * time.Second},
			IdleTimeout:     timex.Duration{Duration: time.Minute},
			ShutdownTimeout: timex.Duration{Duration: 10 * time.Second},
			MaxBodyBytes:    1 << 10,
		},
		DB: &DB{
			Driver:          DriverPostgres,
			Host:            "127.0.0.1",
			Port:            5432,
			Name:            "friendsystem",
			SSLMode:         "disable",
			Path:            "friendsystem.db",
			Migrate:         true,
			MaxOpenConns:    10,
			MaxIdleConns:    1,
			ConnMaxIdleTime: timex.Duration{Duration: 10 * time.Minute},
			ConnMaxLifetime: timex.Duration{Duration: 30 * time.Minute},
			PingTimeout:     timex.Duration{Duration: 10 * time.Second},
		},
		JWT: &JWT{
			JTILength: 8,
			Issuer:    "friendsystem",
			Audience:  "friendsystem-proxy",
			TTL:       timex.Duration{Duration: 24 * time.Hour},
		},
		Argon2: &Argon2{
			Memory:     64 * 1024,
			Iterations: 3,
			Threads:    2,
			SaltLength: 16,
			KeyLength:  32,
		},
		Auth: &Auth{},
		Cache: &Cache{
			Size: 10_000,
			TTL:  timex.Duration{Duration: 5 * time.Minute},
		},
		Friends: &Friends{},
		Notify: &Notify{
			Enabled:      true,
			SendBuffer:   16,
			WriteTimeout: timex.Duration{Duration: 10 * time.Second},
			PongTimeout:  timex.Duration{Duration: time.Minute},
		},
	}
}

// Load reads the config file on top of the defaults and applies environment overrides.
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
func Load(cfgFile string) (*Config, error) {
	slog.Info("Loading config...")
	cfg := Default()

	if err := parseCfgFile(cfgFile, cfg); err != nil {
		return nil, err
	}

	if err := env.OverrideStruct(cfg); err != nil {
		return nil, fmt.Errorf("override config with env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Config loaded.", "config_file", cfgFile, slog.Any("config", cfg))
	return cfg, nil
}

func parseCfgFile(cfgFile string, cfg *Config) error {
	cfgFile = filepath.Clean(cfgFile)
	contents, err := os.ReadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", cfgFile, err)
	}

	switch strings.ToLower(filepath.Ext(cfgFile)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(contents, cfg); err != nil {
			return fmt.Errorf("decode yaml config %s: %w", cfgFile, err)
		}
	default:
		if err := json.Unmarshal(contents, cfg); err != nil {
			return fmt.Errorf("decode json config %s: %w", cfgFile, err)
		}
	}

	return nil
}

// Validate reports settings that would make the service unusable.
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("db.driver: unsupported driver %q", c.DB.Driver))
	}

	if c.DB.Driver == DriverSQLite && c.DB.Path == "" {
		errs = append(errs, errors.New("db.path: required for the sqlite driver"))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d is out of range", c.Server.Port))
	}

	if c.Friends.MaxFriends < 0 {
		errs = append(errs, fmt.Errorf("friends.max_friends: %d is negative", c.Friends.MaxFriends))
	}

	if c.Cache.Size < 0 {
		errs = append(errs, fmt.Errorf("cache.size: %d is negative", c.Cache.Size))
	}

	if c.JWT.TTL.Duration <= 0 {
		errs = append(errs, errors.New("jwt.ttl: must be positive"))
	}

	if c.Notify.Enabled {
		errs = append(errs, c.Notify.validate()...)
	}

	return errors.Join(errs...)
}
