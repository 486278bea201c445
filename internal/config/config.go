package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	DB        DBConfig        `yaml:"db" toml:"db"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Transport TransportConfig `yaml:"transport" toml:"transport"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Store     StoreConfig     `yaml:"store" toml:"store"`
	Request   RequestConfig   `yaml:"request" toml:"request"`
}

type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	// Path, when set, sends logs to a size-capped file.
	Path string `yaml:"path" toml:"path"`
}

type TransportConfig struct {
	// Mode is "http" or "stdio".
	Mode string `yaml:"mode" toml:"mode"`
}

type AuthConfig struct {
	JWTSecret      string `yaml:"jwt_secret" toml:"jwt_secret"`
	JWTIssuer      string `yaml:"jwt_issuer" toml:"jwt_issuer"`
	GoogleAudience string `yaml:"google_audience" toml:"google_audience"`
	// StdioUser is the caller for every stdio request.
	StdioUser string `yaml:"stdio_user" toml:"stdio_user"`
}

type StoreConfig struct {
	Timeout Duration `yaml:"timeout" toml:"timeout"`
}

type RequestConfig struct {
	Timeout Duration `yaml:"timeout" toml:"timeout"`
}

// Duration reads "5s" style strings from YAML, TOML and the environment.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "todos.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Store: StoreConfig{
			Timeout: Duration{5 * time.Second},
		},
		Request: RequestConfig{
			Timeout: Duration{30 * time.Second},
		},
	}
}

// Load reads configuration from an optional YAML or TOML file and
// environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("TODOS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if c.Transport.Mode == "http" && (c.Server.Port < 0 || c.Server.Port > 65535) {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Store.Timeout.Duration < 0 || c.Request.Timeout.Duration < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("TODOS_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("TODOS_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid TODOS_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("TODOS_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("TODOS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("TODOS_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("TODOS_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if secret := os.Getenv("TODOS_AUTH_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if issuer := os.Getenv("TODOS_AUTH_JWT_ISSUER"); issuer != "" {
		cfg.Auth.JWTIssuer = issuer
	}
	if aud := os.Getenv("TODOS_AUTH_GOOGLE_AUDIENCE"); aud != "" {
		cfg.Auth.GoogleAudience = aud
	}
	if user := os.Getenv("TODOS_AUTH_STDIO_USER"); user != "" {
		cfg.Auth.StdioUser = user
	}
	if err := envDuration("TODOS_STORE_TIMEOUT", &cfg.Store.Timeout); err != nil {
		return err
	}
	return envDuration("TODOS_REQUEST_TIMEOUT", &cfg.Request.Timeout)
}

func envDuration(key string, dst *Duration) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	if err := dst.UnmarshalText([]byte(raw)); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
