package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// InsecureSessionSecret is the fallback secret used when none is configured.
const InsecureSessionSecret = "change_this_secret"

type Config struct {
	Server struct {
		Host            string        `yaml:"host" env:"HOST"`
		Port            int           `yaml:"port" env:"PORT" env-default:"3000"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	} `yaml:"server"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path" env:"DATABASE_PATH" env-default:"library.db"`
	} `yaml:"database"`

	Session struct {
		StorePath    string        `yaml:"store_path" env:"SESSION_STORE_PATH" env-default:"sessions.sqlite"`
		Secret       string        `yaml:"secret" env:"SESSION_SECRET" env-default:"change_this_secret"`
		CookieName   string        `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"sid"`
		MaxAge       time.Duration `yaml:"max_age" env:"SESSION_MAX_AGE" env-default:"24h"`
		SecureCookie bool          `yaml:"secure_cookie" env:"SESSION_SECURE_COOKIE" env-default:"false"`
		CacheSize    int           `yaml:"cache_size" env:"SESSION_CACHE_SIZE" env-default:"1024"`
	} `yaml:"session"`

	Security struct {
		BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	} `yaml:"security"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS" env-default:"5"`
		Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"10"`

		// cleanenv replaces a zero rate with the default, so switching the
		// limiter off from YAML needs its own flag
		Disabled bool `yaml:"disabled" env:"RATE_LIMIT_DISABLED"`
	} `yaml:"rate_limit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	} `yaml:"cors"`

	Seed struct {
		Enabled bool `yaml:"enabled" env:"SEED_DEMO_DATA" env-default:"true"`
	} `yaml:"seed"`

	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	} `yaml:"log"`
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoginRateLimit is the per-client request rate for the login and register
// forms. Zero means unlimited.
func (c *Config) LoginRateLimit() float64 {
	if c.RateLimit.Disabled {
		return 0
	}
	return c.RateLimit.RequestsPerSecond
}

// UsesInsecureSecret reports whether the session secret is the built-in fallback.
func (c *Config) UsesInsecureSecret() bool {
	return c.Session.Secret == InsecureSessionSecret
}

// Load reads the YAML file at configPath, if any, and then the environment.
// With an empty path only the environment and defaults are used.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
		return &cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}
	return &cfg, nil
}

func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configflag := flag.String("config", "", "Path to configuration file")
		flag.Parse()
		configPath = *configflag
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
