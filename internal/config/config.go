package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Config is the server configuration read from the environment
type Config struct {
	Port          int
	StorageType   string
	RedisURL      string
	TokenSecret   string
	TokenIssuer   string
	LogLevel      string
	LogFormat     string
	AllowedOrigin string // WebSocket origin check, empty allows any
	GameTTL       time.Duration
	SweepInterval time.Duration
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Port:          8080,
		StorageType:   StorageTypeMemory,
		TokenIssuer:   "bsgame",
		LogLevel:      "info",
		LogFormat:     "json",
		GameTTL:       24 * time.Hour,
		SweepInterval: 10 * time.Minute,
	}
}

// LookupFunc looks up an environment variable
type LookupFunc func(key string) (string, bool)

// Load reads the optional env files into the process environment and then
// builds the configuration from it. Missing env files are ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", file, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the configuration from lookup, starting from Default
func FromEnv(lookup LookupFunc) (Config, error) {
	cfg := Default()

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v, ok := lookup("STORAGE_TYPE"); ok && v != "" {
		cfg.StorageType = v
	}
	if v, ok := lookup("REDIS_URL"); ok {
		cfg.RedisURL = v
	}
	if v, ok := lookup("TOKEN_SECRET"); ok {
		cfg.TokenSecret = v
	}
	if v, ok := lookup("TOKEN_ISSUER"); ok && v != "" {
		cfg.TokenIssuer = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		cfg.LogFormat = v
	}
	if v, ok := lookup("ALLOWED_ORIGIN"); ok {
		cfg.AllowedOrigin = v
	}

	var err error
	if cfg.GameTTL, err = duration(lookup, "GAME_TTL", cfg.GameTTL); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = duration(lookup, "SWEEP_INTERVAL", cfg.SweepInterval); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration is usable
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be 'memory' or 'redis'", c.StorageType)
	}
	return nil
}

// Addr returns the listen address for the configured port
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func duration(lookup LookupFunc, key string, fallback time.Duration) (time.Duration, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}
