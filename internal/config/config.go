// Package config builds the process-wide configuration once at startup.
// The resulting Config is immutable and handed explicitly to constructors;
// business logic never reads the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs to start.
type Config struct {
	ListenAddr     string   `yaml:"listen_addr"`
	DatabasePath   string   `yaml:"database_path"`
	SecretKey      string   `yaml:"secret_key"`
	TokenTTLMin    int      `yaml:"token_ttl_minutes"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Environment variable overrides, applied after the yaml file.
const (
	envListenAddr = "GREENPULSE_LISTEN_ADDR"
	envDBPath     = "GREENPULSE_DATABASE_PATH"
	envSecretKey  = "GREENPULSE_SECRET_KEY"
	envTokenTTL   = "GREENPULSE_TOKEN_TTL_MINUTES"
	envOrigins    = "GREENPULSE_ALLOWED_ORIGINS"
)

func defaults() *Config {
	return &Config{
		ListenAddr:     ":8000",
		DatabasePath:   "greenpulse.db",
		TokenTTLMin:    60,
		AllowedOrigins: []string{"http://localhost:3000", "http://127.0.0.1:3000"},
	}
}

// Load builds the configuration: defaults, then the yaml file at path (if
// present), then a .env file (if present), then environment variables.
// A missing secret key is generated randomly with a warning; tokens then
// do not survive a restart.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = "greenpulse.yaml"
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(envSecretKey); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv(envTokenTTL); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", envTokenTTL, v)
		}
		cfg.TokenTTLMin = ttl
	}
	if v := os.Getenv(envOrigins); v != "" {
		cfg.AllowedOrigins = splitOrigins(v)
	}

	// Validated after every source; a non-positive TTL would issue
	// pre-expired tokens.
	if cfg.TokenTTLMin <= 0 {
		return nil, fmt.Errorf("token_ttl_minutes must be positive, got %d", cfg.TokenTTLMin)
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = randomSecret()
		log.Printf("Warning: %s not set, using random secret (tokens won't survive restarts)", envSecretKey)
	}

	return cfg, nil
}

// TokenTTL returns the token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMin) * time.Minute
}

func splitOrigins(s string) []string {
	var origins []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}

func randomSecret() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("Failed to generate secret key: %v", err)
	}
	return hex.EncodeToString(key)
}
