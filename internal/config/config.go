package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Server ServerConfig
	Store  StoreConfig
	Submit SubmitConfig
}

type AppConfig struct {
	Name string
	Env  string
}

// ServerConfig is the listen address of the local sync agent API.
type ServerConfig struct {
	Host string
	Port int
}

// StoreConfig points at the embedded SQLite database that holds the
// offline outbox, the cart and the cached catalogue.
type StoreConfig struct {
	Path     string
	PoolSize int
}

// SubmitConfig describes the marketplace order submission endpoint.
type SubmitConfig struct {
	// URL is the full submission URL, e.g. https://api.example.com/api/orders.
	URL string

	// Timeout bounds one multipart submission, voice note included.
	Timeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "agromarket-agent"),
			Env:  getEnv("APP_ENV", "local"),
		},
		Server: ServerConfig{
			Host: getEnv("HTTP_HOST", "127.0.0.1"),
			Port: getEnvAsInt("HTTP_PORT", 8040),
		},
		Store: StoreConfig{
			Path:     getEnv("STORE_PATH", "agromarket.db"),
			PoolSize: getEnvAsInt("STORE_POOL_SIZE", 4),
		},
		Submit: SubmitConfig{
			URL:     getEnv("SUBMIT_URL", ""),
			Timeout: time.Duration(getEnvAsInt("SUBMIT_TIMEOUT_SECONDS", 60)) * time.Second,
		},
	}

	return cfg, cfg.validate()
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

/* ================= helpers ================= */

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("HTTP_PORT is invalid")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is empty")
	}
	if c.Submit.Timeout <= 0 {
		return fmt.Errorf("SUBMIT_TIMEOUT_SECONDS is invalid")
	}
	// SUBMIT_URL may stay empty while the device is offline-only; the
	// sync commands validate it before draining.
	return nil
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
