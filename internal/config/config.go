package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL  string
	APITimeout  time.Duration
	SessionID   string
	CSRFToken   string
	HTTPPort    string
	LogLevel    string
	Audit       AuditConfig
	KafkaTopic  string
	KafkaBroker []string
}

type AuditConfig struct {
	Workers      int
	BatchSize    int
	BatchTimeout time.Duration
}

// loadEnv looks for .env next to the binary's working directory and up to two
// levels above it, falling back to .example.env. Missing files are not an error:
// the process environment alone is a valid configuration.
func loadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		log.Printf("config: cannot resolve working directory: %v", err)
		return
	}

	possiblePaths := []string{
		filepath.Join(wd, ".env"),
		filepath.Join(wd, "..", ".env"),
		filepath.Join(wd, "..", "..", ".env"),
	}

	for _, envPath := range possiblePaths {
		if err := godotenv.Load(envPath); err == nil {
			log.Printf("Loaded environment variables from %s", envPath)
			return
		}
	}

	for _, envPath := range possiblePaths {
		examplePath := filepath.Join(filepath.Dir(envPath), ".example.env")
		if err := godotenv.Load(examplePath); err == nil {
			log.Printf("Loaded environment variables from %s", examplePath)
			return
		}
	}
}

func Load() (Config, error) {
	loadEnv()
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (Config, error) {
	apiTimeout, err := durationEnv("API_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	workers, err := intEnv("AUDIT_WORKERS", 2)
	if err != nil {
		return Config{}, err
	}
	batchSize, err := intEnv("AUDIT_BATCH_SIZE", 5)
	if err != nil {
		return Config{}, err
	}
	batchTimeout, err := durationEnv("AUDIT_BATCH_TIMEOUT", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}

	return Config{
		APIBaseURL: strings.TrimRight(getenv("API_BASE_URL", "http://127.0.0.1:8000/api"), "/"),
		APITimeout: apiTimeout,
		SessionID:  os.Getenv("API_SESSION_ID"),
		CSRFToken:  os.Getenv("API_CSRF_TOKEN"),
		HTTPPort:   getenv("HTTP_PORT", "9000"),
		LogLevel:   getenv("LOG_LEVEL", "debug"),
		Audit: AuditConfig{
			Workers:      workers,
			BatchSize:    batchSize,
			BatchTimeout: batchTimeout,
		},
		KafkaTopic:  getenv("KAFKA_AUDIT_TOPIC", "audit_logs"),
		KafkaBroker: splitCSV(os.Getenv("KAFKA_BROKERS")),
	}, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", k, v)
	}
	return n, nil
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", k, v, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
