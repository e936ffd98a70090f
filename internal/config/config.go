package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything the process reads from the environment.
// JWT settings stay in internal/auth, which reads its own variables.
type Config struct {
	HTTPAddr string

	// StoreBackend selects the persistence layer: memory | sqlite | postgres.
	StoreBackend string
	PostgresDSN  string
	SQLitePath   string

	KafkaBrokers []string
	KafkaTopic   string

	// AdminEmails receive ROLE_ADMIN at registration.
	AdminEmails []string

	AuditQueueSize  int
	ShutdownTimeout time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr:        getEnvString("HTTP_ADDR", ":8080"),
		StoreBackend:    strings.ToLower(getEnvString("STORE_BACKEND", "memory")),
		PostgresDSN:     getEnvString("POSTGRES_DSN", ""),
		SQLitePath:      getEnvString("SQLITE_PATH", "centralink.db"),
		KafkaBrokers:    getEnvList("KAFKA_BROKERS", nil),
		KafkaTopic:      getEnvString("KAFKA_TOPIC_AUDIT", "centralink.audit.v1"),
		AdminEmails:     getEnvList("ADMIN_EMAILS", nil),
		AuditQueueSize:  getEnvInt("AUDIT_QUEUE_SIZE", 100),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

// KafkaEnabled reports whether a broker list was configured.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
