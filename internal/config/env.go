package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr     string
	GinMode     string
	DBDSN       string
	JWTSecret   string
	CORSOrigins []string

	NATSURL       string
	RedisAddr     string
	RedisPassword string

	PendingTTL           time.Duration
	PendingSweepInterval time.Duration

	UPIPayeeID   string
	UPIPayeeName string
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// LoadEnv reads configuration from the environment, loading .env first when present.
func LoadEnv() Env {
	_ = godotenv.Load()

	env := Env{
		AppAddr:              getenvDefault("APP_ADDR", ":8080"),
		GinMode:              strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:                buildDSN(),
		JWTSecret:            strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CORSOrigins:          splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		NATSURL:              strings.TrimSpace(os.Getenv("NATS_URL")),
		RedisAddr:            strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		PendingTTL:           durationDefault("PENDING_TTL", 15*time.Minute),
		PendingSweepInterval: durationDefault("PENDING_SWEEP_INTERVAL", time.Minute),
		UPIPayeeID:           getenvDefault("UPI_PAYEE_ID", "bustrack@upi"),
		UPIPayeeName:         getenvDefault("UPI_PAYEE_NAME", "BusTrack"),
	}
	if len(env.CORSOrigins) == 0 {
		env.CORSOrigins = defaultOrigins
	}
	if env.JWTSecret == "" {
		log.Println("warning: JWT_SECRET is empty, bearer tokens will be rejected")
	}
	return env
}

func buildDSN() string {
	if dsn := strings.TrimSpace(os.Getenv("DB_DSN")); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		getenvDefault("DB_USER", "root"),
		os.Getenv("DB_PASS"),
		getenvDefault("DB_HOST", "127.0.0.1:3306"),
		getenvDefault("DB_NAME", "bus_booking"),
	)
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("warning: invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
