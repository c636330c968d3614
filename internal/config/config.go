package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "safetrack/common/config"
)

// Config settings shared by safetrack-api and safetrack-bridge.
type Config struct {
	HTTP struct {
		Addr           string
		APIPrefix      string
		AllowedOrigins []string
	}
	Database commoncfg.DatabaseConfig
	Redis    commoncfg.RedisConfig
	Log      struct {
		Level  string
		Format string
	}
	Telemetry TelemetryConfig
	Auth      AuthConfig
	Upload    UploadConfig
	MQTT      MQTTConfig
	SeedAdmin SeedAdminConfig
}

// TelemetryConfig selects and tunes the telemetry read backend.
type TelemetryConfig struct {
	Backend            string // "redis" | "firebase" | "null"
	Root               string // path prefix, default "health-tracker"
	FirebaseURL        string
	FirebaseAuth       string
	RequestTimeout     time.Duration
	TestChangeInterval time.Duration
	HistoryMaxLen      int64
}

// AuthConfig bearer token settings. JWTSecret has no default; the API
// refuses to start without one.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// UploadConfig profile image storage
type UploadConfig struct {
	Backend  string // "local" | "s3"
	Dir      string
	BaseURL  string
	MaxBytes int64
	S3Bucket string
	S3Region string
	S3Prefix string
}

// SeedAdminConfig admin account created at startup when Enabled.
type SeedAdminConfig struct {
	Enabled  bool
	Name     string
	Email    string
	Password string
}

// MQTTConfig device bridge settings
type MQTTConfig struct {
	commoncfg.MQTTConfig
	TopicPrefix string
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":5000")
	cfg.HTTP.APIPrefix = strings.TrimRight(getEnv("API_PREFIX", "/api"), "/")
	cfg.HTTP.AllowedOrigins = splitList(getEnv("CORS_ORIGINS",
		"http://localhost:3000,http://localhost:19000,http://localhost:19006,exp://localhost:19000"))

	cfg.Database.Driver = getEnv("DOC_STORE", "sqlite")
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "safetrack"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 10
	cfg.Database.LoadFromEnv("DB")
	cfg.Database.Path = getEnv("SQLITE_PATH", "safetrack.db")

	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Telemetry.Backend = getEnv("TELEMETRY_BACKEND", "redis")
	cfg.Telemetry.Root = strings.Trim(getEnv("TELEMETRY_ROOT", "health-tracker"), "/")
	cfg.Telemetry.FirebaseURL = strings.TrimRight(getEnv("FIREBASE_DATABASE_URL", ""), "/")
	cfg.Telemetry.FirebaseAuth = getEnv("FIREBASE_AUTH_TOKEN", "")
	cfg.Telemetry.RequestTimeout = time.Duration(parseInt(getEnv("TELEMETRY_TIMEOUT_MS", "5000"), 5000)) * time.Millisecond
	cfg.Telemetry.TestChangeInterval = time.Duration(parseInt(getEnv("TEST_CHANGE_INTERVAL_MS", "1000"), 1000)) * time.Millisecond
	cfg.Telemetry.HistoryMaxLen = int64(parseInt(getEnv("HISTORY_MAXLEN", "1000"), 1000))

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Auth.TokenTTL = time.Duration(parseInt(getEnv("JWT_TTL_HOURS", "24"), 24)) * time.Hour

	cfg.Upload.Backend = getEnv("UPLOAD_BACKEND", "local")
	cfg.Upload.Dir = getEnv("UPLOAD_DIR", "uploads")
	cfg.Upload.BaseURL = strings.TrimRight(getEnv("UPLOAD_BASE_URL", "/uploads"), "/")
	cfg.Upload.MaxBytes = int64(parseInt(getEnv("UPLOAD_MAX_MB", "5"), 5)) << 20
	cfg.Upload.S3Bucket = getEnv("S3_BUCKET", "")
	cfg.Upload.S3Region = getEnv("S3_REGION", "us-east-1")
	cfg.Upload.S3Prefix = strings.Trim(getEnv("S3_PREFIX", "profile-images"), "/")

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "safetrack-bridge"
	cfg.MQTT.QoS = 1
	cfg.MQTT.MQTTConfig.LoadFromEnv("MQTT")
	cfg.MQTT.TopicPrefix = strings.Trim(getEnv("MQTT_TOPIC_PREFIX", "health-tracker"), "/")

	cfg.SeedAdmin.Enabled = getEnv("SEED_ADMIN", "false") == "true"
	cfg.SeedAdmin.Name = getEnv("SEED_ADMIN_NAME", "Administrator")
	cfg.SeedAdmin.Email = getEnv("SEED_ADMIN_EMAIL", "admin@safetrack.local")
	cfg.SeedAdmin.Password = getEnv("SEED_ADMIN_PASSWORD", "")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
