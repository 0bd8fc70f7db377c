package config

import (
	"fmt"
	"time"
)

const (
	DBTypePostgres = "postgres"
	DBTypeSQLite   = "sqlite"

	MediaBackendLocal = "local"
	MediaBackendS3    = "s3"
)

// App is the typed view over the environment used by main and the api package.
type App struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	DBType      string
	DatabaseURL string
	ReplicaDSNs []string
	SQLitePath  string

	SecretKey          string
	SecretKeyParameter string
	SessionTTL         time.Duration
	SecureCookies      bool

	PageSize int

	MediaBackend string
	MediaRoot    string
	MediaURL     string
	S3Bucket     string
	ImagePrefix  string
	MaxUploadMB  int

	AcceptedOrigins []string

	LogLevel string
	Debug    bool
}

func Load(c map[string]string) App {
	return App{
		Port:         GetString(c, "PORT", "8080"),
		ReadTimeout:  time.Duration(GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second,
		WriteTimeout: time.Duration(GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second,
		IdleTimeout:  time.Duration(GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second,

		DBType:      GetString(c, "DB_TYPE", DBTypeSQLite),
		DatabaseURL: databaseURL(c),
		ReplicaDSNs: GetList(c, "DB_REPLICA_DSNS"),
		SQLitePath:  GetString(c, "SQLITE_PATH", "blogicum.db"),

		SecretKey:          GetString(c, "SECRET_KEY", ""),
		SecretKeyParameter: GetString(c, "SECRET_KEY_PARAMETER", ""),
		SessionTTL:         time.Duration(GetInt(c, "SESSION_TTL_HOURS", 24*14)) * time.Hour,
		SecureCookies:      GetBool(c, "SESSION_COOKIE_SECURE", false),

		PageSize: positive(GetInt(c, "PAGINATOR_VALUE", 10), 10),

		MediaBackend: GetString(c, "MEDIA_BACKEND", MediaBackendLocal),
		MediaRoot:    GetString(c, "MEDIA_ROOT", "media"),
		MediaURL:     GetString(c, "MEDIA_URL", "/media/"),
		S3Bucket:     GetString(c, "S3_BUCKET", ""),
		ImagePrefix:  GetString(c, "IMAGE_PREFIX", "post_images"),
		MaxUploadMB:  positive(GetInt(c, "MAX_UPLOAD_MB", 5), 5),

		AcceptedOrigins: GetList(c, "ACCEPTED_ORIGINS"),

		LogLevel: GetString(c, "LOG_LEVEL", "info"),
		Debug:    GetBool(c, "DEBUG", false),
	}
}

// databaseURL prefers DATABASE_URL and falls back to the discrete DB_* keys.
func databaseURL(c map[string]string) string {
	if url := GetString(c, "DATABASE_URL", ""); url != "" {
		return url
	}

	host := GetString(c, "DB_HOST", "")
	if host == "" {
		return ""
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		host,
		GetString(c, "DB_USER", "postgres"),
		GetString(c, "DB_PASSWORD", ""),
		GetString(c, "DB_NAME", "blogicum"),
		GetString(c, "DB_PORT", "5432"),
		GetString(c, "DB_SSLMODE", "disable"),
	)
}

func positive(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
