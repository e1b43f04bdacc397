package app

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/lms-backend/internal/platform/envutil"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	ServiceName string

	DBDriver   string
	SQLitePath string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	CertificateCodePrefix    string
	CertificateVerifyBaseURL string

	CORSOrigins []string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int

	MetricsAddr string
}

// LoadDotEnv loads .env when present. Variables already set win.
func LoadDotEnv(log *logger.Logger) {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		log.Warn("Failed to load .env", "error", err)
		return
	}
	log.Info("Loaded .env")
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "lms-backend"),

		DBDriver:   strings.ToLower(envutil.String("DB_DRIVER", "postgres")),
		SQLitePath: envutil.String("SQLITE_PATH", "lms.db"),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),

		CertificateCodePrefix:    strings.ToUpper(envutil.String("CERTIFICATE_CODE_PREFIX", "LM")),
		CertificateVerifyBaseURL: envutil.String("CERTIFICATE_VERIFY_BASE_URL", "http://localhost:3000"),

		CORSOrigins: splitList(envutil.String("CORS_ORIGINS", "")),

		RedisAddr:          envutil.String("REDIS_ADDR", ""),
		RedisPassword:      envutil.String("REDIS_PASSWORD", ""),
		RedisDB:            envutil.Int("REDIS_DB", 0),
		RateLimitPerMinute: envutil.Int("RATE_LIMIT_PER_MINUTE", 60),

		MetricsAddr: envutil.String("METRICS_ADDR", ":9090"),
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY is not set; using the development default")
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
