package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	HTTPPort    int
	CORSOrigins []string

	StorageDriver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsPath   string

	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret   string
	JWTTTL      time.Duration
	AdminEmails []string

	TelegramBotToken string

	RateLimitRPS   float64
	RateLimitBurst int

	MinWithdrawalCents int64
	PendingOrderTTL    time.Duration

	Timezone             string
	RankSyncSchedule     string
	ExpireOrdersSchedule string
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "entregas"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))

	cfg.HTTPPort = cast.ToInt(getOrReturnDefault("HTTP_PORT", 8080))
	cfg.CORSOrigins = splitList(cast.ToString(getOrReturnDefault("CORS_ORIGINS", "*")))

	cfg.StorageDriver = cast.ToString(getOrReturnDefault("STORAGE_DRIVER", StoragePostgres))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "entregas"))
	cfg.MigrationsPath = cast.ToString(getOrReturnDefault("MIGRATIONS_PATH", ""))

	cfg.RedisEnabled = cast.ToBool(getOrReturnDefault("REDIS_ENABLED", false))
	cfg.RedisHost = cast.ToString(getOrReturnDefault("REDIS_HOST", "localhost"))
	cfg.RedisPort = cast.ToString(getOrReturnDefault("REDIS_PORT", "6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))
	cfg.RedisDB = cast.ToInt(getOrReturnDefault("REDIS_DB", 0))

	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", "change-me"))
	cfg.JWTTTL = cast.ToDuration(getOrReturnDefault("JWT_TTL", "72h"))
	cfg.AdminEmails = splitList(cast.ToString(getOrReturnDefault("ADMIN_EMAILS", "")))

	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", ""))

	cfg.RateLimitRPS = cast.ToFloat64(getOrReturnDefault("RATE_LIMIT_RPS", 10))
	cfg.RateLimitBurst = cast.ToInt(getOrReturnDefault("RATE_LIMIT_BURST", 20))

	cfg.MinWithdrawalCents = cast.ToInt64(getOrReturnDefault("MIN_WITHDRAWAL_CENTS", 2000))
	cfg.PendingOrderTTL = cast.ToDuration(getOrReturnDefault("PENDING_ORDER_TTL", "24h"))

	cfg.Timezone = cast.ToString(getOrReturnDefault("TIMEZONE", "America/Sao_Paulo"))
	cfg.RankSyncSchedule = cast.ToString(getOrReturnDefault("RANK_SYNC_SCHEDULE", "@hourly"))
	cfg.ExpireOrdersSchedule = cast.ToString(getOrReturnDefault("EXPIRE_ORDERS_SCHEDULE", "0 3 * * *"))

	return cfg
}

func (c Config) PostgresURL() string {
	return "postgres://" + c.PostgresUser + ":" + c.PostgresPassword + "@" +
		c.PostgresHost + ":" + c.PostgresPort + "/" + c.PostgresDB + "?sslmode=disable"
}

func (c Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.ToLower(strings.TrimSpace(part)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
