// Файл: pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	FilePath string
}

// PostgresConfig - архив истории. Без DSN архив не поднимается, движок работает только в памяти.
type PostgresConfig struct {
	DSN     string
	Enabled bool
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Enabled  bool
	// Ключ множества ID оборудования, уже включенного в план замены.
	PlanSetKey string
}

// LifecycleConfig - параметры подбора кандидатов на замену.
type LifecycleConfig struct {
	RenewalMinAgeYears int
	RenewalQuotaPct    int
}

type MetricsConfig struct {
	Enabled bool
}

// TelegramConfig - уведомления в чат ИТ-отдела. Без токена уведомления только пишутся в лог.
type TelegramConfig struct {
	BotToken    string
	ChatID      int64
	APIEndpoint string
	Enabled     bool
}

// StorageConfig - куда складываются копии загруженных Excel-файлов.
type StorageConfig struct {
	ImportDir string
}

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Lifecycle LifecycleConfig
	Metrics   MetricsConfig
	Telegram  TelegramConfig
	Storage   StorageConfig
	SeedDemo  bool
}

func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Предупреждение: .env файл не найден или не удалось его загрузить.")
	}

	dsn := getEnv("DATABASE_URL", "")
	redisAddr := getEnv("REDIS_ADDRESS", "")
	botToken := getEnv("TELEGRAM_BOT_TOKEN", "")

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "debug"),
			FilePath: getEnv("LOG_FILE", ""),
		},
		Postgres: PostgresConfig{
			DSN:     dsn,
			Enabled: dsn != "",
		},
		Redis: RedisConfig{
			Address:    redisAddr,
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			Enabled:    redisAddr != "",
			PlanSetKey: getEnv("REDIS_PLAN_SET_KEY", "replacement_plan:equipment_ids"),
		},
		Lifecycle: LifecycleConfig{
			RenewalMinAgeYears: getEnvInt("RENEWAL_MIN_AGE_YEARS", 4),
			RenewalQuotaPct:    getEnvInt("RENEWAL_QUOTA_PCT", 20),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
		Telegram: TelegramConfig{
			BotToken:    botToken,
			ChatID:      getEnvInt64("TELEGRAM_CHAT_ID", 0),
			APIEndpoint: getEnv("TELEGRAM_API_ENDPOINT", ""),
			Enabled:     botToken != "",
		},
		Storage: StorageConfig{
			ImportDir: getEnv("IMPORT_ARCHIVE_DIR", "uploads/imports"),
		},
		SeedDemo: getEnvBool("SEED_DEMO_DATA", true),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Предупреждение: %s=%q не число, используется %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("Предупреждение: %s=%q не число, используется %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
