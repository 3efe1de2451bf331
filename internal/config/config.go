// Package config загружает конфигурацию сервиса из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- HTTP ---
	HTTPAddr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	HTTPWriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	HTTPShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"vibeuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"vibe_points"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Admin ---
	// Argon2id-хеш API-ключа админки. Генерируется scripts/generate_hash.go.
	AdminKeyHash string `envconfig:"ADMIN_KEY_HASH" required:"true"`

	// --- Points: стартовые значения леджера ---
	PointsStartingBalance   int64 `envconfig:"POINTS_STARTING_BALANCE" default:"100"`
	PointsStartingProtected int64 `envconfig:"POINTS_STARTING_PROTECTED" default:"50"`

	// --- Points: буст ---
	// Сумма буста: ceil(base * (1 + max(0, уровень_автора - уровень_голосующего) * factor))
	BoostBaseAmount  float64 `envconfig:"BOOST_BASE_AMOUNT" default:"2"`
	BoostLevelFactor float64 `envconfig:"BOOST_LEVEL_FACTOR" default:"0.1"`

	// --- Points: дампен ---
	DampenBasePenalty       int64   `envconfig:"DAMPEN_BASE_PENALTY" default:"5"`
	DampenMaxPenalty        int64   `envconfig:"DAMPEN_MAX_PENALTY" default:"10"`
	DampenLowBalanceBound   int64   `envconfig:"DAMPEN_LOW_BALANCE_BOUND" default:"25"`
	DampenFloorMultiplier   float64 `envconfig:"DAMPEN_FLOOR_MULTIPLIER" default:"0.4"`
	DampenKarmaStep         float64 `envconfig:"DAMPEN_KARMA_STEP" default:"0.01"`
	DampenDailyLimit        int     `envconfig:"DAMPEN_DAILY_LIMIT" default:"10"`
	MinProtectedPoints      int64   `envconfig:"MIN_PROTECTED_POINTS" default:"10"`
	NewUserProtectionDays   int     `envconfig:"NEW_USER_PROTECTION_DAYS" default:"7"`

	// --- Notifications (опционально) ---
	TelegramBotToken     string `envconfig:"TELEGRAM_BOT_TOKEN" default:""`
	TelegramNotifyChatID int64  `envconfig:"TELEGRAM_NOTIFY_CHAT_ID" default:"0"`

	// --- Jobs ---
	SnapshotCronSpec string `envconfig:"SNAPSHOT_CRON_SPEC" default:"5 0 * * *"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Validate проверяет согласованность настроек экономики.
func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.PointsStartingBalance < 0 || c.PointsStartingProtected < 0 {
		return fmt.Errorf("стартовые значения поинтов не могут быть отрицательными")
	}
	if c.BoostBaseAmount <= 0 {
		return fmt.Errorf("BOOST_BASE_AMOUNT должен быть > 0")
	}
	if c.DampenBasePenalty <= 0 || c.DampenMaxPenalty < c.DampenBasePenalty {
		return fmt.Errorf("некорректные DAMPEN_BASE_PENALTY/DAMPEN_MAX_PENALTY")
	}
	if c.DampenFloorMultiplier <= 0 || c.DampenFloorMultiplier > 1 {
		return fmt.Errorf("DAMPEN_FLOOR_MULTIPLIER должен быть в (0, 1]")
	}
	if c.DampenDailyLimit <= 0 {
		return fmt.Errorf("DAMPEN_DAILY_LIMIT должен быть > 0")
	}
	if c.NewUserProtectionDays < 0 {
		return fmt.Errorf("NEW_USER_PROTECTION_DAYS не может быть отрицательным")
	}
	if c.TelegramBotToken != "" && c.TelegramNotifyChatID == 0 {
		return fmt.Errorf("TELEGRAM_NOTIFY_CHAT_ID не задан при включённом боте")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
