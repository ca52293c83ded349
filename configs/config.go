package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings holds every tunable of the booking engine and its adapters.
type Settings struct {
	Env         string `mapstructure:"ENV"`
	AppPort     string `mapstructure:"APP_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	TimeCapHours       int           `mapstructure:"TIME_CAP_HOURS"`
	CancellationCutoff time.Duration `mapstructure:"CANCELLATION_CUTOFF"`
	StorageTimeout     time.Duration `mapstructure:"STORAGE_TIMEOUT"`
	LockTimeout        time.Duration `mapstructure:"LOCK_TIMEOUT"`

	SweepSchedule    string        `mapstructure:"SWEEP_SCHEDULE"`
	SweepBatchSize   int           `mapstructure:"SWEEP_BATCH_SIZE"`
	SweepLeaseTTL    time.Duration `mapstructure:"SWEEP_LEASE_TTL"`
	ReminderSchedule string        `mapstructure:"REMINDER_SCHEDULE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	BrevoAPIKey     string `mapstructure:"BREVO_API_KEY"`
	EmailSender     string `mapstructure:"EMAIL_SENDER"`
	EmailSenderName string `mapstructure:"EMAIL_SENDER_NAME"`
}

func (s Settings) IsProduction() bool {
	return s.Env == "production"
}

// Load reads .env, applies defaults and environment overrides and
// returns the typed settings.
func Load() (Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("TIME_CAP_HOURS", 24)
	v.SetDefault("CANCELLATION_CUTOFF", "24h")
	v.SetDefault("STORAGE_TIMEOUT", "5s")
	v.SetDefault("LOCK_TIMEOUT", "2s")

	v.SetDefault("SWEEP_SCHEDULE", "@every 1m")
	v.SetDefault("SWEEP_BATCH_SIZE", 500)
	v.SetDefault("SWEEP_LEASE_TTL", "50s")
	v.SetDefault("REMINDER_SCHEDULE", "*/5 * * * *")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("BREVO_API_KEY", "")
	v.SetDefault("EMAIL_SENDER", "")
	v.SetDefault("EMAIL_SENDER_NAME", "")

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	if s.DatabaseURL == "" {
		return Settings{}, errors.New("DATABASE_URL is required")
	}
	if s.JWTSecret == "" {
		return Settings{}, errors.New("JWT_SECRET is required")
	}
	return s, nil
}
