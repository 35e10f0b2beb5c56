package utils

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	AMQP     AMQPConfig
	Email    EmailConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name     string
	Port     string
	Debug    bool
	LogPath  string
	AdminKey string
	Timezone string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type AMQPConfig struct {
	URL   string
	Queue string
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type BookingConfig struct {
	MaxSeats        int
	WindowDays      int
	LockTTL         time.Duration
	DraftTTL        time.Duration
	CompletionEvery time.Duration
	NotifyDriver    string
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	// A missing .env is fine, the environment alone can configure the service.
	_ = godotenv.Load()

	viper.SetDefault("APP_NAME", "restaurant-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("KAFKA_TOPIC", "booking.events")
	viper.SetDefault("AMQP_QUEUE", "booking.confirmed")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("BOOKING_MAX_SEATS", 10)
	viper.SetDefault("BOOKING_WINDOW_DAYS", 30)
	viper.SetDefault("BOOKING_LOCK_TTL", "5s")
	viper.SetDefault("DRAFT_TTL", "30m")
	viper.SetDefault("COMPLETION_EVERY", "15m")
	viper.SetDefault("NOTIFY_DRIVER", "log")

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:     viper.GetString("APP_NAME"),
			Port:     viper.GetString("PORT"),
			Debug:    viper.GetBool("DEBUG"),
			LogPath:  viper.GetString("LOG_PATH"),
			AdminKey: viper.GetString("ADMIN_KEY"),
			Timezone: viper.GetString("TIMEZONE"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers: splitCSV(viper.GetString("KAFKA_BROKERS")),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		AMQP: AMQPConfig{
			URL:   viper.GetString("AMQP_URL"),
			Queue: viper.GetString("AMQP_QUEUE"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		Booking: BookingConfig{
			MaxSeats:        viper.GetInt("BOOKING_MAX_SEATS"),
			WindowDays:      viper.GetInt("BOOKING_WINDOW_DAYS"),
			LockTTL:         viper.GetDuration("BOOKING_LOCK_TTL"),
			DraftTTL:        viper.GetDuration("DRAFT_TTL"),
			CompletionEvery: viper.GetDuration("COMPLETION_EVERY"),
			NotifyDriver:    strings.ToLower(viper.GetString("NOTIFY_DRIVER")),
		},
	}

	return config, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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
