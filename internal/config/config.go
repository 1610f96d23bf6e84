package config

import (
	"fmt"
	"log"
	"time"
	_ "time/tzdata" // TIMEZONE должен работать и в образах без zoneinfo

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string `env:"DB_DSN,required,notEmpty"`
	Environment   string `env:"ENV" envDefault:"development"`
	TelegramToken string `env:"TELEGRAM_TOKEN"`
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	Timezone      string `env:"TIMEZONE" envDefault:"UTC"`
	MigrationsDir string `env:"MIGRATIONS_DIR"` // пусто = встроенные миграции

	SearchPageSize int           `env:"SEARCH_PAGE_SIZE" envDefault:"5"`
	RequestTTL     time.Duration `env:"REQUEST_TTL" envDefault:"24h"`
	ReviewWindow   time.Duration `env:"REVIEW_WINDOW" envDefault:"120h"`
	ExpireCron     string        `env:"EXPIRE_CRON" envDefault:"*/5 * * * *"`
	CompleteCron   string        `env:"COMPLETE_CRON" envDefault:"*/15 * * * *"`

	GoogleCredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`
	GoogleCalendarID      string `env:"GOOGLE_CALENDAR_ID" envDefault:"primary"`

	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"signbridge.events"`

	location *time.Location
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseEnv заполняет структуру из переменных окружения
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	c.location = loc

	if c.SearchPageSize <= 0 {
		return fmt.Errorf("SEARCH_PAGE_SIZE must be positive, got %d", c.SearchPageSize)
	}
	if c.RequestTTL <= 0 {
		return fmt.Errorf("REQUEST_TTL must be positive, got %s", c.RequestTTL)
	}
	if c.ReviewWindow <= 0 {
		return fmt.Errorf("REVIEW_WINDOW must be positive, got %s", c.ReviewWindow)
	}
	return nil
}

// Location часовой пояс расписаний переводчиков
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// IsProduction проверяет режим окружения
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}
