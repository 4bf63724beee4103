package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env         string `validate:"oneof=prod dev"`
	BotToken    string
	StoreDriver string `validate:"oneof=postgres sqlite memory"`
	SQLitePath  string `validate:"required_if=StoreDriver sqlite"`
	Database    DatabaseConfig
	Timezone    string `validate:"required"`
	QuizSeconds int    `validate:"min=5,max=600"`
	Reminder    ReminderConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// ReminderConfig holds the daily streak reminder settings.
// An empty ChatID disables the reminder.
type ReminderConfig struct {
	ChatID int64
	At     string `validate:"required"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	quizSeconds, err := strconv.Atoi(getEnv("QUIZ_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("QUIZ_SECONDS must be a number: %w", err)
	}

	var chatID int64
	if raw := os.Getenv("REMINDER_CHAT_ID"); raw != "" {
		chatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("REMINDER_CHAT_ID must be a number: %w", err)
		}
	}

	cfg := &Config{
		Env:         getEnv("APP_ENV", "prod"),
		BotToken:    os.Getenv("BOT_TOKEN"),
		StoreDriver: getEnv("STORE_DRIVER", "sqlite"),
		SQLitePath:  getEnv("SQLITE_PATH", "flashdeck.db"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "flashdeck"),
			User:     getEnv("DB_USER", "flashdeck"),
			Password: os.Getenv("DB_PASSWORD"),
		},
		Timezone:    getEnv("TIMEZONE", "Local"),
		QuizSeconds: quizSeconds,
		Reminder: ReminderConfig{
			ChatID: chatID,
			At:     getEnv("REMINDER_TIME", "20:00"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.StoreDriver == "postgres" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required for the postgres store")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("unknown TIMEZONE %q: %w", c.Timezone, err)
	}
	if _, err := time.Parse("15:04", c.Reminder.At); err != nil {
		return fmt.Errorf("REMINDER_TIME must be HH:MM: %w", err)
	}
	return nil
}

// ValidateBot checks the settings only the Telegram bot needs. Offline
// import and export run without them.
func (c *Config) ValidateBot() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required to run the bot")
	}
	return nil
}

// Location returns the calendar used for streak days
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// QuizDuration returns the per-question countdown budget
func (c *Config) QuizDuration() time.Duration {
	return time.Duration(c.QuizSeconds) * time.Second
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
