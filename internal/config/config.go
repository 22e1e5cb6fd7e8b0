package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Environment name (development, production, ...)
	Env string

	Database DatabaseConfig
	Server   ServerConfig
	Security SecurityConfig
	CORS     CORSConfig
	Logging  LoggingConfig
	Calendar CalendarConfig
	Outreach OutreachConfig
	Telegram TelegramConfig
	Sheets   SheetsConfig
}

// DatabaseConfig holds database connection settings.
// An empty URL means the store runs without a database.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int
	Host string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds session and admin login settings
type SecurityConfig struct {
	JWTSecret      string
	AppID          string
	OwnerOpenID    string
	AdminPasscode  string // plain text or a bcrypt hash
	OAuthServerURL string // accepted for compatibility; the passcode flow does not call it
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigin string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// CalendarConfig controls how calendar months are bounded.
type CalendarConfig struct {
	Location *time.Location
}

// OutreachConfig holds SMS delivery and schedule settings.
type OutreachConfig struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	FromNumber       string
	Schedule         string // cron expression; empty disables the scheduled broadcast
}

// Enabled reports whether SMS delivery is configured.
func (o OutreachConfig) Enabled() bool {
	return o.TwilioAccountSID != "" && o.TwilioAuthToken != "" && o.FromNumber != ""
}

// TelegramConfig holds admin alert settings.
type TelegramConfig struct {
	BotToken    string
	AdminChatID int64
}

// Enabled reports whether admin alerts are configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.AdminChatID != 0
}

// SheetsConfig holds spreadsheet export settings.
type SheetsConfig struct {
	ServiceAccountJSON string // path to the service account key file
	SpreadsheetID      string
}

// Enabled reports whether spreadsheet export is configured.
func (s SheetsConfig) Enabled() bool {
	return s.ServiceAccountJSON != "" && s.SpreadsheetID != ""
}

// Load reads configuration from environment variables, after applying any .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// LoadDatabase reads only the database settings, for tools that never serve requests.
func LoadDatabase() (DatabaseConfig, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := cfg.loadDatabase(); err != nil {
		return DatabaseConfig{}, err
	}
	return cfg.Database, nil
}

// FromEnv reads configuration from the current process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env: strings.ToLower(getEnvOrDefault("APP_ENV", "development")),
	}

	if err := cfg.loadDatabase(); err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}
	if err := cfg.loadServer(); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	cfg.loadSecurity()
	cfg.loadCORS()
	cfg.loadLogging()
	if err := cfg.loadCalendar(); err != nil {
		return nil, fmt.Errorf("load calendar config: %w", err)
	}
	cfg.loadOutreach()
	if err := cfg.loadTelegram(); err != nil {
		return nil, fmt.Errorf("load telegram config: %w", err)
	}
	cfg.loadSheets()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadDatabase() error {
	c.Database.URL = os.Getenv("DATABASE_URL")
	if c.Database.URL != "" {
		return nil
	}

	c.Database.Host = getEnvOrDefault("DB_HOST", "localhost")
	c.Database.User = os.Getenv("DB_USER")
	c.Database.Password = os.Getenv("DB_PASSWORD")
	c.Database.Name = os.Getenv("DB_NAME")
	c.Database.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")

	port, err := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
	if err != nil {
		return fmt.Errorf("invalid DB_PORT: %w", err)
	}
	c.Database.Port = port

	if c.Database.User != "" && c.Database.Name != "" {
		c.Database.URL = fmt.Sprintf(
			"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
			c.Database.SSLMode,
		)
	}
	return nil
}

func (c *Config) loadServer() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	c.Server.Port = port
	c.Server.Host = getEnvOrDefault("HOST", "0.0.0.0")
	return nil
}

func (c *Config) loadSecurity() {
	c.Security.JWTSecret = os.Getenv("JWT_SECRET")
	c.Security.AppID = os.Getenv("APP_ID")
	c.Security.OwnerOpenID = strings.TrimSpace(os.Getenv("OWNER_OPEN_ID"))
	c.Security.AdminPasscode = os.Getenv("ADMIN_PASSCODE")
	c.Security.OAuthServerURL = os.Getenv("OAUTH_SERVER_URL")
}

func (c *Config) loadCORS() {
	c.CORS.AllowedOrigin = getEnvOrDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173")
}

func (c *Config) loadLogging() {
	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", "info")
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", "json")
}

func (c *Config) loadCalendar() error {
	name := getEnvOrDefault("TIMEZONE", "Local")
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", name, err)
	}
	c.Calendar.Location = loc
	return nil
}

func (c *Config) loadOutreach() {
	c.Outreach.TwilioAccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	c.Outreach.TwilioAuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	c.Outreach.FromNumber = os.Getenv("TWILIO_FROM_NUMBER")
	c.Outreach.Schedule = "0 10 1 * *"
	if value, ok := os.LookupEnv("OUTREACH_SCHEDULE"); ok {
		c.Outreach.Schedule = strings.TrimSpace(value)
	}
}

func (c *Config) loadTelegram() error {
	c.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	raw := strings.TrimSpace(os.Getenv("TELEGRAM_ADMIN_CHAT_ID"))
	if raw == "" {
		return nil
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID: %w", err)
	}
	c.Telegram.AdminChatID = chatID
	return nil
}

func (c *Config) loadSheets() {
	c.Sheets.ServiceAccountJSON = os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")
	c.Sheets.SpreadsheetID = os.Getenv("SPREADSHEET_ID")
}

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errors []string

	if c.Security.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	} else if len(c.Security.JWTSecret) < 16 && !c.IsDevelopment() {
		errors = append(errors, "JWT_SECRET must be at least 16 characters")
	}
	if c.Security.AppID == "" {
		errors = append(errors, "APP_ID is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
