package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/health-records/internal/logger"
	"gopkg.in/yaml.v2"
)

type Config struct {
	TelegramToken string
	AI            AIConfig
	HTTP          HTTPConfig
	DB            DBConfig
	Redis         RedisConfig
	Auth          AuthConfig
	Assist        AssistConfig
	Logger        LoggerConfig
}

type AIConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
}

type HTTPConfig struct {
	Addr         string
	AllowOrigins string
	RateLimit    int
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the postgres connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a redis server is configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns host:port
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type AuthConfig struct {
	JWTSecret          string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	AuthorizedDomains  []string
}

type AssistConfig struct {
	AnalysisDelay         time.Duration
	SuggestionSettleDelay time.Duration
	AITimeout             time.Duration
	SessionIdleTimeout    time.Duration
	InFlightTTL           time.Duration
	UpcomingMonths        int
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

// source resolves a key from the environment first, then the YAML file
type source map[string]string

func (s source) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := s[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (s source) duration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw := s.get(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}

func (s source) int(key string, defaultValue int, errs *[]error) int {
	raw := s.get(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readFile loads flat KEY: value pairs from a YAML file; a missing file is not an error
func readFile(path string) (source, error) {
	if path == "" {
		return source{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return source{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return source(values), nil
}

// Load reads the configuration from the environment layered over CONFIG_FILE
// (default config.yaml).
func Load() (*Config, error) {
	file, err := readFile(getEnvOrDefault("CONFIG_FILE", "config.yaml"))
	if err != nil {
		return nil, err
	}
	return load(file)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func load(s source) (*Config, error) {
	var errs []error

	cfg := &Config{
		TelegramToken: s.get("TELEGRAM_BOT_TOKEN", ""),
		AI: AIConfig{
			GeminiAPIKey: s.get("GEMINI_API_KEY", ""),
			GeminiModel:  s.get("GEMINI_MODEL", "gemini-1.5-flash"),
			OpenAIAPIKey: s.get("OPENAI_API_KEY", ""),
			OpenAIModel:  s.get("OPENAI_MODEL", "gpt-4o-mini"),
		},
		HTTP: HTTPConfig{
			Addr:         s.get("HTTP_ADDR", ":8080"),
			AllowOrigins: s.get("HTTP_ALLOW_ORIGINS", "*"),
			RateLimit:    s.int("HTTP_RATE_LIMIT", 20, &errs),
		},
		DB: DBConfig{
			Host:     s.get("DB_HOST", "localhost"),
			Port:     s.get("DB_PORT", "5432"),
			User:     s.get("DB_USER", "postgres"),
			Password: s.get("DB_PASSWORD", "postgres"),
			DBName:   s.get("DB_NAME", "health_records"),
			SSLMode:  s.get("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     s.get("REDIS_HOST", ""),
			Port:     s.get("REDIS_PORT", "6379"),
			Password: s.get("REDIS_PASSWORD", ""),
			DB:       s.int("REDIS_DB", 0, &errs),
		},
		Auth: AuthConfig{
			JWTSecret:          s.get("JWT_SECRET", ""),
			TokenTTL:           s.duration("JWT_TTL", 72*time.Hour, &errs),
			GoogleClientID:     s.get("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: s.get("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  s.get("GOOGLE_REDIRECT_URL", ""),
			AuthorizedDomains:  splitList(s.get("AUTHORIZED_DOMAINS", "localhost")),
		},
		Assist: AssistConfig{
			AnalysisDelay:         s.duration("ANALYSIS_DELAY", time.Second, &errs),
			SuggestionSettleDelay: s.duration("SUGGESTION_SETTLE_DELAY", 2*time.Second, &errs),
			AITimeout:             s.duration("AI_TIMEOUT", 30*time.Second, &errs),
			SessionIdleTimeout:    s.duration("SESSION_IDLE_TIMEOUT", 30*time.Minute, &errs),
			InFlightTTL:           s.duration("IN_FLIGHT_TTL", time.Minute, &errs),
			UpcomingMonths:        s.int("UPCOMING_MONTHS", 6, &errs),
		},
		Logger: LoggerConfig{
			Level:      logger.ParseLevel(s.get("LOG_LEVEL", "info")),
			OutputPath: s.get("LOG_OUTPUT", "stdout"),
			Format:     s.get("LOG_FORMAT", "json"),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.AI.GeminiAPIKey == "" && c.AI.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY or OPENAI_API_KEY is required"))
	}
	if (c.Auth.GoogleClientID == "") != (c.Auth.GoogleClientSecret == "") {
		errs = append(errs, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set together"))
	}
	if c.Auth.GoogleClientID != "" && c.Auth.GoogleRedirectURL == "" {
		errs = append(errs, errors.New("GOOGLE_REDIRECT_URL is required for Google sign-in"))
	}
	if c.Assist.AITimeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}
	if c.Assist.InFlightTTL <= c.Assist.AnalysisDelay+c.Assist.AITimeout {
		errs = append(errs, errors.New("IN_FLIGHT_TTL must exceed ANALYSIS_DELAY plus AI_TIMEOUT"))
	}
	if c.Assist.UpcomingMonths <= 0 {
		errs = append(errs, errors.New("UPCOMING_MONTHS must be positive"))
	}
	if c.Logger.Format != "json" && c.Logger.Format != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Logger.Format))
	}
	return errors.Join(errs...)
}

// GoogleEnabled reports whether Google sign-in is configured
func (c *Config) GoogleEnabled() bool {
	return c.Auth.GoogleClientID != ""
}
