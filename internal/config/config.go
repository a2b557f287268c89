package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	History    HistoryConfig
	Engine     EngineConfig
	Database   DatabaseConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	Host           string
	AllowedOrigins []string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	AnalysesPerMin    int
	RequestsPerMinute int
}

type HistoryConfig struct {
	MaxItems int
	TTLHours int
}

type EngineConfig struct {
	MaxTextLength    int
	MaxRuleMatches   int
	UnknownAgePolicy string
	RulesPath        string
}

type DatabaseConfig struct {
	URL string
}

type MonitoringConfig struct {
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            getEnv("ENV", "development"),
			Host:           getEnv("HOST", "0.0.0.0"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			AnalysesPerMin:    getEnvAsInt("RATE_LIMIT_ANALYSES_PER_MIN", 30),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MIN", 100),
		},
		History: HistoryConfig{
			MaxItems: getEnvAsInt("HISTORY_MAX_ITEMS", 5),
			TTLHours: getEnvAsInt("HISTORY_TTL_HOURS", 24*30),
		},
		Engine: EngineConfig{
			MaxTextLength:    getEnvAsInt("ENGINE_MAX_TEXT_LENGTH", 10000),
			MaxRuleMatches:   getEnvAsInt("ENGINE_MAX_RULE_MATCHES", 25),
			UnknownAgePolicy: getEnv("ENGINE_UNKNOWN_DOMAIN_AGE", "unknown"),
			RulesPath:        getEnv("RULES_PATH", ""),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Monitoring: MonitoringConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.History.MaxItems <= 0 {
		return fmt.Errorf("HISTORY_MAX_ITEMS must be positive, got %d", c.History.MaxItems)
	}
	if c.Engine.MaxTextLength <= 0 {
		return fmt.Errorf("ENGINE_MAX_TEXT_LENGTH must be positive, got %d", c.Engine.MaxTextLength)
	}
	if c.Engine.MaxRuleMatches <= 0 {
		return fmt.Errorf("ENGINE_MAX_RULE_MATCHES must be positive, got %d", c.Engine.MaxRuleMatches)
	}
	if c.RateLimit.AnalysesPerMin <= 0 || c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) HistoryTTL() time.Duration {
	return time.Duration(c.History.TTLHours) * time.Hour
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
