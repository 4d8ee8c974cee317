package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	Sandbox   SandboxConfig
	Standings StandingsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ServerConfig struct {
	GRPCPort string
	HTTPPort string
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTLHours int
}

func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

type LoggingConfig struct {
	Level  string
	Format string
}

// SandboxConfig describes the remote code execution service. Timeouts are in
// milliseconds; a memory limit of -1 leaves the sandbox default in place.
type SandboxConfig struct {
	BaseURL            string
	CompileTimeoutMs   int
	RunTimeoutMs       int
	CompileMemoryLimit int
	RunMemoryLimit     int
	RequestSlackMs     int
}

type StandingsConfig struct {
	Retries int
}

// RequestTimeout bounds a single HTTP call to the sandbox.
func (c SandboxConfig) RequestTimeout() time.Duration {
	return time.Duration(c.CompileTimeoutMs+c.RunTimeoutMs+c.RequestSlackMs) * time.Millisecond
}

func LoadConfig() *Config {
	config, _ := Load()
	return config
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "crucible"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "crucible"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			GRPCPort: getEnv("GRPC_PORT", "50051"),
			HTTPPort: getEnv("HTTP_PORT", "8080"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "change-me"),
			TokenTTLHours: getEnvAsInt("JWT_TTL_HOURS", 24),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Sandbox: SandboxConfig{
			BaseURL:            getEnv("SANDBOX_URL", "https://emkc.org/api/v2/piston"),
			CompileTimeoutMs:   getEnvAsInt("SANDBOX_COMPILE_TIMEOUT_MS", 10000),
			RunTimeoutMs:       getEnvAsInt("SANDBOX_RUN_TIMEOUT_MS", 3000),
			CompileMemoryLimit: getEnvAsInt("SANDBOX_COMPILE_MEMORY_LIMIT", -1),
			RunMemoryLimit:     getEnvAsInt("SANDBOX_RUN_MEMORY_LIMIT", -1),
			RequestSlackMs:     getEnvAsInt("SANDBOX_REQUEST_SLACK_MS", 2000),
		},
		Standings: StandingsConfig{
			Retries: getEnvAsInt("STANDINGS_RETRIES", 3),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
