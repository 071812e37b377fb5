package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port           string
	BaseURL        string
	CORSOrigins    []string
	ReportMaxBytes int64
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
	URL string
}

type AuthConfig struct {
	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
}

// MonitorConfig configures the tracking client used by the simulate command.
type MonitorConfig struct {
	ProjectName   string
	ReportURL     string
	RetentionDays int
	Store         string
	SQLitePath    string
}

type Config struct {
	Server  ServerConfig
	DB      DatabaseConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Monitor MonitorConfig
	Env     string
}

func LoadConfig() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
			CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "")),
			ReportMaxBytes: int64(getEnvInt("REPORT_MAX_BODY", 64<<10)),
		},
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "behavior"),
			Password: getEnv("DB_PASS", "behavior"),
			DBName:   getEnv("DB_NAME", "behavior_monitor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Monitor: MonitorConfig{
			ProjectName:   getEnv("MONITOR_PROJECT", "demo"),
			ReportURL:     getEnv("MONITOR_REPORT_URL", "http://localhost:8080/report"),
			RetentionDays: getEnvInt("MONITOR_RETENTION_DAYS", 30),
			Store:         getEnv("MONITOR_STORE", "memory"),
			SQLitePath:    getEnv("MONITOR_SQLITE_PATH", "behavior-profile.db"),
		},
		Env: getEnv("ENV", "prod"),
	}
}

// DSN returns the postgres URL used by both sqlx and the migrate command.
func (c DatabaseConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
