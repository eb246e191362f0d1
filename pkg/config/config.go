package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata" // 컨테이너에 zoneinfo가 없어도 SCHEDULER_TIMEZONE 검증

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// HTTP API
	API APIConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Exchange page
	CBOE CBOEConfig

	// Contract naming
	Contracts ContractsConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// APIConfig holds read API settings
type APIConfig struct {
	RunsPerMinute int // POST /api/runs 허용 횟수
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// CBOEConfig holds the futures quote page settings
type CBOEConfig struct {
	URL           string
	Timeout       time.Duration
	UserAgent     string
	DebugPagePath string // 빈 값이면 페이지 덤프 안 함
	RatePerMinute int    // Redis 기반 fetch 제한 (0 = 무제한)
}

// ContractsConfig holds the product root and spot symbol used when matching rows
type ContractsConfig struct {
	FuturesRoot string
	SpotSymbol  string
}

// SchedulerConfig holds the collection schedule
type SchedulerConfig struct {
	CollectSchedule   string // cron with seconds
	Timezone          string
	JobTimeout        time.Duration
	RetentionDays     int // 원본 행 보관 일수 (0 = 무기한)
	RetentionSchedule string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		API: APIConfig{
			RunsPerMinute: getEnvAsInt("API_RUNS_PER_MIN", 2),
		},

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "vixterm"),
			User:            getEnv("DB_USER", "vixterm"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		CBOE: CBOEConfig{
			URL:           getEnv("CBOE_URL", "https://www.cboe.com/tradable_products/vix/vix_futures"),
			Timeout:       getEnvAsDuration("CBOE_TIMEOUT", "30s"),
			UserAgent:     getEnv("CBOE_USER_AGENT", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"),
			DebugPagePath: getEnv("CBOE_DEBUG_PAGE_PATH", ""),
			RatePerMinute: getEnvAsInt("CBOE_RATE_LIMIT_PER_MIN", 6),
		},

		Contracts: ContractsConfig{
			FuturesRoot: getEnv("VIX_FUTURES_ROOT", "VX"),
			SpotSymbol:  getEnv("VIX_SPOT_SYMBOL", "VIX"),
		},

		Scheduler: SchedulerConfig{
			CollectSchedule:   getEnv("COLLECT_SCHEDULE", "0 15 16 * * 1-5"), // 평일 16:15
			Timezone:          getEnv("SCHEDULER_TIMEZONE", "America/Chicago"),
			JobTimeout:        getEnvAsDuration("JOB_TIMEOUT", "10m"),
			RetentionDays:     getEnvAsInt("RAW_ROW_RETENTION_DAYS", 0),
			RetentionSchedule: getEnv("RETENTION_SCHEDULE", "0 30 3 * * *"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL built from the DB_* parts
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:   "/" + c.Database.Name,
	}
	if c.Database.Password != "" {
		u.User = url.UserPassword(c.Database.User, c.Database.Password)
	} else if c.Database.User != "" {
		u.User = url.User(c.Database.User)
	}
	return u.String()
}

// Location returns the scheduler timezone.
// Load rejects unknown zones, so the UTC fallback only applies to hand-built configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
		return fmt.Errorf("DATABASE_URL or DB_HOST and DB_NAME are required")
	}

	if _, err := strconv.Atoi(c.Database.Port); c.Database.URL == "" && err != nil {
		return fmt.Errorf("DB_PORT must be numeric: %q", c.Database.Port)
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scheduler.RetentionDays < 0 {
		return fmt.Errorf("RAW_ROW_RETENTION_DAYS must not be negative")
	}

	if c.Contracts.FuturesRoot == "" {
		return fmt.Errorf("VIX_FUTURES_ROOT must not be empty")
	}

	// 수집 시각과 근월물 기준일이 모두 이 값에 의존
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE is not a known zone: %q", c.Scheduler.Timezone)
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
