// Package config собирает настройки из значений по умолчанию, флагов,
// файла .env и переменных окружения (окружение имеет приоритет).
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config содержит настройки сервера
type Config struct {
	RunAddr              string
	GRPCAddr             string
	BaseURL              string
	FileStoragePath      string
	DatabaseDSN          string
	RedisAddr            string
	RedisDB              int
	FirestoreProjectID   string
	FirestoreCredentials string
	CommentsDBPath       string
	JWTSecret            string
	CookieTTL            time.Duration
	TrustedSubnet        string
	LogLevel             string
	LogFile              string
	RateLimit            int
	RateWindow           time.Duration
	DebounceDelay        time.Duration
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		RunAddr:       ":8080",
		GRPCAddr:      ":3200",
		BaseURL:       "http://localhost:8080",
		JWTSecret:     "default_jwt_secret",
		CookieTTL:     30 * 24 * time.Hour,
		LogLevel:      "info",
		RateLimit:     60,
		RateWindow:    time.Minute,
		DebounceDelay: 500 * time.Millisecond,
	}
}

// LoadDotEnv загружает .env, если он есть; уже заданные переменные не перезаписываются
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// NewConfig разбирает аргументы командной строки и переменные окружения
func NewConfig(args []string) (*Config, error) {
	cfg := Default()

	flags := flag.NewFlagSet("dealhub", flag.ContinueOnError)
	flags.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "address and port to run HTTP server")
	flags.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "address and port to run gRPC server")
	flags.StringVar(&cfg.BaseURL, "b", cfg.BaseURL, "public base URL of the API")
	flags.StringVar(&cfg.FileStoragePath, "f", cfg.FileStoragePath, "path to stats journal file")
	flags.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN for PostgreSQL")
	flags.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address for stats and rate limiting")
	flags.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database number")
	flags.StringVar(&cfg.FirestoreProjectID, "p", cfg.FirestoreProjectID, "Firestore project ID for stats")
	flags.StringVar(&cfg.FirestoreCredentials, "firestore-credentials", cfg.FirestoreCredentials, "service account JSON for Firestore")
	flags.StringVar(&cfg.CommentsDBPath, "c", cfg.CommentsDBPath, "SQLite file for comments")
	flags.StringVar(&cfg.JWTSecret, "j", cfg.JWTSecret, "JWT secret key")
	flags.DurationVar(&cfg.CookieTTL, "cookie-ttl", cfg.CookieTTL, "lifetime of the identity cookie")
	flags.StringVar(&cfg.TrustedSubnet, "t", cfg.TrustedSubnet, "trusted subnet in CIDR notation")
	flags.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "rotated log file path")
	flags.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "requests per window per actor, 0 disables")
	flags.DurationVar(&cfg.RateWindow, "rate-window", cfg.RateWindow, "rate limit window")
	flags.DurationVar(&cfg.DebounceDelay, "debounce", cfg.DebounceDelay, "idle delay before a duplicate check")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv переопределяет значения переменными окружения
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SERVER_ADDRESS":        &c.RunAddr,
		"GRPC_ADDRESS":          &c.GRPCAddr,
		"BASE_URL":              &c.BaseURL,
		"FILE_STORAGE_PATH":     &c.FileStoragePath,
		"DATABASE_DSN":          &c.DatabaseDSN,
		"REDIS_ADDR":            &c.RedisAddr,
		"FIRESTORE_PROJECT_ID":  &c.FirestoreProjectID,
		"FIRESTORE_CREDENTIALS": &c.FirestoreCredentials,
		"COMMENTS_DB_PATH":      &c.CommentsDBPath,
		"JWT_SECRET":            &c.JWTSecret,
		"TRUSTED_SUBNET":        &c.TrustedSubnet,
		"LOG_LEVEL":             &c.LogLevel,
		"LOG_FILE":              &c.LogFile,
	}
	for key, target := range strs {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}

	ints := map[string]*int{
		"REDIS_DB":   &c.RedisDB,
		"RATE_LIMIT": &c.RateLimit,
	}
	for key, target := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*target = n
		}
	}

	durations := map[string]*time.Duration{
		"COOKIE_TTL":     &c.CookieTTL,
		"RATE_WINDOW":    &c.RateWindow,
		"DEBOUNCE_DELAY": &c.DebounceDelay,
	}
	for key, target := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*target = d
		}
	}
	return nil
}

// normalize приводит адреса к полной форме и проверяет значения
func (c *Config) normalize() error {
	c.RunAddr = normalizeAddr(c.RunAddr)
	c.GRPCAddr = normalizeAddr(c.GRPCAddr)
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		c.BaseURL = "http://" + c.BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if c.TrustedSubnet != "" {
		if _, _, err := net.ParseCIDR(c.TrustedSubnet); err != nil {
			return fmt.Errorf("TRUSTED_SUBNET: %w", err)
		}
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT must not be negative: %d", c.RateLimit)
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("RATE_WINDOW must be positive: %s", c.RateWindow)
	}
	if c.DebounceDelay <= 0 {
		return fmt.Errorf("DEBOUNCE_DELAY must be positive: %s", c.DebounceDelay)
	}

	for _, path := range []string{c.FileStoragePath, c.CommentsDBPath, c.LogFile} {
		if path == "" {
			continue
		}
		// Создаём директорию для файла, если она не существует
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
	}
	return nil
}

func normalizeAddr(addr string) string {
	if !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}
