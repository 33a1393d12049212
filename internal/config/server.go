package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"
)

// ServerConfig настройки relay сервера
type ServerConfig struct {
	Addr            string
	DBPath          string
	JWTSecret       string
	IssueToken      string // выпустить токен для пользователя и выйти
	LogLevel        string
	LogFile         string
	TokenTTL        time.Duration
	RateWindow      time.Duration
	ShutdownTimeout time.Duration
	RateLimit       int // запросов POST /sync на ключ за RateWindow; 0 - без ограничения
	ShowVersion     bool
}

// DefaultServerConfig значения по умолчанию
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		DBPath:          "devsync-relay.db",
		LogLevel:        "info",
		RateLimit:       600,
		RateWindow:      time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadServer читает настройки relay из .env, окружения и args (без имени программы)
func LoadServer(args []string, output io.Writer) (*ServerConfig, error) {
	return loadServer(args, output, processEnv(), DefaultEnvFile)
}

func loadServer(args []string, output io.Writer, lookup lookupFunc, envFile string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()

	env, err := newEnvironment(lookup, envFile)
	if err != nil {
		return nil, err
	}
	env.str("ADDR", &cfg.Addr)
	env.str("SERVER_DB", &cfg.DBPath)
	env.str("JWT_SECRET", &cfg.JWTSecret)
	env.str("LOG_LEVEL", &cfg.LogLevel)
	env.str("LOG_FILE", &cfg.LogFile)
	if err := errors.Join(
		env.duration("TOKEN_TTL", &cfg.TokenTTL),
		env.duration("RATE_WINDOW", &cfg.RateWindow),
		env.duration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout),
		env.integer("RATE_LIMIT", &cfg.RateLimit),
	); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "HS256 secret; empty disables authentication")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Lifetime of issued tokens (0 - no expiry)")
	fs.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Fallback requests per window and client (0 - unlimited)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to a rotating file instead of stderr")
	fs.StringVar(&cfg.IssueToken, "issue-token", "", "Print a token for the given user id and exit")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return &cfg, nil
}

// Validate проверяет настройки relay
func (c *ServerConfig) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, fmt.Errorf("listen address cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, fmt.Errorf("database path cannot be empty"))
	}
	if c.IssueToken != "" && c.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("-issue-token requires -jwt-secret"))
	}
	if c.TokenTTL < 0 {
		errs = append(errs, fmt.Errorf("token ttl must not be negative, got %s", c.TokenTTL))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative, got %d", c.RateLimit))
	}
	errs = append(errs,
		positive("rate window", c.RateWindow),
		positive("shutdown timeout", c.ShutdownTimeout),
	)
	return errors.Join(errs...)
}
