package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/iudanet/devsync/internal/models"
	"github.com/iudanet/devsync/internal/validation"
)

// ClientConfig настройки CLI клиента
type ClientConfig struct {
	ServerURL        string
	DBPath           string
	UserID           string
	Token            string
	Policy           string
	LogLevel         string
	LogFile          string
	Args             []string // команда и ее аргументы
	Settle           time.Duration
	AutoSyncInterval time.Duration
	AckTimeout       time.Duration
	ProbeInterval    time.Duration
	ShowVersion      bool
}

// DefaultClientConfig значения по умолчанию
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ServerURL:        "http://localhost:8080",
		DBPath:           "devsync-client.db",
		Policy:           string(models.PolicyRemote),
		LogLevel:         "warn",
		Settle:           5 * time.Second,
		AutoSyncInterval: 5 * time.Second,
		AckTimeout:       15 * time.Second,
		ProbeInterval:    10 * time.Second,
	}
}

// LoadClient читает настройки клиента из .env, окружения и args (без имени программы)
func LoadClient(args []string, output io.Writer) (*ClientConfig, error) {
	return loadClient(args, output, processEnv(), DefaultEnvFile)
}

func loadClient(args []string, output io.Writer, lookup lookupFunc, envFile string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()

	env, err := newEnvironment(lookup, envFile)
	if err != nil {
		return nil, err
	}
	env.str("SERVER", &cfg.ServerURL)
	env.str("DB", &cfg.DBPath)
	env.str("USER", &cfg.UserID)
	env.str("TOKEN", &cfg.Token)
	env.str("POLICY", &cfg.Policy)
	env.str("LOG_LEVEL", &cfg.LogLevel)
	env.str("LOG_FILE", &cfg.LogFile)
	if err := errors.Join(
		env.duration("SETTLE", &cfg.Settle),
		env.duration("AUTO_SYNC_INTERVAL", &cfg.AutoSyncInterval),
		env.duration("ACK_TIMEOUT", &cfg.AckTimeout),
		env.duration("PROBE_INTERVAL", &cfg.ProbeInterval),
	); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Relay server URL")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to local database")
	fs.StringVar(&cfg.UserID, "user", cfg.UserID, "User id (sync boundary)")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "Bearer token for the relay")
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "Conflict policy: local, remote, merge or manual")
	fs.DurationVar(&cfg.Settle, "settle", cfg.Settle, "How long mutating commands wait for delivery")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to a rotating file instead of stderr")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Args = fs.Args()

	return &cfg, nil
}

// Validate проверяет настройки. requireUser - команда работает с данными пользователя.
func (c *ClientConfig) Validate(requireUser bool) error {
	if c.DBPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if requireUser {
		if err := validation.ValidateIdentifier("user id", c.UserID); err != nil {
			return fmt.Errorf("%w (set -user or %sUSER)", err, EnvPrefix)
		}
	}
	if _, err := models.ParsePolicy(c.Policy); err != nil {
		return err
	}
	return errors.Join(
		positive("settle", c.Settle),
		positive("auto sync interval", c.AutoSyncInterval),
		positive("ack timeout", c.AckTimeout),
		positive("probe interval", c.ProbeInterval),
	)
}

func positive(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", name, d)
	}
	return nil
}
