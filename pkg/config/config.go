package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	go_ora "github.com/sijms/go-ora/v2"
	"go.uber.org/multierr"
)

// Environment variables read by Load.
const (
	EnvConnectionString = "ORACLE_CONNECTION_STRING"
	EnvUsername         = "ORACLE_USERNAME"
	EnvPassword         = "ORACLE_PASSWORD"
	EnvAddr             = "ORACLE_CONSOLE_ADDR"
	EnvHistory          = "ORACLE_CONSOLE_HISTORY"
	EnvLogLevel         = "ORACLE_CONSOLE_LOG_LEVEL"
)

const (
	defaultAddr     = ":3000"
	defaultLogLevel = "info"
	historyFile     = ".oraconsole_history.json"
)

// ErrMissing reports a required variable that is unset or empty.
var ErrMissing = errors.New("required environment variable is not set")

// Config holds every setting, read once at startup.
type Config struct {
	ConnectionString string
	Username         string
	Password         string
	Addr             string
	HistoryPath      string
	LogLevel         string
}

// Load reads .env files (if any) and the environment. Every missing
// required variable is reported, not just the first.
func Load(files ...string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load(files...)
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, which has the os.LookupEnv signature.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	var errs error
	required := func(key string) string {
		v, _ := lookup(key)
		if v == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrMissing, key))
		}
		return v
	}
	optional := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		ConnectionString: required(EnvConnectionString),
		Username:         required(EnvUsername),
		Password:         required(EnvPassword),
		Addr:             optional(EnvAddr, defaultAddr),
		HistoryPath:      optional(EnvHistory, defaultHistoryPath()),
		LogLevel:         optional(EnvLogLevel, defaultLogLevel),
	}
	if errs != nil {
		return nil, errs
	}
	return cfg, nil
}

// DSN returns the go-ora connection URL for the configured target.
func (c *Config) DSN() string {
	return go_ora.BuildJDBC(c.Username, c.Password, c.ConnectionString, nil)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

// HistoryPath returns the history file location without requiring the
// connection settings, for commands that never touch the database.
func HistoryPath(files ...string) string {
	_ = godotenv.Load(files...)
	if v := os.Getenv(EnvHistory); v != "" {
		return v
	}
	return defaultHistoryPath()
}
