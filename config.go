package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Log         struct {
		Level  string `env:"LEVEL" envDefault:"info"`
		Format string `env:"FORMAT" envDefault:"text"`
	} `envPrefix:"LOG_"`
	Store struct {
		Driver       string `env:"DRIVER" envDefault:"sqlite"`
		Path         string `env:"PATH"`
		DSN          string `env:"DSN"`
		Timeout      int    `env:"TIMEOUT" envDefault:"5"`
		MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"4"`
	} `envPrefix:"STORE_"`
	Redis struct {
		Host     string `env:"HOST" envDefault:"localhost"`
		Port     int    `env:"PORT" envDefault:"6379"`
		Password string `env:"PASSWORD"`
		DB       int    `env:"DB" envDefault:"0"`
	} `envPrefix:"REDIS_"`
	OCR struct {
		Driver string `env:"DRIVER" envDefault:"gemini"`
		URL    string `env:"URL"`
	} `envPrefix:"OCR_"`
	Gemini struct {
		APIKey  string `env:"API_KEY"`
		Model   string `env:"MODEL" envDefault:"gemini-1.5-flash"`
		Timeout int    `env:"TIMEOUT" envDefault:"45"`
	} `envPrefix:"GEMINI_"`
	Export struct {
		Filename string `env:"FILENAME" envDefault:"student_schedule"`
	} `envPrefix:"EXPORT_"`
}

// LoadConfig reads the configuration from the environment, after loading
// dotEnvPath into it when that file exists.
func LoadConfig(dotEnvPath string) (*Config, error) {
	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", dotEnvPath, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// only the first error keeps the message readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if cfg.Store.Path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to find home directory: %w", err)
		}
		cfg.Store.Path = filepath.Join(homeDir, ".local", "share", "studysched", "database.db")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "sqlite", "redis", "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return errors.New(`STORE_DSN is required when STORE_DRIVER is "postgres"`)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.OCR.Driver {
	case "gemini":
	case "http":
		if c.OCR.URL == "" {
			return errors.New(`OCR_URL is required when OCR_DRIVER is "http"`)
		}
	default:
		return fmt.Errorf("unknown OCR_DRIVER %q", c.OCR.Driver)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.Log.Format)
	}

	return nil
}

func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown LOG_LEVEL %q", c.Log.Level)
	}
}

// NewLogger builds the process logger. Logs go to w so they never mix with
// command output.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	level, _ := cfg.LogLevel()
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
