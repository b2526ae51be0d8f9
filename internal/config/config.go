package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort        = 7171
	DefaultSessionSize = 128
)

// Config holds settings resolved from the environment. Command-line flags
// are applied on top by the CLI.
type Config struct {
	Port         int
	SessionSize  int
	Model        string
	APIKey       string
	TemplatePath string
}

// Load reads an optional .env file from the working directory and then
// the process environment. Variables already set in the environment win
// over .env entries. A missing .env is fine; a malformed one is an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	port, err := intEnv("CRITPATH_PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	size, err := intEnv("CRITPATH_SESSION_SIZE", DefaultSessionSize)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:         port,
		SessionSize:  size,
		Model:        strings.TrimSpace(os.Getenv("CRITPATH_MODEL")),
		APIKey:       firstNonEmpty(strings.TrimSpace(os.Getenv("CRITPATH_ANTHROPIC_API_KEY")), strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))),
		TemplatePath: strings.TrimSpace(os.Getenv("CRITPATH_TEMPLATE")),
	}, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
