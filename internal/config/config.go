// Package config loads easyblogger settings from a YAML file, .env files and
// the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFileName is looked up in the home directory.
	DefaultFileName        = ".easyblogger.yaml"
	defaultCredentialsName = ".easyblogger.credentials"
	defaultJournalName     = ".easyblogger.db"
	defaultConcurrency     = 4
)

// Config holds settings shared by all commands. Command line flags take
// precedence over these values.
type Config struct {
	ClientID     string        `yaml:"client_id,omitempty"`
	ClientSecret string        `yaml:"client_secret,omitempty"`
	BlogID       string        `yaml:"blog_id,omitempty"`
	BlogURL      string        `yaml:"blog_url,omitempty"`
	Credentials  string        `yaml:"credentials,omitempty"`
	Journal      string        `yaml:"journal,omitempty"`
	Concurrency  int           `yaml:"concurrency"`
	Logging      LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls the default log verbosity.
type LoggingConfig struct {
	Level LogLevel `yaml:"level"`
}

// DefaultPath returns the configuration file in the user's home directory.
func DefaultPath() string {
	return inHome(DefaultFileName)
}

// Load reads the configuration at path. Environment variables referenced as
// ${VAR} are expanded before decoding. A missing file is reported with an
// error matching fs.ErrNotExist; callers decide whether that is fatal.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(ExpandHome(path))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("configuration file not found: %s: %w", path, err)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env", ".env.local"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Credentials == "" {
		c.Credentials = inHome(defaultCredentialsName)
	}
	c.Credentials = ExpandHome(c.Credentials)
	if c.Journal == "" {
		c.Journal = inHome(defaultJournalName)
	}
	if c.Journal != "off" {
		c.Journal = ExpandHome(c.Journal)
	}
	if c.Concurrency == 0 {
		c.Concurrency = defaultConcurrency
	}
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.BlogURL != "" && !strings.HasPrefix(c.BlogURL, "http://") && !strings.HasPrefix(c.BlogURL, "https://") {
		return fmt.Errorf("blog_url must be an http(s) URL, got %q", c.BlogURL)
	}
	return nil
}

// JournalEnabled reports whether operations should be recorded.
func (c *Config) JournalEnabled() bool {
	return c.Journal != "" && c.Journal != "off"
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func inHome(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	path = ExpandHome(path)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	example := Config{
		ClientID:     "${EASYBLOGGER_CLIENT_ID}",
		ClientSecret: "${EASYBLOGGER_CLIENT_SECRET}",
		BlogURL:      "https://example.blogspot.com/",
		Concurrency:  defaultConcurrency,
		Logging:      LoggingConfig{Level: LogLevelInfo},
	}
	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
