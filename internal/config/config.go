// Package config loads service settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/goliatone/go-contactform/pkg/validation"
)

// EnvPrefix marks environment overrides. Nested keys use a double
// underscore: CONTACTFORM_SERVER__ADDR sets server.addr.
const EnvPrefix = "CONTACTFORM_"

// Load reads path when it exists, overlays CONTACTFORM_* variables and
// returns the merged config. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling config: %w", err)
	}
	return data, nil
}

// Validate checks that the configuration can be used to start the service.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ShutdownGrace < 0 {
		return fmt.Errorf("server.shutdown_grace must be non-negative")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("invalid storage.driver %q: must be one of memory, sqlite", c.Storage.Driver)
	}

	switch c.Submission.Mode {
	case SubmissionSimulated:
		if c.Submission.SimulatedDelay < 0 {
			return fmt.Errorf("submission.simulated_delay must be non-negative")
		}
	case SubmissionEndpoint:
		u, err := url.Parse(c.Submission.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("submission.endpoint must be an absolute http(s) URL, got %q", c.Submission.Endpoint)
		}
	default:
		return fmt.Errorf("invalid submission.mode %q: must be one of simulated, endpoint", c.Submission.Mode)
	}
	if c.Submission.Timeout <= 0 {
		return fmt.Errorf("submission.timeout must be positive")
	}

	if c.Autosave.Debounce <= 0 {
		return fmt.Errorf("autosave.debounce must be positive")
	}
	if _, err := validation.ParseUnknownFieldPolicy(c.Validation.UnknownFields); err != nil {
		return fmt.Errorf("validation.unknown_fields: %w", err)
	}

	switch c.Theme.Default {
	case "light", "dark":
	default:
		return fmt.Errorf("invalid theme.default %q: must be one of light, dark", c.Theme.Default)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	return nil
}
