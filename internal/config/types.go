package config

import "time"

// StorageDriver selects the key/value backend.
type StorageDriver string

const (
	StorageMemory StorageDriver = "memory"
	StorageSQLite StorageDriver = "sqlite"
)

// SubmissionMode selects how contact submissions are delivered.
type SubmissionMode string

const (
	SubmissionSimulated SubmissionMode = "simulated"
	SubmissionEndpoint  SubmissionMode = "endpoint"
)

// Config is the service configuration, usually read from contactform.yaml.
type Config struct {
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	Storage    StorageConfig    `yaml:"storage" koanf:"storage"`
	Submission SubmissionConfig `yaml:"submission" koanf:"submission"`
	Autosave   AutosaveConfig   `yaml:"autosave" koanf:"autosave"`
	Validation ValidationConfig `yaml:"validation" koanf:"validation"`
	Theme      ThemeConfig      `yaml:"theme" koanf:"theme"`
	Session    SessionConfig    `yaml:"session" koanf:"session"`
	Log        LogConfig        `yaml:"log" koanf:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" koanf:"addr"`
	ShutdownGrace   time.Duration `yaml:"shutdown_grace" koanf:"shutdown_grace"`
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	TemplatesDir    string        `yaml:"templates_dir" koanf:"templates_dir"`
}

type StorageConfig struct {
	Driver StorageDriver `yaml:"driver" koanf:"driver"`
	Path   string        `yaml:"path" koanf:"path"`
}

type SubmissionConfig struct {
	Mode           SubmissionMode `yaml:"mode" koanf:"mode"`
	Endpoint       string         `yaml:"endpoint" koanf:"endpoint"`
	Timeout        time.Duration  `yaml:"timeout" koanf:"timeout"`
	SimulatedDelay time.Duration  `yaml:"simulated_delay" koanf:"simulated_delay"`
}

type AutosaveConfig struct {
	Debounce time.Duration `yaml:"debounce" koanf:"debounce"`
}

type ValidationConfig struct {
	UnknownFields string `yaml:"unknown_fields" koanf:"unknown_fields"`
}

type ThemeConfig struct {
	Default string `yaml:"default" koanf:"default"`
}

type SessionConfig struct {
	TTL          time.Duration `yaml:"ttl" koanf:"ttl"`
	SecureCookie bool          `yaml:"secure_cookie" koanf:"secure_cookie"`
}

type LogConfig struct {
	Level       string `yaml:"level" koanf:"level"`
	Development bool   `yaml:"development" koanf:"development"`
}

// DefaultConfig returns the settings used when no file or env override is
// present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			ShutdownGrace: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
			Path:   "contactform.db",
		},
		Submission: SubmissionConfig{
			Mode:           SubmissionSimulated,
			Timeout:        15 * time.Second,
			SimulatedDelay: 2 * time.Second,
		},
		Autosave: AutosaveConfig{Debounce: time.Second},
		Validation: ValidationConfig{
			UnknownFields: "allow",
		},
		Theme:   ThemeConfig{Default: "light"},
		Session: SessionConfig{TTL: 30 * time.Minute},
		Log:     LogConfig{Level: "info"},
	}
}
