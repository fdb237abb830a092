package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"filebatch/internal/reader"
)

//go:embed default.toml
var defaultConfig []byte

// Config is the full service configuration. Values come from the embedded
// defaults, overridden by an optional TOML file (flag -config or the
// FILEBATCH_CONFIG environment variable).
type Config struct {
	Server Server
	Upload Upload
	Read   Read
}

type Server struct {
	Addr            string
	ReadTimeoutSec  int
	WriteTimeoutSec int
	ShutdownSec     int
}

func (s Server) ReadTimeout() time.Duration { return time.Duration(s.ReadTimeoutSec) * time.Second }

func (s Server) WriteTimeout() time.Duration { return time.Duration(s.WriteTimeoutSec) * time.Second }

func (s Server) ShutdownTimeout() time.Duration { return time.Duration(s.ShutdownSec) * time.Second }

type Upload struct {
	// MaxFileBytes caps one uploaded file; MaxBodyBytes caps the whole
	// multipart body; FormMemoryBytes is the in-memory parse threshold.
	MaxFileBytes    int64
	MaxBodyBytes    int64
	FormMemoryBytes int64
}

type Read struct {
	// DefaultFormat applies when a request names no format. Spelled the
	// reader.ParseFormat way: "dataurl", "base64", "text;charset=...".
	DefaultFormat reader.Format
}

// Load builds the configuration from the embedded defaults plus the optional
// override file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(defaultConfig, &cfg); err != nil {
		return nil, fmt.Errorf("embedded default config: %w", err)
	}

	if path == "" {
		path = os.Getenv("FILEBATCH_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr cannot be empty")
	}
	if c.Upload.MaxFileBytes <= 0 {
		return fmt.Errorf("upload max file size must be positive, got %d", c.Upload.MaxFileBytes)
	}
	if c.Upload.MaxBodyBytes < c.Upload.MaxFileBytes {
		return fmt.Errorf("upload max body size %d is smaller than max file size %d",
			c.Upload.MaxBodyBytes, c.Upload.MaxFileBytes)
	}
	return nil
}
