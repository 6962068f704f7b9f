package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConsoleEnvPrefix prefixes the environment overrides of koictl.
const ConsoleEnvPrefix = "KOICTL__"

// ConsoleConfig configures the koictl console.
type ConsoleConfig struct {
	BaseURL  string    `koanf:"base_url"`
	Token    string    `koanf:"token"`
	Timeout  string    `koanf:"timeout"`
	PageSize int       `koanf:"page_size"`
	Log      LogConfig `koanf:"log"`
}

func defaultConsoleConfig() ConsoleConfig {
	return ConsoleConfig{
		BaseURL:  "http://localhost:8080",
		Timeout:  "30s",
		PageSize: 10,
		Log:      LogConfig{Level: "error", Format: "text"},
	}
}

// LoadConsole reads the console configuration. The file is optional: a
// missing file leaves the defaults, which KOICTL__ variables then override,
// e.g. KOICTL__BASE_URL or KOICTL__LOG__LEVEL.
func LoadConsole(configPath string) (*ConsoleConfig, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(ConsoleEnvPrefix, ".", EnvKeyMapper(ConsoleEnvPrefix)), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	cfg := defaultConsoleConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalizes the console settings and fills blanks with defaults.
func (c *ConsoleConfig) Validate() error {
	def := defaultConsoleConfig()

	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q: must be an absolute http(s) URL", c.BaseURL)
	}

	c.Token = strings.TrimSpace(c.Token)
	if strings.TrimSpace(c.Timeout) == "" {
		c.Timeout = def.Timeout
	}
	if err := requiredDuration("timeout", &c.Timeout); err != nil {
		return err
	}

	if c.PageSize == 0 {
		c.PageSize = def.PageSize
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("invalid page_size %d: must be between 1 and 100", c.PageSize)
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	return validateLogConfig(&c.Log)
}
