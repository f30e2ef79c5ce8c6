// Package config loads hooktrace settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aayushbajaj/hooktrace/internal/vkey"
)

const appName = "hooktrace"

// Config is the effective configuration. Zero values are not meaningful;
// start from Default.
type Config struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogDir    string `toml:"log_dir"`

	Keyboard    bool     `toml:"keyboard"`
	Pointer     bool     `toml:"pointer"`
	SystemKeys  bool     `toml:"system_keys"`
	SkipRepeats bool     `toml:"skip_repeats"`
	Block       []string `toml:"block"`
	Buffer      int      `toml:"buffer"`

	History int    `toml:"history"`
	Theme   string `toml:"theme"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Keyboard:  true,
		Pointer:   true,
		Buffer:    1000,
		History:   500,
		Theme:     "default",
	}
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		if u, userErr := user.Current(); userErr == nil {
			return u.HomeDir, nil
		}
		return "", err
	}
	return home, nil
}

// Path returns the default config file location,
// ~/.config/hooktrace/config.toml, honoring HOOKTRACE_CONFIG.
func Path() (string, error) {
	if p := os.Getenv("HOOKTRACE_CONFIG"); p != "" {
		return p, nil
	}
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DataDir returns ~/.local/share/hooktrace.
func DataDir() (string, error) {
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// Load reads the file at path over the defaults. An empty path means
// Path(). A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HOOKTRACE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format: must be text or json, got %q", c.LogFormat))
	}
	if !c.Keyboard && !c.Pointer {
		errs = append(errs, errors.New("at least one of keyboard or pointer must be enabled"))
	}
	if c.Buffer < 1 {
		errs = append(errs, fmt.Errorf("buffer: must be positive, got %d", c.Buffer))
	}
	if c.History < 1 {
		errs = append(errs, fmt.Errorf("history: must be positive, got %d", c.History))
	}
	if _, err := c.BlockedKeys(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// BlockedKeys resolves Block to virtual key codes.
func (c *Config) BlockedKeys() ([]uint32, error) {
	out := make([]uint32, 0, len(c.Block))
	for _, name := range c.Block {
		vk, ok := vkey.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("block: unknown key %q", name)
		}
		out = append(out, vk)
	}
	return out, nil
}

// Write encodes c as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes c to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
