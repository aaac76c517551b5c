package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	Top       int    `mapstructure:"top" yaml:"top"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	// OutputDir holds reports written without an explicit path.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
}

// DelimiterRune returns the configured delimiter as a rune.
func (c *Global) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// Validate reports every invalid field at once.
func (c *Global) Validate() error {
	var errs *multierror.Error
	if c.Top < 1 {
		errs = multierror.Append(errs, fmt.Errorf("top must be >= 1, got %d", c.Top))
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		errs = multierror.Append(errs, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter))
	} else if r := c.DelimiterRune(); r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		errs = multierror.Append(errs, fmt.Errorf("invalid delimiter %q", c.Delimiter))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = multierror.Append(errs, fmt.Errorf("invalid log_level %q (use debug|info|warn|error)", c.LogLevel))
	}
	return errs.ErrorOrNil()
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".h1bcount", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.h1bcount/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command-line flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("H1BCOUNT")
	v.AutomaticEnv()

	v.SetDefault("top", 10)
	v.SetDefault("verbose", false)
	v.SetDefault("delimiter", ";")
	v.SetDefault("output_dir", "output")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_file", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		// a missing explicit file is created later by Save
		if _, err := os.Stat(cfgFile); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	} else {
		path, err := defaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
