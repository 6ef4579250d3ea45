package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "APPGEN"

// Loader handles Viper-based configuration loading.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment overrides bound.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return &Loader{v: v}
}

// Load resolves the config file by priority and returns the merged config.
// An explicit path that cannot be read is an error; a missing discovered
// file is not.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG_PATH")
	}
	if path != "" {
		return l.LoadFromFile(path)
	}

	for _, candidate := range searchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return l.LoadFromFile(candidate)
		}
	}
	return l.unmarshal()
}

// LoadFromFile reads a specific config file on top of the defaults.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return l.unmarshal()
}

// ConfigFileUsed returns the file the last load read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Icons.Size <= 0 {
		return nil, fmt.Errorf("icons.size must be positive, got %d", cfg.Icons.Size)
	}
	if cfg.Icons.AdaptiveInset < 0 || 2*cfg.Icons.AdaptiveInset >= cfg.Icons.Size {
		return nil, fmt.Errorf("icons.adaptive_inset %d does not fit icons.size %d", cfg.Icons.AdaptiveInset, cfg.Icons.Size)
	}
	if len(cfg.Project.CreateCommand) == 0 {
		return nil, fmt.Errorf("project.create_command must not be empty")
	}
	if len(cfg.Install.Command) == 0 {
		return nil, fmt.Errorf("install.command must not be empty")
	}
	return &cfg, nil
}

// Load is a convenience wrapper around NewLoader().Load.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// ConfigDir returns the per-user appgen configuration directory.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "appgen"), nil
}

// DefaultConfigPath returns the per-user config file path.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func searchPaths() []string {
	var paths []string
	if p, err := DefaultConfigPath(); err == nil {
		paths = append(paths, p)
	}
	return append(paths, "appgen.yaml")
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project.default_name", d.Project.DefaultName)
	v.SetDefault("project.default_path", d.Project.DefaultPath)
	v.SetDefault("project.create_command", d.Project.CreateCommand)

	v.SetDefault("install.command", d.Install.Command)
	v.SetDefault("install.fix_command", d.Install.FixCommand)
	v.SetDefault("install.retries", d.Install.Retries)
	v.SetDefault("install.scripts", d.Install.Scripts)
	v.SetDefault("install.dependencies", d.Install.Dependencies)
	v.SetDefault("install.dev_dependencies", d.Install.DevDependencies)

	v.SetDefault("icons.size", d.Icons.Size)
	v.SetDefault("icons.adaptive_inset", d.Icons.AdaptiveInset)

	v.SetDefault("variants.available", d.Variants.Available)
	v.SetDefault("variants.default", d.Variants.Default)

	v.SetDefault("validation.rules", d.Validation.Rules)
	v.SetDefault("templates.dir", d.Templates.Dir)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
}
