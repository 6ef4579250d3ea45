// Package config provides configuration loading for appgen.
//
// Configuration is loaded using Viper, supporting YAML or JSON config files
// and environment variable overrides. The defaults reproduce the stock Expo
// project layout, so no config file is needed for the common case.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (APPGEN_ prefix, e.g. APPGEN_INSTALL_RETRIES)
//  2. The file passed with --config, or APPGEN_CONFIG_PATH
//  3. User config directory: <os.UserConfigDir>/appgen/config.yaml
//  4. ./appgen.yaml
//  5. [DefaultConfig] defaults
package config

import (
	"github.com/ormasoftchile/appgen/pkg/kernel/answers"
)

// Config is the root configuration container.
type Config struct {
	Project    ProjectConfig    `mapstructure:"project"`
	Install    InstallConfig    `mapstructure:"install"`
	Icons      IconsConfig      `mapstructure:"icons"`
	Variants   VariantsConfig   `mapstructure:"variants"`
	Validation ValidationConfig `mapstructure:"validation"`
	Templates  TemplatesConfig  `mapstructure:"templates"`
	Log        LogConfig        `mapstructure:"log"`
}

// ProjectConfig controls project creation and the interactive defaults.
type ProjectConfig struct {
	// DefaultName is offered when prompting for the project name.
	DefaultName string `mapstructure:"default_name"`

	// DefaultPath is offered when prompting for the project location.
	DefaultPath string `mapstructure:"default_path"`

	// CreateCommand is the argv template run in the base directory.
	// Elements are text/template strings evaluated against the answers.
	CreateCommand []string `mapstructure:"create_command"`
}

// InstallConfig controls the package.json rewrite and dependency install.
type InstallConfig struct {
	// Command is the install argv prefix; "<name>@latest" is appended for
	// every dependency and devDependency.
	Command []string `mapstructure:"command"`

	// FixCommand runs after a successful install. Its failure is a warning.
	// An empty FixCommand skips the step.
	FixCommand []string `mapstructure:"fix_command"`

	// Retries is how many times a failed install is retried with
	// exponential backoff. Default: 0
	Retries int `mapstructure:"retries"`

	Scripts         map[string]string `mapstructure:"scripts"`
	Dependencies    map[string]string `mapstructure:"dependencies"`
	DevDependencies map[string]string `mapstructure:"dev_dependencies"`
}

// IconsConfig holds the icon geometry.
type IconsConfig struct {
	// Size is the required square edge of a source icon. Default: 1024
	Size int `mapstructure:"size"`

	// AdaptiveInset is the transparent padding on each side of the
	// adaptive icon. Default: 128
	AdaptiveInset int `mapstructure:"adaptive_inset"`
}

// VariantsConfig lists the build variants.
type VariantsConfig struct {
	Available []string `mapstructure:"available"`
	Default   []string `mapstructure:"default"`
}

// ValidationConfig carries extra domain rules for answers.
type ValidationConfig struct {
	Rules []answers.Rule `mapstructure:"rules"`
}

// TemplatesConfig points at an optional directory overriding embedded templates.
type TemplatesConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console, json
	File   string `mapstructure:"file"`   // empty logs to stderr
}

// DefaultConfig returns a new [Config] with the stock Expo settings.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			DefaultName: "Test Expo App",
			DefaultPath: ".",
			CreateCommand: []string{
				"npx", "create-expo-app@latest", "{{ .ProjectSlug }}",
				"--template", "blank-typescript", "--yes", "--no-install",
			},
		},
		Install: InstallConfig{
			Command:    []string{"npm", "install"},
			FixCommand: []string{"npx", "expo", "install", "--fix"},
			Scripts: map[string]string{
				"start":          "expo start --clear",
				"prebuild":       "DOTENV_CONFIG_DEBUG=false expo prebuild --npm",
				"prebuild:clean": "DOTENV_CONFIG_DEBUG=false expo prebuild --clean --npm",
				"web":            "expo start --web",
				"lint":           "expo lint",
				"build":          "npm run prebuild && expo run:android",
				"build:ios":      "npm run prebuild && expo run:ios",
			},
			Dependencies: map[string]string{
				"@react-navigation/drawer":       "^7.0.0",
				"@react-navigation/native":       "^7.0.0",
				"dotenv":                         "^16.4.5",
				"expo":                           "^54.0.0",
				"expo-font":                      "~14.0.10",
				"expo-linking":                   "^8.0.11",
				"expo-notifications":             "~0.32.15",
				"expo-status-bar":                "~3.0.9",
				"react":                          "^19.1.0",
				"react-native":                   "^0.81.5",
				"react-native-gesture-handler":   "~2.28.0",
				"react-native-reanimated":        "~4.1.1",
				"react-native-safe-area-context": "~5.6.0",
				"react-native-screens":           "~4.16.0",
			},
			DevDependencies: map[string]string{
				"@types/react":                 "~19.1.10",
				"eslint-config-expo":           "~10.0.0",
				"eslint-config-prettier":       "^10.1.8",
				"eslint-plugin-prettier":       "^5.5.4",
				"eslint-plugin-react-compiler": "^19.1.0-rc.2",
				"prettier":                     "^3.7.4",
				"typescript":                   "^5.9.2",
			},
		},
		Icons: IconsConfig{
			Size:          1024,
			AdaptiveInset: 128,
		},
		Variants: VariantsConfig{
			Available: []string{"develop", "qa", "preprod", "prod"},
			Default:   []string{"develop", "prod"},
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// ValidateOptions returns the answers validation options this config implies.
func (c *Config) ValidateOptions() answers.Options {
	return answers.Options{
		AllowedVariants: c.Variants.Available,
		Rules:           c.Validation.Rules,
	}
}
