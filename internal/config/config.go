package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the settings read once at startup and passed to the clients.
type Config struct {
	Model          string `mapstructure:"model"`
	APIKey         string `mapstructure:"api_key"`
	APIBase        string `mapstructure:"api_base"`
	Timeout        int    `mapstructure:"timeout"`
	Clipboard      bool   `mapstructure:"clipboard"`
	PromptTemplate string `mapstructure:"prompt_template"`
	LogLevel       string `mapstructure:"log_level"`
}

const (
	DefaultModel      = "gpt-4o-mini"
	DefaultAPIBase    = "https://api.openai.com/v1"
	DefaultConfigName = "config"
	DefaultConfigDir  = "cmg"
	DefaultLogLevel   = "warn"
	EnvPrefix         = "CMG"

	// APIKeyEnv is the conventional credential variable for the provider.
	APIKeyEnv  = "OPENAI_API_KEY"
	APIBaseEnv = "OPENAI_API_BASE"
)

var suggestedModels = []string{
	"gpt-4o-mini",
	"gpt-4o",
	"gpt-4.1-mini",
	"gpt-4.1",
}

// keyKind describes how `config set` parses a value.
type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
)

var settableKeys = map[string]keyKind{
	"model":           kindString,
	"api_key":         kindString,
	"api_base":        kindString,
	"timeout":         kindInt,
	"clipboard":       kindBool,
	"prompt_template": kindString,
	"log_level":       kindString,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", DefaultModel)
	v.SetDefault("api_key", "")
	v.SetDefault("api_base", "")
	v.SetDefault("timeout", 0)
	v.SetDefault("clipboard", true)
	v.SetDefault("prompt_template", "")
	v.SetDefault("log_level", DefaultLogLevel)
}

// ErrConfigUnavailable marks a configuration file that could not be read or
// created. Defaults and environment variables still apply.
var ErrConfigUnavailable = errors.New("configuration file unavailable")

// InitConfig loads configuration from cfgFile, or from the default
// location when cfgFile is empty, creating the file if it does not exist.
// Only an explicit cfgFile that cannot be parsed is fatal; every other
// failure is returned wrapped in ErrConfigUnavailable.
func InitConfig(cfgFile string) error {
	setDefaults(viper.GetViper())
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("api_key", EnvPrefix+"_API_KEY", APIKeyEnv)
	_ = viper.BindEnv("api_base", EnvPrefix+"_API_BASE", APIBaseEnv)

	configPath := cfgFile
	if configPath == "" {
		path, err := defaultConfigPath()
		if err != nil {
			return unavailable(err)
		}
		configPath = path
	}
	viper.SetConfigFile(configPath)

	if _, err := os.Stat(configPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return unavailable(fmt.Errorf("failed to access configuration file %s: %w", configPath, err))
		}
		if err := createConfigFile(configPath); err != nil {
			return unavailable(err)
		}
		return nil
	}

	if err := viper.ReadInConfig(); err != nil {
		err = fmt.Errorf("failed to read configuration file %s: %w", configPath, err)
		if cfgFile == "" {
			return unavailable(err)
		}
		return err
	}
	if err := ensurePrivate(configPath); err != nil {
		return unavailable(err)
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
}

func defaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, DefaultConfigDir, DefaultConfigName+".yaml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".config", DefaultConfigDir, DefaultConfigName+".yaml"), nil
}

// createConfigFile writes only the defaults so that credentials picked up
// from the environment are never persisted implicitly.
func createConfigFile(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}

	fresh := viper.New()
	setDefaults(fresh)
	if err := fresh.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return ensurePrivate(configPath)
}

func ensurePrivate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if info.Mode().Perm() == 0o600 {
		return nil
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict configuration file permissions: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration.
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return cfg, nil
}

// MustGetConfig returns the configuration or built-in defaults when it cannot be parsed.
func MustGetConfig() *Config {
	cfg, err := GetConfig()
	if err != nil {
		return &Config{Model: DefaultModel, Clipboard: true, LogLevel: DefaultLogLevel}
	}
	return cfg
}

// EffectiveAPIBase returns the configured API base or the provider default.
func (c *Config) EffectiveAPIBase() string {
	if c.APIBase != "" {
		return c.APIBase
	}
	return DefaultAPIBase
}

// pending records values set during this run so that SaveConfig persists
// only those, never values that came from the environment.
var pending = map[string]interface{}{}

func SetConfigValue(key string, value interface{}) {
	viper.Set(key, value)
	pending[key] = value
}

// SetFromString validates key and stores value converted to the key's type.
func SetFromString(key, value string) error {
	kind, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key %q (valid keys: %s)", key, strings.Join(SettableKeys(), ", "))
	}

	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid value for %s: %q is not a non-negative integer", key, value)
		}
		SetConfigValue(key, n)
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q is not a boolean", key, value)
		}
		SetConfigValue(key, b)
	default:
		if key == "model" && !IsValidModel(value) {
			return fmt.Errorf("invalid model: %q", value)
		}
		SetConfigValue(key, value)
	}
	return nil
}

// SettableKeys lists the keys accepted by SetFromString in sorted order.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SaveConfig merges the values set with SetConfigValue into the
// configuration file in use.
func SaveConfig() error {
	path := viper.ConfigFileUsed()
	if path == "" {
		return errors.New("no configuration file in use")
	}

	onDisk := viper.New()
	onDisk.SetConfigFile(path)
	onDisk.SetConfigType("yaml")
	if err := onDisk.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}
	}
	for key, value := range pending {
		onDisk.Set(key, value)
	}

	if err := onDisk.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	pending = map[string]interface{}{}
	return ensurePrivate(path)
}

// IsValidModel accepts any non-empty model name.
func IsValidModel(model string) bool {
	return strings.TrimSpace(model) != ""
}

func GetSuggestedModels() []string {
	return suggestedModels
}
