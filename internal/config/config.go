// Package config resolves psbrowse settings from flags, environment, .env files,
// the YAML config file and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"psbrowse/internal/host"
	"psbrowse/internal/normalize"
)

// AppName names the config directory and prefixes environment variables.
const AppName = "psbrowse"

// EnvPrefix is the prefix viper applies to environment lookups.
const EnvPrefix = "PSBROWSE"

// Keys understood by Load. Flags are bound to the same names.
const (
	KeyLogLevel            = "log-level"
	KeyLogFile             = "log-file"
	KeyHostPath            = "host.path"
	KeyHostTimeout         = "host.timeout"
	KeyHostMinVersion      = "host.min-version"
	KeyListFunctions       = "list.functions"
	KeyListAliases         = "list.aliases"
	KeyRenderStyle         = "render.style"
	KeyRenderWidth         = "render.width"
	KeyRenderPlain         = "render.plain"
	KeyPlaceholderPrefixes = "help.placeholder-prefixes"
	KeyCommonParameters    = "help.common-parameters"
)

// RenderStyles are the accepted values of render.style.
var RenderStyles = []string{"auto", "dark", "light", "notty", "ascii"}

// Config is the resolved configuration.
type Config struct {
	LogLevel string       `yaml:"log-level"`
	LogFile  string       `yaml:"log-file"`
	Host     HostConfig   `yaml:"host"`
	List     ListConfig   `yaml:"list"`
	Render   RenderConfig `yaml:"render"`
	Help     HelpConfig   `yaml:"help"`
}

// HostConfig controls how the PowerShell host is launched.
type HostConfig struct {
	Path       string        `yaml:"path"`
	Timeout    time.Duration `yaml:"timeout"`
	MinVersion string        `yaml:"min-version"`
}

// ListConfig selects the command kinds listed besides cmdlets.
type ListConfig struct {
	Functions bool `yaml:"functions"`
	Aliases   bool `yaml:"aliases"`
}

// RenderConfig controls terminal rendering.
type RenderConfig struct {
	Style string `yaml:"style"`
	Width int    `yaml:"width"`
	Plain bool   `yaml:"plain"`
}

// HelpConfig tunes help normalization for localized hosts.
type HelpConfig struct {
	PlaceholderPrefixes []string `yaml:"placeholder-prefixes"`
	CommonParameters    []string `yaml:"common-parameters"`
}

// Sources locates the files Load reads. Empty fields fall back to the user
// config directory and the working directory.
type Sources struct {
	ConfigFile string
	ConfigDir  string
	WorkDir    string
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyHostPath, "")
	v.SetDefault(KeyHostTimeout, host.DefaultTimeout.String())
	v.SetDefault(KeyHostMinVersion, "")
	v.SetDefault(KeyListFunctions, false)
	v.SetDefault(KeyListAliases, false)
	v.SetDefault(KeyRenderStyle, "auto")
	v.SetDefault(KeyRenderWidth, 100)
	v.SetDefault(KeyRenderPlain, false)
	v.SetDefault(KeyPlaceholderPrefixes, normalize.DefaultPlaceholderPrefixes)
	v.SetDefault(KeyCommonParameters, normalize.DefaultCommonParameters)
}

// EnvName returns the environment variable consulted for key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(envReplacer.Replace(key))
}

var envReplacer = strings.NewReplacer(".", "_", "-", "_")

// UserConfigDir returns $XDG_CONFIG_HOME/psbrowse, or ~/.config/psbrowse.
func UserConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Load resolves the configuration into v and decodes it.
//
// Precedence: bound flags > environment > working-directory .env > config-directory
// .env > config file > defaults. An explicit ConfigFile must exist; the default
// one is optional.
func Load(v *viper.Viper, src Sources) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	configDir := src.ConfigDir
	if configDir == "" {
		dir, err := UserConfigDir()
		if err == nil {
			configDir = dir
		}
	}

	if err := readConfigFile(v, src.ConfigFile, configDir); err != nil {
		return nil, err
	}

	workDir := src.WorkDir
	if workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workDir = wd
		}
	}

	dotenv := map[string]string{}
	for _, dir := range []string{configDir, workDir} {
		if dir == "" {
			continue
		}
		values, err := readDotEnv(filepath.Join(dir, ".env"))
		if err != nil {
			return nil, err
		}
		for k, val := range values {
			dotenv[k] = val
		}
	}
	if err := mergeDotEnv(v, dotenv); err != nil {
		return nil, err
	}

	cfg := Decode(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, explicit, configDir string) error {
	path := explicit
	if path == "" {
		if configDir == "" {
			return nil
		}
		path = filepath.Join(configDir, "config.yaml")
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// readDotEnv parses a .env file. A missing file yields no values.
func readDotEnv(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	values, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return values, nil
}

// mergeDotEnv layers .env values for known keys over the config file. Keys
// also present in the process environment are left to AutomaticEnv.
func mergeDotEnv(v *viper.Viper, dotenv map[string]string) error {
	if len(dotenv) == 0 {
		return nil
	}
	layer := map[string]interface{}{}
	for _, key := range v.AllKeys() {
		name := EnvName(key)
		val, ok := dotenv[name]
		if !ok {
			continue
		}
		if _, inEnv := os.LookupEnv(name); inEnv {
			continue
		}
		setNested(layer, key, val)
	}
	if len(layer) == 0 {
		return nil
	}
	if err := v.MergeConfigMap(layer); err != nil {
		return fmt.Errorf("failed to merge .env values: %w", err)
	}
	return nil
}

func setNested(m map[string]interface{}, key string, val string) {
	parts := strings.Split(key, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}

// Decode reads the typed configuration out of v without validating it.
func Decode(v *viper.Viper) *Config {
	return &Config{
		LogLevel: strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFile:  v.GetString(KeyLogFile),
		Host: HostConfig{
			Path:       strings.TrimSpace(v.GetString(KeyHostPath)),
			Timeout:    v.GetDuration(KeyHostTimeout),
			MinVersion: strings.TrimSpace(v.GetString(KeyHostMinVersion)),
		},
		List: ListConfig{
			Functions: v.GetBool(KeyListFunctions),
			Aliases:   v.GetBool(KeyListAliases),
		},
		Render: RenderConfig{
			Style: strings.ToLower(strings.TrimSpace(v.GetString(KeyRenderStyle))),
			Width: v.GetInt(KeyRenderWidth),
			Plain: v.GetBool(KeyRenderPlain),
		},
		Help: HelpConfig{
			PlaceholderPrefixes: stringList(v.Get(KeyPlaceholderPrefixes), false),
			CommonParameters:    stringList(v.Get(KeyCommonParameters), true),
		},
	}
}

// stringList reads a list value. Lists arrive from the environment and .env
// files as comma-separated strings. Prefixes keep their whitespace since
// "Get-Help " ends in one.
func stringList(raw interface{}, trim bool) []string {
	var values []string
	switch val := raw.(type) {
	case string:
		values = []string{val}
	case []string:
		values = val
	case []interface{}:
		for _, item := range val {
			values = append(values, fmt.Sprint(item))
		}
	}

	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trim {
				part = strings.TrimSpace(part)
			}
			if strings.TrimSpace(part) == "" {
				continue
			}
			out = append(out, part)
		}
	}
	return out
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Host.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyHostTimeout, c.Host.Timeout)
	}
	if c.Host.MinVersion != "" {
		if _, err := semver.NewVersion(c.Host.MinVersion); err != nil {
			return fmt.Errorf("invalid %s %q: %w", KeyHostMinVersion, c.Host.MinVersion, err)
		}
	}
	if c.Render.Width < 0 {
		return fmt.Errorf("%s must not be negative, got %d", KeyRenderWidth, c.Render.Width)
	}
	valid := false
	for _, style := range RenderStyles {
		if c.Render.Style == style {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown %s %q (available: %s)", KeyRenderStyle, c.Render.Style, strings.Join(RenderStyles, ", "))
	}
	return nil
}

// HostSettings returns the launch settings for the host connector.
func (c *Config) HostSettings() host.Config {
	return host.Config{Path: c.Host.Path, MinVersion: c.Host.MinVersion}
}

// NormalizeOptions builds normalizer options from the help settings. Empty
// lists keep the en-US defaults.
func (c *Config) NormalizeOptions() normalize.Options {
	opts := normalize.DefaultOptions()
	if len(c.Help.CommonParameters) > 0 {
		opts.CommonParameters = c.Help.CommonParameters
	}
	if len(c.Help.PlaceholderPrefixes) > 0 {
		opts.IsPlaceholderSynopsis = normalize.PrefixPlaceholder(c.Help.PlaceholderPrefixes...)
	}
	return opts
}

// WriteYAML writes the configuration in config-file form.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.fileForm()); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}

// fileForm renders durations as strings so the output can be read back by Load.
func (c *Config) fileForm() map[string]interface{} {
	return map[string]interface{}{
		"log-level": c.LogLevel,
		"log-file":  c.LogFile,
		"host": map[string]interface{}{
			"path":        c.Host.Path,
			"timeout":     c.Host.Timeout.String(),
			"min-version": c.Host.MinVersion,
		},
		"list":   c.List,
		"render": c.Render,
		"help":   c.Help,
	}
}
