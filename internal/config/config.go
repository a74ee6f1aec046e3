package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/utsdab/usr-sub005/internal/branding"
	"github.com/utsdab/usr-sub005/internal/errs"
)

const (
	fileName = "zoo"
	fileType = "yaml"
)

// Directory and file name constants for the installation layout.
const (
	ConfigDir        = "config"
	InstallDir       = "install"
	PackagesDir      = "packages"
	CoreDir          = "core"
	EnvDir           = "env"
	CacheDir         = "cache"
	EnvironmentFile  = "package_version.config"
	PreferenceFile   = "preference_roots.config"
	ConfigToken      = "{config}"
	SelfToken        = "{self}"
	DefaultGitTimout = 5 * time.Minute
)

// Setting keys. Each is also read from ZOO_<KEY>.
const (
	KeyConfigPath         = "config_path"
	KeyPackagesPath       = "packages_path"
	KeyPackageVersionPath = "package_version_path"
	KeyCmdPath            = "cmd_path"
	KeyLogLevel           = "log_level"
	KeyGitTimeout         = "git_timeout"
	KeyAdmin              = "admin"
	KeyHost               = "host"
)

var settingKeys = []string{
	KeyConfigPath, KeyPackagesPath, KeyPackageVersionPath, KeyCmdPath,
	KeyLogLevel, KeyGitTimeout, KeyAdmin, KeyHost,
}

// Keys returns the setting names accepted by `config get|set`.
func Keys() []string {
	keys := append([]string(nil), settingKeys...)
	sort.Strings(keys)
	return keys
}

// ValidKey reports whether key is a known setting.
func ValidKey(key string) bool {
	for _, k := range settingKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Config is the resolved, immutable view of one zoo installation.
type Config struct {
	root                string
	configPath          string
	packagesPath        string
	commandLibPaths     []string
	environmentOverride string
	admin               bool
	host                Host
	settings            *viper.Viper
}

// DefaultRoot returns ZOO_ROOT, falling back to ~/.zoo.
func DefaultRoot() string {
	if v := os.Getenv(branding.EnvVar("ROOT")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// Load resolves the layout under root (DefaultRoot when empty). The root
// does not need to exist yet; `setup` creates it.
func Load(root string) (*Config, error) {
	return load(root, true)
}

// LoadRoot is Load for a root other than the active one: the ZOO_* path
// variables are ignored so the layout always stays under root.
func LoadRoot(root string) (*Config, error) {
	return load(root, false)
}

var pathKeys = map[string]bool{
	KeyConfigPath:         true,
	KeyPackagesPath:       true,
	KeyPackageVersionPath: true,
}

func load(root string, envPaths bool) (*Config, error) {
	if root == "" {
		root = DefaultRoot()
	}
	root, err := absPath(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(branding.EnvPrefix())
	for _, key := range settingKeys {
		if !envPaths && pathKeys[key] {
			continue
		}
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyGitTimeout, DefaultGitTimout.String())

	// The settings file lives in the config dir, so only the environment
	// can relocate it.
	configPath := filepath.Join(root, ConfigDir)
	if p := v.GetString(KeyConfigPath); p != "" {
		if configPath, err = absPath(p); err != nil {
			return nil, fmt.Errorf("resolving %s: %w", branding.EnvVar(KeyConfigPath), err)
		}
	}

	v.SetConfigFile(filepath.Join(configPath, fileName+"."+fileType))
	v.SetConfigType(fileType)
	if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	cfg := &Config{
		root:       root,
		configPath: configPath,
		settings:   v,
		admin:      v.GetBool(KeyAdmin),
	}

	cfg.packagesPath = filepath.Join(root, InstallDir, PackagesDir)
	if p := v.GetString(KeyPackagesPath); p != "" {
		if cfg.packagesPath, err = absPath(p); err != nil {
			return nil, fmt.Errorf("resolving packages path: %w", err)
		}
	}

	for _, p := range filepath.SplitList(v.GetString(KeyCmdPath)) {
		if p == "" {
			continue
		}
		abs, err := absPath(p)
		if err != nil {
			return nil, fmt.Errorf("resolving command path %s: %w", p, err)
		}
		cfg.commandLibPaths = append(cfg.commandLibPaths, abs)
	}

	// The override only counts when it names a real file.
	if p := v.GetString(KeyPackageVersionPath); p != "" {
		if abs, err := absPath(p); err == nil {
			if info, err := os.Stat(abs); err == nil && !info.IsDir() {
				cfg.environmentOverride = abs
			}
		}
	}

	cfg.host = DetectHost(v.GetString(KeyHost))
	return cfg, nil
}

// Root returns the installation root.
func (c *Config) Root() string { return c.root }

// ConfigPath returns the config directory.
func (c *Config) ConfigPath() string { return c.configPath }

// CorePath returns <root>/install/core, the bundled core payload copied by setup.
func (c *Config) CorePath() string { return filepath.Join(c.root, InstallDir, CoreDir) }

// PackagesPath returns the directory holding <name>/<version> installs.
func (c *Config) PackagesPath() string { return c.packagesPath }

// CommandLibPaths returns the directories searched for external commands.
func (c *Config) CommandLibPaths() []string {
	return append([]string(nil), c.commandLibPaths...)
}

// EnvDir returns <config>/env.
func (c *Config) EnvDir() string { return filepath.Join(c.configPath, EnvDir) }

// CacheDir returns <config>/cache.
func (c *Config) CacheDir() string { return filepath.Join(c.configPath, CacheDir) }

// SettingsFile returns the path of zoo.yaml.
func (c *Config) SettingsFile() string {
	return filepath.Join(c.configPath, fileName+"."+fileType)
}

// EnvironmentTemplate returns the manifest location before token expansion:
// the override when set, else {config}/env/package_version.config.
func (c *Config) EnvironmentTemplate() string {
	if c.environmentOverride != "" {
		return c.environmentOverride
	}
	return filepath.Join(ConfigToken, EnvDir, EnvironmentFile)
}

// Admin reports whether ZOO_ADMIN is set.
func (c *Config) Admin() bool { return c.admin }

// Host returns the detected execution host.
func (c *Config) Host() Host { return c.host }

// LogLevel returns the configured level name.
func (c *Config) LogLevel() string { return c.settings.GetString(KeyLogLevel) }

// GitTimeout returns the limit applied to each git subprocess.
func (c *Config) GitTimeout() time.Duration {
	d := c.settings.GetDuration(KeyGitTimeout)
	if d <= 0 {
		return DefaultGitTimout
	}
	return d
}

// Setting returns a raw setting value. Empty when unset.
func (c *Config) Setting(key string) string {
	return c.settings.GetString(key)
}

// ExpandTokens replaces {config} and {self} and expands ~ and $VARS.
func (c *Config) ExpandTokens(s, self string) string {
	s = strings.ReplaceAll(s, ConfigToken, c.configPath)
	if self != "" {
		s = strings.ReplaceAll(s, SelfToken, self)
	}
	s = os.ExpandEnv(s)
	if strings.HasPrefix(s, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, strings.TrimPrefix(s, "~"))
		}
	}
	return filepath.FromSlash(s)
}

// WriteSetting stores key=value in zoo.yaml, creating the file when needed.
// The running Config is not modified.
func (c *Config) WriteSetting(key, value string) error {
	if !ValidKey(key) {
		return fmt.Errorf("unknown setting %q (valid: %s): %w", key, strings.Join(Keys(), ", "), errs.ErrArgument)
	}
	if err := os.MkdirAll(c.configPath, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", c.configPath, err)
	}

	file := c.SettingsFile()
	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType(fileType)
	if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
		return fmt.Errorf("reading settings: %w", err)
	}
	v.Set(key, value)

	if err := v.WriteConfigAs(file); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

func absPath(p string) (string, error) {
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}

func isMissingFile(err error) bool {
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	return os.IsNotExist(err)
}
