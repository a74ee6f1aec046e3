package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ZOO_ROOT", "ZOO_CONFIG_PATH", "ZOO_PACKAGES_PATH", "ZOO_PACKAGE_VERSION_PATH",
		"ZOO_CMD_PATH", "ZOO_LOG_LEVEL", "ZOO_GIT_TIMEOUT", "ZOO_ADMIN", "ZOO_HOST", "MAYA_LOCATION",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Root() != root {
		t.Errorf("Root() = %q, want %q", cfg.Root(), root)
	}
	if want := filepath.Join(root, "config"); cfg.ConfigPath() != want {
		t.Errorf("ConfigPath() = %q, want %q", cfg.ConfigPath(), want)
	}
	if want := filepath.Join(root, "install", "packages"); cfg.PackagesPath() != want {
		t.Errorf("PackagesPath() = %q, want %q", cfg.PackagesPath(), want)
	}
	if len(cfg.CommandLibPaths()) != 0 {
		t.Errorf("CommandLibPaths() = %v, want none", cfg.CommandLibPaths())
	}
	if got := cfg.EnvironmentTemplate(); got != filepath.Join("{config}", "env", "package_version.config") {
		t.Errorf("EnvironmentTemplate() = %q", got)
	}
	if cfg.Host() != HostStandalone {
		t.Errorf("Host() = %q, want standalone", cfg.Host())
	}
	if cfg.LogLevel() != "INFO" {
		t.Errorf("LogLevel() = %q, want INFO", cfg.LogLevel())
	}
	if cfg.GitTimeout() != DefaultGitTimout {
		t.Errorf("GitTimeout() = %v", cfg.GitTimeout())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	other := t.TempDir()
	cmdA := filepath.Join(other, "cmdA")
	cmdB := filepath.Join(other, "cmdB")

	t.Setenv("ZOO_CONFIG_PATH", filepath.Join(other, "cfg"))
	t.Setenv("ZOO_PACKAGES_PATH", filepath.Join(other, "pkgs"))
	t.Setenv("ZOO_CMD_PATH", cmdA+string(os.PathListSeparator)+cmdB)
	t.Setenv("ZOO_ADMIN", "true")
	t.Setenv("ZOO_LOG_LEVEL", "DEBUG")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ConfigPath() != filepath.Join(other, "cfg") {
		t.Errorf("ConfigPath() = %q", cfg.ConfigPath())
	}
	if cfg.PackagesPath() != filepath.Join(other, "pkgs") {
		t.Errorf("PackagesPath() = %q", cfg.PackagesPath())
	}
	libs := cfg.CommandLibPaths()
	if len(libs) != 2 || libs[0] != cmdA || libs[1] != cmdB {
		t.Errorf("CommandLibPaths() = %v", libs)
	}
	if !cfg.Admin() {
		t.Error("Admin() = false, want true")
	}
	if cfg.LogLevel() != "DEBUG" {
		t.Errorf("LogLevel() = %q", cfg.LogLevel())
	}
}

func TestLoadRootFromEnv(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	t.Setenv("ZOO_ROOT", root)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Root() != root {
		t.Errorf("Root() = %q, want %q", cfg.Root(), root)
	}
}

func TestPackageVersionOverrideRequiresFile(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	t.Setenv("ZOO_PACKAGE_VERSION_PATH", filepath.Join(root, "missing.config"))
	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.Contains(cfg.EnvironmentTemplate(), "missing.config") {
		t.Errorf("missing override should be ignored, got %q", cfg.EnvironmentTemplate())
	}

	override := filepath.Join(root, "custom.config")
	if err := os.WriteFile(override, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ZOO_PACKAGE_VERSION_PATH", override)
	cfg, err = Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EnvironmentTemplate() != override {
		t.Errorf("EnvironmentTemplate() = %q, want %q", cfg.EnvironmentTemplate(), override)
	}
}

func TestSettingsFile(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.WriteSetting(KeyGitTimeout, "30s"); err != nil {
		t.Fatalf("WriteSetting: %v", err)
	}
	if err := cfg.WriteSetting(KeyLogLevel, "WARN"); err != nil {
		t.Fatalf("WriteSetting: %v", err)
	}
	if err := cfg.WriteSetting("bogus", "x"); err == nil {
		t.Error("expected error for unknown key")
	}

	reloaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.GitTimeout() != 30*time.Second {
		t.Errorf("GitTimeout() = %v, want 30s", reloaded.GitTimeout())
	}
	if reloaded.LogLevel() != "WARN" {
		t.Errorf("LogLevel() = %q, want WARN", reloaded.LogLevel())
	}

	// Environment beats the file.
	t.Setenv("ZOO_LOG_LEVEL", "ERROR")
	reloaded, err = Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.LogLevel() != "ERROR" {
		t.Errorf("LogLevel() = %q, want ERROR", reloaded.LogLevel())
	}
}

func TestExpandTokens(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Setenv("ZOO_TEST_VAR", "value")

	tests := []struct {
		name string
		in   string
		self string
		want string
	}{
		{"config token", "{config}/env/package_version.config", "", filepath.Join(cfg.ConfigPath(), "env", "package_version.config")},
		{"self token", "{self}/scripts", "/pkgs/toolA/1.0.0", filepath.FromSlash("/pkgs/toolA/1.0.0/scripts")},
		{"self left alone without root", "{self}/scripts", "", filepath.FromSlash("{self}/scripts")},
		{"env var", "/opt/$ZOO_TEST_VAR", "", filepath.FromSlash("/opt/value")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.ExpandTokens(tt.in, tt.self); got != tt.want {
				t.Errorf("ExpandTokens(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetectHost(t *testing.T) {
	t.Setenv("MAYA_LOCATION", "")
	if got := DetectHost(""); got != HostStandalone {
		t.Errorf("DetectHost(\"\") = %q", got)
	}
	if got := DetectHost("Maya"); got != HostMaya {
		t.Errorf("DetectHost(Maya) = %q", got)
	}

	t.Setenv("MAYA_LOCATION", "/usr/autodesk/maya2024")
	if got := DetectHost(""); got != HostMaya {
		t.Errorf("DetectHost with MAYA_LOCATION = %q", got)
	}
	if got := DetectHost("standalone"); got != HostStandalone {
		t.Errorf("explicit standalone should win, got %q", got)
	}
}

func TestLoadRootIgnoresPathOverrides(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	t.Setenv("ZOO_CONFIG_PATH", t.TempDir())
	t.Setenv("ZOO_PACKAGES_PATH", t.TempDir())
	t.Setenv("ZOO_LOG_LEVEL", "DEBUG")

	cfg, err := LoadRoot(root)
	if err != nil {
		t.Fatalf("LoadRoot: %v", err)
	}
	if want := filepath.Join(root, "config"); cfg.ConfigPath() != want {
		t.Errorf("ConfigPath() = %q, want %q", cfg.ConfigPath(), want)
	}
	if want := filepath.Join(root, "install", "packages"); cfg.PackagesPath() != want {
		t.Errorf("PackagesPath() = %q, want %q", cfg.PackagesPath(), want)
	}
	if want := filepath.Join(root, "install", "core"); cfg.CorePath() != want {
		t.Errorf("CorePath() = %q, want %q", cfg.CorePath(), want)
	}
	if cfg.LogLevel() != "DEBUG" {
		t.Errorf("LogLevel() = %q, want DEBUG", cfg.LogLevel())
	}
}
