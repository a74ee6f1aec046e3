package zoo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/utsdab/usr-sub005/internal/config"
	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
	"github.com/utsdab/usr-sub005/internal/platform"
	"github.com/utsdab/usr-sub005/internal/registry"
)

// Build package identity written by setup --buildVersion.
const (
	BuildPackageName        = "zootoolsPro"
	BuildPackageDisplayName = "Zoo Tools Pro"
)

// Maya module file written by setup --app maya.
const (
	AppMaya       = "maya"
	MayaModFile   = "zootoolspro.mod"
	backupDirName = "zootools_backup"
	backupLayout  = "2006-01-02_15-04-05"
)

// DefaultUserPreferences is written to preference_roots.config.
const DefaultUserPreferences = "~/zoo_preferences"

// coreExcludes are skipped when the core payload is copied into a new root.
var coreExcludes = []string{".gitignore", "*.git", "__pycache__", ".vscode", ".idea"}

// SetupOptions configures Setup.
type SetupOptions struct {
	Destination string
	// Force backs up and replaces an existing destination.
	Force bool
	// Zip seeds the new root from an archive instead of this installation's core.
	Zip          string
	BuildVersion string
	App          string
	AppDir       string
}

// Setup creates a fresh installation root at opts.Destination:
//
//	<destination>/
//	    config/env/package_version.config
//	    config/env/preference_roots.config
//	    install/core/
//	    install/packages/
//
// and returns the manager for it.
func (z *Zoo) Setup(ctx context.Context, opts SetupOptions) (*Zoo, error) {
	if opts.Destination == "" {
		return nil, fmt.Errorf("setup: destination is required: %w", errs.ErrArgument)
	}
	if opts.App != "" && opts.App != AppMaya {
		return nil, fmt.Errorf("setup: unsupported app %q: %w", opts.App, errs.ErrArgument)
	}
	if opts.App == AppMaya && opts.AppDir == "" {
		return nil, fmt.Errorf("setup: --app_dir is required with --app %s: %w", AppMaya, errs.ErrArgument)
	}
	dest, err := filepath.Abs(opts.Destination)
	if err != nil {
		return nil, fmt.Errorf("resolving destination: %w", err)
	}

	if _, err := os.Stat(dest); err == nil {
		if !opts.Force {
			return nil, fmt.Errorf("zoo root %s: %w", dest, errs.ErrAlreadyExists)
		}
		if err := z.backup(dest); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Zip != "" {
		if _, err := os.Stat(opts.Zip); err != nil {
			return nil, fmt.Errorf("zip file %s: %w", opts.Zip, errs.ErrNotFound)
		}
		z.logger.Debug("extracting root from archive", "zip", opts.Zip, "destination", dest)
		if err := Unzip(opts.Zip, dest); err != nil {
			_ = platform.RemoveAll(dest)
			return nil, err
		}
	} else if err := z.copyCore(dest); err != nil {
		_ = platform.RemoveAll(dest)
		return nil, fmt.Errorf("setting up folder structure: %w", err)
	}

	for _, dir := range []string{
		filepath.Join(dest, config.ConfigDir),
		filepath.Join(dest, config.InstallDir, config.PackagesDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	installed, err := FromPath(dest, z.logger)
	if err != nil {
		return nil, err
	}
	if _, err := installed.Resolver().CreateEnvironmentFile(manifest.Environment{}); err != nil {
		return nil, fmt.Errorf("creating environment file: %w", err)
	}
	if err := installed.writePreferences(); err != nil {
		return nil, err
	}
	if opts.BuildVersion != "" {
		if err := installed.stampBuildVersion(opts.BuildVersion); err != nil {
			return nil, err
		}
	}
	if opts.App == AppMaya {
		if err := WriteMayaModule(dest, opts.AppDir); err != nil {
			return nil, err
		}
	}
	z.logger.Info("zoo root ready", "destination", dest)
	return installed, nil
}

// backup copies dest to <parent>/zootools_backup/<timestamp> and removes it.
func (z *Zoo) backup(dest string) error {
	target := filepath.Join(filepath.Dir(dest), backupDirName, time.Now().Format(backupLayout))
	z.logger.Debug("backing up existing root", "from", dest, "to", target)
	if err := registry.CopyTree(dest, target, nil); err != nil {
		return fmt.Errorf("backing up %s: %w", dest, err)
	}
	if err := platform.RemoveAll(dest); err != nil {
		return fmt.Errorf("removing %s (is it in use?): %w", dest, err)
	}
	return nil
}

// copyCore seeds dest with this installation's core payload, when it has one.
func (z *Zoo) copyCore(dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	core := z.cfg.CorePath()
	if _, err := os.Stat(core); os.IsNotExist(err) {
		z.logger.Debug("no core payload to copy", "core", core)
		return nil
	}
	target := filepath.Join(dest, config.InstallDir, config.CoreDir)
	z.logger.Debug("copying core", "from", core, "to", target)
	return registry.CopyTree(core, target, coreExcludes)
}

func (z *Zoo) writePreferences() error {
	path := filepath.Join(z.cfg.EnvDir(), config.PreferenceFile)
	return writeJSON(path, map[string]any{"user_preferences": DefaultUserPreferences})
}

// stampBuildVersion sets the version of <root>/zoo_package.json, creating
// it with the build identity when missing.
func (z *Zoo) stampBuildVersion(version string) error {
	path := z.BuildPackagePath()
	data := map[string]any{}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("parsing %s: %v: %w", path, err, errs.ErrParse)
		}
	case os.IsNotExist(err):
		data["name"] = BuildPackageName
		data["displayName"] = BuildPackageDisplayName
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}
	data["version"] = version
	return writeJSON(path, data)
}

// WriteMayaModule writes zootoolspro.mod into appDir pointing Maya at the
// root's maya extension folder.
func WriteMayaModule(root, appDir string) error {
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return fmt.Errorf("creating modules folder %s: %w", appDir, err)
	}
	ext := filepath.Join(root, config.InstallDir, config.CoreDir, "extensions", AppMaya)
	lines := []string{
		"+ zootoolspro 2.0 " + ext,
		"ZOOTOOLS_PRO_ROOT := ../../",
		"scripts: ./Scripts",
	}
	path := filepath.Join(appDir, MayaModFile)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing maya module file: %w", err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return manifest.WriteFileAtomic(path, append(data, '\n'))
}
