package zoo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/utsdab/usr-sub005/internal/config"
	"github.com/utsdab/usr-sub005/internal/descriptor"
	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
	"github.com/utsdab/usr-sub005/internal/platform"
	"github.com/utsdab/usr-sub005/internal/registry"
)

// doctor prints one line per check and counts failures.
type doctor struct {
	w     io.Writer
	fix   bool
	fails int
}

func (d *doctor) ok(format string, args ...any)   { d.line("[ OK ]", format, args...) }
func (d *doctor) miss(format string, args ...any) { d.fails++; d.line("[MISS]", format, args...) }
func (d *doctor) fail(format string, args ...any) { d.fails++; d.line("[FAIL]", format, args...) }
func (d *doctor) warn(format string, args ...any) { d.line("[WARN]", format, args...) }
func (d *doctor) info(format string, args ...any) { d.line("[INFO]", format, args...) }
func (d *doctor) fixed(format string, args ...any) {
	d.fails--
	d.line("[FIX ]", format, args...)
}

func (d *doctor) line(tag, format string, args ...any) {
	fmt.Fprintf(d.w, "  %s %s\n", tag, fmt.Sprintf(format, args...))
}

// Doctor checks the installation layout, the environment manifest and the
// packages it names. With fix, missing directories and an absent manifest
// are created. It returns an error when any check failed.
func (z *Zoo) Doctor(w io.Writer, fix bool) error {
	d := &doctor{w: w, fix: fix}

	fmt.Fprintln(w, "Layout check:")
	d.checkDir(z.cfg.Root())
	d.checkDir(z.cfg.ConfigPath())
	d.checkDir(z.cfg.EnvDir())
	d.checkDir(z.cfg.PackagesPath())
	d.checkFile(filepath.Join(z.cfg.EnvDir(), config.PreferenceFile))

	fmt.Fprintln(w, "Environment check:")
	env := z.checkEnvironment(d)

	fmt.Fprintln(w, "Packages check:")
	z.checkPackages(d, env)

	fmt.Fprintln(w, "Runtime check:")
	d.checkBinary("git")
	d.info("host: %s", z.cfg.Host())
	d.info("admin: %t", z.cfg.Admin())
	d.info("build version: %s", z.BuildVersion())

	if d.fails > 0 {
		return fmt.Errorf("%d check(s) failed", d.fails)
	}
	return nil
}

func (d *doctor) checkDir(path string) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		d.miss("%s does not exist", path)
		if d.fix {
			if mkErr := os.MkdirAll(path, 0o755); mkErr != nil {
				d.fail("could not create %s: %v", path, mkErr)
				return
			}
			d.fixed("created %s", path)
		}
		return
	}
	if err != nil {
		d.fail("%s: %v", path, err)
		return
	}
	if !info.IsDir() {
		d.fail("%s exists but is not a directory", path)
		return
	}
	d.ok("%s exists", path)
}

func (d *doctor) checkFile(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		d.warn("%s does not exist", path)
		return
	}
	d.ok("%s exists", path)
}

func (d *doctor) checkBinary(name string) {
	path, err := exec.LookPath(name)
	if err != nil {
		d.warn("%s not found (git sources on a local path cannot be cloned)", name)
		return
	}
	d.ok("%s found at %s", name, path)
}

// checkEnvironment validates the manifest and returns it, nil when it is
// missing or broken.
func (z *Zoo) checkEnvironment(d *doctor) manifest.Environment {
	path, err := z.resolver.EnvironmentPath()
	if errors.Is(err, errs.ErrNotFound) {
		d.miss("%s does not exist", z.cfg.ExpandTokens(z.cfg.EnvironmentTemplate(), z.cfg.Root()))
		if d.fix {
			if _, err := z.resolver.CreateEnvironmentFile(manifest.Environment{}); err != nil {
				d.fail("could not create environment file: %v", err)
				return nil
			}
			d.fixed("created empty environment file")
		}
		return nil
	}
	if err != nil {
		d.fail("%v", err)
		return nil
	}

	result, err := manifest.ValidateFile(manifest.SchemaEnvironment, path)
	if err != nil {
		d.fail("%s: %v", path, err)
		return nil
	}
	if !result.Valid {
		d.fail("%s: %d validation issue(s):", path, len(result.Issues))
		for _, issue := range result.Issues {
			if issue.Path != "" {
				fmt.Fprintf(d.w, "    - %s: %s\n", issue.Path, issue.Message)
			} else {
				fmt.Fprintf(d.w, "    - %s\n", issue.Message)
			}
		}
		return nil
	}

	env, err := manifest.LoadEnvironment(path)
	if err != nil {
		d.fail("%v", err)
		return nil
	}
	d.ok("%s is valid (%d package(s))", path, len(env))
	return env
}

func (z *Zoo) checkPackages(d *doctor, env manifest.Environment) {
	if len(env) == 0 {
		d.info("no packages requested")
		return
	}
	descriptors, failures := z.resolver.Descriptors(env)
	for _, f := range failures {
		d.fail("%s: %v", f.Name, f.Err)
	}

	var installed []*registry.Package
	for _, desc := range descriptors {
		if desc.Type() != descriptor.Zootools {
			d.info("%s: %s source %s (installed on next cachePackages)", desc.Name(), desc.Type(), desc.Locator())
			continue
		}
		pkg, err := z.resolver.PackageForDescriptor(desc)
		if err != nil {
			d.miss("%s: %v", desc.String(), err)
			continue
		}
		if platform.IsLink(pkg.Root) {
			if target, err := platform.ReadLinkTarget(pkg.Root); err == nil {
				d.ok("%s linked to %s", pkg.ID(), target)
				installed = append(installed, pkg)
				continue
			}
		}
		d.ok("%s installed at %s", pkg.ID(), pkg.Root)
		installed = append(installed, pkg)
	}

	for _, issue := range registry.CheckRequirements(installed) {
		d.warn("%s", issue.Error())
	}
}
