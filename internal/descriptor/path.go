package descriptor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/platform"
	"github.com/utsdab/usr-sub005/internal/registry"
)

// pathDescriptor installs a package from a local directory.
type pathDescriptor struct {
	base
}

func newPath(env Environment, name, version, locator string) *pathDescriptor {
	return &pathDescriptor{base{env: env, name: name, version: version, typ: LocalPath, locator: locator}}
}

// source returns the expanded locator after checking it is a directory.
func (d *pathDescriptor) source() (string, error) {
	src := d.env.Config().ExpandTokens(d.locator, "")
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("source %s: %w", src, errs.ErrNotFound)
		}
		return "", fmt.Errorf("source %s: %w", src, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source %s is not a directory: %w", src, errs.ErrInvalidLocator)
	}
	return src, nil
}

// fillVersion reads the version from the source's package file when the
// manifest did not give one.
func (d *pathDescriptor) fillVersion(src string) error {
	if d.version != "" {
		return nil
	}
	v, err := registry.ReadVersion(src)
	if err != nil {
		return fmt.Errorf("no version given and %w", err)
	}
	d.version = v
	return nil
}

func (d *pathDescriptor) Resolve(ctx context.Context) error {
	src, err := d.source()
	if err != nil {
		return d.fail("resolve", err)
	}
	if err := d.fillVersion(src); err != nil {
		return d.fail("resolve", err)
	}
	return d.checkInstalled()
}

func (d *pathDescriptor) Install(ctx context.Context, opts InstallOptions) error {
	src, err := d.source()
	if err != nil {
		return d.fail("install", err)
	}
	if err := d.fillVersion(src); err != nil {
		return d.fail("install", err)
	}
	dest := d.InstallRoot()

	if opts.InPlace {
		if err := d.link(src, dest); err == nil {
			return d.commit()
		} else if !errors.Is(err, platform.ErrLinkUnsupported) {
			return d.fail("install", err)
		}
		d.logger().Warn("links unsupported, copying instead", "source", src)
	}

	d.logger().Debug("copying package", "source", src, "dest", dest)
	err = registry.InstallDir(dest, func(staging string) error {
		if err := registry.CopyTree(src, staging, registry.DefaultExcludes); err != nil {
			return fmt.Errorf("copying %s: %w", src, err)
		}
		_, err := registry.WritePackageFile(staging, d.name, d.version)
		return err
	})
	if err != nil {
		return d.fail("install", err)
	}
	return d.commit()
}

func (d *pathDescriptor) link(src, dest string) error {
	if _, err := os.Lstat(dest); err == nil {
		return fmt.Errorf("%s: %w", dest, errs.ErrAlreadyExists)
	}
	if err := platform.LinkDir(src, dest); err != nil {
		return err
	}
	if _, err := registry.WritePackageFile(dest, d.name, d.version); err != nil {
		_ = platform.Unlink(dest)
		return err
	}
	return nil
}
