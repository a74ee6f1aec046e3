package zoo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/utsdab/usr-sub005/internal/descriptor"
	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
	"github.com/utsdab/usr-sub005/internal/platform"
	"github.com/utsdab/usr-sub005/internal/registry"
)

// bundleRootName is the root folder name inside a bundle archive.
const bundleRootName = "zootoolspro"

// BundleOptions configures Bundle.
type BundleOptions struct {
	// Destination is the zip file to write; its parent is created.
	Destination  string
	BuildVersion string
	// Clean removes an existing archive at Destination first.
	Clean bool
}

// Bundle zips a fresh root holding every package of the current manifest.
// Each entry must be a zootools descriptor whose package is installed.
func (z *Zoo) Bundle(ctx context.Context, opts BundleOptions) error {
	if opts.Destination == "" {
		return fmt.Errorf("bundle: destination is required: %w", errs.ErrArgument)
	}
	dest, err := filepath.Abs(opts.Destination)
	if err != nil {
		return fmt.Errorf("resolving destination: %w", err)
	}
	if opts.Clean {
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing existing bundle: %w", err)
		}
	}

	pkgs, err := z.bundlePackages()
	if err != nil {
		return err
	}

	tmp, err := os.MkdirTemp("", "zoo_bundle")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() {
		if err := platform.RemoveAll(tmp); err != nil {
			z.logger.Warn("could not remove bundle staging", "dir", tmp, "error", err)
		}
	}()

	staged, err := z.Setup(ctx, SetupOptions{
		Destination:  filepath.Join(tmp, bundleRootName),
		BuildVersion: opts.BuildVersion,
		App:          AppMaya,
		AppDir:       filepath.Join(tmp, AppMaya),
	})
	if err != nil {
		return fmt.Errorf("staging bundle root: %w", err)
	}

	for _, pkg := range pkgs {
		raw := manifest.Raw{descriptor.KeyName: pkg.Name, descriptor.KeyVersion: pkg.Version}
		d, err := staged.Resolver().DescriptorFromPath(pkg.Root, raw)
		if err != nil {
			return err
		}
		if err := d.Install(ctx, descriptor.InstallOptions{}); err != nil {
			return fmt.Errorf("bundling %s: %w", pkg.ID(), err)
		}
	}

	if err := ZipDir(staged.Config().Root(), dest, registry.DefaultExcludes); err != nil {
		return err
	}
	z.logger.Info("bundle written", "destination", dest, "packages", len(pkgs))
	return nil
}

// bundlePackages checks the manifest and returns the packages to bundle.
func (z *Zoo) bundlePackages() ([]*registry.Package, error) {
	env, err := z.resolver.LoadEnvironmentFile()
	if err != nil {
		return nil, err
	}
	names := env.Names()
	sort.Strings(names)

	var pkgs []*registry.Package
	for _, name := range names {
		raw := env[name].Clone()
		raw[descriptor.KeyName] = name
		d, err := z.resolver.DescriptorFromDict(raw)
		if err != nil {
			return nil, err
		}
		if d.Type() != descriptor.Zootools {
			z.logger.Error("only zootools descriptors can be bundled", "package", name, "type", d.Type())
			return nil, &errs.PackageError{Op: "bundle", Name: name, Version: d.Version(),
				Err: fmt.Errorf("type %q: %w", d.Type(), errs.ErrUnsupportedType)}
		}
		pkg, err := z.resolver.PackageForDescriptor(d)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				z.logger.Error("missing package", "package", d.String())
			}
			return nil, &errs.PackageError{Op: "bundle", Name: name, Version: d.Version(), Err: err}
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}
