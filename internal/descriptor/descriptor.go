package descriptor

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/utsdab/usr-sub005/internal/config"
	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
	"github.com/utsdab/usr-sub005/internal/registry"
)

// Source types.
const (
	Git       = "git"
	LocalPath = "path"
	Zootools  = "zootools"
)

// Manifest keys.
const (
	KeyName    = "name"
	KeyVersion = "version"
	KeyType    = "type"
	KeyLocator = "locator"
	KeyPath    = "path" // older manifests spell locator as path
)

// Environment is what a descriptor needs from the resolver that owns it.
type Environment interface {
	Config() *config.Config
	Logger() *slog.Logger
	LoadEnvironmentFile() (manifest.Environment, error)
	UpdateEnvironmentDescriptor(name string, raw manifest.Raw) error
	RemoveDescriptorFromEnvironment(name string) (bool, error)
	CachedPackage(name, version string) *registry.Package
	CachePackage(pkg *registry.Package)
	UncachePackage(pkg *registry.Package)
}

// InstallOptions tweaks Install.
type InstallOptions struct {
	// InPlace links a path source into the store instead of copying it.
	InPlace bool
}

// Descriptor is one installable package reference.
type Descriptor interface {
	Name() string
	Version() string
	Type() string
	Locator() string
	// InstallRoot is <packages>/<name>/<version>; empty until the version is known.
	InstallRoot() string
	// Package is the installed package once Resolve or Install found it.
	Package() *registry.Package

	// Resolve reports errs.ErrAlreadyExists when name+version is installed.
	// A nil error means the descriptor is ready to Install.
	Resolve(ctx context.Context) error
	Install(ctx context.Context, opts InstallOptions) error
	// Uninstall drops the manifest registration and, with remove, the files.
	// It returns false when there was nothing to uninstall.
	Uninstall(remove bool) (bool, error)

	// Serialize returns the manifest form of the descriptor.
	Serialize() manifest.Raw
	String() string
}

type base struct {
	env     Environment
	name    string
	version string
	typ     string
	locator string
	pkg     *registry.Package
}

func (b *base) Name() string                { return b.name }
func (b *base) Version() string             { return b.version }
func (b *base) Type() string                { return b.typ }
func (b *base) Locator() string             { return b.locator }
func (b *base) Package() *registry.Package { return b.pkg }

func (b *base) String() string {
	if b.version == "" {
		return b.name
	}
	return b.name + "-" + b.version
}

func (b *base) InstallRoot() string {
	if b.version == "" {
		return ""
	}
	return registry.Dir(b.env.Config().PackagesPath(), b.name, b.version)
}

func (b *base) Serialize() manifest.Raw {
	raw := manifest.Raw{KeyType: b.typ}
	if b.version != "" {
		raw[KeyVersion] = b.version
	}
	if b.locator != "" {
		raw[KeyLocator] = b.locator
	}
	return raw
}

func (b *base) logger() *slog.Logger {
	return b.env.Logger().With("package", b.name)
}

func (b *base) fail(op string, err error) error {
	return &errs.PackageError{Op: op, Name: b.name, Version: b.version, Err: err}
}

// checkInstalled is the shared half of Resolve: a cached or on-disk
// name+version is reported as already existing and remembered.
func (b *base) checkInstalled() error {
	if b.version == "" {
		return nil
	}
	if pkg := b.env.CachedPackage(b.name, b.version); pkg != nil {
		b.pkg = pkg
		return b.fail("resolve", errs.ErrAlreadyExists)
	}
	packages := b.env.Config().PackagesPath()
	if !registry.Installed(packages, b.name, b.version) {
		return nil
	}
	pkg, err := registry.Lookup(packages, b.name, b.version)
	if err != nil {
		return b.fail("resolve", err)
	}
	b.pkg = pkg
	b.env.CachePackage(pkg)
	return b.fail("resolve", errs.ErrAlreadyExists)
}

// commit records a finished install: cache it and pin the manifest entry
// to the installed version.
func (b *base) commit() error {
	pkg, err := registry.LoadPackage(b.InstallRoot())
	if err != nil {
		return b.fail("install", err)
	}
	b.pkg = pkg
	b.env.CachePackage(pkg)

	pinned := manifest.Raw{KeyType: Zootools, KeyVersion: b.version}
	if err := b.env.UpdateEnvironmentDescriptor(b.name, pinned); err != nil {
		return b.fail("install", fmt.Errorf("updating environment: %w", err))
	}
	b.logger().Info("installed package", "version", b.version, "root", pkg.Root)
	return nil
}

func (b *base) Uninstall(remove bool) (bool, error) {
	log := b.logger()
	packages := b.env.Config().PackagesPath()

	pkg := b.pkg
	var lookupErr error
	if pkg == nil && b.version != "" {
		pkg, lookupErr = registry.Lookup(packages, b.name, b.version)
	}
	// A directory whose package file cannot be read is still ours to delete.
	onDisk := pkg != nil
	if !onDisk && b.version != "" {
		_, err := os.Lstat(registry.Dir(packages, b.name, b.version))
		onDisk = err == nil
	}

	registered, err := b.env.RemoveDescriptorFromEnvironment(b.name)
	if err != nil {
		return false, b.fail("uninstall", err)
	}
	if !onDisk && !registered {
		log.Error("package not found", "version", b.version)
		return false, nil
	}
	if registered {
		log.Info("removed package from environment")
	}
	if !remove || !onDisk {
		return true, nil
	}

	if pkg == nil {
		log.Warn("package file unreadable, removing directory", "error", lookupErr)
		if err := registry.Remove(packages, b.name, b.version); err != nil {
			return false, b.fail("uninstall", err)
		}
		log.Info("deleted package files", "root", registry.Dir(packages, b.name, b.version))
		return true, nil
	}
	if err := registry.Remove(packages, pkg.Name, pkg.Version); err != nil {
		return false, b.fail("uninstall", err)
	}
	b.env.UncachePackage(pkg)
	log.Info("deleted package files", "root", pkg.Root)
	b.pkg = nil
	return true, nil
}
