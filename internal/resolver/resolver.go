package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/utsdab/usr-sub005/internal/config"
	"github.com/utsdab/usr-sub005/internal/descriptor"
	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
	"github.com/utsdab/usr-sub005/internal/registry"
)

// Environment resolves manifests against one package store. It implements
// descriptor.Environment.
type Environment struct {
	cfg     *config.Config
	logger  *slog.Logger
	applier Applier
	cache   map[string]*registry.Package
}

var _ descriptor.Environment = (*Environment)(nil)

// New builds a resolver. A nil applier means NoopApplier.
func New(cfg *config.Config, logger *slog.Logger, applier Applier) *Environment {
	if applier == nil {
		applier = NoopApplier{}
	}
	return &Environment{
		cfg:     cfg,
		logger:  logger,
		applier: applier,
		cache:   make(map[string]*registry.Package),
	}
}

// Failure records an entry that could not be resolved.
type Failure struct {
	Name string
	Err  error
}

// Result is the outcome of Resolve.
type Result struct {
	// Packages in requirement order: a package follows everything it needs.
	Packages []*registry.Package
	// Installed names the entries that were installed by this call.
	Installed []string
	// Variables are the merged package environment values, tokens expanded.
	Variables map[string]string
	Failures  []Failure
	Issues    []registry.RequirementIssue
}

func (r *Environment) Config() *config.Config { return r.cfg }
func (r *Environment) Logger() *slog.Logger    { return r.logger }

// environmentFile is the manifest location with tokens expanded, whether or
// not it exists yet.
func (r *Environment) environmentFile() string {
	return r.cfg.ExpandTokens(r.cfg.EnvironmentTemplate(), r.cfg.Root())
}

// EnvironmentPath returns the manifest location. errs.ErrNotFound when the
// file does not exist.
func (r *Environment) EnvironmentPath() (string, error) {
	path := r.environmentFile()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("environment file %s: %w", path, errs.ErrNotFound)
		}
		return "", fmt.Errorf("checking environment file: %w", err)
	}
	return path, nil
}

// LoadEnvironmentFile reads the current manifest.
func (r *Environment) LoadEnvironmentFile() (manifest.Environment, error) {
	path, err := r.EnvironmentPath()
	if err != nil {
		return nil, err
	}
	return manifest.LoadEnvironment(path)
}

// CreateEnvironmentFile writes env as the manifest unless one exists.
func (r *Environment) CreateEnvironmentFile(env manifest.Environment) (bool, error) {
	return manifest.CreateEnvironment(r.environmentFile(), env)
}

// UpdateEnvironmentDescriptor sets the manifest entry for name, creating
// the manifest if needed.
func (r *Environment) UpdateEnvironmentDescriptor(name string, raw manifest.Raw) error {
	env, err := r.LoadEnvironmentFile()
	if errors.Is(err, errs.ErrNotFound) {
		env = manifest.Environment{}
	} else if err != nil {
		return err
	}
	entry := raw.Clone()
	delete(entry, descriptor.KeyName)
	env[name] = entry
	return manifest.SaveEnvironment(r.environmentFile(), env)
}

// RemoveDescriptorFromEnvironment deletes the manifest entry for name and
// reports whether there was one.
func (r *Environment) RemoveDescriptorFromEnvironment(name string) (bool, error) {
	env, err := r.LoadEnvironmentFile()
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if _, ok := env[name]; !ok {
		return false, nil
	}
	delete(env, name)
	if err := manifest.SaveEnvironment(r.environmentFile(), env); err != nil {
		return false, err
	}
	return true, nil
}

// DescriptorFromDict builds a descriptor bound to this resolver.
func (r *Environment) DescriptorFromDict(raw manifest.Raw) (descriptor.Descriptor, error) {
	return descriptor.FromDict(r, raw)
}

// DescriptorFromPath builds a descriptor for a command-line location.
func (r *Environment) DescriptorFromPath(location string, raw manifest.Raw) (descriptor.Descriptor, error) {
	return descriptor.FromPath(r, location, raw)
}

// DescriptorForPackageName builds the descriptor registered under name.
func (r *Environment) DescriptorForPackageName(name string) (descriptor.Descriptor, error) {
	return descriptor.FromCurrentConfig(r, name)
}

// Descriptors builds a descriptor for every manifest entry, sorted by name.
// Entries that cannot be built are returned as failures.
func (r *Environment) Descriptors(env manifest.Environment) ([]descriptor.Descriptor, []Failure) {
	names := env.Names()
	sort.Strings(names)

	var (
		out      []descriptor.Descriptor
		failures []Failure
	)
	for _, name := range names {
		entry := env[name].Clone()
		entry[descriptor.KeyName] = name
		d, err := descriptor.FromDict(r, entry)
		if err != nil {
			failures = append(failures, Failure{Name: name, Err: err})
			continue
		}
		out = append(out, d)
	}
	return out, failures
}

// ResolveFromPath loads the request file at path and resolves it.
func (r *Environment) ResolveFromPath(ctx context.Context, path string) (*Result, error) {
	env, err := manifest.LoadEnvironment(path)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("resolving environment", "path", path, "entries", len(env))
	return r.Resolve(ctx, env)
}

// Resolve makes every request available: installed packages are reused,
// missing ones installed. A failing entry is recorded and logged without
// stopping the others. The resolved variables are handed to the applier.
func (r *Environment) Resolve(ctx context.Context, requests manifest.Environment) (*Result, error) {
	result := &Result{}
	descriptors, failures := r.Descriptors(requests)
	for _, f := range failures {
		r.logger.Error("invalid descriptor", "package", f.Name, "error", f.Err)
	}
	result.Failures = failures

	var pkgs []*registry.Package
	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pkg, installed, err := r.resolveOne(ctx, d)
		if err != nil {
			r.logger.Error("failed to resolve package", "package", d.Name(), "error", err)
			result.Failures = append(result.Failures, Failure{Name: d.Name(), Err: err})
			continue
		}
		if installed {
			result.Installed = append(result.Installed, d.Name())
		}
		pkgs = append(pkgs, pkg)
	}

	sorted, err := registry.SortByRequirements(pkgs)
	if err != nil {
		return nil, fmt.Errorf("ordering packages: %w", err)
	}
	result.Packages = sorted

	result.Issues = registry.CheckRequirements(sorted)
	for _, issue := range result.Issues {
		r.logger.Warn("unmet requirement", "package", issue.Package, "requirement", issue.Requirement, "reason", issue.Reason)
	}

	result.Variables = r.Variables(sorted)
	if err := r.applier.Apply(result.Variables); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	return result, nil
}

func (r *Environment) resolveOne(ctx context.Context, d descriptor.Descriptor) (*registry.Package, bool, error) {
	err := d.Resolve(ctx)
	switch {
	case errors.Is(err, errs.ErrAlreadyExists):
		r.logger.Debug("package already installed", "package", d.String())
		return d.Package(), false, nil
	case err != nil:
		return nil, false, err
	}
	if err := d.Install(ctx, descriptor.InstallOptions{}); err != nil {
		return nil, false, err
	}
	return d.Package(), true, nil
}

// Variables merges the environment declared by pkgs, in order. {self} is
// replaced by each package's root; values from several packages for the
// same variable are joined with the path-list separator.
func (r *Environment) Variables(pkgs []*registry.Package) map[string]string {
	sep := string(os.PathListSeparator)
	vars := make(map[string]string)
	for _, p := range pkgs {
		keys := make([]string, 0, len(p.Environment))
		for k := range p.Environment {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			values := make([]string, 0, len(p.Environment[k]))
			for _, v := range p.Environment[k] {
				values = append(values, r.cfg.ExpandTokens(v, p.Root))
			}
			joined := strings.Join(values, sep)
			if existing, ok := vars[k]; ok && existing != "" {
				joined = existing + sep + joined
			}
			vars[k] = joined
		}
	}
	return vars
}

// CachedPackage returns the cached package for name+version, or nil.
func (r *Environment) CachedPackage(name, version string) *registry.Package {
	return r.cache[name+"-"+version]
}

// CachePackage remembers pkg for the rest of the invocation.
func (r *Environment) CachePackage(pkg *registry.Package) {
	if pkg != nil {
		r.cache[pkg.ID()] = pkg
	}
}

// UncachePackage forgets pkg and drops the on-disk listing cache.
func (r *Environment) UncachePackage(pkg *registry.Package) {
	if pkg == nil {
		return
	}
	delete(r.cache, pkg.ID())
	if err := registry.InvalidateCache(r.IndexPath()); err != nil {
		r.logger.Debug("could not drop listing cache", "error", err)
	}
}

// CachedPackages returns the cache contents ordered by id.
func (r *Environment) CachedPackages() []*registry.Package {
	out := make([]*registry.Package, 0, len(r.cache))
	for _, p := range r.cache {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// IndexPath returns the listing cache location.
func (r *Environment) IndexPath() string {
	return filepath.Join(r.cfg.CacheDir(), registry.IndexFile)
}

// PackageFromPath loads and caches the package rooted at path.
func (r *Environment) PackageFromPath(path string) (*registry.Package, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	pkg, err := registry.LoadPackage(abs)
	if err != nil {
		return nil, err
	}
	r.CachePackage(pkg)
	return pkg, nil
}

// PackageForDescriptor returns the installed package d refers to.
func (r *Environment) PackageForDescriptor(d descriptor.Descriptor) (*registry.Package, error) {
	if pkg := r.ExistingPackage(d); pkg != nil {
		return pkg, nil
	}
	pkg, err := registry.Lookup(r.cfg.PackagesPath(), d.Name(), d.Version())
	if err != nil {
		return nil, err
	}
	r.CachePackage(pkg)
	return pkg, nil
}

// ExistingPackage returns the cached package for d without touching disk.
func (r *Environment) ExistingPackage(d descriptor.Descriptor) *registry.Package {
	if pkg := d.Package(); pkg != nil {
		return pkg
	}
	return r.CachedPackage(d.Name(), d.Version())
}

// PackageByName returns the newest cached or installed version of name.
func (r *Environment) PackageByName(name string) (*registry.Package, error) {
	var best *registry.Package
	for _, p := range r.cache {
		if p.Name == name && (best == nil || registry.CompareVersions(p.Version, best.Version) > 0) {
			best = p
		}
	}
	if best != nil {
		return best, nil
	}
	pkg, err := registry.Latest(r.cfg.PackagesPath(), name)
	if err != nil {
		return nil, err
	}
	r.CachePackage(pkg)
	return pkg, nil
}
