package descriptor

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/utsdab/usr-sub005/internal/config"
	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/logging"
	"github.com/utsdab/usr-sub005/internal/manifest"
	"github.com/utsdab/usr-sub005/internal/registry"
	"github.com/utsdab/usr-sub005/internal/testutil"
)

// fakeEnv is a file-backed Environment without the resolver's extras.
type fakeEnv struct {
	cfg          *config.Config
	manifestPath string
	cache        map[string]*registry.Package
}

func newFakeEnv(t *testing.T, entries manifest.Environment) *fakeEnv {
	t.Helper()
	testutil.ClearZooEnv(t)
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	env := &fakeEnv{
		cfg:          cfg,
		manifestPath: filepath.Join(cfg.EnvDir(), config.EnvironmentFile),
		cache:        map[string]*registry.Package{},
	}
	if entries != nil {
		if err := manifest.SaveEnvironment(env.manifestPath, entries); err != nil {
			t.Fatal(err)
		}
	}
	return env
}

func (f *fakeEnv) Config() *config.Config { return f.cfg }
func (f *fakeEnv) Logger() *slog.Logger    { return logging.Discard() }

func (f *fakeEnv) LoadEnvironmentFile() (manifest.Environment, error) {
	return manifest.LoadEnvironment(f.manifestPath)
}

func (f *fakeEnv) UpdateEnvironmentDescriptor(name string, raw manifest.Raw) error {
	env, err := f.LoadEnvironmentFile()
	if errors.Is(err, errs.ErrNotFound) {
		env = manifest.Environment{}
	} else if err != nil {
		return err
	}
	env[name] = raw
	return manifest.SaveEnvironment(f.manifestPath, env)
}

func (f *fakeEnv) RemoveDescriptorFromEnvironment(name string) (bool, error) {
	env, err := f.LoadEnvironmentFile()
	if errors.Is(err, errs.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if _, ok := env[name]; !ok {
		return false, nil
	}
	delete(env, name)
	return true, manifest.SaveEnvironment(f.manifestPath, env)
}

func (f *fakeEnv) CachedPackage(name, version string) *registry.Package {
	return f.cache[name+"-"+version]
}

func (f *fakeEnv) CachePackage(pkg *registry.Package)   { f.cache[pkg.ID()] = pkg }
func (f *fakeEnv) UncachePackage(pkg *registry.Package) { delete(f.cache, pkg.ID()) }
