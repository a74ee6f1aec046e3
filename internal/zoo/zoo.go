package zoo

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/utsdab/usr-sub005/internal/config"
	"github.com/utsdab/usr-sub005/internal/descriptor"
	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
	"github.com/utsdab/usr-sub005/internal/registry"
	"github.com/utsdab/usr-sub005/internal/resolver"
)

// DevVersion is reported when the root carries no build package.
const DevVersion = "DEV"

// Zoo is the manager for one installation root.
type Zoo struct {
	cfg      *config.Config
	resolver *resolver.Environment
	logger   *slog.Logger
}

// New builds the manager for cfg. The environment applier is picked from
// the configured host.
func New(cfg *config.Config, logger *slog.Logger) *Zoo {
	return &Zoo{
		cfg:      cfg,
		resolver: resolver.New(cfg, logger, ApplierFor(cfg.Host())),
		logger:   logger,
	}
}

// FromPath loads the installation rooted at root, ignoring ZOO_* path
// overrides. The directory must exist.
func FromPath(root string, logger *slog.Logger) (*Zoo, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("zoo root %s: %w", root, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("checking zoo root: %w", err)
	}
	cfg, err := config.LoadRoot(root)
	if err != nil {
		return nil, err
	}
	return New(cfg, logger), nil
}

// ApplierFor returns the environment applier for host h.
func ApplierFor(h config.Host) resolver.Applier {
	if h == config.HostMaya {
		return resolver.ProcessApplier{}
	}
	return resolver.NoopApplier{}
}

func (z *Zoo) Config() *config.Config          { return z.cfg }
func (z *Zoo) Resolver() *resolver.Environment { return z.resolver }
func (z *Zoo) Logger() *slog.Logger            { return z.logger }

// BuildPackagePath is <root>/zoo_package.json, written by setup --buildVersion.
func (z *Zoo) BuildPackagePath() string {
	return filepath.Join(z.cfg.Root(), registry.FileName)
}

// BuildVersion returns the version stamped on the root, DevVersion when
// there is none.
func (z *Zoo) BuildVersion() string {
	v, err := registry.ReadVersion(z.cfg.Root())
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			z.logger.Debug("unreadable build package", "error", err)
		}
		return DevVersion
	}
	return v
}

// CoreVersion returns the version of the bundled core payload.
func (z *Zoo) CoreVersion() (string, error) {
	return registry.ReadVersion(z.cfg.CorePath())
}

// DescriptorFromDict builds a descriptor bound to this installation.
func (z *Zoo) DescriptorFromDict(raw manifest.Raw) (descriptor.Descriptor, error) {
	return z.resolver.DescriptorFromDict(raw)
}

// DescriptorForPackageName returns the descriptor registered under name in
// the current manifest.
func (z *Zoo) DescriptorForPackageName(name string) (descriptor.Descriptor, error) {
	return z.resolver.DescriptorForPackageName(name)
}
