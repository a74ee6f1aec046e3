package descriptor

import (
	"context"
	"fmt"

	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
)

// zootoolsDescriptor names a package already present in the store. It is
// what every other descriptor becomes in the manifest after install.
type zootoolsDescriptor struct {
	base
}

func newZootools(env Environment, name, version string) *zootoolsDescriptor {
	return &zootoolsDescriptor{base{env: env, name: name, version: version, typ: Zootools}}
}

func (d *zootoolsDescriptor) Resolve(ctx context.Context) error {
	if err := d.checkInstalled(); err != nil {
		return err
	}
	return d.fail("resolve", fmt.Errorf("not in %s: %w", d.env.Config().PackagesPath(), errs.ErrNotFound))
}

func (d *zootoolsDescriptor) Install(ctx context.Context, opts InstallOptions) error {
	if err := d.checkInstalled(); err != nil {
		return err
	}
	return d.fail("install", fmt.Errorf("zootools packages have no remote source: %w", errs.ErrNotFound))
}

func (d *zootoolsDescriptor) Serialize() manifest.Raw {
	return manifest.Raw{KeyType: Zootools, KeyVersion: d.version}
}
