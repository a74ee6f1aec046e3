package descriptor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/git"
	"github.com/utsdab/usr-sub005/internal/platform"
	"github.com/utsdab/usr-sub005/internal/registry"
)

// gitDescriptor installs a package from a git remote at a tag, branch or
// commit named by version.
type gitDescriptor struct {
	base
}

func newGit(env Environment, name, version, locator string) *gitDescriptor {
	return &gitDescriptor{base{env: env, name: name, version: version, typ: Git, locator: locator}}
}

func (d *gitDescriptor) validate() error {
	if !strings.HasSuffix(d.locator, ".git") {
		return fmt.Errorf("%q does not end in .git: %w", d.locator, errs.ErrInvalidLocator)
	}
	return nil
}

func (d *gitDescriptor) Resolve(ctx context.Context) error {
	if err := d.validate(); err != nil {
		return d.fail("resolve", err)
	}
	return d.checkInstalled()
}

func (d *gitDescriptor) Install(ctx context.Context, opts InstallOptions) error {
	if err := d.validate(); err != nil {
		return d.fail("install", err)
	}
	ctx, cancel := context.WithTimeout(ctx, d.env.Config().GitTimeout())
	defer cancel()

	dest := d.InstallRoot()
	err := registry.InstallDir(dest, func(staging string) error {
		tmp, err := os.MkdirTemp("", "zoo_git")
		if err != nil {
			return fmt.Errorf("creating temp dir: %w", err)
		}
		defer platform.RemoveAll(tmp)

		clone := filepath.Join(tmp, d.name)
		d.logger().Debug("cloning", "url", d.locator, "ref", d.version)
		if err := git.Fetch(ctx, d.locator, d.version, clone); err != nil {
			return err
		}
		if err := registry.CopyTree(clone, staging, registry.DefaultExcludes); err != nil {
			return fmt.Errorf("copying checkout: %w", err)
		}
		_, err = registry.WritePackageFile(staging, d.name, d.version)
		return err
	})
	if err != nil {
		return d.fail("install", err)
	}
	return d.commit()
}
