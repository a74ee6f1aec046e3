package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/utsdab/usr-sub005/internal/descriptor"
	"github.com/utsdab/usr-sub005/internal/errs"
)

type cachePackages struct {
	ex *Executor
}

func newCachePackages(ex *Executor) Action { return &cachePackages{ex: ex} }

func (a *cachePackages) ID() string    { return "cachePackages" }
func (a *cachePackages) Short() string { return "Install every package listed in the environment manifest" }

func (a *cachePackages) Arguments(cmd *cobra.Command) {
	cmd.Long = `Resolve each entry of the environment manifest and install the ones that
are missing from the packages directory. Packages that are already installed
are skipped; an entry that fails is logged and the others still run.`
}

func (a *cachePackages) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	log := a.ex.Logger()
	r := a.ex.Zoo().Resolver()

	env, err := r.LoadEnvironmentFile()
	if err != nil {
		return err
	}
	log.Debug("caching packages", "entries", len(env))

	descriptors, failures := r.Descriptors(env)
	for _, f := range failures {
		log.Error("invalid descriptor", "package", f.Name, "error", f.Err)
	}

	var installed, skipped int
	failed := len(failures)
	for _, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := d.Resolve(ctx)
		if err == nil {
			err = d.Install(ctx, descriptor.InstallOptions{})
		}
		// Past the manifest load every error belongs to this entry alone,
		// including a malformed zoo_package.json.
		switch errs.Classify(err) {
		case errs.KindNone:
			installed++
		case errs.KindSkip:
			log.Debug("package already installed, skipping", "package", d.String())
			skipped++
		default:
			log.Error("failed to cache package", "package", d.String(), "error", err)
			failed++
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cached packages: %d installed, %d already installed, %d failed\n",
		installed, skipped, failed)
	return nil
}
