package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/utsdab/usr-sub005/internal/zoo"
)

type bundlePackages struct {
	ex   *Executor
	opts zoo.BundleOptions
}

func newBundlePackages(ex *Executor) Action { return &bundlePackages{ex: ex} }

func (a *bundlePackages) ID() string    { return "bundlePackages" }
func (a *bundlePackages) Short() string { return "Zip a fresh root holding every installed package" }

func (a *bundlePackages) Arguments(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.opts.Destination, "destination", "", "Zip file to write; its parent directory is created")
	cmd.Flags().StringVar(&a.opts.BuildVersion, "buildVersion", "", "Build version stamped on the bundled root")
	cmd.Flags().BoolVar(&a.opts.Clean, "clean", false, "Remove an existing zip at the destination first")
	_ = cmd.MarkFlagRequired("destination")
}

func (a *bundlePackages) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	if err := a.ex.Zoo().Bundle(ctx, a.opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Bundle written to %s\n", a.opts.Destination)
	return nil
}
