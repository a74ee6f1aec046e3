package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/utsdab/usr-sub005/internal/zoo"
)

type setup struct {
	ex   *Executor
	opts zoo.SetupOptions
}

func newSetup(ex *Executor) Action { return &setup{ex: ex} }

func (a *setup) ID() string    { return "setup" }
func (a *setup) Short() string { return "Create a new zoo root" }

func (a *setup) Arguments(cmd *cobra.Command) {
	cmd.Long = `Create a new zoo root at --destination with the layout

  config/env/package_version.config
  install/core
  install/packages

The core payload of the current root is copied unless --zip names an archive
to extract instead.`
	cmd.Flags().StringVar(&a.opts.Destination, "destination", "", "Directory to create the root in")
	cmd.Flags().BoolVar(&a.opts.Force, "force", false, "Back up and replace an existing destination")
	cmd.Flags().StringVar(&a.opts.Zip, "zip", "", "Archive to build the root from")
	cmd.Flags().StringVar(&a.opts.BuildVersion, "buildVersion", "", "Build version to stamp on the root")
	cmd.Flags().StringVar(&a.opts.App, "app", "", "Application to register the root with (maya)")
	cmd.Flags().StringVar(&a.opts.AppDir, "app_dir", "", "Application module directory, e.g. Maya's modules folder")
	_ = cmd.MarkFlagRequired("destination")
}

func (a *setup) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	installed, err := a.ex.Zoo().Setup(ctx, a.opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created zoo root at %s\n", installed.Config().Root())
	return nil
}
