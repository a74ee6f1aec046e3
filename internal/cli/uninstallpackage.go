package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/utsdab/usr-sub005/internal/errs"
)

type uninstallPackage struct {
	ex     *Executor
	name   string
	remove bool
}

func newUninstallPackage(ex *Executor) Action { return &uninstallPackage{ex: ex} }

func (a *uninstallPackage) ID() string    { return "uninstallPackage" }
func (a *uninstallPackage) Short() string { return "Remove a package from the environment" }

func (a *uninstallPackage) Arguments(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.name, "name", "", "Package name as listed in the environment manifest")
	cmd.Flags().BoolVar(&a.remove, "remove", false, "Also delete the installed files")
	_ = cmd.MarkFlagRequired("name")
}

func (a *uninstallPackage) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	log := a.ex.Logger()
	d, err := a.ex.Zoo().DescriptorForPackageName(a.name)
	if err != nil {
		if errs.Classify(err) == errs.KindItem {
			log.Error("package not found", "package", a.name, "error", err)
			return nil
		}
		return err
	}

	removed, err := d.Uninstall(a.remove)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled %s\n", d.String())
	}
	return nil
}
