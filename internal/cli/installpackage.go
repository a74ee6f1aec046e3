package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/utsdab/usr-sub005/internal/descriptor"
	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/manifest"
)

type installPackage struct {
	ex      *Executor
	path    string
	name    string
	tag     string
	inPlace bool
}

func newInstallPackage(ex *Executor) Action { return &installPackage{ex: ex} }

func (a *installPackage) ID() string    { return "installPackage" }
func (a *installPackage) Short() string { return "Install a package from a directory or git url" }

func (a *installPackage) Arguments(cmd *cobra.Command) {
	cmd.Flags().StringVar(&a.path, "path", "", "Package directory or https://.../<repo>.git url")
	cmd.Flags().StringVar(&a.name, "name", "", "Package name (required for git urls)")
	cmd.Flags().StringVar(&a.tag, "tag", "", "Git tag to install (required for git urls)")
	cmd.Flags().BoolVar(&a.inPlace, "inPlace", false, "Link a directory into the packages folder instead of copying it")
	_ = cmd.MarkFlagRequired("path")
}

func (a *installPackage) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	raw := manifest.Raw{}
	if strings.HasSuffix(a.path, ".git") {
		if a.tag == "" {
			return fmt.Errorf("--tag is required for git urls: %w", errs.ErrArgument)
		}
		if a.name == "" {
			return fmt.Errorf("--name is required for git urls: %w", errs.ErrArgument)
		}
		raw[descriptor.KeyVersion] = a.tag
	}
	if a.name != "" {
		raw[descriptor.KeyName] = a.name
	}

	a.ex.Logger().Debug("installing package", "path", a.path)
	d, err := a.ex.Zoo().Resolver().DescriptorFromPath(a.path, raw)
	if err != nil {
		return err
	}

	err = d.Resolve(ctx)
	if errs.Classify(err) == errs.KindSkip {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already installed\n", d.String())
		return nil
	}
	if err != nil {
		return err
	}
	if err := d.Install(ctx, descriptor.InstallOptions{InPlace: a.inPlace}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s to %s\n", d.String(), d.InstallRoot())
	return nil
}
