package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/utsdab/usr-sub005/internal/descriptor"
	"github.com/utsdab/usr-sub005/internal/scaffold"
)

type createPackage struct {
	ex          *Executor
	destination string
	name        string
	data        scaffold.ScaffoldData
	install     bool
}

func newCreatePackage(ex *Executor) Action { return &createPackage{ex: ex} }

func (a *createPackage) ID() string    { return "createPackage" }
func (a *createPackage) Short() string { return "Scaffold a new package" }

func (a *createPackage) Arguments(cmd *cobra.Command) {
	cmd.Long = `Generate a new package skeleton in <destination>/<name>: a zoo_package.json,
a README and a python module. --install adds it to the current root right away.`
	cmd.Flags().StringVar(&a.destination, "destination", "", "Parent directory for the new package")
	cmd.Flags().StringVar(&a.name, "name", "", "Package name")
	cmd.Flags().StringVar(&a.data.Author, "author", "", "Package author")
	cmd.Flags().StringVar(&a.data.AuthorEmail, "authorEmail", "", "Author email")
	cmd.Flags().StringVar(&a.data.DisplayName, "displayName", "", "Human-readable name (default derived from --name)")
	cmd.Flags().StringVar(&a.data.Description, "description", "", "Short description")
	cmd.Flags().StringVar(&a.data.Version, "version", "", "Initial version (default 0.1.0)")
	cmd.Flags().BoolVar(&a.install, "install", false, "Install the new package in place after creating it")
	_ = cmd.MarkFlagRequired("destination")
	_ = cmd.MarkFlagRequired("name")
}

func (a *createPackage) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	data := scaffold.NewScaffoldData(a.name)
	if a.data.DisplayName != "" {
		data.DisplayName = a.data.DisplayName
	}
	if a.data.Description != "" {
		data.Description = a.data.Description
	}
	if a.data.Version != "" {
		data.Version = a.data.Version
	}
	data.Author = a.data.Author
	data.AuthorEmail = a.data.AuthorEmail

	outDir := filepath.Join(a.destination, a.name)
	result, err := scaffold.Generate(scaffold.DefaultSet, data, outDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created package %s in %s\n", a.name, result.OutputDir)
	for _, f := range result.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}
	if !a.install {
		return nil
	}

	d, err := a.ex.Zoo().Resolver().DescriptorFromPath(result.OutputDir, nil)
	if err != nil {
		return err
	}
	if err := d.Install(ctx, descriptor.InstallOptions{InPlace: true}); err != nil {
		return err
	}
	fmt.Fprintf(out, "Installed %s to %s\n", d.String(), d.InstallRoot())
	return nil
}
