package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/utsdab/usr-sub005/internal/registry"
)

type envAction struct {
	ex     *Executor
	asJSON bool
}

func newEnv(ex *Executor) Action { return &envAction{ex: ex} }

func (a *envAction) ID() string    { return "env" }
func (a *envAction) Short() string { return "Print the environment the installed packages declare" }

func (a *envAction) Arguments(cmd *cobra.Command) {
	cmd.Long = `Print the variables contributed by every installed package of the environment
manifest, in requirement order, with {self} replaced by each package root.
Nothing is installed; entries whose package is missing are reported and skipped.`
	cmd.Flags().BoolVar(&a.asJSON, "json", false, "Output in JSON format")
}

func (a *envAction) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	log := a.ex.Logger()
	r := a.ex.Zoo().Resolver()

	env, err := r.LoadEnvironmentFile()
	if err != nil {
		return err
	}
	descriptors, failures := r.Descriptors(env)
	for _, f := range failures {
		log.Error("invalid descriptor", "package", f.Name, "error", f.Err)
	}

	var pkgs []*registry.Package
	for _, d := range descriptors {
		pkg, err := r.PackageForDescriptor(d)
		if err != nil {
			log.Warn("package not installed", "package", d.String(), "error", err)
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	sorted, err := registry.SortByRequirements(pkgs)
	if err != nil {
		return err
	}
	vars := r.Variables(sorted)

	out := cmd.OutOrStdout()
	if a.asJSON {
		data, err := json.MarshalIndent(vars, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%s=%s\n", k, vars[k])
	}
	return nil
}
