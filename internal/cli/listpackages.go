package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/registry"
	"go.yaml.in/yaml/v3"
)

type listPackages struct {
	ex      *Executor
	asJSON  bool
	asYAML  bool
	refresh bool
	inEnv   bool
}

func newListPackages(ex *Executor) Action { return &listPackages{ex: ex} }

func (a *listPackages) ID() string    { return "listPackages" }
func (a *listPackages) Short() string { return "List installed packages" }

func (a *listPackages) Arguments(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&a.asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&a.asYAML, "yaml", false, "Output in YAML format")
	cmd.Flags().BoolVar(&a.refresh, "refresh", false, "Ignore the cached listing")
	cmd.Flags().BoolVar(&a.inEnv, "env", false, "Only list packages pinned by the environment manifest")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

// listEntry represents an installed package for display.
type listEntry struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Root        string `json:"root" yaml:"root"`
	InEnv       bool   `json:"inEnvironment" yaml:"inEnvironment"`
}

func (a *listPackages) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	z := a.ex.Zoo()
	r := z.Resolver()
	if a.refresh {
		if err := registry.InvalidateCache(r.IndexPath()); err != nil {
			return err
		}
	}
	pkgs, err := registry.DiscoverCached(z.Config().PackagesPath(), r.IndexPath())
	if err != nil {
		return fmt.Errorf("discovering packages: %w", err)
	}

	pinned := map[string]string{}
	env, err := r.LoadEnvironmentFile()
	switch {
	case err == nil:
		for name, raw := range env {
			pinned[name] = raw.String("version")
		}
	case !errors.Is(err, errs.ErrNotFound):
		return err
	}

	var entries []listEntry
	for _, p := range pkgs {
		v, ok := pinned[p.Name]
		e := listEntry{
			Name:        p.Name,
			Version:     p.Version,
			DisplayName: p.DisplayName,
			Root:        p.Root,
			InEnv:       ok && v == p.Version,
		}
		if a.inEnv && !e.InEnv {
			continue
		}
		entries = append(entries, e)
	}

	out := cmd.OutOrStdout()
	switch {
	case a.asJSON:
		if entries == nil {
			entries = []listEntry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case a.asYAML:
		if entries == nil {
			entries = []listEntry{}
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No packages installed yet.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tENV\tDISPLAY NAME")
	for _, e := range entries {
		mark := "-"
		if e.InEnv {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Version, mark, e.DisplayName)
	}
	return w.Flush()
}
