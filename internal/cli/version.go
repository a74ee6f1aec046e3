package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/utsdab/usr-sub005/internal/branding"
)

type version struct {
	ex    *Executor
	short bool
	json  bool
}

func newVersion(ex *Executor) Action { return &version{ex: ex} }

func (a *version) ID() string    { return "version" }
func (a *version) Short() string { return "Print version information" }

func (a *version) Arguments(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&a.short, "short", false, "Print version number only")
	cmd.Flags().BoolVar(&a.json, "json", false, "Print version info as JSON")
}

func (a *version) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	b := a.ex.build
	out := cmd.OutOrStdout()
	if a.short {
		fmt.Fprintln(out, b.Version)
		return nil
	}

	z := a.ex.Zoo()
	core, err := z.CoreVersion()
	if err != nil {
		core = "-"
	}

	if a.json {
		info := map[string]string{
			"version": b.Version,
			"commit":  b.Commit,
			"date":    b.Date,
			"build":   z.BuildVersion(),
			"core":    core,
		}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling version info: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "%s version %s (commit: %s, built: %s)\n", branding.CLIName(), b.Version, b.Commit, b.Date)
	fmt.Fprintf(out, "root build %s, core %s\n", z.BuildVersion(), core)
	return nil
}
