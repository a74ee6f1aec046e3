package cli

import (
	"context"

	"github.com/spf13/cobra"
)

type doctor struct {
	ex  *Executor
	fix bool
}

func newDoctor(ex *Executor) Action { return &doctor{ex: ex} }

func (a *doctor) ID() string    { return "doctor" }
func (a *doctor) Short() string { return "Health check for the zoo installation" }

func (a *doctor) Arguments(cmd *cobra.Command) {
	cmd.Long = `Run diagnostic checks on the zoo root: directory layout, the environment
manifest (schema validation) and the packages it pins.`
	cmd.Flags().BoolVar(&a.fix, "fix", false, "Create missing directories and an empty environment file")
}

func (a *doctor) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	return a.ex.Zoo().Doctor(cmd.OutOrStdout(), a.fix)
}
