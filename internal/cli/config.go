package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/utsdab/usr-sub005/internal/config"
	"github.com/utsdab/usr-sub005/internal/errs"
)

type configAction struct {
	ex *Executor
}

func newConfig(ex *Executor) Action { return &configAction{ex: ex} }

func (a *configAction) ID() string    { return "config" }
func (a *configAction) Short() string { return "Manage settings" }

func (a *configAction) Arguments(cmd *cobra.Command) {
	cmd.Long = fmt.Sprintf(`Read and write settings stored in <config>/zoo.yaml.
Environment variables (ZOO_<KEY>) take precedence over the file.

Keys: %s`, strings.Join(config.Keys(), ", "))

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := a.ex.Zoo().Config().WriteSetting(key, value); err != nil {
				return wrapAction(fmt.Errorf("setting config key %q: %w", key, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !config.ValidKey(args[0]) {
				return wrapAction(fmt.Errorf("unknown setting %q: %w", args[0], errs.ErrArgument))
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.ex.Zoo().Config().Setting(args[0]))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.ex.Zoo().Config()
			for _, key := range config.Keys() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, cfg.Setting(key))
			}
			return nil
		},
	})
}

func (a *configAction) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	return fmt.Errorf("config requires a subcommand (get, set or list): %w", errs.ErrArgument)
}
