package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/utsdab/usr-sub005/internal/branding"
	"github.com/utsdab/usr-sub005/internal/errs"
	"github.com/utsdab/usr-sub005/internal/zoo"
)

// Action is one CLI verb. A fresh Action is built for every Run, so flag
// values bound to its fields never leak between invocations.
type Action interface {
	ID() string
	Short() string
	// Arguments declares the verb's flags (and subcommands, if any) on cmd.
	Arguments(cmd *cobra.Command)
	Run(ctx context.Context, cmd *cobra.Command, args []string) error
}

// argsValidator is implemented by actions that take positional arguments.
// Actions without it accept none.
type argsValidator interface {
	Args() cobra.PositionalArgs
}

// Factory builds an Action bound to ex.
type Factory func(ex *Executor) Action

// BuildInfo is the version information injected at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Options configures an Executor.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Level is raised to debug by --verbose. May be nil.
	Level *slog.LevelVar
	Build BuildInfo
	// Actions defaults to DefaultActions().
	Actions map[string]Factory
}

// Executor dispatches verbs to actions for one zoo installation.
type Executor struct {
	zoo     *zoo.Zoo
	logger  *slog.Logger
	level   *slog.LevelVar
	stdout  io.Writer
	stderr  io.Writer
	build   BuildInfo
	actions map[string]Factory
}

// NewExecutor builds the dispatcher around z.
func NewExecutor(z *zoo.Zoo, opts Options) *Executor {
	ex := &Executor{
		zoo:     z,
		logger:  z.Logger(),
		level:   opts.Level,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
		build:   opts.Build,
		actions: opts.Actions,
	}
	if ex.stdout == nil {
		ex.stdout = os.Stdout
	}
	if ex.stderr == nil {
		ex.stderr = os.Stderr
	}
	if ex.actions == nil {
		ex.actions = DefaultActions()
	}
	return ex
}

// DefaultActions returns the built-in verb registry.
func DefaultActions() map[string]Factory {
	return map[string]Factory{
		"cachePackages":    newCachePackages,
		"uninstallPackage": newUninstallPackage,
		"installPackage":   newInstallPackage,
		"bundlePackages":   newBundlePackages,
		"setup":            newSetup,
		"createPackage":    newCreatePackage,
		"listPackages":     newListPackages,
		"env":              newEnv,
		"doctor":           newDoctor,
		"config":           newConfig,
		"version":          newVersion,
	}
}

func (ex *Executor) Zoo() *zoo.Zoo         { return ex.zoo }
func (ex *Executor) Logger() *slog.Logger { return ex.logger }

// Verbs returns the registered verbs, sorted.
func (ex *Executor) Verbs() []string {
	verbs := make([]string, 0, len(ex.actions))
	for v := range ex.actions {
		verbs = append(verbs, v)
	}
	sort.Strings(verbs)
	return verbs
}

// actionError marks an error returned by an action, as opposed to one
// raised by cobra while parsing the command line.
type actionError struct{ err error }

func (e *actionError) Error() string { return e.err.Error() }
func (e *actionError) Unwrap() error { return e.err }

// Run parses argv, runs the selected action and reports its outcome.
// Command-line problems are returned wrapping errs.ErrArgument after the
// usage text has been printed to stderr.
func (ex *Executor) Run(ctx context.Context, argv []string) error {
	if len(argv) > 0 && !strings.HasPrefix(argv[0], "-") && !ex.known(argv[0]) {
		if path, ok := ex.external(argv[0]); ok {
			return ex.runExternal(ctx, path, argv[1:])
		}
		root := ex.rootCommand()
		err := fmt.Errorf("unknown verb %q: %w", argv[0], errs.ErrArgument)
		ex.usage(root, err)
		return err
	}

	root := ex.rootCommand()
	root.SetArgs(argv)
	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return nil
	}

	var ae *actionError
	if !errors.As(err, &ae) {
		err = fmt.Errorf("%v: %w", err, errs.ErrArgument)
		ex.usage(cmd, err)
		return err
	}
	err = ae.err
	if errors.Is(err, errs.ErrArgument) {
		ex.usage(cmd, err)
		return err
	}
	ex.logger.Error("command failed", "verb", cmd.Name(), "error", err)
	return err
}

func (ex *Executor) known(verb string) bool {
	if _, ok := ex.actions[verb]; ok {
		return true
	}
	return verb == "help"
}

func (ex *Executor) usage(cmd *cobra.Command, err error) {
	fmt.Fprintf(ex.stderr, "Error: %v\n", err)
	fmt.Fprint(ex.stderr, cmd.UsageString())
}

func (ex *Executor) rootCommand() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   branding.CLIName(),
		Short: branding.Description(),
		Long: branding.DisplayName() + ` resolves, installs and removes the versioned tool packages
listed in the environment manifest. Run without a verb to resolve the whole manifest.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose && ex.level != nil {
				ex.level.Set(slog.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return wrapAction(ex.resolveAll(cmd.Context()))
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(ex.stdout)
	root.SetErr(ex.stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().Var(&levelFlag{lv: ex.level}, "log-level", "Log level: debug, info, warn or error (overrides the log_level setting)")

	for _, verb := range ex.Verbs() {
		root.AddCommand(ex.command(ex.actions[verb](ex)))
	}
	return root
}

func (ex *Executor) command(a Action) *cobra.Command {
	cmd := &cobra.Command{
		Use:   a.ID(),
		Short: a.Short(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wrapAction(a.Run(cmd.Context(), cmd, args))
		},
	}
	if v, ok := a.(argsValidator); ok {
		cmd.Args = v.Args()
	}
	a.Arguments(cmd)
	return cmd
}

func wrapAction(err error) error {
	if err == nil {
		return nil
	}
	return &actionError{err: err}
}

// resolveAll is the verb-less invocation: resolve the current manifest.
func (ex *Executor) resolveAll(ctx context.Context) error {
	r := ex.zoo.Resolver()
	path, err := r.EnvironmentPath()
	if err != nil {
		return err
	}
	result, err := r.ResolveFromPath(ctx, path)
	if err != nil {
		return err
	}
	ex.logger.Info("environment resolved",
		"packages", len(result.Packages), "installed", len(result.Installed), "failed", len(result.Failures))
	return nil
}

// external finds zoo-<verb> in the command library directories.
func (ex *Executor) external(verb string) (string, bool) {
	name := branding.ExternalCommand(verb)
	for _, dir := range ex.zoo.Config().CommandLibPaths() {
		if path, err := exec.LookPath(filepath.Join(dir, name)); err == nil {
			return path, true
		}
	}
	return "", false
}

// runExternal runs an external command with the zoo layout exported.
func (ex *Executor) runExternal(ctx context.Context, path string, args []string) error {
	cfg := ex.zoo.Config()
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = ex.stdout
	cmd.Stderr = ex.stderr
	cmd.Stdin = os.Stdin
	cmd.Env = append(os.Environ(),
		branding.EnvVar("ROOT")+"="+cfg.Root(),
		branding.EnvVar("CONFIG_PATH")+"="+cfg.ConfigPath(),
		branding.EnvVar("PACKAGES_PATH")+"="+cfg.PackagesPath(),
	)
	ex.logger.Debug("running external command", "path", path, "args", args)
	if err := cmd.Run(); err != nil {
		ex.logger.Error("external command failed", "path", path, "error", err)
		return fmt.Errorf("running %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ExitCode maps an error from Run to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errs.ErrArgument):
		return 2
	default:
		return 1
	}
}
