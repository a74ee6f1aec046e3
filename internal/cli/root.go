package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/utsdab/usr-sub005/internal/config"
	"github.com/utsdab/usr-sub005/internal/logging"
	"github.com/utsdab/usr-sub005/internal/zoo"
)

// Execute loads the active zoo root and runs the command line with build
// info injected via ldflags.
func Execute(version, commit, date string) error {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	logger, level := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel()))

	ex := NewExecutor(zoo.New(cfg, logger), Options{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Level:  level,
		Build:  BuildInfo{Version: version, Commit: commit, Date: date},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return ex.Run(ctx, os.Args[1:])
}
