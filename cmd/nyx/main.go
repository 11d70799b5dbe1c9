// Package main is the nyx command line: a local assistant that chats through
// an n-gram language model and carries out sandboxed file, calendar and
// command tasks.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Cyclone1070/nyx/internal/config"
	"github.com/Cyclone1070/nyx/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalFlags struct {
	configPath string
	verbose    bool
	stream     bool
}

// env is what every subcommand receives after the root has loaded config and
// built the logger.
type env struct {
	flags  *globalFlags
	cfg    *config.Config
	logger *zap.Logger
	in     io.Reader
	out    io.Writer
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	flags := &globalFlags{}
	e := &env{flags: flags, in: in, out: out}

	root := &cobra.Command{
		Use:   "nyx",
		Short: "Local assistant with sandboxed file, calendar and command tasks",
		Long: `nyx answers chat with a local n-gram model and recognises task requests
such as "create a file notes.txt with content hi", "list files in src" or
"run ls -la". Tasks run inside the configured sandbox root.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logCfg := cfg.Logging
			if flags.verbose {
				logCfg = logging.Verbose(logCfg)
			}
			logger, err := logging.New(logCfg)
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/nyx/config.json)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&flags.stream, "stream", false, "print chat replies token by token")

	root.AddCommand(newAskCmd(e), newReplCmd(e), newEventsCmd(e))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
