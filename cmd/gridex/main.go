// Command gridex builds, publishes and inspects gridex index files.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hupe1980/gridex"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	store    storeFlags
	logLevel string
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "gridex",
		Short:         "Build and inspect sparse coordinate indexes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags.store.register(cmd)
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error).")

	cmd.AddCommand(
		newBuildCommand(&flags),
		newInspectCommand(&flags),
		newVersionsCommand(&flags),
		newPruneCommand(&flags),
		newVerifyCommand(&flags),
	)
	return cmd
}

func (f *rootFlags) logger(cmd *cobra.Command) (*gridex.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(f.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", f.logLevel)
	}
	return gridex.NewLogger(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})), nil
}
