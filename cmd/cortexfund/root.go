package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyike/cortexfund/config"
	"github.com/dyike/cortexfund/pkg/app"
)

// appContext is populated by the root command's PersistentPreRunE, after
// cobra has already built the subcommand tree, so it is threaded through as
// a pointer rather than returned from NewRootCmd.
type appContext struct {
	runtime *app.Runtime
}

// NewRootCmd builds the cortexfund command tree, adapted from the teacher's
// internal/cli/commands.go NewRootCmd (a config-bearing root command with
// subcommands closing over shared state), except the shared state here is a
// live app.Runtime that rebuilds its Engine on every config-file change
// rather than a static *config.Config read once at startup.
func NewRootCmd() *cobra.Command {
	actx := &appContext{}

	rootCmd := &cobra.Command{
		Use:   "cortexfund",
		Short: "cortexfund - multi-agent equity analysis and backtesting",
		Long: `cortexfund runs a panel of LLM-backed equity analysts, a risk manager,
and a portfolio manager over a DAG, either as a single streaming run against
live data or replayed day-by-day across a historical date range.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if err := config.Initialize(path); err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			mgr := config.DefaultManager()
			if err := os.MkdirAll(mgr.Get().DataCacheDir, 0o755); err != nil {
				return fmt.Errorf("prepare data cache directory: %w", err)
			}

			rt, err := app.NewRuntime(mgr)
			if err != nil {
				return fmt.Errorf("start engine runtime: %w", err)
			}
			actx.runtime = rt
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Configuration file or directory path (JSON)")

	rootCmd.AddCommand(newRunCmd(actx))
	rootCmd.AddCommand(newBacktestCmd(actx))

	return rootCmd
}
