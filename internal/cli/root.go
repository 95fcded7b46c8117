// Package cli wires the zephyr daemon's cobra commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/zephyr/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "zephyr",
	Short: "Zephyr event dispatch daemon",
	Long: `Zephyr is an event dispatch daemon. It accepts typed events over HTTP,
fans them out to registered listeners (local, webhook, or queued) and keeps a
delivery history.`,
}

// Execute loads the environment config, assembles the command tree and runs it.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd.AddCommand(NewServeCmd(cfg))
	rootCmd.AddCommand(NewEmitCmd())
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewUpdateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
