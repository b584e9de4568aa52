// Package cmd defines the CLI commands for the apiscout executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apiscout",
		Short: "Discover and extract API endpoints from documentation sites",
		Long: `apiscout walks an API documentation website, finds the pages that
actually describe endpoints, and extracts them into merged endpoint
records ready for OpenAPI assembly.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is environment-only)")
	cmd.AddCommand(newGenerateCmd())

	return cmd
}

// Execute is the main entry point. The context is cancelled on SIGINT and
// SIGTERM so an in-flight run shuts down cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
