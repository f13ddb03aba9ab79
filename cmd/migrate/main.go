package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

var timeout time.Duration

// NewRootCmd creates the root command for the migration tool.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "liftsplit-migrate",
		Short:         "Manage the liftsplit database schema",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "command timeout")

	cmd.AddCommand(NewUpCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewDownCmd())
	return cmd
}
