package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framecast/editor-agent/internal/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "framecast-editor %s (commit %s, built %s)\n",
				config.Version, config.GitCommit, config.BuildTime)
			return err
		},
	}
}
