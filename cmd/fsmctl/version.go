package main

import (
	"fmt"

	"github.com/amp-labs/amp-fsm/build"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fsmctl %s\n", build.Current(buildInfo))
		},
	}
}
