package main

import (
	"fmt"

	"github.com/amp-labs/amp-fsm/statemachine/visualizer"
	"github.com/spf13/cobra"
)

func newGraphCommand() *cobra.Command {
	var (
		format    string
		direction string
		highlight string
		noLabels  bool
		fenced    bool
	)

	cmd := &cobra.Command{
		Use:   "graph FILE",
		Short: "Export the machine as a Mermaid or Graphviz diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := visualizer.ParseFormat(format)
			if err != nil {
				return err
			}

			opts := visualizer.DefaultOptions().
				WithDirection(direction).
				WithShowLabels(!noLabels).
				WithHighlight(highlight).
				WithFenced(fenced)

			out, err := visualizer.RenderFile(args[0], f, opts)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), out)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&format, "format", string(visualizer.FormatMermaid), "Diagram format: mermaid or dot")
	flags.StringVar(&direction, "direction", visualizer.DirectionTopDown, "Layout direction: TD or LR")
	flags.StringVar(&highlight, "highlight", "", "State to highlight")
	flags.BoolVar(&noLabels, "no-labels", false, "Omit transition names from edges")
	flags.BoolVar(&fenced, "fenced", false, "Wrap Mermaid output in a markdown code fence")

	return cmd
}
