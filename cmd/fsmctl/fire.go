package main

import (
	"fmt"
	"io"

	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/spf13/cobra"
)

func newFireCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fire FILE NAME...",
		Short: "Fire transitions in order and print each step",
		Long: `Starts the machine in its initial state and fires each NAME in turn,
printing "name: from -> to". Stops at the first transition that cannot fire.`,
		Args: cobra.MinimumNArgs(2), //nolint:mnd // file and at least one transition
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(args[0])
			if err != nil {
				return err
			}

			return fireAll(cmd, m, args[1:])
		},
	}

	return cmd
}

func fireAll(cmd *cobra.Command, m *statemachine.Machine[string], names []string) error {
	out := cmd.OutOrStdout()

	for _, name := range names {
		if err := fireOne(cmd, out, m, name); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "state: %s\n", m.Current())

	return nil
}

func fireOne(cmd *cobra.Command, out io.Writer, m *statemachine.Machine[string], name string) error {
	from := m.Current()

	to, err := m.Fire(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("fire %q: %w", name, err)
	}

	fmt.Fprintf(out, "%s: %s -> %s\n", name, from, to)

	return nil
}
