package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/amp-labs/amp-fsm/cli"
	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// prompter asks the player for the next step.
type prompter interface {
	// Choose picks the next transition, or cli.Quit.
	Choose(state string, available []string) (string, error)
	// ConfirmQuit reports whether the player really wants to stop in state.
	ConfirmQuit(state string) (bool, error)
}

func newPlayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play FILE",
		Short: "Interactively pick transitions until a terminal state or quit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachine(args[0])
			if err != nil {
				return err
			}

			term := cli.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())

			return play(cmd.Context(), cmd.OutOrStdout(), m, terminalPrompter{term: term})
		},
	}
}

type terminalPrompter struct {
	term cli.Terminal
}

func (p terminalPrompter) Choose(state string, available []string) (string, error) {
	choice, err := p.term.Select(fmt.Sprintf("Fire from %s", state), true, available...)
	if isInterrupt(err) {
		return cli.Quit, nil
	}

	return choice, err
}

func (p terminalPrompter) ConfirmQuit(state string) (bool, error) {
	ok, err := p.term.PromptConfirm(fmt.Sprintf("Quit in state %s", state))
	if isInterrupt(err) {
		return true, nil
	}

	return ok, err
}

func isInterrupt(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF)
}

func play(ctx context.Context, out io.Writer, m *statemachine.Machine[string], p prompter) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		state := m.Current()
		fmt.Fprint(out, cli.BannerAutoWidth(fmt.Sprintf("%s\nstate: %s", m.Name(), state), cli.AlignLeft))

		available := m.Available()
		if len(available) == 0 {
			fmt.Fprintf(out, "Reached terminal state %s\n", state)

			return nil
		}

		name, err := p.Choose(state, available)
		if err != nil {
			return err
		}

		if name == cli.Quit {
			quit, err := p.ConfirmQuit(state)
			if err != nil {
				return err
			}

			if quit {
				fmt.Fprintf(out, "Stopped in state %s\n", state)

				return nil
			}

			continue
		}

		to, err := m.Fire(ctx, name)
		if err != nil {
			return fmt.Errorf("fire %q: %w", name, err)
		}

		fmt.Fprintf(out, "%s: %s -> %s\n", name, state, to)
		fmt.Fprint(out, cli.DividerAutoWidth())
	}
}
