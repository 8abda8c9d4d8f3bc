package cli

import (
	"errors"
	"io"
	"os"

	"github.com/manifoldco/promptui"
)

// Terminal is where prompts read and write. The zero value uses the process's stdio.
type Terminal struct {
	In  io.ReadCloser
	Out io.WriteCloser
}

func (t Terminal) stdin() io.ReadCloser {
	if t.In == nil {
		return os.Stdin
	}

	return t.In
}

func (t Terminal) stdout() io.WriteCloser {
	if t.Out == nil {
		return os.Stdout
	}

	return t.Out
}

// PromptConfirm asks a yes/no question. Answering no is not an error.
func (t Terminal) PromptConfirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     t.stdin(),
		Stdout:    t.stdout(),
	}

	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// NewTerminal builds a Terminal over arbitrary streams, such as a cobra
// command's input and output.
func NewTerminal(in io.Reader, out io.Writer) Terminal {
	var t Terminal

	if rc, ok := in.(io.ReadCloser); ok {
		t.In = rc
	} else if in != nil {
		t.In = io.NopCloser(in)
	}

	if wc, ok := out.(io.WriteCloser); ok {
		t.Out = wc
	} else if out != nil {
		t.Out = nopWriteCloser{out}
	}

	return t
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
