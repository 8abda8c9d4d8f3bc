package cli

import (
	"strings"

	"github.com/manifoldco/promptui"
)

// Quit is the extra entry Select offers when quittable is set.
const Quit = "[Quit]"

// Select asks the user to pick one of choices, which are shown in the given
// order. With quittable set the first entry is Quit, and picking it returns
// Quit. Typing filters by prefix.
func (t Terminal) Select(label string, quittable bool, choices ...string) (string, error) {
	items := choices
	if quittable {
		items = append([]string{Quit}, choices...)
	}

	if len(items) == 0 {
		return "", nil
	}

	sel := &promptui.Select{
		Label: label,
		Items: items,
		Searcher: func(input string, index int) bool {
			if input == "" {
				return true
			}

			return strings.HasPrefix(items[index], input)
		},
		Stdin:  t.stdin(),
		Stdout: t.stdout(),
	}

	_, value, err := sel.Run()
	if err != nil {
		return "", err
	}

	return value, nil
}
