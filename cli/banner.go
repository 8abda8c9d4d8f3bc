// Package cli holds terminal helpers for the interactive fsmctl commands.
package cli

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"go.uber.org/atomic"
	"golang.org/x/term"
)

const (
	boxTopLeft     = "╒"
	boxBottomLeft  = "└"
	boxTopRight    = "╕"
	boxBottomRight = "┘"
	boxSide        = "│"
	boxTop         = "═"
	boxBottom      = "─"
	dividerLeft    = "┠"
	dividerMiddle  = "─"
	dividerRight   = "┨"
	ellipsis       = "…"
)

const (
	AlignLeft = iota
	AlignCenter
	AlignRight

	bannerPadding   = 2
	dividerPadding  = 2
	truncateReserve = 1
	halfDivisor     = 2
)

const DefaultTerminalWidth = 80

var suppressBanner = atomic.NewBool(false) //nolint:gochecknoglobals

// SuppressBanners makes Banner return its text unboxed, for logs and pipes.
func SuppressBanners(suppress bool) {
	suppressBanner.Store(suppress)
}

// DividerAutoWidth is Divider sized to the terminal. It is empty while banners are suppressed.
func DividerAutoWidth() string {
	if suppressBanner.Load() {
		return ""
	}

	return Divider(autoWidth())
}

func BannerAutoWidth(s string, a int) string {
	return Banner(s, autoWidth(), a)
}

func autoWidth() int {
	_, w, e := TerminalDimensions()
	if e != nil || w == 0 {
		return DefaultTerminalWidth
	}

	return int(w) //nolint:gosec // Terminal width is bounded by screen size, no overflow risk
}

func Divider(width int) string {
	return fmt.Sprintf("%s%s%s\n", dividerLeft, strings.Repeat(dividerMiddle, max(width-dividerPadding, 0)), dividerRight)
}

// Banner draws s in a box width columns wide. Lines longer than the box are
// truncated with an ellipsis.
func Banner(s string, width int, alignment int) string {
	if suppressBanner.Load() {
		return s + "\n"
	}

	if s == "" || width <= bannerPadding {
		return ""
	}

	inner := width - bannerPadding
	parts := []string{boxTopLeft + strings.Repeat(boxTop, inner) + boxTopRight}

	for _, l := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		line, ok := pad(l, inner, alignment)
		if !ok {
			return ""
		}

		parts = append(parts, boxSide+line+boxSide)
	}

	parts = append(parts, boxBottomLeft+strings.Repeat(boxBottom, inner)+boxBottomRight)

	return strings.Join(parts, "\n") + "\n"
}

func countGraphic(s string) int {
	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			count++
		}
	}

	return count
}

func truncateGraphic(s string, n int) (string, int) {
	var out strings.Builder

	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			if count == n {
				break
			}

			count++
		}

		out.WriteRune(r)
	}

	return out.String(), count
}

func pad(text string, width int, alignment int) (string, bool) {
	str, length := text, countGraphic(text)
	if length > width {
		str, length = truncateGraphic(str, width-truncateReserve)
		str += ellipsis
		length++
	}

	diff := width - length

	switch alignment {
	case AlignLeft:
		return str + strings.Repeat(" ", diff), true
	case AlignRight:
		return strings.Repeat(" ", diff) + str, true
	case AlignCenter:
		left := diff / halfDivisor

		return strings.Repeat(" ", left) + str + strings.Repeat(" ", diff-left), true
	default:
		return "", false
	}
}

// TerminalDimensions returns (rows, cols, err) of the controlling terminal.
func TerminalDimensions() (uint, uint, error) {
	f, err := os.Open("/dev/tty")
	if err != nil {
		return 0, 0, err
	}

	defer f.Close() //nolint:errcheck // Read-only tty handle

	return dimensions(int(f.Fd())) //nolint:gosec // File descriptors fit in an int
}

func dimensions(fd int) (uint, uint, error) {
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return 0, 0, fmt.Errorf("reading terminal size: %w", err)
	}

	return uint(max(rows, 0)), uint(max(cols, 0)), nil //nolint:gosec // Clamped to non-negative
}
