package diagnostics

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31;1m"
	ansiBlue  = "\033[34m"
	ansiBold  = "\033[1m"
)

// colorEnabled reports whether stderr can take ANSI colour sequences.
func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

// Render produces a labelled diagnostic for err against the given source,
// with two lines of context around the offending span.
func Render(fileName, source string, err *Error) string {
	return render(fileName, source, err, colorEnabled())
}

func render(fileName, source string, err *Error, color bool) string {
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + ansiReset
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", paint(ansiRed, fmt.Sprintf("error[%d]", err.ID)), paint(ansiBold, err.Name))
	fmt.Fprintf(&b, "  %s %s:%d:%d\n", paint(ansiBlue, "-->"), fileName, err.Span.Start.Row+1, err.Span.Start.Column+1)

	lines := strings.Split(source, "\n")
	row := err.Span.Start.Row
	first := row - 2
	if first < 0 {
		first = 0
	}
	last := row + 2
	if last > len(lines)-1 {
		last = len(lines) - 1
	}

	for i := first; i <= last; i++ {
		fmt.Fprintf(&b, "%s %s\n", paint(ansiBlue, fmt.Sprintf("%4d |", i+1)), lines[i])
		if i == row {
			width := err.Span.End.Column - err.Span.Start.Column
			if err.Span.End.Row != row || width < 1 {
				width = 1
			}
			marker := strings.Repeat(" ", err.Span.Start.Column) + strings.Repeat("^", width)
			fmt.Fprintf(&b, "%s %s %s\n", paint(ansiBlue, "     |"), paint(ansiRed, marker), paint(ansiRed, err.Message))
		}
	}

	return b.String()
}

// Emit writes the rendered diagnostic to stderr.
func Emit(fileName, source string, err *Error) {
	fmt.Fprint(os.Stderr, Render(fileName, source, err))
}
