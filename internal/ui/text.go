package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// noColor honors NO_COLOR (https://no-color.org/) and fatih/color's
// terminal detection.
func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

var (
	// Code formats runnable commands.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats file or directory paths.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Flag formats CLI flags like --scheme.
	Flag = Formatter{color.New(color.FgYellow), "", ""}

	Success = Formatter{color.New(color.FgGreen), "", ""}
	Error   = Formatter{color.New(color.FgRed), "", ""}
	Warning = Formatter{color.New(color.FgYellow), "", ""}
	Info    = Formatter{color.New(color.FgCyan), "", ""}

	// Highlight formats user values such as project names, schemes and archive IDs.
	Highlight = Formatter{color.New(color.FgCyan), "'", "'"}

	// Muted formats secondary detail.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}
)

func status(marker string, format string, args []any) string {
	return marker + " " + fmt.Sprintf(format, args...) + "\n"
}

// Done renders a success line.
func Done(format string, args ...any) string {
	return status(Success.Sprint("✓"), format, args)
}

// Failed renders a failure line.
func Failed(format string, args ...any) string {
	return status(Error.Sprint("✗"), format, args)
}

// Hint renders a follow-up suggestion.
func Hint(format string, args ...any) string {
	return status(Info.Sprint("→"), format, args)
}

// Caution renders a warning line.
func Caution(format string, args ...any) string {
	return status(Warning.Sprint("⚠"), format, args)
}

// Fields renders aligned "label: value" lines in the given order.
func Fields(pairs ...[2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}

	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "    %-*s  %s\n", width+1, p[0]+":", p[1])
	}
	return b.String()
}
