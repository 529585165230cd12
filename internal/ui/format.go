package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
)

var (
	// Check if output supports colors
	supportsColor = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	// Color functions
	ColorError = colorFunc(ansi.Red)
	ColorInfo  = colorFunc(ansi.Cyan)
)

// colorFunc returns a function that colors text if supported
func colorFunc(style string) func(string) string {
	return func(text string) string {
		if supportsColor {
			return ansi.Color(text, style)
		}
		return text
	}
}

// isTerminal reports whether w is a terminal file
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Console writes the human-readable progress lines of a pipeline run.
// Colors are only emitted when the writer is a terminal.
type Console struct {
	w     io.Writer
	color bool
}

// NewConsole creates a console on w
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, color: isTerminal(w)}
}

// Writer returns the underlying writer, for sample tables
func (c *Console) Writer() io.Writer {
	return c.w
}

func (c *Console) paint(text, style string) string {
	if c.color {
		return ansi.Color(text, style)
	}
	return text
}

// Header prints a section marker
func (c *Console) Header(title string) {
	fmt.Fprintln(c.w, c.paint(fmt.Sprintf("=== %s ===", title), "default+b"))
}

// Success prints a success line
func (c *Console) Success(message string) {
	fmt.Fprintf(c.w, "%s %s\n", c.paint("SUCCESS:", ansi.Green), message)
}

// Info prints an informational line
func (c *Console) Info(message string) {
	fmt.Fprintf(c.w, "%s %s\n", c.paint("INFO:", ansi.Cyan), message)
}

// Warning prints a warning line
func (c *Console) Warning(message string) {
	fmt.Fprintf(c.w, "%s %s\n", c.paint("WARNING:", ansi.Yellow), message)
}

// Metric prints "<name>: <value>" with four decimals
func (c *Console) Metric(name string, value float64) {
	v := color.New(color.FgCyan, color.Bold)
	if c.color {
		v.EnableColor()
	} else {
		v.DisableColor()
	}
	fmt.Fprintf(c.w, "%s: %s\n", name, v.Sprintf("%.4f", value))
}

// ShowError writes a formatted error message
func ShowError(w io.Writer, err error) {
	fmt.Fprintf(w, "\n%s\n", ColorError("ERROR:"))

	message := err.Error()
	for _, line := range strings.Split(message, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}

	if suggestion := getSuggestion(message); suggestion != "" {
		fmt.Fprintf(w, "\n  %s %s\n", ColorInfo("TIP:"), ColorInfo(suggestion))
	}
}

// getSuggestion returns helpful suggestions based on error messages
func getSuggestion(message string) string {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "authentication failed"):
		return "Check your username and password, or run 'featuredrop setup'"
	case strings.Contains(lower, "connection refused"):
		return "Verify your Snowflake account identifier and network connectivity"
	case strings.Contains(lower, "does not exist"):
		return "Run 'featuredrop materialize' first, or check the configured table names"
	case strings.Contains(lower, "insufficient privileges"):
		return "Ensure your role can read the source and create tables in the destination schema"
	default:
		return ""
	}
}
