package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ANSI escape codes. Colors are skipped when stdout is not a terminal
// (piped output, CI) so logs stay grep-friendly.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

var colorized = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func paint(color, s string) string {
	if !colorized {
		return s
	}
	return color + s + ansiReset
}

func line(color, tag, msg string) {
	fmt.Fprintf(os.Stdout, "%s %s\n", paint(color, fmt.Sprintf("[%s]", tag)), msg)
}

// Info prints a tagged informational message.
func Info(tag, msg string) {
	line(ansiCyan, tag, msg)
}

// Success prints a tagged success message.
func Success(tag, msg string) {
	line(ansiGreen, tag, msg)
}

// Warn prints a tagged warning message.
func Warn(tag, msg string) {
	line(ansiYellow, tag, msg)
}

// Error prints a tagged error message.
func Error(tag, msg string) {
	line(ansiRed, tag, msg)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	title := "eve-atlas"
	if version != "" {
		title += " " + version
	}
	rule := strings.Repeat("=", len(title)+4)
	fmt.Fprintln(os.Stdout, paint(ansiBold, rule))
	fmt.Fprintln(os.Stdout, paint(ansiBold, "  "+title))
	fmt.Fprintln(os.Stdout, paint(ansiBold, rule))
}

// Section prints a titled divider used to group related log output.
func Section(title string) {
	fmt.Fprintf(os.Stdout, "\n%s\n%s\n", paint(ansiBold, title), paint(ansiDim, strings.Repeat("-", len(title))))
}

// Stats prints one aligned "label: value" line under a Section.
func Stats(label string, value interface{}) {
	fmt.Fprintf(os.Stdout, "  %-16s %v\n", label+":", value)
}

// Server prints the listening address once the HTTP server is up.
func Server(addr string) {
	fmt.Fprintf(os.Stdout, "%s %s\n", paint(ansiGreen, "[Server]"), "Listening on http://"+addr)
}
