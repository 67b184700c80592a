package trace

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// OutputFormatter formats events for human-readable display.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter with color support detection.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}

	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}

	return &OutputFormatter{useColor: useColor, writer: w}
}

// Handle implements the Handler interface - prints events as they occur
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output != "" {
		fmt.Fprintln(f.writer, output)
	}
}

// Format converts an event to a human-readable string.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case CompileBegin:
		return fmt.Sprintf("%s Compile: %v", latency, event.Data["query"])

	case CompileComplete:
		return fmt.Sprintf("%s %s Compile done with %d inputs.",
			latency, f.colorize("===", color.FgGreen), event.Data["inputs.count"])

	case CompileFailed:
		return fmt.Sprintf("%s %s Compile failed: %v",
			latency, f.colorize("✗", color.FgRed), event.Data["error"])

	case NormalizeComplete:
		return fmt.Sprintf("%s %s normalized %d clauses, %d inputs",
			latency, f.colorize("===", color.FgYellow),
			event.Data["clauses.count"], event.Data["inputs.count"])

	case ReorderComplete:
		return fmt.Sprintf("%s %s reordered %d clauses",
			latency, f.colorize("===", color.FgYellow), event.Data["clauses.count"])

	case UnifyComplete:
		return fmt.Sprintf("%s %s unified into %d relations",
			latency, f.colorize("===", color.FgYellow), event.Data["relations.count"])

	case RuleCompiled:
		return fmt.Sprintf("%s %s rule %v compiled",
			latency, f.colorize("===", color.FgGreen), event.Data["rule"])

	default:
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

// formatLatency renders a right-aligned latency column
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	if d == 0 {
		return "          "
	}
	return fmt.Sprintf("%9.3fms", float64(d.Microseconds())/1000.0)
}

func (f *OutputFormatter) colorize(s string, attr color.Attribute) string {
	if !f.useColor {
		return s
	}
	return color.New(attr).Sprint(s)
}

// isTerminal checks if the file descriptor is a terminal.
// This is a simplified version - in production you'd use a proper terminal detection library.
func isTerminal(fd uintptr) bool {
	return fd == uintptr(1) || fd == uintptr(2) // stdout or stderr
}
