// Package output formats the progress lines and summaries shown to the user
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// ColorMode selects when progress lines are colored
type ColorMode int

const (
	// ColorAuto follows NO_COLOR, TERM and the config file
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever forces colors off
	ColorNever
)

// ParseColorMode parses the --color flag
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: must be auto, always, or never", s)
	}
}

// ResolveColors decides whether to color output
func ResolveColors(mode ColorMode, configColors bool) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false
		}
		if os.Getenv("TERM") == "dumb" {
			return false
		}
		return configColors
	}
}

// Printer writes ✓/✗ progress lines. Success and info go to out, warnings
// and errors to err.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// NewPrinterWithWriters prints to the given writers
func NewPrinterWithWriters(out, err io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: err, useColors: useColors}
}

// Out returns the writer used for regular output
func (p *Printer) Out() io.Writer {
	return p.out
}

func (p *Printer) line(w io.Writer, attr color.Attribute, prefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !p.useColors {
		fmt.Fprintf(w, "%s %s\n", prefix, msg)
		return
	}
	c := color.New(attr)
	c.EnableColor()
	c.Fprintf(w, "%s %s\n", prefix, msg)
}

// Success prints a ✓ line
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(p.out, color.FgGreen, "✓", format, args...)
}

// Error prints a ✗ line
func (p *Printer) Error(format string, args ...interface{}) {
	p.line(p.err, color.FgRed, "✗", format, args...)
}

// Warning prints a ⚠ line
func (p *Printer) Warning(format string, args ...interface{}) {
	p.line(p.err, color.FgYellow, "⚠", format, args...)
}

// Info prints a plain informational line
func (p *Printer) Info(format string, args ...interface{}) {
	if p.useColors {
		c := color.New(color.FgCyan)
		c.EnableColor()
		c.Fprintf(p.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Print writes text as is
func (p *Printer) Print(text string) {
	fmt.Fprint(p.out, text)
}

// Header prints an underlined section title
func (p *Printer) Header(title string) {
	if p.useColors {
		c := color.New(color.Bold)
		c.EnableColor()
		c.Fprintf(p.out, "\n%s\n%s\n", title, repeatChar('─', len([]rune(title))))
		return
	}
	fmt.Fprintf(p.out, "\n%s\n%s\n", title, repeatChar('-', len([]rune(title))))
}

func repeatChar(char rune, count int) string {
	result := make([]rune, count)
	for i := range result {
		result[i] = char
	}
	return string(result)
}
