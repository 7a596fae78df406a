// Package printer writes human readable CLI output: status lines, error boxes
// and item listings.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
	"golang.org/x/term"
)

// ANSI color codes (Tokyo Night palette)
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[38;2;215;95;107m"  // #d75f6b
	ColorGreen  = "\033[38;2;158;206;106m" // #9ece6a (Tokyo Night green)
	ColorYellow = "\033[38;2;224;175;104m" // #e0af68 (Tokyo Night yellow)
	ColorGray   = "\033[38;2;86;95;137m"   // #565f89 (Tokyo Night comment)
	ColorBold   = "\033[1m"
)

// Symbols
const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
)

type ctxKey struct{}

// Printer handles formatted output with colors and styles
type Printer struct {
	writer io.Writer
	color  bool
}

// New creates a new Printer that writes to the given writer. Colors are
// enabled when w is a terminal and NO_COLOR is unset.
func New(w io.Writer) *Printer {
	return &Printer{
		writer: w,
		color:  IsTerminal(w) && os.Getenv("NO_COLOR") == "",
	}
}

// NewPlain creates a Printer that never emits ANSI codes.
func NewPlain(w io.Writer) *Printer {
	return &Printer{writer: w}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewContext returns a context with the printer attached
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx retrieves the printer from context, or creates a default one
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// FatalError prints a formatted error box and does NOT exit
// Caller should handle exit code
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.printValidationErrors(err, fieldErrs)
		return
	}

	p.box("Error", []string{p.colorize(ColorGray, err.Error())})
}

// printValidationErrors renders one line per field failure, prefixed by the
// wrapping context (e.g. "add item: validation failed").
func (p *Printer) printValidationErrors(wrappedErr error, fieldErrs criterio.FieldErrors) {
	errStr := wrappedErr.Error()
	fieldErrStr := fieldErrs.Error()

	var lines []string
	if idx := strings.Index(errStr, fieldErrStr); idx > 0 {
		lines = append(lines, p.colorize(ColorGray, strings.TrimSuffix(errStr[:idx], ": ")), "")
	}

	for _, fe := range fieldErrs {
		line := p.colorize(ColorRed, Cross) + " "
		if fe.Field != "" {
			line += p.colorize(ColorGray, fe.Field+": ")
		}
		lines = append(lines, line+fe.Err.Error())
	}

	p.box("Validation Error", lines)
}

func (p *Printer) box(title string, lines []string) {
	var b strings.Builder
	b.WriteString(p.colorize(ColorRed, "╭ "+title) + "\n")
	for _, line := range lines {
		b.WriteString(p.colorize(ColorRed, "│"))
		if line != "" {
			b.WriteString(" " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(p.colorize(ColorRed, "╵") + "\n")
	_, _ = io.WriteString(p.writer, b.String())
}

// Errorf prints an error message in red
func (p *Printer) Errorf(format string, args ...any) {
	p.line(ColorRed, Cross, format, args...)
}

// Successf prints a success message in green
func (p *Printer) Successf(format string, args ...any) {
	p.line(ColorGreen, Check, format, args...)
}

// Infof prints an info message in gray
func (p *Printer) Infof(format string, args ...any) {
	p.line(ColorGray, Dot, format, args...)
}

// Warnf prints a warning message in yellow
func (p *Printer) Warnf(format string, args ...any) {
	p.line(ColorYellow, Dot, format, args...)
}

// Printf prints a plain message without colors
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.writer, format+"\n", args...)
}

func (p *Printer) line(color, symbol, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = io.WriteString(p.writer, p.colorize(color, symbol+" "+msg)+"\n")
}

// colorize applies ANSI color codes to text
func (p *Printer) colorize(color, text string) string {
	if !p.color {
		return text
	}
	return color + text + ColorReset
}

// Bold makes text bold
func (p *Printer) Bold(text string) string {
	return p.colorize(ColorBold, text)
}
