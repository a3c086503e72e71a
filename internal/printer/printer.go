// Package printer provides styled, human-facing status output for
// commands. Machine output (JSON) goes to stdout; printer writes to
// stderr so the two never interleave.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/colonyops/spotcheck/internal/core/styles"
)

type ctxKey struct{}

// Printer writes styled status lines.
type Printer struct {
	w io.Writer
}

// New creates a printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// WithPrinter stores a printer on the context.
func WithPrinter(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer from the context, or a stderr-backed default.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Success writes a success line with a check prefix.
func (p *Printer) Success(msg string) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", styles.PassStyle.Render("✔"), msg)
}

// Successf formats and writes a success line.
func (p *Printer) Successf(format string, args ...any) {
	p.Success(fmt.Sprintf(format, args...))
}

// Infof writes an informational line.
func (p *Printer) Infof(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", styles.MutedStyle.Render("●"), fmt.Sprintf(format, args...))
}

// Warnf writes a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", styles.WarnStyle.Render("●"), fmt.Sprintf(format, args...))
}

// Errorf writes an error line.
func (p *Printer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", styles.FailStyle.Render("✘"), fmt.Sprintf(format, args...))
}

// Section writes a bold section header.
func (p *Printer) Section(name string) {
	_, _ = fmt.Fprintf(p.w, "%s\n", styles.HeaderStyle.Render(name))
}

// CheckItem writes an indented passing check line.
func (p *Printer) CheckItem(label, detail string) {
	p.item(styles.PassStyle.Render("✔"), label, detail)
}

// WarnItem writes an indented warning check line.
func (p *Printer) WarnItem(label, detail string) {
	p.item(styles.WarnStyle.Render("●"), label, detail)
}

// FailItem writes an indented failing check line.
func (p *Printer) FailItem(label, detail string) {
	p.item(styles.FailStyle.Render("✘"), label, detail)
}

func (p *Printer) item(icon, label, detail string) {
	if detail != "" {
		detail = " " + styles.MutedStyle.Render(detail)
	}
	_, _ = fmt.Fprintf(p.w, "  %s %s%s\n", icon, label, detail)
}
