// Package diagnostics renders *rt.Err values for a terminal: colorized when
// the output stream is a real tty, plain otherwise. Grounded in the teacher's
// builtins_term.go use of github.com/mattn/go-isatty to decide whether to
// emit control sequences at all.
package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/corvidlang/corvid/internal/rt"
)

const (
	colorRed   = "\x1b[31m"
	colorDim   = "\x1b[2m"
	colorReset = "\x1b[0m"
)

// Renderer formats *rt.Err values for a specific output stream.
type Renderer struct {
	out   io.Writer
	color bool
}

// NewRenderer builds a Renderer for out, enabling color only when out is a
// *os.File connected to a terminal.
func NewRenderer(out io.Writer) *Renderer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{out: out, color: color}
}

// Render writes a one-or-more-line rendering of err, including its cause
// chain and call stack if present, per §7 "the error's location is
// enriched... without losing the original message and cause."
func (r *Renderer) Render(err *rt.Err) {
	fmt.Fprintln(r.out, r.renderLine(err))
	if err.InTry {
		fmt.Fprintln(r.out, r.dim("(raised inside a try block that did not catch it)"))
	}
	for cause := err.Cause; cause != nil; cause = cause.Cause {
		fmt.Fprintln(r.out, r.dim("caused by: "+r.renderLine(cause)))
	}
	if len(err.StackTrace) > 0 {
		var b strings.Builder
		for _, frame := range err.StackTrace {
			fmt.Fprintf(&b, "  at %s (%s:%d:%d)\n", frame.Name, frame.File, frame.Line, frame.Col)
		}
		fmt.Fprint(r.out, r.dim(b.String()))
	}
}

func (r *Renderer) renderLine(err *rt.Err) string {
	loc := ""
	if err.Line > 0 {
		loc = fmt.Sprintf(" at %d:%d", err.Line, err.Col)
	}
	line := fmt.Sprintf("error%s: %s", loc, err.Message)
	if r.color {
		return colorRed + line + colorReset
	}
	return line
}

func (r *Renderer) dim(s string) string {
	if r.color {
		return colorDim + s + colorReset
	}
	return s
}
