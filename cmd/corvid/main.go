// Command corvid is the CLI driver for the evaluator: it reads a file, a
// `-e` one-liner, or stdin, and runs it through
// reader -> analyzer -> interpreter, printing either the result or a
// rendered error. Grounded in the teacher's cmd/funxy/main.go (flag
// handling, module-path-to-source resolution), narrowed from a full module
// loader/backend-selector to the single-program CLI this spec names.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/corvidlang/corvid/internal/analyzer"
	"github.com/corvidlang/corvid/internal/config"
	"github.com/corvidlang/corvid/internal/diagnostics"
	"github.com/corvidlang/corvid/internal/interpreter"
	"github.com/corvidlang/corvid/internal/reader"
	"github.com/corvidlang/corvid/internal/rt"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("corvid", flag.ContinueOnError)
	expr := fs.String("e", "", "evaluate the given expression and exit")
	cfgPath := fs.String("config", "", "path to a corvid.yaml file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var opts *config.Options
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		opts = loaded
	}
	ctx, err := config.NewContext(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	render := diagnostics.NewRenderer(os.Stderr)

	if *expr != "" {
		return evalAndPrint(ctx, render, *expr, "<-e>")
	}

	rest := fs.Args()
	if len(rest) > 0 {
		src, err := os.ReadFile(rest[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return evalAndPrint(ctx, render, string(src), rest[0])
	}

	return repl(ctx, render, os.Stdin, os.Stdout)
}

// evalAndPrint implements the §6 `eval-string` contract: every top-level
// form read from source is analyzed and interpreted in turn as an implicit
// `do`, so a later form sees the effects (defs, requires, namespace
// switches) of an earlier one. A top-level `do` is spliced: its children
// are run as top-level forms in turn.
func evalAndPrint(ctx *rt.Context, render *diagnostics.Renderer, source, file string) int {
	forms, rerr := reader.ReadAll(ctx, source, file)
	if rerr != nil {
		render.Render(rerr)
		return 1
	}
	var result rt.Value = rt.NilValue
	pending := forms
	for len(pending) > 0 {
		f := pending[0]
		pending = pending[1:]
		if l, ok := f.(*rt.List); ok && l != nil {
			if head, ok := l.Head.(*rt.Symbol); ok && head.Ns == "" && head.Name == "do" {
				pending = append(rt.ListToSlice(l.Tail), pending...)
				result = rt.NilValue
				continue
			}
		}
		analyzed := analyzer.Analyze(ctx, f)
		result = interpreter.Interpret(ctx, analyzed)
		if err, ok := rt.AsError(result); ok {
			render.Render(err)
			return 1
		}
	}
	fmt.Println(result.String())
	return 0
}

func repl(ctx *rt.Context, render *diagnostics.Renderer, in io.Reader, out io.Writer) int {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "corvid> ")
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			fmt.Fprint(out, "corvid> ")
			continue
		}
		form, rerr := reader.ReadOne(ctx, line, "<repl>")
		if rerr != nil {
			render.Render(rerr)
			fmt.Fprint(out, "corvid> ")
			continue
		}
		analyzed := analyzer.Analyze(ctx, form)
		result := interpreter.Interpret(ctx, analyzed)
		if err, ok := rt.AsError(result); ok {
			render.Render(err)
		} else {
			fmt.Fprintln(out, result.String())
		}
		fmt.Fprint(out, "corvid> ")
	}
	fmt.Fprintln(out)
	return 0
}
