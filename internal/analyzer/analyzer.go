// Package analyzer implements the §6 `analyze(ctx, form) → node` contract:
// it walks a raw form produced by internal/reader and tags every node with
// the opcode metadata internal/interpreter's dispatcher switches on (§3,
// §4.E). Grounded in the teacher's internal/analyzer (a form-walking
// per-node tagger), generalized from static type inference to opcode
// tagging — the two analyzers share nothing but the shape of the problem,
// so none of the teacher's type-system machinery survives here.
package analyzer

import (
	"github.com/corvidlang/corvid/internal/rt"
)

// scope is the analyzer's compile-time lexical-name tracker: the set of
// symbol names bound by an enclosing `let`/`fn`, used to decide whether a
// symbol reference becomes a resolve-sym node (lexical) or a var-value node
// (namespace var), per §4.E.
type scope struct {
	parent *scope
	name   string
}

func (s *scope) has(name string) bool {
	for c := s; c != nil; c = c.parent {
		if c.name == name {
			return true
		}
	}
	return false
}

func (s *scope) push(name string) *scope { return &scope{parent: s, name: name} }

func init() {
	rt.MacroexpandForHook = AnalyzeMacroexpanding
}

// Analyze tags form with opcode metadata in ctx.Meta and returns it (the
// same value, except for vector/set/map literals, which get a freshly
// built copy so their elements can carry their own tags).
func Analyze(ctx *rt.Context, form rt.Value) rt.Value {
	return analyze(ctx, form, nil)
}

// AnalyzeMacroexpanding is the macroexpanding-mode entry point §4.H names
// for the `for` comprehension operator: it returns the desugared
// expansion rather than an evaluable node.
func AnalyzeMacroexpanding(ctx *rt.Context, form rt.Value) rt.Value {
	if expanded, ok := tryExpandFor(form); ok {
		return expanded
	}
	return form
}

func analyze(ctx *rt.Context, form rt.Value, sc *scope) rt.Value {
	switch f := form.(type) {
	case *rt.List:
		return analyzeList(ctx, f, sc)
	case *rt.Vector:
		items := make([]rt.Value, len(f.Items))
		for i, it := range f.Items {
			items[i] = analyze(ctx, it, sc)
		}
		return &rt.Vector{Items: items}
	case *rt.Set:
		items := make([]rt.Value, len(f.Items))
		for i, it := range f.Items {
			items[i] = analyze(ctx, it, sc)
		}
		return &rt.Set{Items: items}
	case *rt.Map:
		keys := make([]rt.Value, len(f.Keys))
		vals := make([]rt.Value, len(f.Vals))
		for i := range f.Keys {
			keys[i] = analyze(ctx, f.Keys[i], sc)
			vals[i] = analyze(ctx, f.Vals[i], sc)
		}
		return &rt.Map{Keys: keys, Vals: vals}
	case *rt.Symbol:
		return analyzeSymbol(ctx, f, sc)
	default:
		// Self-evaluating literal: nil, bool, int, float, char, string,
		// keyword. Left untagged (§4.E step 2).
		return form
	}
}

func analyzeSymbol(ctx *rt.Context, sym *rt.Symbol, sc *scope) rt.Value {
	nm := ctx.Meta.Ensure(sym)
	if sym.Ns == "" && sc.has(sym.Name) {
		nm.Op = rt.OpResolveSym
		nm.ResolvedSym = sym
		return sym
	}
	if v, ok := rt.ResolveSymbolToVar(ctx, sym); ok {
		nm.Op = rt.OpVarValue
		// needs-ctx (§4.E): a var bound to a function built with the
		// ctx-injection wrapper resolves as needs-ctx instead of a plain
		// var-value, so evaluating the bare symbol still yields the
		// function (applyFn does the actual ctx prepending at call time).
		if fn, ok := v.Root().(*rt.Fn); ok && fn.NeedsCtx {
			nm.Op = rt.OpNeedsCtx
		}
		nm.VarRef = v
		return sym
	}
	// A namespace-qualified symbol whose namespace segment is not a loaded
	// namespace or alias (so ResolveSymbolToVar above already failed) is
	// taken to name a host class member, e.g. `Math/max` or `Math/PI`
	// (§4.I static-access): the host gateway, not namespace resolution,
	// owns these names.
	if sym.Ns != "" {
		nm.Op = rt.OpStaticAccess
		nm.ClassName = sym.Ns
		nm.MemberName = sym.Name
		return sym
	}
	// Not a known local and not yet resolvable to a var: defer to a
	// runtime lexical lookup, which raises "Could not resolve symbol" if
	// the name truly never appears. This also covers forward references
	// to a `def` that has not run yet when this form is analyzed.
	nm.Op = rt.OpResolveSym
	nm.ResolvedSym = sym
	return sym
}

func analyzeList(ctx *rt.Context, l *rt.List, sc *scope) rt.Value {
	if l == nil {
		return l
	}
	if sym, ok := l.Head.(*rt.Symbol); ok && sym.Ns == "" {
		if rt.SpecialForms[sym.Name] {
			return analyzeSpecialForm(ctx, sym.Name, l, sc)
		}
		// `(.member target args...)` is shorthand for `(. target member args...)`.
		if len(sym.Name) > 1 && sym.Name[0] == '.' && l.Tail != nil {
			member := rt.Value(&rt.Symbol{Name: sym.Name[1:]})
			dotForm := rt.Cons(rt.Value(&rt.Symbol{Name: "."}), rt.Cons(l.Tail.Head, rt.Cons(member, l.Tail.Tail)))
			ctx.Meta.CopyLocation(dotForm, l)
			return analyzeSpecialForm(ctx, ".", dotForm, sc)
		}
		if expanded, ok := tryExpandFor(l); ok {
			return analyze(ctx, expanded, sc)
		}
	}
	expanded := rt.MacroExpand1(ctx, l)
	if expanded != rt.Value(l) {
		if rt.IsError(expanded) {
			return expanded
		}
		return analyze(ctx, expanded, sc)
	}

	operator := analyze(ctx, l.Head, sc)
	rest := rt.ListToSlice(l.Tail)
	args := make([]rt.Value, len(rest))
	for i, r := range rest {
		args[i] = analyze(ctx, r, sc)
	}
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpCall
	nm.Operator = operator
	nm.Args = args
	return l
}
