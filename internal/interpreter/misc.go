package interpreter

import "github.com/corvidlang/corvid/internal/rt"

func evalInNs(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if len(nm.Args) < 1 {
		return rt.NewErrAt(nm.Line, nm.Col, "in-ns requires a namespace symbol")
	}
	v := Interpret(ctx, nm.Args[0])
	if rt.IsError(v) {
		return v
	}
	sym, ok := v.(*rt.Symbol)
	if !ok {
		return rt.NewErrAt(nm.Line, nm.Col, "in-ns requires a symbol, got %s", v.String())
	}
	ctx.SetCurrentNamespace(sym.Name)
	return sym
}

// evalSetBang implements `(set! var-expr val-expr)`: the target must
// analyze to a var reference (a namespace-level def), never a lexical
// local — matching the host's usual restriction that plain lexicals are
// immutable.
func evalSetBang(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if len(nm.Args) != 2 {
		return rt.NewErrAt(nm.Line, nm.Col, "set! requires a var and a value")
	}
	targetNm := ctx.Meta.Get(nm.Args[0])
	if targetNm == nil || targetNm.Op != rt.OpVarValue {
		return rt.NewErrAt(nm.Line, nm.Col, "set! target must be a var")
	}
	val := Interpret(ctx, nm.Args[1])
	if rt.IsError(val) {
		return val
	}
	targetNm.VarRef.BindRoot(val)
	return val
}

// evalRefer implements `(refer 'ns-sym)` / `(refer 'ns-sym :exclude [...])`:
// every public var of the target namespace becomes visible unqualified in
// the current one, except any name listed under `:exclude`.
func evalRefer(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if len(nm.Args) < 1 {
		return rt.NewErrAt(nm.Line, nm.Col, "refer requires a namespace symbol")
	}
	target := Interpret(ctx, nm.Args[0])
	if rt.IsError(target) {
		return target
	}
	sym, ok := target.(*rt.Symbol)
	if !ok {
		return rt.NewErrAt(nm.Line, nm.Col, "refer requires a symbol")
	}
	var exclude []string
	for i := 1; i+1 < len(nm.Args); i += 2 {
		kw := Interpret(ctx, nm.Args[i])
		if k, ok := kw.(*rt.Keyword); ok && k.Name == "exclude" {
			excludeVal := Interpret(ctx, nm.Args[i+1])
			if v, ok := excludeVal.(*rt.Vector); ok {
				for _, e := range v.Items {
					if es, ok := e.(*rt.Symbol); ok {
						exclude = append(exclude, es.Name)
					}
				}
			}
		}
	}
	curNS := ctx.Env.EnsureNamespace(ctx.CurrentNamespaceName())
	curNS.AddRefer(sym.Name, exclude)
	return rt.NilValue
}

func evalResolve(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if len(nm.Args) < 1 {
		return rt.NewErrAt(nm.Line, nm.Col, "resolve requires a symbol")
	}
	v := Interpret(ctx, nm.Args[0])
	if rt.IsError(v) {
		return v
	}
	sym, ok := v.(*rt.Symbol)
	if !ok {
		return rt.NewErrAt(nm.Line, nm.Col, "resolve requires a symbol")
	}
	target, ok := rt.ResolveSymbolToVar(ctx, sym)
	if !ok {
		return rt.NilValue
	}
	return target
}

func evalMacroexpand1(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if len(nm.Args) < 1 {
		return rt.NewErrAt(nm.Line, nm.Col, "macroexpand-1 requires a form")
	}
	form := Interpret(ctx, nm.Args[0])
	if rt.IsError(form) {
		return form
	}
	return rt.MacroExpand1(ctx, form)
}

func evalMacroexpand(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if len(nm.Args) < 1 {
		return rt.NewErrAt(nm.Line, nm.Col, "macroexpand requires a form")
	}
	form := Interpret(ctx, nm.Args[0])
	if rt.IsError(form) {
		return form
	}
	return rt.MacroExpand(ctx, form)
}
