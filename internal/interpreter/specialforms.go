package interpreter

import "github.com/corvidlang/corvid/internal/rt"

func evalSpecialForm(ctx *rt.Context, name string, nm *rt.NodeMeta) rt.Value {
	switch name {
	case "do":
		return evalDo(ctx, nm.Args)
	case "if":
		return evalIf(ctx, nm)
	case "and":
		return evalAnd(ctx, nm.Args)
	case "or":
		return evalOr(ctx, nm.Args)
	case "let":
		return evalLet(ctx, nm)
	case "def":
		return evalDef(ctx, nm)
	case "defmacro":
		return evalDefmacro(ctx, nm)
	case "fn":
		return evalFn(ctx, nm)
	case "case":
		return evalCase(ctx, nm)
	case "try":
		return evalTry(ctx, nm)
	case "throw":
		return evalThrow(ctx, nm)
	case "recur":
		return evalRecur(ctx, nm)
	case "new":
		return evalNew(ctx, nm)
	case ".":
		return evalDot(ctx, nm)
	case "deref":
		return evalDeref(ctx, nm)
	case "lazy-seq":
		return evalLazySeq(ctx, nm)
	case "in-ns":
		return evalInNs(ctx, nm)
	case "set!":
		return evalSetBang(ctx, nm)
	case "refer":
		return evalRefer(ctx, nm)
	case "resolve":
		return evalResolve(ctx, nm)
	case "macroexpand-1":
		return evalMacroexpand1(ctx, nm)
	case "macroexpand":
		return evalMacroexpand(ctx, nm)
	case "require":
		return evalRequire(ctx, nm)
	case "quote":
		return nm.QuoteValue
	case "var":
		if nm.VarSymbol == nil {
			return rt.NewErrAt(nm.Line, nm.Col, "var requires a symbol")
		}
		v, ok := rt.ResolveSymbolToVar(ctx, nm.VarSymbol)
		if !ok {
			return rt.NewErrAt(nm.Line, nm.Col, "Unable to resolve var: %s", nm.VarSymbol.String())
		}
		return v
	}
	return rt.NewErrAt(nm.Line, nm.Col, "unimplemented special form: %s", name)
}

func evalDo(ctx *rt.Context, forms []rt.Value) rt.Value {
	var result rt.Value = rt.NilValue
	for _, f := range forms {
		result = Interpret(ctx, f)
		if rt.IsError(result) {
			return result
		}
	}
	return result
}

func evalIf(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if len(nm.Args) < 2 {
		return rt.NewErrAt(nm.Line, nm.Col, "if requires at least a condition and a then-branch")
	}
	cond := Interpret(ctx, nm.Args[0])
	if rt.IsError(cond) {
		return cond
	}
	if rt.Truthy(cond) {
		return Interpret(ctx, nm.Args[1])
	}
	if len(nm.Args) > 2 {
		return Interpret(ctx, nm.Args[2])
	}
	return rt.NilValue
}

func evalAnd(ctx *rt.Context, forms []rt.Value) rt.Value {
	var result rt.Value = rt.True
	for _, f := range forms {
		result = Interpret(ctx, f)
		if rt.IsError(result) {
			return result
		}
		if !rt.Truthy(result) {
			return result
		}
	}
	return result
}

func evalOr(ctx *rt.Context, forms []rt.Value) rt.Value {
	var result rt.Value = rt.NilValue
	for _, f := range forms {
		result = Interpret(ctx, f)
		if rt.IsError(result) {
			return result
		}
		if rt.Truthy(result) {
			return result
		}
	}
	return result
}

func evalLet(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	cur := ctx
	for _, b := range nm.LetBindings {
		val := Interpret(cur, b.Init)
		if rt.IsError(val) {
			return val
		}
		cur = cur.WithBinding(b.Name.Name, val)
	}
	if nm.LetBody == nil {
		return rt.NilValue
	}
	return Interpret(cur, nm.LetBody)
}

func evalDef(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if nm.DefName == nil {
		return rt.NewErrAt(nm.Line, nm.Col, "def requires a symbol")
	}
	ns := ctx.Env.EnsureNamespace(ctx.CurrentNamespaceName())
	v := ns.Intern(nm.DefName.Name)
	if !nm.DefUnbound {
		val := Interpret(ctx, nm.DefInit)
		if rt.IsError(val) {
			return val
		}
		v.BindRoot(val)
	}
	if nm.DefHasDoc {
		v.AlterMeta(map[string]rt.Value{"doc": &rt.Str{Val: nm.DefDoc}})
	}
	return v
}

func evalDefmacro(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if nm.DefName == nil {
		return rt.NewErrAt(nm.Line, nm.Col, "defmacro requires a symbol")
	}
	ns := ctx.Env.EnsureNamespace(ctx.CurrentNamespaceName())
	v := ns.Intern(nm.DefName.Name)
	fn := &rt.Fn{
		Name: nm.FnName, Params: nm.Params, Variadic: nm.Variadic,
		Body: nm.FnBody, Env: ctx, IsMacro: true, Line: nm.Line, Col: nm.Col,
	}
	v.BindRoot(fn)
	v.IsMacro = true
	return v
}

func evalFn(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	fn := &rt.Fn{
		Name: nm.FnName, Params: nm.Params, Variadic: nm.Variadic,
		Body: nm.FnBody, Line: nm.Line, Col: nm.Col,
	}
	if nm.FnName != "" {
		fn.Env = ctx.WithBinding(nm.FnName, fn)
	} else {
		fn.Env = ctx
	}
	return fn
}

func evalCase(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	val := Interpret(ctx, nm.CaseVal)
	if rt.IsError(val) {
		return val
	}
	for _, entry := range nm.CaseMap {
		if rt.Equal(val, entry.Key) {
			return Interpret(ctx, entry.Body)
		}
	}
	if nm.HasDefault {
		return Interpret(ctx, nm.CaseDefault)
	}
	return rt.NewErrAt(nm.Line, nm.Col, "No matching clause: %s", val.String())
}

func evalThrow(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if len(nm.Args) < 1 {
		return rt.NewErrAt(nm.Line, nm.Col, "throw requires a value")
	}
	raised := Interpret(ctx, nm.Args[0])
	if rt.IsError(raised) {
		return raised
	}
	thrown := rt.ThrowValue(raised)
	thrown.InTry = ctx.InTry
	return rt.WrapAtCallSite(thrown, nm.Line, nm.Col, nm.File)
}

// evalDeref implements the deref! opcode (§4.E, reader-desugared from `@x`):
// evaluate the target, deref it if it is a var, then force realization if
// the (possibly-dereffed) value is a lazy thunk.
func evalDeref(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if nm.Target == nil {
		return rt.NewErrAt(nm.Line, nm.Col, "deref requires one argument")
	}
	val := Interpret(ctx, nm.Target)
	if rt.IsError(val) {
		return val
	}
	return derefValue(ctx, val)
}

// evalLazySeq implements the `lazy-seq` special form (§SPEC_FULL "lazy-seq
// construction"): the body is an implicit `do`, deferred into a memoized
// thunk that is not evaluated until the resulting value is forced, with
// realize-max enforced at force time rather than at construction (§9).
func evalLazySeq(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	forms := nm.Args
	return rt.NewLazySeq(func() rt.Value {
		result := evalDo(ctx, forms)
		if rt.IsError(result) {
			return result
		}
		if err := realizeGuard(ctx, len(toSlice(result))); err != nil {
			return err
		}
		return result
	})
}

func evalRecur(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	args, errv := evalArgs(ctx, nm.Args)
	if errv != nil {
		return errv
	}
	return &rt.Recur{Args: args}
}
