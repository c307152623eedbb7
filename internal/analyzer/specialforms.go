package analyzer

import (
	"github.com/corvidlang/corvid/internal/rt"
)

// analyzeSpecialForm builds the NodeMeta for a list headed by a §4.F
// special-form name. Forms that take raw (unevaluated) structure — let's
// binding names, def's var name, fn's parameter list, try's catch
// class/binding, case's literal keys, quote's and var's single argument —
// are parsed here instead of being recursively analyzed as expressions;
// everything else is analyzed normally, so a user who wants an unevaluated
// symbol passed to `require`/`refer`/`in-ns` quotes it explicitly (`set!`
// takes its target var's symbol unquoted).
func analyzeSpecialForm(ctx *rt.Context, name string, l *rt.List, sc *scope) rt.Value {
	switch name {
	case "quote":
		return analyzeQuote(ctx, l)
	case "var":
		return analyzeVarSpecial(ctx, l)
	case "fn":
		return analyzeFn(ctx, l, sc, "")
	case "defmacro":
		return analyzeDefmacro(ctx, l, sc)
	case "let":
		return analyzeLet(ctx, l, sc)
	case "def":
		return analyzeDef(ctx, l, sc)
	case "try":
		return analyzeTry(ctx, l, sc)
	case "case":
		return analyzeCase(ctx, l, sc)
	case "new":
		return analyzeNew(ctx, l, sc)
	case ".":
		return analyzeDot(ctx, l, sc)
	case "deref":
		return analyzeDeref(ctx, l, sc)
	default:
		return analyzeGenericSpecial(ctx, l, sc)
	}
}

func wrapDo(ctx *rt.Context, forms []rt.Value, sc *scope) rt.Value {
	doSym := &rt.Symbol{Name: "do"}
	l := rt.Cons(rt.Value(doSym), rt.SliceToList(forms))
	return analyzeGenericSpecial(ctx, l, sc)
}

func analyzeGenericSpecial(ctx *rt.Context, l *rt.List, sc *scope) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	args := make([]rt.Value, len(rest))
	for i, r := range rest {
		args[i] = analyze(ctx, r, sc)
	}
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpCall
	nm.Operator = l.Head
	nm.Args = args
	return l
}

func analyzeQuote(ctx *rt.Context, l *rt.List) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpCall
	nm.Operator = l.Head
	if len(rest) >= 1 {
		nm.QuoteValue = rest[0]
	} else {
		nm.QuoteValue = rt.NilValue
	}
	return l
}

func analyzeVarSpecial(ctx *rt.Context, l *rt.List) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpCall
	nm.Operator = l.Head
	if len(rest) >= 1 {
		if sym, ok := rest[0].(*rt.Symbol); ok {
			nm.VarSymbol = sym
		}
	}
	return l
}

// parseParams reads a `[a b & rest]`-shaped parameter vector.
func parseParams(v *rt.Vector) ([]rt.Param, *rt.Param) {
	var params []rt.Param
	var variadic *rt.Param
	for i := 0; i < len(v.Items); i++ {
		if sym, ok := v.Items[i].(*rt.Symbol); ok && sym.Name == "&" && i+1 < len(v.Items) {
			if rsym, ok := v.Items[i+1].(*rt.Symbol); ok {
				variadic = &rt.Param{Name: rsym}
			}
			break
		}
		if sym, ok := v.Items[i].(*rt.Symbol); ok {
			params = append(params, rt.Param{Name: sym})
		}
	}
	return params, variadic
}

func analyzeFn(ctx *rt.Context, l *rt.List, sc *scope, forcedName string) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	name := forcedName
	idx := 0
	if idx < len(rest) {
		if sym, ok := rest[idx].(*rt.Symbol); ok {
			name = sym.Name
			idx++
		}
	}
	var params []rt.Param
	var variadic *rt.Param
	if idx < len(rest) {
		if v, ok := rest[idx].(*rt.Vector); ok {
			params, variadic = parseParams(v)
			idx++
		}
	}
	bodyForms := rest[idx:]
	inner := sc
	if name != "" {
		inner = inner.push(name)
	}
	for _, p := range params {
		inner = inner.push(p.Name.Name)
	}
	if variadic != nil {
		inner = inner.push(variadic.Name.Name)
	}
	body := wrapDo(ctx, bodyForms, inner)

	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpFn
	nm.Operator = l.Head
	nm.Params = params
	nm.Variadic = variadic
	nm.FnBody = body
	nm.FnName = name
	return l
}

func analyzeDefmacro(ctx *rt.Context, l *rt.List, sc *scope) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	if len(rest) < 2 {
		nm := ctx.Meta.Ensure(l)
		nm.Op = rt.OpCall
		nm.Operator = l.Head
		return l
	}
	nameSym, ok := rest[0].(*rt.Symbol)
	if !ok {
		nm := ctx.Meta.Ensure(l)
		nm.Op = rt.OpCall
		nm.Operator = l.Head
		return l
	}
	// Re-use fn analysis over the (name [params] body...) tail, forcing
	// the macro's own name into scope for self-recursive macros.
	fnForm := rt.Cons(l.Head, rt.SliceToList(rest))
	analyzeFn(ctx, fnForm, sc, nameSym.Name)
	fnMeta := ctx.Meta.Get(fnForm)
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpCall
	nm.Operator = l.Head
	nm.DefName = nameSym
	nm.Params = fnMeta.Params
	nm.Variadic = fnMeta.Variadic
	nm.FnBody = fnMeta.FnBody
	nm.FnName = nameSym.Name
	return l
}

func analyzeLet(ctx *rt.Context, l *rt.List, sc *scope) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpCall
	nm.Operator = l.Head
	if len(rest) < 1 {
		return l
	}
	bindVec, ok := rest[0].(*rt.Vector)
	if !ok {
		return l
	}
	inner := sc
	var bindings []rt.LetBinding
	for i := 0; i+1 < len(bindVec.Items); i += 2 {
		nameSym, ok := bindVec.Items[i].(*rt.Symbol)
		if !ok {
			continue
		}
		initAnalyzed := analyze(ctx, bindVec.Items[i+1], inner)
		bindings = append(bindings, rt.LetBinding{Name: nameSym, Init: initAnalyzed})
		inner = inner.push(nameSym.Name)
	}
	nm.LetBindings = bindings
	nm.LetBody = wrapDo(ctx, rest[1:], inner)
	return l
}

func analyzeDef(ctx *rt.Context, l *rt.List, sc *scope) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpCall
	nm.Operator = l.Head
	if len(rest) < 1 {
		return l
	}
	nameSym, _ := rest[0].(*rt.Symbol)
	nm.DefName = nameSym
	switch len(rest) {
	case 1:
		nm.DefUnbound = true
	case 2:
		nm.DefInit = analyze(ctx, rest[1], sc)
	default:
		if doc, ok := rest[1].(*rt.Str); ok {
			nm.DefDoc = doc.Val
			nm.DefHasDoc = true
		}
		nm.DefInit = analyze(ctx, rest[2], sc)
	}
	return l
}

func analyzeTry(ctx *rt.Context, l *rt.List, sc *scope) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpTry
	nm.Operator = l.Head

	var body []rt.Value
	var catches []rt.Catch
	var finally rt.Value
	i := 0
	for ; i < len(rest); i++ {
		if isClauseHeaded(rest[i], "catch") || isClauseHeaded(rest[i], "finally") {
			break
		}
		body = append(body, rest[i])
	}
	nm.TryBody = wrapDo(ctx, body, sc)
	for ; i < len(rest); i++ {
		clause, ok := rest[i].(*rt.List)
		if !ok {
			continue
		}
		head, ok := clause.Head.(*rt.Symbol)
		if !ok {
			continue
		}
		parts := rt.ListToSlice(clause.Tail)
		if head.Name == "catch" && len(parts) >= 2 {
			classSym, _ := parts[0].(*rt.Symbol)
			bindingSym, _ := parts[1].(*rt.Symbol)
			inner := sc
			if bindingSym != nil {
				inner = inner.push(bindingSym.Name)
			}
			className := ""
			if classSym != nil {
				className = classSym.Name
			}
			catchBody := wrapDo(ctx, parts[2:], inner)
			catches = append(catches, rt.Catch{ClassName: className, Binding: bindingSym, Body: catchBody})
		} else if head.Name == "finally" {
			finally = wrapDo(ctx, parts, sc)
		}
	}
	nm.Catches = catches
	nm.Finally = finally
	return l
}

func isClauseHeaded(v rt.Value, name string) bool {
	l, ok := v.(*rt.List)
	if !ok || l == nil {
		return false
	}
	sym, ok := l.Head.(*rt.Symbol)
	return ok && sym.Name == name
}

func analyzeCase(ctx *rt.Context, l *rt.List, sc *scope) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpCall
	nm.Operator = l.Head
	if len(rest) < 1 {
		return l
	}
	nm.CaseVal = analyze(ctx, rest[0], sc)
	clauses := rest[1:]
	n := len(clauses)
	pairs := n
	if n%2 == 1 {
		pairs = n - 1
		nm.HasDefault = true
		nm.CaseDefault = analyze(ctx, clauses[n-1], sc)
	}
	var entries []rt.CaseEntry
	for i := 0; i+1 < pairs; i += 2 {
		key := clauses[i]
		body := analyze(ctx, clauses[i+1], sc)
		if keyList, ok := key.(*rt.List); ok {
			for _, k := range rt.ListToSlice(keyList) {
				entries = append(entries, rt.CaseEntry{Key: k, Body: body})
			}
		} else {
			entries = append(entries, rt.CaseEntry{Key: key, Body: body})
		}
	}
	nm.CaseMap = entries
	return l
}

func analyzeNew(ctx *rt.Context, l *rt.List, sc *scope) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpCall
	nm.Operator = l.Head
	if len(rest) < 1 {
		return l
	}
	if sym, ok := rest[0].(*rt.Symbol); ok {
		nm.ClassName = sym.String()
	}
	argForms := rest[1:]
	args := make([]rt.Value, len(argForms))
	for i, a := range argForms {
		args[i] = analyze(ctx, a, sc)
	}
	nm.Args = args
	return l
}

// analyzeDeref tags `(deref x)` (the reader's desugaring of `@x`) with the
// deref! opcode (§4.E) so the interpreter can apply var/lazy-seq forcing
// instead of treating it as an ordinary call to the `deref` builtin.
func analyzeDeref(ctx *rt.Context, l *rt.List, sc *scope) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpDeref
	nm.Operator = l.Head
	if len(rest) >= 1 {
		nm.Target = analyze(ctx, rest[0], sc)
	}
	return l
}

func analyzeDot(ctx *rt.Context, l *rt.List, sc *scope) rt.Value {
	rest := rt.ListToSlice(l.Tail)
	nm := ctx.Meta.Ensure(l)
	nm.Op = rt.OpCall
	nm.Operator = l.Head
	if len(rest) < 2 {
		return l
	}
	nm.Target = analyze(ctx, rest[0], sc)
	if sym, ok := rest[1].(*rt.Symbol); ok {
		nm.MemberName = sym.Name
	}
	argForms := rest[2:]
	args := make([]rt.Value, len(argForms))
	for i, a := range argForms {
		args[i] = analyze(ctx, a, sc)
	}
	nm.Args = args
	return l
}
