package rt

// ApplyHook invokes a callable Value with arguments and returns its result.
// It is set once, at interpreter package init, to interpreter.Apply — the
// indirection lets the macro engine and the analyzer call user-defined
// macro functions without rt importing the interpreter (which itself
// imports rt), avoiding an import cycle (§4.H, §9 "dynamic dispatch").
var ApplyHook func(ctx *Context, fn Value, args []Value) Value

// MacroexpandForHook is set by the analyzer package to AnalyzeMacroexpanding,
// letting MacroExpand1 desugar the `for` comprehension operator (§4.H)
// without rt importing analyzer (which itself imports rt).
var MacroexpandForHook func(ctx *Context, form Value) Value

// ResolveSymbolToVar resolves sym against the current namespace (own
// mappings, aliases, then refers), per §3/§4.F `resolve`.
func ResolveSymbolToVar(ctx *Context, sym *Symbol) (*Var, bool) {
	return ctx.Env.Resolve(ctx.CurrentNamespaceName(), sym)
}

// bindingsToMap snapshots a lexical Frame into the Map passed to macros as
// their implicit `&env` argument (§4.H "(original-expr, ctx.bindings,
// ...rest-of-expr)").
func bindingsToMap(f *Frame) *Map {
	m := EmptyMap
	seen := map[string]bool{}
	for cur := f; cur != nil; cur = cur.parent {
		if !seen[cur.sym] {
			seen[cur.sym] = true
			m = m.Assoc(&Symbol{Name: cur.sym}, cur.val)
		}
	}
	return m
}

// MacroExpand1 implements §4.H: if form is a list headed by a symbol that
// resolves to a macro var, call the macro with (original-expr, &env,
// ...rest-of-expr) and return its result; otherwise return form unchanged
// (same pointer, so MacroExpand's fixed-point check is a plain identity
// comparison).
func MacroExpand1(ctx *Context, form Value) Value {
	l, ok := form.(*List)
	if !ok || l == nil {
		return form
	}
	sym, ok := l.Head.(*Symbol)
	if !ok {
		return form
	}
	if sym.Ns == "" && sym.Name == "for" && MacroexpandForHook != nil {
		return MacroexpandForHook(ctx, form)
	}
	if SpecialForms[sym.Name] {
		return form
	}
	v, ok := ResolveSymbolToVar(ctx, sym)
	if !ok || !v.IsMacro {
		return form
	}
	fn := v.Deref(ctx.BindingStack)
	args := append([]Value{form, bindingsToMap(ctx.Bindings)}, ListToSlice(l.Tail)...)
	if ApplyHook == nil {
		return NewErr("macro engine not initialized")
	}
	return ApplyHook(ctx, fn, args)
}

// MacroExpand applies MacroExpand1 until a fixed point is reached (§4.H):
// identity-equality of consecutive forms, so the loop terminates as long
// as no macro expands into an invocation of itself.
func MacroExpand(ctx *Context, form Value) Value {
	cur := form
	for {
		next := MacroExpand1(ctx, cur)
		if IsError(next) {
			return next
		}
		if next == cur {
			return next
		}
		cur = next
	}
}
