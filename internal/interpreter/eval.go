// Package interpreter implements §4.E–§4.J: the tree-walking evaluator that
// drives analyzed nodes to values. Grounded in the teacher's
// internal/evaluator (the isError(result)-checked dispatch style and the
// ApplyFunction trampoline), generalized from the teacher's statically-typed
// expression forms to the dynamically-typed, macro-expandable node shapes
// internal/analyzer produces.
package interpreter

import "github.com/corvidlang/corvid/internal/rt"

func init() {
	rt.ApplyHook = func(ctx *rt.Context, fn rt.Value, args []rt.Value) rt.Value {
		return applyFn(ctx, fn, args, 0, 0, "")
	}
}

// Interpret evaluates an analyzed node to a value, per §4.E. Collection
// literals (vector/set/map) are walked structurally regardless of tag;
// everything else dispatches on the node's recorded Op.
func Interpret(ctx *rt.Context, expr rt.Value) rt.Value {
	switch v := expr.(type) {
	case *rt.Vector:
		items := make([]rt.Value, len(v.Items))
		for i, it := range v.Items {
			r := Interpret(ctx, it)
			if rt.IsError(r) {
				return r
			}
			items[i] = r
		}
		return &rt.Vector{Items: items}
	case *rt.Set:
		out := &rt.Set{}
		for _, it := range v.Items {
			r := Interpret(ctx, it)
			if rt.IsError(r) {
				return r
			}
			out = out.Conj(r)
		}
		return out
	case *rt.Map:
		out := rt.EmptyMap
		for i := range v.Keys {
			k := Interpret(ctx, v.Keys[i])
			if rt.IsError(k) {
				return k
			}
			val := Interpret(ctx, v.Vals[i])
			if rt.IsError(val) {
				return val
			}
			out = out.Assoc(k, val)
		}
		return out
	case *rt.Symbol:
		result := evalSymbol(ctx, v)
		ctx.Meta.CopyLocation(result, v)
		return result
	case *rt.List:
		if v == nil {
			return v
		}
		result := evalList(ctx, v)
		ctx.Meta.CopyLocation(result, v)
		return result
	default:
		return expr
	}
}

func evalSymbol(ctx *rt.Context, sym *rt.Symbol) rt.Value {
	nm := ctx.Meta.Get(sym)
	if nm == nil {
		return sym
	}
	switch nm.Op {
	case rt.OpVarValue, rt.OpNeedsCtx:
		val := nm.VarRef.Deref(ctx.BindingStack)
		if rt.IsUnbound(val) {
			return rt.NewErrAt(nm.Line, nm.Col, "Unbound var: %s", sym.String())
		}
		return val
	case rt.OpStaticAccess:
		return interopStaticRead(ctx, nm.ClassName, nm.MemberName, nm)
	case rt.OpResolveSym:
		if val, ok := ctx.Bindings.Get(sym.Name); ok {
			return val
		}
		if v, ok := rt.ResolveSymbolToVar(ctx, sym); ok {
			val := v.Deref(ctx.BindingStack)
			if rt.IsUnbound(val) {
				return rt.NewErrAt(nm.Line, nm.Col, "Unbound var: %s", sym.String())
			}
			return val
		}
		return rt.NewErrAt(nm.Line, nm.Col, "Could not resolve symbol: %s", sym.String())
	default:
		return sym
	}
}

func evalList(ctx *rt.Context, l *rt.List) rt.Value {
	nm := ctx.Meta.Get(l)
	if nm == nil {
		return l
	}
	if sym, ok := l.Head.(*rt.Symbol); ok && sym.Ns == "" && rt.SpecialForms[sym.Name] {
		return evalSpecialForm(ctx, sym.Name, nm)
	}
	return evalCall(ctx, nm)
}

func evalArgs(ctx *rt.Context, forms []rt.Value) ([]rt.Value, rt.Value) {
	out := make([]rt.Value, len(forms))
	for i, f := range forms {
		v := Interpret(ctx, f)
		if rt.IsError(v) {
			return nil, v
		}
		out[i] = v
	}
	return out, nil
}

func evalCall(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	opNm := ctx.Meta.Get(nm.Operator)
	if opNm != nil && opNm.Op == rt.OpStaticAccess {
		args, errv := evalArgs(ctx, nm.Args)
		if errv != nil {
			return errv
		}
		return interopStaticCall(ctx, opNm.ClassName, opNm.MemberName, args, nm)
	}
	opVal := Interpret(ctx, nm.Operator)
	if rt.IsError(opVal) {
		return opVal
	}
	args, errv := evalArgs(ctx, nm.Args)
	if errv != nil {
		return errv
	}
	return applyFn(ctx, opVal, args, nm.Line, nm.Col, nm.File)
}
