package interpreter

import (
	"github.com/dustin/go-humanize"

	"github.com/corvidlang/corvid/internal/gensym"
	"github.com/corvidlang/corvid/internal/rt"
)

// Bootstrap populates ctx's "corvid.core" namespace with the builtin
// functions every program gets for free, then refers it into "user" so
// unqualified names like `+` or `first` resolve without an explicit
// require (§SPEC_FULL supplement: preloaded `user` namespace).
func Bootstrap(ctx *rt.Context) {
	core := ctx.Env.EnsureNamespace("corvid.core")
	for name, fn := range coreBuiltins {
		v := core.Intern(name)
		v.BindRoot(&rt.Fn{Name: name, GoFn: fn, NeedsCtx: needsCtxBuiltins[name]})
	}
	user := ctx.Env.EnsureNamespace("user")
	user.AddRefer("corvid.core", nil)
	_ = user
}

func builtinErr(format string, a ...interface{}) rt.Value { return rt.NewErr(format, a...) }

// needsCtxBuiltins names the builtins bound with the needs-ctx wrapper
// (§4.E): applyFn prepends ctx, as a host value, to their argument list.
var needsCtxBuiltins = map[string]bool{"current-context": true}

// derefValue implements the deref! opcode's value-level semantics: a var
// dereferences to its current value (erroring if unbound, and forcing it if
// it is a lazy-seq), an atom dereferences to its contents, and a lazy-seq
// forces its thunk.
func derefValue(ctx *rt.Context, v rt.Value) rt.Value {
	if vr, ok := v.(*rt.Var); ok {
		val := vr.Deref(ctx.BindingStack)
		if rt.IsUnbound(val) {
			return builtinErr("Unbound var: %s", vr.String())
		}
		if ls, ok := val.(*rt.LazySeq); ok {
			return ls.Force()
		}
		return val
	}
	switch vv := v.(type) {
	case *rt.Atom:
		return vv.Val
	case *rt.LazySeq:
		return vv.Force()
	default:
		return builtinErr("deref requires an atom, var, or lazy-seq, got %s", v.String())
	}
}

var coreBuiltins = map[string]func(ctx *rt.Context, args []rt.Value) rt.Value{
	"+": func(ctx *rt.Context, args []rt.Value) rt.Value { return arith(args, 0, func(a, b float64) float64 { return a + b }) },
	"*": func(ctx *rt.Context, args []rt.Value) rt.Value { return arith(args, 1, func(a, b float64) float64 { return a * b }) },
	"-": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) == 0 {
			return builtinErr("- requires at least one argument")
		}
		if len(args) == 1 {
			return negate(args[0])
		}
		return arithFrom(args[0], args[1:], func(a, b float64) float64 { return a - b })
	},
	"/": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) == 0 {
			return builtinErr("/ requires at least one argument")
		}
		if len(args) == 1 {
			return arithFrom(&rt.Int{Val: 1}, args, func(a, b float64) float64 { return a / b })
		}
		return arithFrom(args[0], args[1:], func(a, b float64) float64 { return a / b })
	},
	"=":  func(ctx *rt.Context, args []rt.Value) rt.Value { return cmpChain(args, func(a, b float64) bool { return a == b }, true) },
	"<":  func(ctx *rt.Context, args []rt.Value) rt.Value { return cmpChain(args, func(a, b float64) bool { return a < b }, false) },
	">":  func(ctx *rt.Context, args []rt.Value) rt.Value { return cmpChain(args, func(a, b float64) bool { return a > b }, false) },
	"<=": func(ctx *rt.Context, args []rt.Value) rt.Value { return cmpChain(args, func(a, b float64) bool { return a <= b }, false) },
	">=": func(ctx *rt.Context, args []rt.Value) rt.Value { return cmpChain(args, func(a, b float64) bool { return a >= b }, false) },
	"not": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) != 1 {
			return builtinErr("not requires one argument")
		}
		return rt.BoolOf(!rt.Truthy(args[0]))
	},
	"nil?": func(ctx *rt.Context, args []rt.Value) rt.Value {
		_, ok := args[0].(*rt.Nil)
		return rt.BoolOf(ok)
	},
	"list": func(ctx *rt.Context, args []rt.Value) rt.Value { return rt.SliceToList(args) },
	"list*": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) == 0 {
			return rt.SliceToList(nil)
		}
		last := args[len(args)-1]
		items := append([]rt.Value{}, args[:len(args)-1]...)
		if l, ok := last.(*rt.List); ok {
			items = append(items, rt.ListToSlice(l)...)
		} else {
			items = append(items, last)
		}
		if err := realizeGuard(ctx, len(items)); err != nil {
			return err
		}
		return rt.SliceToList(items)
	},
	"vector": func(ctx *rt.Context, args []rt.Value) rt.Value { return &rt.Vector{Items: append([]rt.Value{}, args...)} },
	"vec": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) != 1 {
			return builtinErr("vec requires one argument")
		}
		items := toSlice(args[0])
		if err := realizeGuard(ctx, len(items)); err != nil {
			return err
		}
		return &rt.Vector{Items: items}
	},
	"count": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) != 1 {
			return builtinErr("count requires one argument")
		}
		return &rt.Int{Val: int64(len(toSlice(args[0])))}
	},
	"first": func(ctx *rt.Context, args []rt.Value) rt.Value {
		items := toSlice(args[0])
		if len(items) == 0 {
			return rt.NilValue
		}
		return items[0]
	},
	"rest": func(ctx *rt.Context, args []rt.Value) rt.Value {
		items := toSlice(args[0])
		if len(items) <= 1 {
			return rt.SliceToList(nil)
		}
		return rt.SliceToList(items[1:])
	},
	"cons": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) != 2 {
			return builtinErr("cons requires two arguments")
		}
		items := toSlice(args[1])
		if err := realizeGuard(ctx, len(items)+1); err != nil {
			return err
		}
		return rt.Cons(args[0], rt.SliceToList(items))
	},
	"conj": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) < 1 {
			return builtinErr("conj requires a collection")
		}
		switch c := args[0].(type) {
		case *rt.Vector:
			items := append(append([]rt.Value{}, c.Items...), args[1:]...)
			if err := realizeGuard(ctx, len(items)); err != nil {
				return err
			}
			return &rt.Vector{Items: items}
		case *rt.Set:
			out := c
			for _, a := range args[1:] {
				out = out.Conj(a)
			}
			if err := realizeGuard(ctx, len(out.Items)); err != nil {
				return err
			}
			return out
		default:
			items := toSlice(args[0])
			if err := realizeGuard(ctx, len(items)+len(args[1:])); err != nil {
				return err
			}
			l := rt.SliceToList(items)
			for _, a := range args[1:] {
				l = rt.Cons(a, l)
			}
			return l
		}
	},
	"seq": func(ctx *rt.Context, args []rt.Value) rt.Value {
		items := toSlice(args[0])
		if len(items) == 0 {
			return rt.NilValue
		}
		if err := realizeGuard(ctx, len(items)); err != nil {
			return err
		}
		return rt.SliceToList(items)
	},
	"concat": func(ctx *rt.Context, args []rt.Value) rt.Value {
		var out []rt.Value
		for _, a := range args {
			out = append(out, toSlice(a)...)
		}
		if err := realizeGuard(ctx, len(out)); err != nil {
			return err
		}
		return rt.SliceToList(out)
	},
	"map": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) != 2 {
			return builtinErr("map requires a function and a collection")
		}
		fn := args[0]
		items := toSlice(args[1])
		return rt.NewLazySeq(func() rt.Value {
			if err := realizeGuard(ctx, len(items)); err != nil {
				return err
			}
			out := make([]rt.Value, 0, len(items))
			for _, it := range items {
				r := Apply(ctx, fn, []rt.Value{it}, 0, 0, "")
				if rt.IsError(r) {
					return r
				}
				out = append(out, r)
			}
			return rt.SliceToList(out)
		})
	},
	"gensym": func(ctx *rt.Context, args []rt.Value) rt.Value {
		prefix := ""
		if len(args) == 1 {
			if s, ok := args[0].(*rt.Str); ok {
				prefix = s.Val
			}
		}
		return &rt.Symbol{Name: gensym.New(prefix)}
	},
	"atom": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) != 1 {
			return builtinErr("atom requires an initial value")
		}
		return &rt.Atom{Val: args[0]}
	},
	"deref": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) != 1 {
			return builtinErr("deref requires one argument")
		}
		return derefValue(ctx, args[0])
	},
	"current-context": func(ctx *rt.Context, args []rt.Value) rt.Value {
		// needs-ctx (§4.E): args[0] is the caller's ctx, prepended by
		// applyFn — this builtin takes no Lisp-visible arguments of its own.
		return args[0]
	},
	"reset!": func(ctx *rt.Context, args []rt.Value) rt.Value {
		a, ok := args[0].(*rt.Atom)
		if !ok {
			return builtinErr("reset! requires an atom")
		}
		a.Val = args[1]
		return a.Val
	},
	"swap!": func(ctx *rt.Context, args []rt.Value) rt.Value {
		a, ok := args[0].(*rt.Atom)
		if !ok {
			return builtinErr("swap! requires an atom")
		}
		fn := args[1]
		callArgs := append([]rt.Value{a.Val}, args[2:]...)
		r := Apply(ctx, fn, callArgs, 0, 0, "")
		if rt.IsError(r) {
			return r
		}
		a.Val = r
		return r
	},
	"ex-info": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if len(args) < 2 {
			return builtinErr("ex-info requires a message and a data map")
		}
		msg, ok := args[0].(*rt.Str)
		if !ok {
			return builtinErr("ex-info message must be a string")
		}
		data := args[1]
		m := rt.EmptyMap.
			Assoc(&rt.Keyword{Name: "ex-info"}, rt.True).
			Assoc(&rt.Keyword{Name: "message"}, msg).
			Assoc(&rt.Keyword{Name: "data"}, data)
		if len(args) >= 3 {
			m = m.Assoc(&rt.Keyword{Name: "cause"}, args[2])
		}
		return m
	},
	"ex-message": func(ctx *rt.Context, args []rt.Value) rt.Value {
		switch v := args[0].(type) {
		case *rt.Map:
			if msg, ok := v.Get(&rt.Keyword{Name: "message"}); ok {
				return msg
			}
			return &rt.Str{Val: v.String()}
		case *rt.Err:
			return &rt.Str{Val: v.Message}
		default:
			return &rt.Str{Val: v.String()}
		}
	},
	"ex-data": func(ctx *rt.Context, args []rt.Value) rt.Value {
		if m, ok := args[0].(*rt.Map); ok {
			if data, ok := m.Get(&rt.Keyword{Name: "data"}); ok {
				return data
			}
		}
		return rt.NilValue
	},
	"ex-cause": func(ctx *rt.Context, args []rt.Value) rt.Value {
		switch v := args[0].(type) {
		case *rt.Map:
			if cause, ok := v.Get(&rt.Keyword{Name: "cause"}); ok {
				return cause
			}
		case *rt.Err:
			if v.Cause != nil {
				return rt.RaisedValue(v.Cause)
			}
		}
		return rt.NilValue
	},
}

// realizeGuard implements the §SPEC_FULL `realize-max` size guard: any
// builtin that forces a lazy sequence and hands back a realized
// collection checks the result here first, so a `(map f (range))`-style
// program aborts instead of exhausting memory. 0 means unlimited.
func realizeGuard(ctx *rt.Context, n int) rt.Value {
	if ctx.RealizeMax > 0 && n > ctx.RealizeMax {
		return builtinErr("realized collection of %s elements exceeds realize-max of %s",
			humanize.Comma(int64(n)), humanize.Comma(int64(ctx.RealizeMax)))
	}
	return nil
}

func isExInfo(v rt.Value) bool {
	m, ok := v.(*rt.Map)
	if !ok {
		return false
	}
	flag, ok := m.Get(&rt.Keyword{Name: "ex-info"})
	return ok && rt.Truthy(flag)
}

func toSlice(v rt.Value) []rt.Value {
	switch vv := v.(type) {
	case *rt.Nil:
		return nil
	case *rt.List:
		return rt.ListToSlice(vv)
	case *rt.Vector:
		return vv.Items
	case *rt.Set:
		return vv.Items
	case *rt.LazySeq:
		return toSlice(vv.Force())
	case *rt.Map:
		out := make([]rt.Value, len(vv.Keys))
		for i := range vv.Keys {
			out[i] = &rt.Vector{Items: []rt.Value{vv.Keys[i], vv.Vals[i]}}
		}
		return out
	default:
		return []rt.Value{v}
	}
}

func negate(v rt.Value) rt.Value {
	switch n := v.(type) {
	case *rt.Int:
		return &rt.Int{Val: -n.Val}
	case *rt.Float:
		return &rt.Float{Val: -n.Val}
	default:
		return builtinErr("- requires a number")
	}
}

func arith(args []rt.Value, identity float64, op func(a, b float64) float64) rt.Value {
	acc := identity
	allInt := true
	for _, a := range args {
		switch n := a.(type) {
		case *rt.Int:
			acc = op(acc, float64(n.Val))
		case *rt.Float:
			acc = op(acc, n.Val)
			allInt = false
		default:
			return builtinErr("expected a number, got %s", a.String())
		}
	}
	if allInt {
		return &rt.Int{Val: int64(acc)}
	}
	return &rt.Float{Val: acc}
}

func arithFrom(first rt.Value, rest []rt.Value, op func(a, b float64) float64) rt.Value {
	acc, allInt := numOf(first)
	for _, a := range rest {
		n, isInt := numOf(a)
		acc = op(acc, n)
		allInt = allInt && isInt
	}
	if allInt {
		return &rt.Int{Val: int64(acc)}
	}
	return &rt.Float{Val: acc}
}

func numOf(v rt.Value) (float64, bool) {
	switch n := v.(type) {
	case *rt.Int:
		return float64(n.Val), true
	case *rt.Float:
		return n.Val, false
	}
	return 0, true
}

func cmpChain(args []rt.Value, op func(a, b float64) bool, useEqual bool) rt.Value {
	if len(args) < 2 {
		return rt.True
	}
	for i := 0; i+1 < len(args); i++ {
		if useEqual {
			if !rt.Equal(args[i], args[i+1]) {
				return rt.False
			}
			continue
		}
		a, _ := numOf(args[i])
		b, _ := numOf(args[i+1])
		if !op(a, b) {
			return rt.False
		}
	}
	return rt.True
}
