package interpreter

import "github.com/corvidlang/corvid/internal/rt"

// Apply calls fn with args from call-site (line, col, file), used by
// builtins that invoke a user function (e.g. `map`, `swap!`) and needing
// the call's own location attached to any resulting error.
func Apply(ctx *rt.Context, fn rt.Value, args []rt.Value, line, col int, file string) rt.Value {
	return applyFn(ctx, fn, args, line, col, file)
}

// applyFn is the §4.G call path: arity check, parameter binding, then a
// `for` trampoline that loops on a returned *rt.Recur instead of recursing
// in Go, giving `recur` constant stack use regardless of iteration count.
func applyFn(ctx *rt.Context, fn rt.Value, args []rt.Value, line, col int, file string) rt.Value {
	fnVal, ok := fn.(*rt.Fn)
	if !ok {
		if err, ok := rt.AsError(fn); ok {
			return err
		}
		return rt.WrapAtCallSite(rt.NewErr("%s is not callable", fn.String()), line, col, file)
	}

	// needs-ctx (§4.E): the function is invoked with ctx, wrapped as a host
	// value, prepended to its argument list.
	if fnVal.NeedsCtx {
		args = append([]rt.Value{&rt.HostObject{Go: ctx, Class: "Context"}}, args...)
	}

	if fnVal.GoFn != nil {
		result := fnVal.GoFn(ctx, args)
		if err, ok := rt.AsError(result); ok {
			return rt.WrapAtCallSite(err, line, col, file)
		}
		return result
	}

	curArgs := args
	for {
		if err := checkArity(fnVal, len(curArgs)); err != nil {
			return rt.WrapAtCallSite(err, line, col, file)
		}
		callCtx := fnVal.Env
		for i, p := range fnVal.Params {
			callCtx = callCtx.WithBinding(p.Name.Name, curArgs[i])
		}
		if fnVal.Variadic != nil {
			rest := curArgs[len(fnVal.Params):]
			callCtx = callCtx.WithBinding(fnVal.Variadic.Name.Name, rt.SliceToList(rest))
		}
		name := fnVal.Name
		if name == "" {
			name = "fn"
		}
		callCtx = callCtx.PushCall(name, file, line, col)

		result := Interpret(callCtx, fnVal.Body)
		if recur, ok := result.(*rt.Recur); ok {
			curArgs = recur.Args
			continue
		}
		if err, ok := rt.AsError(result); ok {
			return rt.WrapAtCallSite(err, line, col, file)
		}
		return result
	}
}

func checkArity(fn *rt.Fn, n int) *rt.Err {
	fixed := len(fn.Params)
	if fn.Variadic == nil && n != fixed {
		return rt.NewErr("Wrong number of args (%d) passed to: %s", n, fn.String())
	}
	if fn.Variadic != nil && n < fixed {
		return rt.NewErr("Wrong number of args (%d) passed to: %s", n, fn.String())
	}
	return nil
}
