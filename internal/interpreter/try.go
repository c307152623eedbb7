package interpreter

import "github.com/corvidlang/corvid/internal/rt"

// evalTry implements §4.F try/catch/finally: the finally clause, if
// present, always runs via defer — on the normal path, on a caught
// exception, and on an exception that finds no matching catch.
func evalTry(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if nm.Finally != nil {
		defer func() { Interpret(ctx, nm.Finally) }()
	}
	var body rt.Value = rt.NilValue
	if nm.TryBody != nil {
		body = Interpret(withInTry(ctx), nm.TryBody)
	}
	err, ok := rt.AsError(body)
	if !ok {
		return body
	}
	for _, c := range nm.Catches {
		if matchesCatch(err, c.ClassName) {
			bound := ctx
			if c.Binding != nil {
				bound = ctx.WithBinding(c.Binding.Name, rt.RaisedValue(err))
			}
			if c.Body == nil {
				return rt.NilValue
			}
			return Interpret(bound, c.Body)
		}
	}
	return body
}

// withInTry returns a Context derived from ctx with InTry set, so nested
// evaluation (e.g. `throw`) can tell it is running inside a try body.
func withInTry(ctx *rt.Context) *rt.Context {
	nc := *ctx
	nc.InTry = true
	return &nc
}

// matchesCatch decides whether a raised error is caught by a clause naming
// className. "Exception"/"Throwable" are catch-alls; "ExceptionInfo"
// matches anything raised via ex-info; anything else is compared against
// the resolved class name of the raised payload.
func matchesCatch(err *rt.Err, className string) bool {
	if className == "" || className == "Exception" || className == "Throwable" {
		return true
	}
	payload := rt.RaisedValue(err)
	if className == "ExceptionInfo" {
		return isExInfo(payload)
	}
	return resolveClassName(payload) == className
}
