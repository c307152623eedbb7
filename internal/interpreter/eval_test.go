package interpreter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlang/corvid/internal/analyzer"
	"github.com/corvidlang/corvid/internal/interpreter"
	"github.com/corvidlang/corvid/internal/reader"
	"github.com/corvidlang/corvid/internal/rt"
)

func newTestCtx(t *testing.T) *rt.Context {
	t.Helper()
	ctx := rt.NewContext()
	interpreter.Bootstrap(ctx)
	return ctx
}

func evalSrc(t *testing.T, ctx *rt.Context, src string) rt.Value {
	t.Helper()
	forms, rerr := reader.ReadAll(ctx, src, "<test>")
	require.Nil(t, rerr, "reader error: %v", rerr)
	var result rt.Value = rt.NilValue
	for _, f := range forms {
		analyzed := analyzer.Analyze(ctx, f)
		result = interpreter.Interpret(ctx, analyzed)
	}
	return result
}

func TestRecurLoopToThree(t *testing.T) {
	ctx := newTestCtx(t)
	result := evalSrc(t, ctx, `
		(def count-to
		  (fn loop [n acc]
		    (if (= n 3)
		      acc
		      (recur (+ n 1) (conj acc n)))))
		(count-to 0 [])`)
	require.False(t, rt.IsError(result), "%v", result)
	vec, ok := result.(*rt.Vector)
	require.True(t, ok)
	assert.Equal(t, "[0 1 2]", vec.String())
}

func TestLetBindingArithmetic(t *testing.T) {
	ctx := newTestCtx(t)
	result := evalSrc(t, ctx, `(let [a 1 b (+ a 2)] (* a b))`)
	require.False(t, rt.IsError(result), "%v", result)
	assert.Equal(t, "3", result.String())
}

func TestAndOrShortCircuit(t *testing.T) {
	ctx := newTestCtx(t)
	result := evalSrc(t, ctx, `(and true false (/ 1 0))`)
	require.False(t, rt.IsError(result))
	assert.Equal(t, rt.False, result)

	ctx2 := newTestCtx(t)
	result2 := evalSrc(t, ctx2, `(or false 42 (/ 1 0))`)
	require.False(t, rt.IsError(result2))
	assert.Equal(t, "42", result2.String())
}

func TestCaseDispatch(t *testing.T) {
	ctx := newTestCtx(t)
	result := evalSrc(t, ctx, `(case 2 1 "one" 2 "two" "other")`)
	require.False(t, rt.IsError(result))
	assert.Equal(t, "two", result.String())

	resultDefault := evalSrc(t, ctx, `(case 99 1 "one" 2 "two" "other")`)
	assert.Equal(t, "other", resultDefault.String())
}

func TestTryCatchFinallyExInfo(t *testing.T) {
	ctx := newTestCtx(t)
	result := evalSrc(t, ctx, `
		(def log (atom []))
		(try
		  (throw (ex-info "boom" {:code 42}))
		  (catch ExceptionInfo e (ex-message e))
		  (finally (swap! log conj :ran)))`)
	require.False(t, rt.IsError(result), "%v", result)
	assert.Equal(t, "boom", result.String())

	logVal := evalSrc(t, ctx, `@log`)
	assert.Equal(t, "[:ran]", logVal.String())
}

func TestDefRedefinitionPreservesVarIdentity(t *testing.T) {
	ctx := newTestCtx(t)
	evalSrc(t, ctx, `(def x 1)`)
	ns := ctx.Env.EnsureNamespace("user")
	v1, ok := ns.Lookup("x")
	require.True(t, ok)
	evalSrc(t, ctx, `(def x 2)`)
	v2, ok := ns.Lookup("x")
	require.True(t, ok)
	assert.Same(t, v1, v2)
	assert.Equal(t, "2", v1.Root().String())
}

func TestRequireWithLoadFnAliasReferNoDoubleEval(t *testing.T) {
	ctx := newTestCtx(t)
	loadCount := 0
	ctx.LoadFn = func(req rt.LoadRequest) (*rt.LoadResult, bool) {
		if req.Namespace != "mathy" {
			return nil, false
		}
		loadCount++
		return &rt.LoadResult{File: "mathy.cv", Source: `(def square (fn [x] (* x x)))`}, true
	}

	result := evalSrc(t, ctx, `
		(require '(mathy :as m :refer [square]))
		(+ (m/square 2) (square 3))`)
	require.False(t, rt.IsError(result), "%v", result)
	assert.Equal(t, "13", result.String())
	assert.Equal(t, 1, loadCount)

	evalSrc(t, ctx, `(require 'mathy)`)
	assert.Equal(t, 1, loadCount, "requiring an already-loaded namespace must not re-invoke load-fn")

	evalSrc(t, ctx, `(require '(mathy :reload))`)
	assert.Equal(t, 2, loadCount, ":reload must force a reload")
}

func TestDisallowedHostCallExactMessage(t *testing.T) {
	ctx := newTestCtx(t)
	result := evalSrc(t, ctx, `(. "hi" length)`)
	require.True(t, rt.IsError(result))
	err, _ := rt.AsError(result)
	assert.Equal(t, "Method length on String not allowed!", err.Message)
}

func TestRealizeMaxGuardAbortsOversizedCollection(t *testing.T) {
	ctx := newTestCtx(t)
	ctx.RealizeMax = 3
	result := evalSrc(t, ctx, `(vec (list 1 2 3 4 5))`)
	require.True(t, rt.IsError(result))
	err, _ := rt.AsError(result)
	assert.Contains(t, err.Message, "realize-max")

	ok := evalSrc(t, ctx, `(vec (list 1 2 3))`)
	assert.False(t, rt.IsError(ok), "%v", ok)
}

func TestAllowedHostCallSucceeds(t *testing.T) {
	ctx := newTestCtx(t)
	ctx.Classes = rt.NewClassPolicy("String")
	result := evalSrc(t, ctx, `(. "hi" length)`)
	require.False(t, rt.IsError(result), "%v", result)
	assert.Equal(t, "2", result.String())
}

func TestDerefVarAndLazySeq(t *testing.T) {
	ctx := newTestCtx(t)
	result := evalSrc(t, ctx, `
		(def x 5)
		@(var x)`)
	require.False(t, rt.IsError(result), "%v", result)
	assert.Equal(t, "5", result.String())

	forced := evalSrc(t, ctx, `@(lazy-seq (list 1 2 3))`)
	require.False(t, rt.IsError(forced), "%v", forced)
	assert.Equal(t, "(1 2 3)", forced.String())
}

func TestLazySeqDoesNotEvaluateUntilForced(t *testing.T) {
	ctx := newTestCtx(t)
	result := evalSrc(t, ctx, `
		(def touched (atom false))
		(def s (lazy-seq (reset! touched true) (list 1 2)))
		(let [before @touched]
		  (vec s)
		  [before @touched])`)
	require.False(t, rt.IsError(result), "%v", result)
	vec, ok := result.(*rt.Vector)
	require.True(t, ok)
	assert.Equal(t, rt.False, vec.Items[0], "body must not run before the lazy-seq is forced")
	assert.Equal(t, rt.True, vec.Items[1], "body must run once forced")
}

func TestNeedsCtxBuiltinReceivesContextAsFirstArg(t *testing.T) {
	ctx := newTestCtx(t)
	result := evalSrc(t, ctx, `(current-context)`)
	require.False(t, rt.IsError(result), "%v", result)
	host, ok := result.(*rt.HostObject)
	require.True(t, ok, "%v", result)
	assert.Equal(t, "Context", host.Class)
}

func TestDryRunSuppressesConstructionAndInstanceCallsButNotStaticReads(t *testing.T) {
	ctx := newTestCtx(t)
	ctx.Classes = rt.NewClassPolicy("String", "Math")
	ctx.DryRun = true

	call := evalSrc(t, ctx, `(. "hi" length)`)
	require.False(t, rt.IsError(call), "%v", call)
	assert.Equal(t, rt.NilValue, call)

	static := evalSrc(t, ctx, `(Math/max 1 2)`)
	require.False(t, rt.IsError(static), "%v", static)
	assert.Equal(t, rt.NilValue, static)

	field := evalSrc(t, ctx, `Math/PI`)
	require.False(t, rt.IsError(field), "%v", field)
	assert.Equal(t, "3.141592653589793", field.String())
}

func TestMacroexpand1DesugarsForComprehension(t *testing.T) {
	ctx := newTestCtx(t)
	result := evalSrc(t, ctx, `(macroexpand-1 '(for [x xs] (* x x)))`)
	require.False(t, rt.IsError(result), "%v", result)
	l, ok := result.(*rt.List)
	require.True(t, ok, "%v", result)
	sym, ok := l.Head.(*rt.Symbol)
	require.True(t, ok)
	assert.Equal(t, "map", sym.Name)
}

func TestThrowInsideTryMarksErrInTry(t *testing.T) {
	ctx := newTestCtx(t)
	result := evalSrc(t, ctx, `
		(try
		  (throw (ex-info "nope" {}))
		  (catch ExceptionInfo e (ex-message e)))`)
	require.False(t, rt.IsError(result), "%v", result)
	assert.Equal(t, "nope", result.String())

	uncaught := evalSrc(t, ctx, `(try (throw "boom"))`)
	require.True(t, rt.IsError(uncaught))
	err, _ := rt.AsError(uncaught)
	assert.True(t, err.InTry, "error raised inside a try body must carry InTry")
}
