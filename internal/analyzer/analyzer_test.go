package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlang/corvid/internal/analyzer"
	"github.com/corvidlang/corvid/internal/reader"
	"github.com/corvidlang/corvid/internal/rt"
)

func readOne(t *testing.T, ctx *rt.Context, src string) rt.Value {
	t.Helper()
	form, rerr := reader.ReadOne(ctx, src, "<test>")
	require.Nil(t, rerr, "reader error: %v", rerr)
	return form
}

func TestAnalyzeCallTagsOpCall(t *testing.T) {
	ctx := rt.NewContext()
	form := readOne(t, ctx, `(+ 1 2)`)
	analyzed := analyzer.Analyze(ctx, form)
	nm := ctx.Meta.Get(analyzed)
	require.NotNil(t, nm)
	assert.Equal(t, rt.OpCall, nm.Op)
	require.Len(t, nm.Args, 2)
}

func TestAnalyzeSymbolResolvesLexicalVsVar(t *testing.T) {
	ctx := rt.NewContext()
	form := readOne(t, ctx, `(let [a 1] a)`)
	analyzed := analyzer.Analyze(ctx, form)
	nm := ctx.Meta.Get(analyzed)
	require.NotNil(t, nm)
	doNM := ctx.Meta.Get(nm.LetBody)
	require.NotNil(t, doNM)
	require.Len(t, doNM.Args, 1)
	bodyNM := ctx.Meta.Get(doNM.Args[0])
	require.NotNil(t, bodyNM)
	assert.Equal(t, rt.OpResolveSym, bodyNM.Op, "a let-bound name must resolve lexically, not as a var")

	ctx.Env.EnsureNamespace("user").Intern("already-defined")
	topLevel := readOne(t, ctx, `already-defined`)
	analyzedTop := analyzer.Analyze(ctx, topLevel)
	topNM := ctx.Meta.Get(analyzedTop)
	require.NotNil(t, topNM)
	assert.Equal(t, rt.OpVarValue, topNM.Op, "a symbol already bound to a var must resolve as a namespace var reference")
}

func TestAnalyzeFnParamsAndVariadic(t *testing.T) {
	ctx := rt.NewContext()
	form := readOne(t, ctx, `(fn [a b & rest] (conj rest a b))`)
	analyzed := analyzer.Analyze(ctx, form)
	nm := ctx.Meta.Get(analyzed)
	require.NotNil(t, nm)
	assert.Equal(t, rt.OpFn, nm.Op)
	require.Len(t, nm.Params, 2)
	require.NotNil(t, nm.Variadic)
	assert.Equal(t, "rest", nm.Variadic.Name.Name)
}

func TestAnalyzeCaseBuildsEntryPairs(t *testing.T) {
	ctx := rt.NewContext()
	form := readOne(t, ctx, `(case x 1 "one" 2 "two" "other")`)
	analyzed := analyzer.Analyze(ctx, form)
	nm := ctx.Meta.Get(analyzed)
	require.NotNil(t, nm)
	require.Len(t, nm.CaseMap, 2)
	assert.True(t, nm.HasDefault)
}

func TestAnalyzeDotRecordsMemberName(t *testing.T) {
	ctx := rt.NewContext()
	form := readOne(t, ctx, `(. "hi" length)`)
	analyzed := analyzer.Analyze(ctx, form)
	nm := ctx.Meta.Get(analyzed)
	require.NotNil(t, nm)
	assert.Equal(t, "length", nm.MemberName)
}

func TestAnalyzeMacroexpandingDesugarsFor(t *testing.T) {
	ctx := rt.NewContext()
	form := readOne(t, ctx, `(for [x xs] (* x x))`)
	expanded := analyzer.AnalyzeMacroexpanding(ctx, form)
	l, ok := expanded.(*rt.List)
	require.True(t, ok)
	head, ok := l.Head.(*rt.Symbol)
	require.True(t, ok)
	assert.Equal(t, "map", head.Name)
}
