package reader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlang/corvid/internal/reader"
	"github.com/corvidlang/corvid/internal/rt"
)

func TestReadAllMultipleForms(t *testing.T) {
	ctx := rt.NewContext()
	forms, rerr := reader.ReadAll(ctx, `1 2 (+ 1 2)`, "<test>")
	require.Nil(t, rerr)
	require.Len(t, forms, 3)
	assert.Equal(t, "1", forms[0].String())
	assert.Equal(t, "2", forms[1].String())
	assert.Equal(t, "(+ 1 2)", forms[2].String())
}

func TestReadOneCollections(t *testing.T) {
	ctx := rt.NewContext()
	form, rerr := reader.ReadOne(ctx, `[1 2 3]`, "<test>")
	require.Nil(t, rerr)
	vec, ok := form.(*rt.Vector)
	require.True(t, ok)
	assert.Len(t, vec.Items, 3)

	form, rerr = reader.ReadOne(ctx, `{:a 1 :b 2}`, "<test>")
	require.Nil(t, rerr)
	_, ok = form.(*rt.Map)
	require.True(t, ok)

	form, rerr = reader.ReadOne(ctx, `#{1 2 3}`, "<test>")
	require.Nil(t, rerr)
	set, ok := form.(*rt.Set)
	require.True(t, ok)
	assert.Len(t, set.Items, 3)
}

func TestReadStringEscapes(t *testing.T) {
	ctx := rt.NewContext()
	form, rerr := reader.ReadOne(ctx, `"a\nb\t\"c\""`, "<test>")
	require.Nil(t, rerr)
	s, ok := form.(*rt.Str)
	require.True(t, ok)
	assert.Equal(t, "a\nb\t\"c\"", s.Val)
}

func TestReadCharLiterals(t *testing.T) {
	ctx := rt.NewContext()
	form, rerr := reader.ReadOne(ctx, `\newline`, "<test>")
	require.Nil(t, rerr)
	c, ok := form.(*rt.Char)
	require.True(t, ok)
	assert.Equal(t, '\n', c.Val)

	form, rerr = reader.ReadOne(ctx, `\a`, "<test>")
	require.Nil(t, rerr)
	c, ok = form.(*rt.Char)
	require.True(t, ok)
	assert.Equal(t, 'a', c.Val)
}

func TestAnonymousFnLiteralDesugars(t *testing.T) {
	ctx := rt.NewContext()
	form, rerr := reader.ReadOne(ctx, `#(+ %1 %2)`, "<test>")
	require.Nil(t, rerr)
	l, ok := form.(*rt.List)
	require.True(t, ok)
	head, ok := l.Head.(*rt.Symbol)
	require.True(t, ok)
	assert.Equal(t, "fn", head.Name)

	params := rt.ListToSlice(l.Tail)[0].(*rt.Vector)
	require.Len(t, params.Items, 2)
	p0 := params.Items[0].(*rt.Symbol)
	p1 := params.Items[1].(*rt.Symbol)
	assert.Equal(t, "%1", p0.Name)
	assert.Equal(t, "%2", p1.Name)
}

func TestQuasiquoteDesugarsToConstructorCalls(t *testing.T) {
	ctx := rt.NewContext()
	form, rerr := reader.ReadOne(ctx, "`(a ~b ~@c)", "<test>")
	require.Nil(t, rerr)
	l, ok := form.(*rt.List)
	require.True(t, ok)
	head, ok := l.Head.(*rt.Symbol)
	require.True(t, ok)
	assert.Equal(t, "concat", head.Name, "a quasiquoted list with an unquote-splice must desugar into a concat call, not quoted data")
}

func TestQuasiquoteVectorDesugarsToVecCall(t *testing.T) {
	ctx := rt.NewContext()
	form, rerr := reader.ReadOne(ctx, "`[~a]", "<test>")
	require.Nil(t, rerr)
	l, ok := form.(*rt.List)
	require.True(t, ok)
	head, ok := l.Head.(*rt.Symbol)
	require.True(t, ok)
	assert.Equal(t, "vec", head.Name)
}

func TestReaderAttachesLineColumnMetadata(t *testing.T) {
	ctx := rt.NewContext()
	form, rerr := reader.ReadOne(ctx, "\n\n(+ 1 2)", "myfile.cv")
	require.Nil(t, rerr)
	nm := ctx.Meta.Get(form)
	require.NotNil(t, nm)
	assert.Equal(t, 3, nm.Line)
	assert.Equal(t, "myfile.cv", nm.File)
}
