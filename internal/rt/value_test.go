package rt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidlang/corvid/internal/rt"
)

func TestEqualCrossesIntAndFloat(t *testing.T) {
	assert.True(t, rt.Equal(&rt.Int{Val: 2}, &rt.Float{Val: 2.0}))
	assert.False(t, rt.Equal(&rt.Int{Val: 2}, &rt.Float{Val: 2.1}))
}

func TestTruthyOnlyNilAndFalseAreFalsy(t *testing.T) {
	assert.False(t, rt.Truthy(rt.NilValue))
	assert.False(t, rt.Truthy(rt.False))
	assert.True(t, rt.Truthy(rt.True))
	assert.True(t, rt.Truthy(&rt.Int{Val: 0}))
}

func TestMapAssocIsPersistent(t *testing.T) {
	m1 := rt.EmptyMap
	m2 := m1.Assoc(&rt.Keyword{Name: "a"}, &rt.Int{Val: 1})
	_, ok := m1.Get(&rt.Keyword{Name: "a"})
	assert.False(t, ok, "the original map must be untouched by Assoc")
	v, ok := m2.Get(&rt.Keyword{Name: "a"})
	assert.True(t, ok)
	assert.Equal(t, "1", v.String())
}

func TestVarRedefinitionKeepsIdentity(t *testing.T) {
	ns := rt.NewGlobalEnv().EnsureNamespace("user")
	v1 := ns.Intern("x")
	v1.BindRoot(&rt.Int{Val: 1})
	v2 := ns.Intern("x")
	assert.Same(t, v1, v2, "interning an existing name must return the same *Var")
	assert.Equal(t, "1", v2.Root().String())
}

func TestNamespaceReferVarAliasesSpecificNames(t *testing.T) {
	env := rt.NewGlobalEnv()
	lib := env.EnsureNamespace("lib")
	square := lib.Intern("square")
	square.BindRoot(&rt.Int{Val: 42})
	lib.Intern("hidden")

	user := env.EnsureNamespace("user")
	user.ReferVar("square", square)

	v, ok := user.Lookup("square")
	assert.True(t, ok)
	assert.Same(t, square, v)

	_, ok = user.Lookup("hidden")
	assert.False(t, ok, "ReferVar must not expose names beyond the ones explicitly passed")
}

func TestClassPolicyDefaultDeny(t *testing.T) {
	p := rt.NewClassPolicy()
	assert.False(t, p.Permits("String"))

	allowed := rt.NewClassPolicy("String")
	assert.True(t, allowed.Permits("String"))
	assert.False(t, allowed.Permits("Vector"))

	assert.True(t, rt.AllowAllClasses().Permits("Anything"))
}
