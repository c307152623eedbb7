// Package rt holds the runtime value model shared by the reader, analyzer
// and interpreter: tagged values, per-node metadata, lexical environments,
// namespaces and vars. It is the load-bearing package of the module — see
// DESIGN.md for how each piece is grounded in the teacher repo.
package rt

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the tagged sum described in spec §3. Every concrete type is a
// pointer so distinct occurrences of an otherwise-equal literal (two `:foo`
// keywords, two `1`s) have distinct identities — metadata is attached by
// identity via MetaTable, not by value.
type Value interface {
	String() string
}

// Nil is the single nil value.
type Nil struct{}

func (*Nil) String() string { return "nil" }

// NilValue is the canonical nil instance; reuse it instead of allocating.
var NilValue = &Nil{}

// Bool is a boolean.
type Bool struct{ Val bool }

func (b *Bool) String() string {
	if b.Val {
		return "true"
	}
	return "false"
}

var (
	True  = &Bool{Val: true}
	False = &Bool{Val: false}
)

// BoolOf returns the canonical True/False for a native bool.
func BoolOf(v bool) *Bool {
	if v {
		return True
	}
	return False
}

// Int is an integer value.
type Int struct{ Val int64 }

func (i *Int) String() string { return strconv.FormatInt(i.Val, 10) }

// Float is a floating-point value.
type Float struct{ Val float64 }

func (f *Float) String() string { return strconv.FormatFloat(f.Val, 'g', -1, 64) }

// Char is a single character.
type Char struct{ Val rune }

func (c *Char) String() string { return string(c.Val) }

// Str is a host string.
type Str struct{ Val string }

func (s *Str) String() string { return s.Val }

// Symbol is a namespace-qualified or bare identifier.
type Symbol struct {
	Ns   string // empty if unqualified
	Name string
}

func (s *Symbol) String() string {
	if s.Ns != "" {
		return s.Ns + "/" + s.Name
	}
	return s.Name
}

// NewSymbol splits "ns/name" into a qualified Symbol; a bare name has no ns.
func NewSymbol(full string) *Symbol {
	if idx := strings.IndexByte(full, '/'); idx > 0 && idx < len(full)-1 {
		return &Symbol{Ns: full[:idx], Name: full[idx+1:]}
	}
	return &Symbol{Name: full}
}

// Keyword is a self-evaluating interned-by-value identifier, `:name` or
// `:ns/name`.
type Keyword struct {
	Ns   string
	Name string
}

func (k *Keyword) String() string {
	if k.Ns != "" {
		return ":" + k.Ns + "/" + k.Name
	}
	return ":" + k.Name
}

// List is a singly-linked, finite list. A nil *List is the empty list.
type List struct {
	Head Value
	Tail *List
}

func (l *List) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for cur, first := l, true; cur != nil; cur, first = cur.Tail, false {
		if !first {
			b.WriteByte(' ')
		}
		b.WriteString(cur.Head.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Cons prepends a value to a list, leaving the original untouched.
func Cons(head Value, tail *List) *List { return &List{Head: head, Tail: tail} }

// ListLen returns the number of elements in l.
func ListLen(l *List) int {
	n := 0
	for ; l != nil; l = l.Tail {
		n++
	}
	return n
}

// ListToSlice flattens a list into a slice in order.
func ListToSlice(l *List) []Value {
	out := make([]Value, 0, ListLen(l))
	for ; l != nil; l = l.Tail {
		out = append(out, l.Head)
	}
	return out
}

// SliceToList builds a list from a slice, preserving order.
func SliceToList(vs []Value) *List {
	var l *List
	for i := len(vs) - 1; i >= 0; i-- {
		l = Cons(vs[i], l)
	}
	return l
}

// Vector is an indexed sequence.
type Vector struct{ Items []Value }

func (v *Vector) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, it := range v.Items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(it.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Set is an unordered collection of unique values (by Equal).
type Set struct{ Items []Value }

func (s *Set) String() string {
	var b strings.Builder
	b.WriteString("#{")
	for i, it := range s.Items {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(it.String())
	}
	b.WriteByte('}')
	return b.String()
}

// Contains reports whether s already holds a value equal to v.
func (s *Set) Contains(v Value) bool {
	for _, it := range s.Items {
		if Equal(it, v) {
			return true
		}
	}
	return false
}

// Conj returns a new set with v added (or s unchanged if already present).
func (s *Set) Conj(v Value) *Set {
	if s.Contains(v) {
		return s
	}
	items := make([]Value, len(s.Items), len(s.Items)+1)
	copy(items, s.Items)
	items = append(items, v)
	return &Set{Items: items}
}

// Map is an immutable key/value collection; equality and lookup are by
// structural value equality, not identity, so keys may be any Value kind.
type Map struct {
	Keys []Value
	Vals []Value
}

func (m *Map) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i := range m.Keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(m.Keys[i].String())
		b.WriteByte(' ')
		b.WriteString(m.Vals[i].String())
	}
	b.WriteByte('}')
	return b.String()
}

// Get looks up a key by structural equality.
func (m *Map) Get(key Value) (Value, bool) {
	for i, k := range m.Keys {
		if Equal(k, key) {
			return m.Vals[i], true
		}
	}
	return nil, false
}

// Assoc returns a new map with key bound to val, overwriting an existing
// entry for an equal key (last writer wins, per spec §4.E map-literal rule).
func (m *Map) Assoc(key, val Value) *Map {
	for i, k := range m.Keys {
		if Equal(k, key) {
			keys := append(append([]Value{}, m.Keys...))
			vals := append([]Value{}, m.Vals...)
			vals[i] = val
			return &Map{Keys: keys, Vals: vals}
		}
	}
	keys := append(append([]Value{}, m.Keys...), key)
	vals := append(append([]Value{}, m.Vals...), val)
	return &Map{Keys: keys, Vals: vals}
}

// EmptyMap is the canonical empty map; use Assoc to build on it.
var EmptyMap = &Map{}

// LazySeq is a memoized thunk realized at most once (§3, §9).
type LazySeq struct {
	thunk    func() Value
	realized bool
	val      Value
}

// NewLazySeq wraps a deferred computation.
func NewLazySeq(thunk func() Value) *LazySeq { return &LazySeq{thunk: thunk} }

func (l *LazySeq) String() string {
	if l.realized {
		return l.val.String()
	}
	return "<lazy-seq>"
}

// Force realizes the thunk exactly once and memoizes the result.
func (l *LazySeq) Force() Value {
	if !l.realized {
		l.val = l.thunk()
		l.realized = true
		l.thunk = nil
	}
	return l.val
}

// Param is one formal parameter of a Fn.
type Param struct {
	Name *Symbol
	Tag  Value // optional :tag metadata carried from the binding form
}

// Fn is a user-defined closure or a host-callable function.
type Fn struct {
	Name       string
	Params     []Param
	Variadic   *Param // nil if the function is fixed-arity
	Body       Value  // analyzed body, evaluated as an implicit `do`
	Env        *Context
	IsMacro    bool
	GoFn       func(ctx *Context, args []Value) Value // set for host-callable builtins
	NeedsCtx   bool                                    // `needs-ctx` wrapper: ctx is passed as args[0] at call time
	Line, Col  int
}

func (f *Fn) String() string {
	if f.Name != "" {
		return fmt.Sprintf("#<fn %s>", f.Name)
	}
	return "#<fn>"
}

// Recur is the internal marker produced by `recur`: an ordered sequence of
// argument values destined for the enclosing callable's trampoline.
type Recur struct{ Args []Value }

func (r *Recur) String() string { return "#<recur>" }

// HostObject wraps an opaque Go value reachable through the interop gateway.
type HostObject struct {
	Go    interface{}
	Class string // resolved class name used for the allow-list check
}

func (h *HostObject) String() string { return fmt.Sprintf("#<host %s>", h.Class) }

// Atom is a minimal uncoordinated mutable reference (§SPEC_FULL supplement).
type Atom struct{ Val Value }

func (a *Atom) String() string { return fmt.Sprintf("#<atom %s>", a.Val.String()) }

// unboundSentinel marks a Var with no root value.
type unboundSentinel struct{}

func (*unboundSentinel) String() string { return "#<unbound>" }

// Unbound is the sentinel root value for a declared-but-uninitialized var.
var Unbound Value = &unboundSentinel{}

// IsUnbound reports whether v is the Unbound sentinel.
func IsUnbound(v Value) bool { _, ok := v.(*unboundSentinel); return ok }

// Truthy implements spec §4.F: everything is truthy except nil and false.
func Truthy(v Value) bool {
	switch vv := v.(type) {
	case *Nil:
		return false
	case *Bool:
		return vv.Val
	default:
		return true
	}
}

// Equal implements host-equality as used by `case`, map keys and set
// membership: structural comparison, metadata ignored.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Bool:
		bv, ok := b.(*Bool)
		return ok && av.Val == bv.Val
	case *Int:
		switch bv := b.(type) {
		case *Int:
			return av.Val == bv.Val
		case *Float:
			return float64(av.Val) == bv.Val
		}
		return false
	case *Float:
		switch bv := b.(type) {
		case *Float:
			return av.Val == bv.Val
		case *Int:
			return av.Val == float64(bv.Val)
		}
		return false
	case *Char:
		bv, ok := b.(*Char)
		return ok && av.Val == bv.Val
	case *Str:
		bv, ok := b.(*Str)
		return ok && av.Val == bv.Val
	case *Symbol:
		bv, ok := b.(*Symbol)
		return ok && av.Ns == bv.Ns && av.Name == bv.Name
	case *Keyword:
		bv, ok := b.(*Keyword)
		return ok && av.Ns == bv.Ns && av.Name == bv.Name
	case *List:
		bv, ok := b.(*List)
		if !ok {
			return false
		}
		for av != nil && bv != nil {
			if !Equal(av.Head, bv.Head) {
				return false
			}
			av, bv = av.Tail, bv.Tail
		}
		return av == nil && bv == nil
	case *Vector:
		bv, ok := b.(*Vector)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *Set:
		bv, ok := b.(*Set)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for _, it := range av.Items {
			if !bv.Contains(it) {
				return false
			}
		}
		return true
	case *Map:
		bv, ok := b.(*Map)
		if !ok || len(av.Keys) != len(bv.Keys) {
			return false
		}
		for i, k := range av.Keys {
			bval, ok := bv.Get(k)
			if !ok || !Equal(av.Vals[i], bval) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Size returns the realized size of a collection-like value. Scalars and
// callables report 0 (unbounded types). The realize-max guard does not call
// it; the builtins pass it their own element counts.
func Size(v Value) int {
	switch vv := v.(type) {
	case *List:
		return ListLen(vv)
	case *Vector:
		return len(vv.Items)
	case *Set:
		return len(vv.Items)
	case *Map:
		return len(vv.Keys)
	default:
		return 0
	}
}
