package analyzer

import "github.com/corvidlang/corvid/internal/rt"

// tryExpandFor desugars `(for [x xs] body)` into `(map (fn [x] body) xs)`
// before ordinary analysis ever sees it, per §4.H's macroexpanding-mode
// carve-out for the for comprehension operator. Only a single binding pair
// is supported; nested/filtered comprehensions are left to user macros
// built on top of this one, same as `map`/`filter` composition in Lisp.
func tryExpandFor(form rt.Value) (rt.Value, bool) {
	l, ok := form.(*rt.List)
	if !ok || l == nil {
		return nil, false
	}
	sym, ok := l.Head.(*rt.Symbol)
	if !ok || sym.Ns != "" || sym.Name != "for" {
		return nil, false
	}
	rest := rt.ListToSlice(l.Tail)
	if len(rest) < 2 {
		return nil, false
	}
	bindVec, ok := rest[0].(*rt.Vector)
	if !ok || len(bindVec.Items) != 2 {
		return nil, false
	}
	bindSym, ok := bindVec.Items[0].(*rt.Symbol)
	if !ok {
		return nil, false
	}
	seqExpr := bindVec.Items[1]
	body := rest[1]

	fnForm := rt.Cons(
		rt.Value(&rt.Symbol{Name: "fn"}),
		rt.Cons(rt.Value(&rt.Vector{Items: []rt.Value{bindSym}}), rt.Cons(body, nil)),
	)
	mapForm := rt.Cons(
		rt.Value(&rt.Symbol{Name: "map"}),
		rt.Cons(rt.Value(fnForm), rt.Cons(seqExpr, nil)),
	)
	return mapForm, true
}
