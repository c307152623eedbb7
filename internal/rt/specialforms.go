package rt

// SpecialForms is the set of head-symbol names that route through §4.F
// instead of being resolved and called as ordinary values (§4.G step 2).
// Shared between the analyzer (which must not tag these heads as
// resolve-sym/var-value) and the interpreter (which dispatches on them).
var SpecialForms = map[string]bool{
	"do": true, "if": true, "and": true, "or": true, "let": true,
	"def": true, "defmacro": true, "fn": true, "case": true, "try": true,
	"throw": true, "recur": true, "new": true, ".": true, "in-ns": true,
	"set!": true, "refer": true, "resolve": true, "macroexpand-1": true,
	"macroexpand": true, "require": true, "quote": true, "var": true,
	"deref": true, "lazy-seq": true,
}
