package rt

// Frame is one link of the lexical bindings chain. Extending a Frame never
// mutates it, which is what gives Context its functional-update invariant
// (§3 invariant 2): a callee that walks into a `let` or a function body
// gets a new Frame; the caller's Context keeps pointing at the old one.
type Frame struct {
	parent *Frame
	sym    string
	val    Value
}

// Get walks outward from f looking for sym.
func (f *Frame) Get(sym string) (Value, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if cur.sym == sym {
			return cur.val, true
		}
	}
	return nil, false
}

// Extend returns a new innermost frame binding sym to val.
func (f *Frame) Extend(sym string, val Value) *Frame {
	return &Frame{parent: f, sym: sym, val: val}
}

// ClassPolicy is the §4.I allow-list: either "allow everything" or a set of
// permitted class names.
type ClassPolicy struct {
	AllowAll bool
	Allowed  map[string]bool
}

// NewClassPolicy builds a policy permitting exactly the given class names.
func NewClassPolicy(names ...string) *ClassPolicy {
	cp := &ClassPolicy{Allowed: map[string]bool{}}
	for _, n := range names {
		cp.Allowed[n] = true
	}
	return cp
}

// AllowAllClasses is the sentinel "allow everything" policy.
func AllowAllClasses() *ClassPolicy { return &ClassPolicy{AllowAll: true} }

// Permits reports whether class is allowed for host interop dispatch.
func (cp *ClassPolicy) Permits(class string) bool {
	if cp == nil {
		return false
	}
	if cp.AllowAll {
		return true
	}
	return cp.Allowed[class]
}

// LoadRequest/LoadResult are the §4.J / §6 `load-fn` contract.
type LoadRequest struct{ Namespace string }
type LoadResult struct {
	File   string
	Source string
}

// LoadFn resolves a library name to its source, or reports it has nothing
// for that name.
type LoadFn func(LoadRequest) (*LoadResult, bool)

// CallFrame records one call-site location for stack-trace enrichment
// (§4.G "the raised error is re-raised with the call node's source
// location attached").
type CallFrame struct {
	Name string
	File string
	Line int
	Col  int
}

// Context is the per-evaluation bundle from §3: a lexical frame plus a
// handle to everything shared across the whole evaluation.
type Context struct {
	Bindings *Frame

	Env          *GlobalEnv
	CurrentNS    *Var // dynamic var holding the current namespace's name (a Symbol)
	CurrentFile  *Var // dynamic var holding the file path being loaded (§4.J), a Str
	Classes      *ClassPolicy
	LoadFn       LoadFn
	RealizeMax   int // 0 means unlimited
	DryRun       bool
	InTry        bool
	Meta         *MetaTable
	BindingStack *DynamicBindingStack
	CallStack    []CallFrame
	Out          interface{} // io.Writer, typed loosely to avoid importing io here
}

// NewContext builds a fresh top-level Context: empty bindings, a fresh
// namespace store seeded with `user`, a class policy that permits nothing,
// no realize-max limit and dry-run off.
func NewContext() *Context {
	env := NewGlobalEnv()
	userNS := env.EnsureNamespace("user")
	currentNS := NewVar("", "*ns*")
	currentNS.BindRoot(&Symbol{Name: "user"})
	currentFile := NewVar("", "*file*")
	currentFile.BindRoot(&Str{Val: ""})
	_ = userNS
	return &Context{
		Env:          env,
		CurrentNS:    currentNS,
		CurrentFile:  currentFile,
		Classes:      NewClassPolicy(),
		Meta:         NewMetaTable(),
		BindingStack: NewDynamicBindingStack(),
	}
}

// WithBinding returns a new Context with sym bound to val in its lexical
// frame; the receiver is left untouched (§3 invariant 2).
func (c *Context) WithBinding(sym string, val Value) *Context {
	nc := *c
	nc.Bindings = c.Bindings.Extend(sym, val)
	return &nc
}

// WithBindings extends over several symbol/value pairs in order, each one
// visible to the next.
func (c *Context) WithBindings(pairs [][2]interface{}) *Context {
	cur := c
	for _, p := range pairs {
		cur = cur.WithBinding(p[0].(string), p[1].(Value))
	}
	return cur
}

// CurrentNamespaceName reads the current namespace name out of *ns*.
func (c *Context) CurrentNamespaceName() string {
	v := c.CurrentNS.Deref(c.BindingStack)
	if sym, ok := v.(*Symbol); ok {
		return sym.Name
	}
	return "user"
}

// SetCurrentNamespace switches *ns* to name, creating the namespace if new
// (§4.F `in-ns`).
func (c *Context) SetCurrentNamespace(name string) {
	c.Env.EnsureNamespace(name)
	c.CurrentNS.BindRoot(&Symbol{Name: name})
}

// PushCall records a call-site frame for stack-trace enrichment.
func (c *Context) PushCall(name, file string, line, col int) *Context {
	nc := *c
	nc.CallStack = append(append([]CallFrame{}, c.CallStack...), CallFrame{Name: name, File: file, Line: line, Col: col})
	return &nc
}
