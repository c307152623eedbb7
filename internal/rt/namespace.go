package rt

import "sync"

// ReferSpec records that a namespace has referred another's public vars,
// except the excluded names (§3, §4.F `refer`).
type ReferSpec struct {
	Exclude map[string]bool
}

// Namespace groups a set of vars under a name, plus the aliases and refers
// used to resolve unqualified symbols (§3).
type Namespace struct {
	mu       sync.RWMutex
	Name     string
	Mappings map[string]*Var
	Aliases  map[string]string // alias -> target namespace name
	Refer    map[string]*ReferSpec
}

// NewNamespace creates an empty namespace named name.
func NewNamespace(name string) *Namespace {
	return &Namespace{
		Name:     name,
		Mappings: make(map[string]*Var),
		Aliases:  make(map[string]string),
		Refer:    make(map[string]*ReferSpec),
	}
}

// Intern returns the var named sym, creating it (unbound) if absent. Var
// identity is stable: calling Intern twice for the same name returns the
// same *Var (§3 invariant 3).
func (n *Namespace) Intern(sym string) *Var {
	n.mu.Lock()
	defer n.mu.Unlock()
	if v, ok := n.Mappings[sym]; ok {
		return v
	}
	v := NewVar(n.Name, sym)
	n.Mappings[sym] = v
	return v
}

// ReferVar maps name to an existing var from another namespace by identity
// (§4.J's `:refer [a b]` form), rather than the `refer`-all-except-exclude
// model Namespace.Refer implements for `(refer 'ns)`. A name already
// mapped locally is left untouched.
func (n *Namespace) ReferVar(name string, v *Var) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.Mappings[name]; ok {
		return
	}
	n.Mappings[name] = v
}

// Lookup resolves sym against this namespace's own mappings only (no
// refers, no aliases).
func (n *Namespace) Lookup(sym string) (*Var, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.Mappings[sym]
	return v, ok
}

// AddRefer unions exclude into this namespace's refer-set for targetNs
// (§4.F `refer`'s `:exclude` handling).
func (n *Namespace) AddRefer(targetNs string, exclude []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	rs, ok := n.Refer[targetNs]
	if !ok {
		rs = &ReferSpec{Exclude: map[string]bool{}}
		n.Refer[targetNs] = rs
	}
	for _, s := range exclude {
		rs.Exclude[s] = true
	}
}

// SetAlias records alias as another name for targetNs.
func (n *Namespace) SetAlias(alias, targetNs string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Aliases[alias] = targetNs
}

// ResolveAlias returns the namespace name an alias points to.
func (n *Namespace) ResolveAlias(alias string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	target, ok := n.Aliases[alias]
	return target, ok
}

// referSnapshot copies the refer table so callers can range over it without
// holding the namespace lock (GlobalEnv.Resolve looks up other namespaces
// while iterating).
func (n *Namespace) referSnapshot() map[string]*ReferSpec {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]*ReferSpec, len(n.Refer))
	for k, v := range n.Refer {
		out[k] = v
	}
	return out
}

// GlobalEnv is the shared mutable state behind a Context: the namespace
// store (§3 "env: shared handle to global state"). It is process-wide but,
// per §5, only ever touched from the single interpreter thread.
type GlobalEnv struct {
	mu         sync.RWMutex
	Namespaces map[string]*Namespace
}

// NewGlobalEnv creates an empty namespace store.
func NewGlobalEnv() *GlobalEnv {
	return &GlobalEnv{Namespaces: make(map[string]*Namespace)}
}

// Namespace returns the namespace named name, or nil if it does not exist.
func (g *GlobalEnv) Namespace(name string) *Namespace {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.Namespaces[name]
}

// EnsureNamespace returns the namespace named name, creating it if new
// (used by `in-ns` and by `require`'s initial load).
func (g *GlobalEnv) EnsureNamespace(name string) *Namespace {
	g.mu.Lock()
	defer g.mu.Unlock()
	ns, ok := g.Namespaces[name]
	if !ok {
		ns = NewNamespace(name)
		g.Namespaces[name] = ns
	}
	return ns
}

// RemoveNamespace deletes a namespace outright — used by `require`'s
// rollback on a failed load (§4.J step 3).
func (g *GlobalEnv) RemoveNamespace(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.Namespaces, name)
}

// Resolve looks up sym (possibly alias/ns-qualified) starting from the
// namespace named fromNs: own mappings first, then aliases, then each
// referred namespace not excluding sym (§4.F `resolve`, §4.E `resolve-sym`).
func (g *GlobalEnv) Resolve(fromNs string, sym *Symbol) (*Var, bool) {
	ns := g.Namespace(fromNs)
	if ns == nil {
		return nil, false
	}
	if sym.Ns != "" {
		targetName := sym.Ns
		if aliased, ok := ns.ResolveAlias(sym.Ns); ok {
			targetName = aliased
		}
		target := g.Namespace(targetName)
		if target == nil {
			return nil, false
		}
		return target.Lookup(sym.Name)
	}
	if v, ok := ns.Lookup(sym.Name); ok {
		return v, true
	}
	for targetNs, rs := range ns.referSnapshot() {
		if rs.Exclude[sym.Name] {
			continue
		}
		if target := g.Namespace(targetNs); target != nil {
			if v, ok := target.Lookup(sym.Name); ok {
				return v, true
			}
		}
	}
	return nil, false
}
