package interpreter

import (
	"github.com/corvidlang/corvid/internal/analyzer"
	"github.com/corvidlang/corvid/internal/reader"
	"github.com/corvidlang/corvid/internal/rt"
)

type libSpec struct {
	name    string
	alias   string
	refers  []string
	reload  bool
}

func parseLibSpec(form rt.Value) (*libSpec, *rt.Err) {
	switch f := form.(type) {
	case *rt.Symbol:
		return &libSpec{name: f.Name}, nil
	case *rt.List:
		parts := rt.ListToSlice(f)
		if len(parts) == 0 {
			return nil, rt.NewErr("empty require libspec")
		}
		head, ok := parts[0].(*rt.Symbol)
		if !ok {
			return nil, rt.NewErr("require libspec must start with a symbol")
		}
		spec := &libSpec{name: head.Name}
		i := 1
		for i < len(parts) {
			kw, ok := parts[i].(*rt.Keyword)
			if !ok {
				return nil, rt.NewErr("malformed require option near %s", parts[i].String())
			}
			switch kw.Name {
			case "reload":
				spec.reload = true
				i++
			case "as":
				if i+1 >= len(parts) {
					return nil, rt.NewErr(":as requires an alias")
				}
				if aliasSym, ok := parts[i+1].(*rt.Symbol); ok {
					spec.alias = aliasSym.Name
				}
				i += 2
			case "refer":
				if i+1 >= len(parts) {
					return nil, rt.NewErr(":refer requires a vector of symbols")
				}
				if v, ok := parts[i+1].(*rt.Vector); ok {
					for _, it := range v.Items {
						if s, ok := it.(*rt.Symbol); ok {
							spec.refers = append(spec.refers, s.Name)
						}
					}
				}
				i += 2
			default:
				i += 2
			}
		}
		return spec, nil
	default:
		return nil, rt.NewErr("require expects a symbol or a list libspec, got %s", form.String())
	}
}

// evalRequire implements §4.J: each argument must evaluate to a libspec
// (conventionally a quoted symbol or list); a namespace already present is
// not re-loaded unless the libspec carries :reload, which is how
// "no double-eval" is satisfied without a separate load-tracking table.
func evalRequire(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	for _, argForm := range nm.Args {
		raw := Interpret(ctx, argForm)
		if rt.IsError(raw) {
			return raw
		}
		spec, err := parseLibSpec(raw)
		if err != nil {
			return rt.WrapAtCallSite(err, nm.Line, nm.Col, nm.File)
		}
		if errv := loadLib(ctx, spec); errv != nil {
			return rt.WrapAtCallSite(errv, nm.Line, nm.Col, nm.File)
		}
	}
	return rt.NilValue
}

func loadLib(ctx *rt.Context, spec *libSpec) *rt.Err {
	existing := ctx.Env.Namespace(spec.name)
	if existing == nil || spec.reload {
		if ctx.LoadFn == nil {
			return rt.NewErr("no load-fn configured, cannot require %s", spec.name)
		}
		res, ok := ctx.LoadFn(rt.LoadRequest{Namespace: spec.name})
		if !ok {
			return rt.NewErr("Could not locate %s", spec.name)
		}
		ctx.Env.EnsureNamespace(spec.name)
		savedNS := ctx.CurrentNamespaceName()
		ctx.SetCurrentNamespace(spec.name)
		var loadErr *rt.Err
		ctx.BindingStack.WithBindings(map[*rt.Var]rt.Value{ctx.CurrentFile: &rt.Str{Val: res.File}}, func() rt.Value {
			loadErr = loadSource(ctx, res.Source, res.File)
			return rt.NilValue
		})
		ctx.SetCurrentNamespace(savedNS)
		if loadErr != nil {
			ctx.Env.RemoveNamespace(spec.name)
			return loadErr
		}
	}

	curNS := ctx.Env.EnsureNamespace(ctx.CurrentNamespaceName())
	if spec.alias != "" {
		curNS.SetAlias(spec.alias, spec.name)
	}
	if len(spec.refers) > 0 {
		libNS := ctx.Env.Namespace(spec.name)
		if libNS == nil {
			return rt.NewErr("namespace %s not found after load", spec.name)
		}
		for _, name := range spec.refers {
			v, ok := libNS.Lookup(name)
			if !ok {
				return rt.NewErr("%s does not export %s", spec.name, name)
			}
			curNS.ReferVar(name, v)
		}
	}
	return nil
}

// loadSource reads, analyzes and interprets every top-level form of a
// loaded library's source in turn, stopping at the first error.
func loadSource(ctx *rt.Context, source, file string) *rt.Err {
	forms, rerr := reader.ReadAll(ctx, source, file)
	if rerr != nil {
		return rerr
	}
	for _, f := range forms {
		analyzed := analyzer.Analyze(ctx, f)
		result := Interpret(ctx, analyzed)
		if err, ok := rt.AsError(result); ok {
			return err
		}
	}
	return nil
}
