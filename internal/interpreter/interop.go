package interpreter

import (
	"fmt"

	"github.com/corvidlang/corvid/internal/rt"
)

// resolveClassName maps a Value to the class name the §4.I allow-list
// checks against: built-in kinds get a fixed name so host-interop denial
// messages read the same for `(.length "hi")` as for a real *rt.HostObject.
func resolveClassName(v rt.Value) string {
	switch vv := v.(type) {
	case *rt.Str:
		return "String"
	case *rt.Int:
		return "Long"
	case *rt.Float:
		return "Double"
	case *rt.Bool:
		return "Boolean"
	case *rt.Char:
		return "Character"
	case *rt.Vector:
		return "Vector"
	case *rt.Map:
		return "Map"
	case *rt.Set:
		return "Set"
	case *rt.List:
		return "List"
	case *rt.HostObject:
		return vv.Class
	default:
		return fmt.Sprintf("%T", v)
	}
}

type hostMethod func(ctx *rt.Context, target rt.Value, args []rt.Value) rt.Value
type hostStatic func(ctx *rt.Context, args []rt.Value) rt.Value
type hostCtor func(ctx *rt.Context, args []rt.Value) rt.Value

var instanceMethods = map[string]map[string]hostMethod{
	"String": {
		"length": func(ctx *rt.Context, target rt.Value, args []rt.Value) rt.Value {
			s := target.(*rt.Str)
			return &rt.Int{Val: int64(len([]rune(s.Val)))}
		},
		"toUpperCase": func(ctx *rt.Context, target rt.Value, args []rt.Value) rt.Value {
			s := target.(*rt.Str)
			out := make([]rune, 0, len(s.Val))
			for _, r := range s.Val {
				if r >= 'a' && r <= 'z' {
					r -= 32
				}
				out = append(out, r)
			}
			return &rt.Str{Val: string(out)}
		},
	},
}

var staticMethods = map[string]map[string]hostStatic{
	"Math": {
		"max": func(ctx *rt.Context, args []rt.Value) rt.Value {
			return numericReduce(args, func(a, b float64) float64 {
				if a > b {
					return a
				}
				return b
			})
		},
		"min": func(ctx *rt.Context, args []rt.Value) rt.Value {
			return numericReduce(args, func(a, b float64) float64 {
				if a < b {
					return a
				}
				return b
			})
		},
	},
}

var staticFields = map[string]map[string]rt.Value{
	"Math": {
		"PI": &rt.Float{Val: 3.141592653589793},
	},
}

var constructors = map[string]hostCtor{}

func numericReduce(args []rt.Value, op func(a, b float64) float64) rt.Value {
	if len(args) == 0 {
		return rt.NewErr("requires at least one argument")
	}
	acc := asFloat(args[0])
	allInt := isInt(args[0])
	for _, a := range args[1:] {
		acc = op(acc, asFloat(a))
		allInt = allInt && isInt(a)
	}
	if allInt {
		return &rt.Int{Val: int64(acc)}
	}
	return &rt.Float{Val: acc}
}

func isInt(v rt.Value) bool { _, ok := v.(*rt.Int); return ok }
func asFloat(v rt.Value) float64 {
	switch n := v.(type) {
	case *rt.Int:
		return float64(n.Val)
	case *rt.Float:
		return n.Val
	}
	return 0
}

func safeHostCall(line, col int, file string, fn func() rt.Value) (result rt.Value) {
	defer func() {
		if r := recover(); r != nil {
			result = rt.WrapAtCallSite(rt.NewErr("host call panicked: %v", r), line, col, file)
		}
	}()
	return fn()
}

func interopStaticRead(ctx *rt.Context, class, member string, nm *rt.NodeMeta) rt.Value {
	if !ctx.Classes.Permits(class) {
		return rt.NewErrAt(nm.Line, nm.Col, "Field %s on %s not allowed!", member, class)
	}
	fields, ok := staticFields[class]
	if !ok {
		return rt.NewErrAt(nm.Line, nm.Col, "Field %s on %s not found", member, class)
	}
	val, ok := fields[member]
	if !ok {
		return rt.NewErrAt(nm.Line, nm.Col, "Field %s on %s not found", member, class)
	}
	return val
}

func interopStaticCall(ctx *rt.Context, class, member string, args []rt.Value, nm *rt.NodeMeta) rt.Value {
	if !ctx.Classes.Permits(class) {
		return rt.NewErrAt(nm.Line, nm.Col, "Method %s on %s not allowed!", member, class)
	}
	methods, ok := staticMethods[class]
	if !ok {
		return rt.NewErrAt(nm.Line, nm.Col, "Method %s on %s not found", member, class)
	}
	fn, ok := methods[member]
	if !ok {
		return rt.NewErrAt(nm.Line, nm.Col, "Method %s on %s not found", member, class)
	}
	if ctx.DryRun {
		return rt.NilValue
	}
	return safeHostCall(nm.Line, nm.Col, nm.File, func() rt.Value { return fn(ctx, args) })
}

func evalNew(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if nm.ClassName == "" {
		return rt.NewErrAt(nm.Line, nm.Col, "new requires a class symbol")
	}
	if !ctx.Classes.Permits(nm.ClassName) {
		return rt.NewErrAt(nm.Line, nm.Col, "Constructor for %s not allowed!", nm.ClassName)
	}
	ctor, ok := constructors[nm.ClassName]
	if !ok {
		return rt.NewErrAt(nm.Line, nm.Col, "Constructor for %s not found", nm.ClassName)
	}
	args, errv := evalArgs(ctx, nm.Args)
	if errv != nil {
		return errv
	}
	if ctx.DryRun {
		return rt.NilValue
	}
	return safeHostCall(nm.Line, nm.Col, nm.File, func() rt.Value { return ctor(ctx, args) })
}

func evalDot(ctx *rt.Context, nm *rt.NodeMeta) rt.Value {
	if nm.Target == nil || nm.MemberName == "" {
		return rt.NewErrAt(nm.Line, nm.Col, ". requires a target and a member name")
	}
	target := Interpret(ctx, nm.Target)
	if rt.IsError(target) {
		return target
	}
	class := resolveClassName(target)
	if !ctx.Classes.Permits(class) {
		return rt.NewErrAt(nm.Line, nm.Col, "Method %s on %s not allowed!", nm.MemberName, class)
	}
	methods, ok := instanceMethods[class]
	if !ok {
		return rt.NewErrAt(nm.Line, nm.Col, "Method %s on %s not found", nm.MemberName, class)
	}
	fn, ok := methods[nm.MemberName]
	if !ok {
		return rt.NewErrAt(nm.Line, nm.Col, "Method %s on %s not found", nm.MemberName, class)
	}
	args, errv := evalArgs(ctx, nm.Args)
	if errv != nil {
		return errv
	}
	if ctx.DryRun {
		return rt.NilValue
	}
	return safeHostCall(nm.Line, nm.Col, nm.File, func() rt.Value { return fn(ctx, target, args) })
}
