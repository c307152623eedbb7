package rt

import "fmt"

// Err is an error represented as a Value (§7): the evaluator never panics
// or returns a second Go error value, it returns an *Err and every call
// site checks IsError before continuing, mirroring the teacher's
// isError(result) pattern throughout evaluator.ApplyFunction.
type Err struct {
	Message    string
	Line, Col  int
	File       string
	Cause      *Err  // wrapped cause, preserved through rewrapping
	Payload    Value // the raised value itself, e.g. an ex-info map
	StackTrace []CallFrame
	InTry      bool // raised while ctx.InTry was set (§4.F-try); consulted by diagnostics
}

func (e *Err) String() string {
	if e.Line > 0 {
		return fmt.Sprintf("ERROR at %d:%d: %s", e.Line, e.Col, e.Message)
	}
	return "ERROR: " + e.Message
}

// IsError reports whether v is an *Err.
func IsError(v Value) bool { _, ok := v.(*Err); return ok }

// AsError type-asserts v to *Err, returning (nil, false) otherwise.
func AsError(v Value) (*Err, bool) { e, ok := v.(*Err); return e, ok }

// NewErr builds an un-located error (location is attached later by the
// nearest enclosing call frame, per §4.G).
func NewErr(format string, a ...interface{}) *Err {
	return &Err{Message: fmt.Sprintf(format, a...)}
}

// NewErrAt builds an error already carrying a source location.
func NewErrAt(line, col int, format string, a ...interface{}) *Err {
	return &Err{Message: fmt.Sprintf(format, a...), Line: line, Col: col}
}

// WrapAtCallSite re-raises err with the call node's source location
// attached, preserving the original message and cause (§4.G, §7): "the
// error's location is enriched... without losing the original message and
// cause."
func WrapAtCallSite(err *Err, line, col int, file string) *Err {
	if err.Line != 0 {
		// Already has a location (e.g. thrown deep inside); wrap it in a
		// new error at the call site, with the original as the cause, so
		// both positions survive.
		return &Err{
			Message: err.Message,
			Line:    line,
			Col:     col,
			File:    file,
			Cause:   err,
			Payload: err.Payload,
			InTry:   err.InTry,
		}
	}
	err.Line, err.Col, err.File = line, col, file
	return err
}

// ThrowValue wraps an arbitrary raised Value (§4.F `throw`) as an *Err so
// it can propagate through the same channel as internal errors. If v is
// already an *Err it is returned unchanged.
func ThrowValue(v Value) *Err {
	if e, ok := v.(*Err); ok {
		return e
	}
	msg := v.String()
	if m, ok := v.(*Map); ok {
		if mv, ok := m.Get(&Keyword{Name: "message"}); ok {
			if s, ok := mv.(*Str); ok {
				msg = s.Val
			}
		}
	}
	return &Err{Message: msg, Payload: v}
}

// RaisedValue returns the Lisp-level value a catch clause should bind: the
// original payload if one was attached (e.g. by ex-info or a raw throw),
// otherwise the error itself.
func RaisedValue(e *Err) Value {
	if e.Payload != nil {
		return e.Payload
	}
	return e
}
