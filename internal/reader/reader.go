package reader

import (
	"strconv"

	"github.com/corvidlang/corvid/internal/rt"
	"github.com/corvidlang/corvid/internal/token"
)

type parser struct {
	lx    *lexer
	cur   token.Token
	ctx   *rt.Context
	file  string
	gsSeq int
}

func newParser(ctx *rt.Context, source, file string) *parser {
	p := &parser{lx: newLexer(source), ctx: ctx, file: file}
	p.advance()
	return p
}

func (p *parser) advance() { p.cur = p.lx.nextToken() }

func (p *parser) tag(v rt.Value, line, col int) rt.Value {
	nm := p.ctx.Meta.Ensure(v)
	nm.Line, nm.Col, nm.File = line, col, p.file
	return v
}

// ReadAll reads every top-level form out of source, tagging each with its
// source position for later diagnostics (§4.E "op, line, col... attached by
// the reader").
func ReadAll(ctx *rt.Context, source, file string) ([]rt.Value, *rt.Err) {
	p := newParser(ctx, source, file)
	var forms []rt.Value
	for p.cur.Type != token.EOF {
		f, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// ReadOne reads the first form of source, as the REPL does for each input
// line; any further forms in source are ignored.
func ReadOne(ctx *rt.Context, source, file string) (rt.Value, *rt.Err) {
	p := newParser(ctx, source, file)
	if p.cur.Type == token.EOF {
		return rt.NilValue, nil
	}
	return p.parseForm()
}

func (p *parser) parseForm() (rt.Value, *rt.Err) {
	tok := p.cur
	switch tok.Type {
	case token.EOF:
		return nil, rt.NewErrAt(tok.Line, tok.Col, "unexpected end of input")
	case token.LParen:
		return p.parseList()
	case token.RParen:
		return nil, rt.NewErrAt(tok.Line, tok.Col, "unexpected )")
	case token.LBracket:
		return p.parseVector()
	case token.RBracket:
		return nil, rt.NewErrAt(tok.Line, tok.Col, "unexpected ]")
	case token.LBrace:
		return p.parseMap()
	case token.RBrace:
		return nil, rt.NewErrAt(tok.Line, tok.Col, "unexpected }")
	case token.HashBrace:
		return p.parseSet()
	case token.HashParen:
		return p.parseFnLiteral()
	case token.Quote:
		p.advance()
		inner, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		return p.tag(listCall("quote", inner), tok.Line, tok.Col), nil
	case token.Backtick:
		p.advance()
		inner, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		return p.quasiquote(inner), nil
	case token.Tilde:
		p.advance()
		inner, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		return p.tag(listCall("unquote", inner), tok.Line, tok.Col), nil
	case token.TildeAt:
		p.advance()
		inner, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		return p.tag(listCall("unquote-splicing", inner), tok.Line, tok.Col), nil
	case token.Deref:
		p.advance()
		inner, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		return p.tag(listCall("deref", inner), tok.Line, tok.Col), nil
	case token.Symbol:
		p.advance()
		return p.parseSymbolOrLiteral(tok), nil
	case token.Keyword:
		p.advance()
		return &rt.Keyword{Name: tok.Lexeme}, nil
	case token.String:
		p.advance()
		return &rt.Str{Val: tok.Lexeme}, nil
	case token.Int:
		p.advance()
		n, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return &rt.Int{Val: n}, nil
	case token.Float:
		p.advance()
		f, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &rt.Float{Val: f}, nil
	case token.Char:
		p.advance()
		r := []rune(tok.Lexeme)[0]
		return &rt.Char{Val: r}, nil
	}
	return nil, rt.NewErrAt(tok.Line, tok.Col, "unrecognized token %q", tok.Lexeme)
}

func (p *parser) parseSymbolOrLiteral(tok token.Token) rt.Value {
	switch tok.Lexeme {
	case "nil":
		return rt.NilValue
	case "true":
		return rt.True
	case "false":
		return rt.False
	}
	sym := rt.NewSymbol(tok.Lexeme)
	return p.tag(sym, tok.Line, tok.Col)
}

func (p *parser) parseList() (rt.Value, *rt.Err) {
	open := p.cur
	p.advance()
	var items []rt.Value
	for p.cur.Type != token.RParen {
		if p.cur.Type == token.EOF {
			return nil, rt.NewErrAt(open.Line, open.Col, "unterminated list")
		}
		item, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	p.advance()
	l := rt.SliceToList(items)
	if l == nil {
		return l, nil
	}
	return p.tag(l, open.Line, open.Col), nil
}

func (p *parser) parseVector() (rt.Value, *rt.Err) {
	open := p.cur
	p.advance()
	var items []rt.Value
	for p.cur.Type != token.RBracket {
		if p.cur.Type == token.EOF {
			return nil, rt.NewErrAt(open.Line, open.Col, "unterminated vector")
		}
		item, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	p.advance()
	return p.tag(&rt.Vector{Items: items}, open.Line, open.Col), nil
}

func (p *parser) parseSet() (rt.Value, *rt.Err) {
	open := p.cur
	p.advance()
	var items []rt.Value
	for p.cur.Type != token.RBrace {
		if p.cur.Type == token.EOF {
			return nil, rt.NewErrAt(open.Line, open.Col, "unterminated set")
		}
		item, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	p.advance()
	return p.tag(&rt.Set{Items: items}, open.Line, open.Col), nil
}

func (p *parser) parseMap() (rt.Value, *rt.Err) {
	open := p.cur
	p.advance()
	m := rt.EmptyMap
	for p.cur.Type != token.RBrace {
		if p.cur.Type == token.EOF {
			return nil, rt.NewErrAt(open.Line, open.Col, "unterminated map")
		}
		k, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		if p.cur.Type == token.RBrace {
			return nil, rt.NewErrAt(open.Line, open.Col, "map literal missing value")
		}
		v, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		m = m.Assoc(k, v)
	}
	p.advance()
	return p.tag(m, open.Line, open.Col), nil
}

// parseFnLiteral desugars `#(+ % 1)` into `(fn [%1] (+ %1 1))`, the bare `%`
// being shorthand for `%1`.
func (p *parser) parseFnLiteral() (rt.Value, *rt.Err) {
	open := p.cur
	p.advance()
	var body []rt.Value
	for p.cur.Type != token.RParen {
		if p.cur.Type == token.EOF {
			return nil, rt.NewErrAt(open.Line, open.Col, "unterminated fn literal")
		}
		item, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		body = append(body, item)
	}
	p.advance()
	maxArg := 0
	hasRest := false
	for _, b := range body {
		scanPercent(b, &maxArg, &hasRest)
	}
	params := make([]rt.Value, 0, maxArg+2)
	for i := 1; i <= maxArg; i++ {
		params = append(params, rt.NewSymbol("%"+strconv.Itoa(i)))
	}
	if hasRest {
		params = append(params, &rt.Symbol{Name: "&"}, rt.NewSymbol("%&"))
	}
	fnForm := rt.Cons(
		rt.Value(&rt.Symbol{Name: "fn"}),
		rt.Cons(rt.Value(&rt.Vector{Items: params}), rt.SliceToList(body)),
	)
	return p.tag(fnForm, open.Line, open.Col), nil
}

func scanPercent(v rt.Value, maxArg *int, hasRest *bool) {
	switch f := v.(type) {
	case *rt.Symbol:
		if f.Ns != "" || len(f.Name) == 0 || f.Name[0] != '%' {
			return
		}
		if f.Name == "%" {
			f.Name = "%1"
			if *maxArg < 1 {
				*maxArg = 1
			}
			return
		}
		if f.Name == "%&" {
			*hasRest = true
			return
		}
		if n, err := strconv.Atoi(f.Name[1:]); err == nil && n > *maxArg {
			*maxArg = n
		}
	case *rt.List:
		for cur := f; cur != nil; cur = cur.Tail {
			scanPercent(cur.Head, maxArg, hasRest)
		}
	case *rt.Vector:
		for _, it := range f.Items {
			scanPercent(it, maxArg, hasRest)
		}
	}
}

func listCall(name string, args ...rt.Value) *rt.List {
	return rt.Cons(rt.Value(&rt.Symbol{Name: name}), rt.SliceToList(args))
}

// quasiquote desugars a backtick form into constructor calls (`list`,
// `concat`, `vec`) evaluated at runtime, the classic reader-level expansion
// of syntax-quote — `~` splices in a single evaluated value, `~@` splices in
// a sequence.
func (p *parser) quasiquote(form rt.Value) rt.Value {
	switch f := form.(type) {
	case *rt.List:
		if f == nil {
			return listCall("quote", form)
		}
		if s, ok := f.Head.(*rt.Symbol); ok && s.Ns == "" && s.Name == "unquote" {
			rest := rt.ListToSlice(f.Tail)
			if len(rest) >= 1 {
				return rest[0]
			}
		}
		var parts []rt.Value
		for cur := f; cur != nil; cur = cur.Tail {
			if el, ok := cur.Head.(*rt.List); ok && el != nil {
				if s2, ok := el.Head.(*rt.Symbol); ok && s2.Ns == "" && s2.Name == "unquote-splicing" {
					spliceArgs := rt.ListToSlice(el.Tail)
					if len(spliceArgs) >= 1 {
						parts = append(parts, spliceArgs[0])
						continue
					}
				}
			}
			parts = append(parts, listCall("list", p.quasiquote(cur.Head)))
		}
		return listCall("concat", parts...)
	case *rt.Vector:
		asList := rt.SliceToList(f.Items)
		return listCall("vec", p.quasiquote(asList))
	case *rt.Symbol:
		return listCall("quote", form)
	default:
		return form
	}
}
