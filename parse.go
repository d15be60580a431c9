package symcalc

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/Knetic/govaluate"
)

// ============================================================
// Parser
// ============================================================

// parseFuncs registers every callable name with the lexer. Each entry
// answers its canonical name, which is how FUNCTION tokens are identified.
var parseFuncs map[string]govaluate.ExpressionFunction

func init() {
	aliases := map[string]string{
		"sin": "sin", "cos": "cos", "tan": "tan",
		"asin": "asin", "acos": "acos", "atan": "atan",
		"sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
		"exp": "exp", "log": "log", "ln": "log",
		"sqrt": "sqrt", "Abs": "Abs", "abs": "Abs",
	}
	parseFuncs = make(map[string]govaluate.ExpressionFunction, len(aliases))
	for alias, canonical := range aliases {
		parseFuncs[alias] = func(...interface{}) (interface{}, error) { return canonical, nil }
	}
}

// Parse reads infix text such as "2*x**2 - sin(x)/3" into an expression.
// The tree is returned as written; callers simplify it.
//
// Supported: + - * / ** ^, unary signs (also after an operator, as in
// x**-1), parentheses, decimal and scientific literals, identifiers, the
// constants pi and E, and the functions sin cos tan asin acos atan sinh
// cosh tanh exp log ln sqrt Abs abs. log(x, b) is the base-b logarithm.
// Literals are exact: 0.1 is 1/10 and 12345678901234567891 keeps every
// digit.
func Parse(text string) (Expr, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Input: text, Msg: "empty expression"}
	}
	sc, err := prescan(text)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sc.text) == "" {
		return nil, &ParseError{Input: text, Msg: "unexpected end of expression"}
	}
	ev, err := govaluate.NewEvaluableExpressionWithFunctions(sc.text, parseFuncs)
	if err != nil {
		return nil, &ParseError{Input: text, Msg: sc.restore(err.Error())}
	}
	p := &parser{input: text, tokens: ev.Tokens(), literals: sc.literals}
	e, err := p.sum()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, p.errorf("unexpected %s", p.describe(tok))
	}
	return e, nil
}

// MustParse is Parse for known-good input. It panics on error.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	input    string
	tokens   []govaluate.ExpressionToken
	literals []string
	pos      int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Input: p.input, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() (govaluate.ExpressionToken, bool) {
	if p.pos >= len(p.tokens) {
		return govaluate.ExpressionToken{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (govaluate.ExpressionToken, error) {
	tok, ok := p.peek()
	if !ok {
		return tok, p.errorf("unexpected end of expression")
	}
	p.pos++
	return tok, nil
}

// accept consumes the next token if it is a modifier spelled as one of ops.
func (p *parser) accept(ops ...string) (string, bool) {
	tok, ok := p.peek()
	if !ok || tok.Kind != govaluate.MODIFIER {
		return "", false
	}
	s := fmt.Sprint(tok.Value)
	for _, op := range ops {
		if s == op {
			p.pos++
			return s, true
		}
	}
	return "", false
}

// sum := product (('+' | '-') product)*
func (p *parser) sum() (Expr, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.accept("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.product()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			right = &Mul{factors: []Expr{N(-1), right}}
		}
		left = &Add{terms: []Expr{left, right}}
	}
}

// product := unary (('*' | '/') unary)*
func (p *parser) product() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		if tok, ok := p.peek(); ok && tok.Kind == govaluate.MODIFIER && fmt.Sprint(tok.Value) == "%" {
			return nil, p.errorf("operator %% is not supported")
		}
		op, ok := p.accept("*", "/")
		if !ok {
			return left, nil
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "/" {
			right = &Pow{base: right, exp: N(-1)}
		}
		left = &Mul{factors: []Expr{left, right}}
	}
}

// unary := '-' unary | power
func (p *parser) unary() (Expr, error) {
	if tok, ok := p.peek(); ok && tok.Kind == govaluate.PREFIX {
		if s := fmt.Sprint(tok.Value); s != "-" {
			return nil, p.errorf("operator %s is not supported", s)
		}
		p.pos++
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Mul{factors: []Expr{N(-1), operand}}, nil
	}
	return p.power()
}

// power := atom (('**' | '^') unary)?
func (p *parser) power() (Expr, error) {
	base, err := p.atom()
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept("**", "^"); !ok {
		return base, nil
	}
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &Pow{base: base, exp: exp}, nil
}

func (p *parser) atom() (Expr, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case govaluate.NUMERIC:
		lit, ok := p.literal(tok)
		if !ok {
			return nil, p.errorf("invalid number %v", tok.Value)
		}
		return p.number(lit)
	case govaluate.VARIABLE:
		name := fmt.Sprint(tok.Value)
		switch name {
		case "pi":
			return Pi, nil
		case "E":
			return E, nil
		}
		return S(name), nil
	case govaluate.FUNCTION:
		return p.call(tok)
	case govaluate.CLAUSE:
		inner, err := p.sum()
		if err != nil {
			return nil, err
		}
		if err := p.expect(govaluate.CLAUSE_CLOSE, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.errorf("unexpected %s", p.describe(tok))
}

func (p *parser) expect(kind govaluate.TokenKind, text string) error {
	tok, err := p.next()
	if err != nil {
		return p.errorf("expected %q before end of expression", text)
	}
	if tok.Kind != kind {
		return p.errorf("expected %q, found %s", text, p.describe(tok))
	}
	return nil
}

func (p *parser) call(tok govaluate.ExpressionToken) (Expr, error) {
	fn, ok := tok.Value.(govaluate.ExpressionFunction)
	if !ok {
		return nil, p.errorf("unexpected %s", p.describe(tok))
	}
	v, _ := fn()
	name, _ := v.(string)

	if err := p.expect(govaluate.CLAUSE, "("); err != nil {
		return nil, err
	}
	var args []Expr
	for {
		if t, ok := p.peek(); ok && t.Kind == govaluate.CLAUSE_CLOSE && len(args) == 0 {
			p.pos++
			break
		}
		arg, err := p.sum()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t, err := p.next()
		if err != nil {
			return nil, p.errorf("expected \")\" before end of expression")
		}
		if t.Kind == govaluate.CLAUSE_CLOSE {
			break
		}
		if t.Kind != govaluate.SEPARATOR {
			return nil, p.errorf("expected \",\" or \")\", found %s", p.describe(t))
		}
	}

	switch {
	case name == "log" && len(args) == 2:
		return &Mul{factors: []Expr{
			funcOf("log", args[0]),
			&Pow{base: funcOf("log", args[1]), exp: N(-1)},
		}}, nil
	case len(args) != 1:
		return nil, p.errorf("%s expects 1 argument, got %d", name, len(args))
	case name == "sqrt":
		return &Pow{base: args[0], exp: F(1, 2)}, nil
	}
	return funcOf(name, args[0]), nil
}

// literal maps a numeral token back to its source text.
func (p *parser) literal(tok govaluate.ExpressionToken) (string, bool) {
	v, ok := tok.Value.(float64)
	if !ok || v < 0 || v != math.Trunc(v) || int(v) >= len(p.literals) {
		return "", false
	}
	return p.literals[int(v)], true
}

// number reads a decimal literal exactly.
func (p *parser) number(lit string) (Expr, error) {
	digits := lit
	if strings.HasPrefix(digits, ".") {
		digits = "0" + digits
	}
	digits = strings.Replace(digits, ".e", ".0e", 1)
	digits = strings.Replace(digits, ".E", ".0E", 1)
	if strings.HasSuffix(digits, ".") {
		digits += "0"
	}
	r, ok := new(big.Rat).SetString(digits)
	if !ok {
		return nil, p.errorf("invalid number %s", lit)
	}
	return &Num{val: r}, nil
}

func (p *parser) describe(tok govaluate.ExpressionToken) string {
	switch tok.Kind {
	case govaluate.FUNCTION:
		return "function call"
	case govaluate.CLAUSE:
		return "\"(\""
	case govaluate.CLAUSE_CLOSE:
		return "\")\""
	case govaluate.SEPARATOR:
		return "\",\""
	case govaluate.NUMERIC:
		if lit, ok := p.literal(tok); ok {
			return fmt.Sprintf("%q", lit)
		}
	}
	return fmt.Sprintf("%q", fmt.Sprint(tok.Value))
}
