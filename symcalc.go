// Package symcalc is a small deterministic computer-algebra kernel.
//
// Expressions are immutable trees of exact rationals (Num), symbols (Sym),
// named constants (Const), sums (Add), products (Mul), powers (Pow) and
// elementary functions (Func). Every node can simplify itself, substitute,
// differentiate and evaluate. On top of the tree the package offers a text
// parser (Parse), a polynomial-first solver (Solve), a rule-based integrator
// (Integrate) and decimal evaluation (Evalf). Output renders in the familiar
// sympy notation: x**2 + 2*x + 1.
//
// Limitations:
//   - Simplification is rule-based, not canonical
//   - Solving is exact up to degree 2 plus rational roots; the rest is numeric
//   - Integration is pattern-based and returns an unevaluated Integral otherwise
package symcalc

import (
	"math"
	"math/big"
	"sort"
	"strconv"
)

// Expr is a node of an expression tree.
type Expr interface {
	Simplify() Expr
	String() string
	Sub(name string, value Expr) Expr
	Diff(name string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
}

// ============================================================
// Num: exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

func F(p, q int64) *Num {
	if q == 0 {
		panic("symcalc: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat stores the exact binary value of f.
func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }

// NRat copies r.
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }

func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symcalc: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}

func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }

// numPowInt raises a to an integer power. The caller rules out 0**-k.
func numPowInt(a *Num, e int64) *Num {
	neg := e < 0
	if neg {
		e = -e
	}
	num := new(big.Int).Exp(a.val.Num(), big.NewInt(e), nil)
	den := new(big.Int).Exp(a.val.Denom(), big.NewInt(e), nil)
	r := &Num{val: new(big.Rat).SetFrac(num, den)}
	if neg {
		return numRecip(r)
	}
	return r
}

// ============================================================
// Float: inexact decimal result of a numeric method
// ============================================================

// Float is a leaf for numerically approximated values such as Newton roots.
// It never takes part in exact arithmetic.
type Float struct{ v float64 }

func NewFloat(v float64) *Float { return &Float{v: v} }

func (f *Float) Simplify() Expr        { return f }
func (f *Float) Sub(string, Expr) Expr { return f }
func (f *Float) Diff(string) Expr      { return N(0) }
func (f *Float) Eval() (*Num, bool)    { return NFloat(f.v), true }
func (f *Float) Equal(other Expr) bool { o, ok := other.(*Float); return ok && o.v == f.v }
func (f *Float) Value() float64        { return f.v }
func (f *Float) String() string        { return FormatDecimal(new(big.Rat).SetFloat64(f.v)) }

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr        { return s }
func (s *Sym) String() string        { return s.name }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) Eval() (*Num, bool)    { return nil, false }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }

func (s *Sym) Sub(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}

func (s *Sym) Diff(name string) Expr {
	if s.name == name {
		return N(1)
	}
	return N(0)
}

// I is the imaginary unit. It only appears in complex quadratic roots.
var I = S("I")

// ============================================================
// Const: named real constant
// ============================================================

type Const struct {
	name  string
	value float64
}

var (
	Pi = &Const{name: "pi", value: math.Pi}
	E  = &Const{name: "E", value: math.E}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Eval() (*Num, bool)    { return NFloat(c.value), true }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && o.name == c.name }

// ============================================================
// Tree helpers
// ============================================================

// Has reports whether the symbol name occurs in e.
func Has(e Expr, name string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == name
	case *Add:
		for _, t := range v.terms {
			if Has(t, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if Has(f, name) {
				return true
			}
		}
	case *Pow:
		return Has(v.base, name) || Has(v.exp, name)
	case *Func:
		return Has(v.arg, name)
	case *Integral:
		return Has(v.integrand, name) || v.name == name
	}
	return false
}

// FreeSymbols returns the sorted symbol names occurring in e.
func FreeSymbols(e Expr) []string {
	seen := map[string]struct{}{}
	collectSymbols(e, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	case *Integral:
		collectSymbols(v.integrand, out)
		delete(out, v.name)
	}
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(big.NewRat(v, 1)) == 0
}

func isNum(e Expr, p, q int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(big.NewRat(p, q)) == 0
}

// ============================================================
// Convenience API
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.Simplify().String() }

func Subs(expr Expr, name string, value Expr) Expr {
	return expr.Sub(name, value).Simplify()
}

func Diff(expr Expr, name string) Expr {
	return expr.Simplify().Diff(name).Simplify()
}

// FormatDecimal renders r with 15 significant digits, switching to
// scientific notation outside [1e-5, 1e15).
func FormatDecimal(r *big.Rat) string {
	if r.Sign() == 0 {
		return "0"
	}
	f := new(big.Float).SetPrec(256).SetRat(r)
	sci := f.Text('e', 14)
	mant, expPart := sci, "0"
	for i := len(sci) - 1; i >= 0; i-- {
		if sci[i] == 'e' {
			mant, expPart = sci[:i], sci[i+1:]
			break
		}
	}
	exp, err := strconv.Atoi(expPart)
	if err != nil {
		return sci
	}
	if exp < -5 || exp >= 15 {
		sign := "+"
		if exp < 0 {
			sign = ""
		}
		return mant + "e" + sign + strconv.Itoa(exp)
	}
	return f.Text('f', 14-exp)
}
