package symcalc

import (
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
	"sort"
)

// ============================================================
// Solvers
// ============================================================

const (
	// maxRootCandidates bounds the p/q pairs tried by the rational root search.
	maxRootCandidates = 20000
	// maxRootTerm bounds |a0| and |an| for the rational root search.
	maxRootTerm = 1_000_000_000_000
)

// Solve returns the roots of expr = 0 for the symbol name.
//
// Polynomials (after clearing denominators that depend on name) are solved
// exactly through degree two, by rational roots and biquadratic substitution
// beyond that, and numerically over the complex plane for whatever remains.
// Periodic equations report the roots in one period starting at 0. A result
// of length zero means no root exists or every value is a root.
func Solve(expr Expr, name string) ([]Expr, error) {
	e := Expand(expr)
	e, poles := clearDenominators(e, name)
	if !Has(e, name) {
		return []Expr{}, nil
	}

	var roots []Expr
	if coeffs, ok := PolyCoeffs(e, name); ok {
		r, err := solvePoly(coeffs, name)
		if err != nil {
			return nil, err
		}
		roots = r
	} else {
		if syms := FreeSymbols(e); len(syms) != 1 {
			return nil, &SolveError{Msg: fmt.Sprintf("cannot solve %s = 0 for %s: not a polynomial in %s", e, name, name)}
		}
		r, err := transcendentalRoots(e, name)
		if err != nil {
			return nil, err
		}
		roots = r
	}
	return orderRoots(dropPoles(roots, poles, name)), nil
}

// clearDenominators multiplies e by every negative integer power of a
// subexpression containing name and returns the cleared bases.
func clearDenominators(e Expr, name string) (Expr, []Expr) {
	terms := []Expr{e}
	if a, ok := e.(*Add); ok {
		terms = a.terms
	}
	powers := map[string]*Num{}
	bases := map[string]Expr{}
	order := []string{}
	for _, t := range terms {
		factors := []Expr{t}
		if m, ok := t.(*Mul); ok {
			factors = m.factors
		}
		for _, f := range factors {
			p, ok := f.(*Pow)
			if !ok || !Has(p.base, name) {
				continue
			}
			n, ok := p.exp.(*Num)
			if !ok || !n.IsNegative() || !n.IsInteger() {
				continue
			}
			key := p.base.String()
			k := numNeg(n)
			if prev, seen := powers[key]; !seen {
				order = append(order, key)
				bases[key] = p.base
				powers[key] = k
			} else if numCmp(k, prev) > 0 {
				powers[key] = k
			}
		}
	}
	if len(order) == 0 {
		return e, nil
	}
	multiplier := make([]Expr, 0, len(order))
	poles := make([]Expr, 0, len(order))
	for _, key := range order {
		multiplier = append(multiplier, PowOf(bases[key], powers[key]))
		poles = append(poles, bases[key])
	}
	cleared := make([]Expr, len(terms))
	for i, t := range terms {
		cleared[i] = MulOf(append([]Expr{t}, multiplier...)...)
	}
	return Expand(AddOf(cleared...)), poles
}

func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

func solvePoly(coeffs map[int]Expr, name string) ([]Expr, error) {
	deg := 0
	for d := range coeffs {
		if d > deg {
			deg = d
		}
	}
	if deg == 0 {
		return []Expr{}, nil
	}
	coeff := func(d int) Expr {
		if c, ok := coeffs[d]; ok {
			return c
		}
		return N(0)
	}

	rats := make([]*big.Rat, deg+1)
	numeric := true
	for d := 0; d <= deg; d++ {
		n, ok := coeff(d).(*Num)
		if !ok {
			numeric = false
			break
		}
		rats[d] = n.Rat()
	}
	if numeric {
		return solveRational(rats)
	}

	switch deg {
	case 1:
		return []Expr{MulOf(N(-1), coeff(0), PowOf(coeff(1), N(-1)))}, nil
	case 2:
		return quadraticSymbolic(coeff(2), coeff(1), coeff(0)), nil
	}
	return nil, &SolveError{Msg: fmt.Sprintf("cannot solve a degree %d polynomial in %s with symbolic coefficients", deg, name)}
}

// solveRational solves sum(c[i]*x**i) = 0 for rational c with c[len-1] != 0.
func solveRational(c []*big.Rat) ([]Expr, error) {
	var roots []Expr
	if c[0].Sign() == 0 {
		roots = append(roots, N(0))
		for len(c) > 1 && c[0].Sign() == 0 {
			c = c[1:]
		}
	}
	c = squarefree(c)
	for len(c)-1 >= 3 {
		r, ok := rationalRoot(c)
		if !ok {
			break
		}
		roots = append(roots, NRat(r))
		c = deflate(c, r)
	}

	switch len(c) - 1 {
	case 0:
	case 1:
		roots = append(roots, NRat(new(big.Rat).Quo(new(big.Rat).Neg(c[0]), c[1])))
	case 2:
		roots = append(roots, quadraticRational(c[2], c[1], c[0])...)
	default:
		if r, ok := biquadratic(c); ok {
			return append(roots, r...), nil
		}
		r, err := complexRoots(c)
		if err != nil {
			return nil, err
		}
		roots = append(roots, r...)
	}
	return roots, nil
}

// biquadratic solves a*x**4 + b*x**2 + c = 0 exactly through y = x**2 when
// both values of y are real.
func biquadratic(c []*big.Rat) ([]Expr, bool) {
	if len(c) != 5 || c[1].Sign() != 0 || c[3].Sign() != 0 {
		return nil, false
	}
	ys := quadraticRational(c[4], c[2], c[0])
	var roots []Expr
	for _, y := range ys {
		v, ok := y.Eval()
		if !ok || v.IsZero() {
			return nil, false
		}
		r := SqrtOf(y)
		if v.IsNegative() {
			r = MulOf(SqrtOf(MulOf(N(-1), y)), I)
		}
		roots = append(roots, MulOf(N(-1), r), r)
	}
	return roots, true
}

// rationalRoot searches p/q with p | a0 and q | an.
func rationalRoot(c []*big.Rat) (*big.Rat, bool) {
	lcm := big.NewInt(1)
	for _, ci := range c {
		d := ci.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	scaled := make([]*big.Int, len(c))
	for i, ci := range c {
		v := new(big.Rat).Mul(ci, new(big.Rat).SetInt(lcm))
		scaled[i] = v.Num()
	}
	a0 := new(big.Int).Abs(scaled[0])
	an := new(big.Int).Abs(scaled[len(scaled)-1])
	if !a0.IsInt64() || !an.IsInt64() || a0.Int64() > maxRootTerm || an.Int64() > maxRootTerm {
		return nil, false
	}
	ps := divisors(a0.Int64())
	qs := divisors(an.Int64())
	if len(ps)*len(qs) > maxRootCandidates {
		return nil, false
	}
	for _, p := range ps {
		for _, q := range qs {
			for _, sign := range []int64{1, -1} {
				r := big.NewRat(sign*p, q)
				if hornerRat(c, r).Sign() == 0 {
					return r, true
				}
			}
		}
	}
	return nil, false
}

func divisors(n int64) []int64 {
	var small, large []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			small = append(small, d)
			if d != n/d {
				large = append(large, n/d)
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

func hornerRat(c []*big.Rat, x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(c) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, c[i])
	}
	return acc
}

// deflate divides the polynomial by (x - r) using synthetic division.
func deflate(c []*big.Rat, r *big.Rat) []*big.Rat {
	n := len(c) - 1
	out := make([]*big.Rat, n)
	out[n-1] = new(big.Rat).Set(c[n])
	for i := n - 1; i >= 1; i-- {
		v := new(big.Rat).Mul(r, out[i])
		out[i-1] = v.Add(v, c[i])
	}
	return out
}

func quadraticRational(a, b, c *big.Rat) []Expr {
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)))
	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	re := NRat(new(big.Rat).Quo(new(big.Rat).Neg(b), twoA))
	half := NRat(new(big.Rat).Inv(twoA))

	switch disc.Sign() {
	case 0:
		return []Expr{re}
	case 1:
		sq := SqrtOf(NRat(disc))
		return []Expr{
			AddOf(re, MulOf(half, sq)),
			AddOf(re, MulOf(numNeg(half), sq)),
		}
	}
	sq := SqrtOf(NRat(new(big.Rat).Neg(disc)))
	imag := MulOf(half, sq, I)
	return []Expr{
		AddOf(re, MulOf(N(-1), imag)),
		AddOf(re, imag),
	}
}

func quadraticSymbolic(a, b, c Expr) []Expr {
	disc := AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c))
	denom := PowOf(MulOf(N(2), a), N(-1))
	negB := MulOf(N(-1), b)
	if isNumEqual(disc, 0) {
		return []Expr{MulOf(negB, denom)}
	}
	sq := SqrtOf(disc)
	return []Expr{
		MulOf(AddOf(negB, MulOf(N(-1), sq)), denom),
		MulOf(AddOf(negB, sq), denom),
	}
}

// floatEval evaluates e in float64 arithmetic with name bound to x.
func floatEval(e Expr, name string, x float64) (float64, bool) {
	var v float64
	switch t := e.(type) {
	case *Num:
		v = t.Float64()
	case *Float:
		v = t.v
	case *Const:
		v = t.value
	case *Sym:
		if t.name != name {
			return 0, false
		}
		v = x
	case *Add:
		for _, term := range t.terms {
			tv, ok := floatEval(term, name, x)
			if !ok {
				return 0, false
			}
			v += tv
		}
	case *Mul:
		v = 1
		for _, f := range t.factors {
			fv, ok := floatEval(f, name, x)
			if !ok {
				return 0, false
			}
			v *= fv
		}
	case *Pow:
		b, ok1 := floatEval(t.base, name, x)
		p, ok2 := floatEval(t.exp, name, x)
		if !ok1 || !ok2 {
			return 0, false
		}
		v = math.Pow(b, p)
	case *Func:
		a, ok := floatEval(t.arg, name, x)
		fn, known := floatFuncs[t.name]
		if !ok || !known {
			return 0, false
		}
		v = fn(a)
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func dropPoles(roots, poles []Expr, name string) []Expr {
	if len(poles) == 0 {
		return roots
	}
	kept := roots[:0:0]
	for _, r := range roots {
		pole := false
		for _, b := range poles {
			if isPole(b, name, r) {
				pole = true
				break
			}
		}
		if !pole {
			kept = append(kept, r)
		}
	}
	return kept
}

func isPole(base Expr, name string, root Expr) bool {
	if f, ok := root.(*Float); ok {
		v, ok := floatEval(base, name, f.v)
		return ok && math.Abs(v) < 1e-9
	}
	return isNumEqual(Expand(Subs(base, name, root)), 0)
}

// orderRoots removes duplicates and sorts real roots ascending, followed by
// the non-real roots by real part and then imaginary part.
func orderRoots(roots []Expr) []Expr {
	type keyed struct {
		e    Expr
		key  string
		real bool
		v    complex128
	}
	seen := map[string]bool{}
	ks := make([]keyed, 0, len(roots))
	for _, r := range roots {
		key := r.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		k := keyed{e: r, key: key}
		if n, ok := r.Eval(); ok {
			k.real, k.v = true, complex(n.Float64(), 0)
		} else if z, ok := complexValue(r); ok {
			k.v = z
		}
		ks = append(ks, k)
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.real != b.real {
			return a.real
		}
		if real(a.v) != real(b.v) {
			return real(a.v) < real(b.v)
		}
		if imag(a.v) != imag(b.v) {
			return imag(a.v) < imag(b.v)
		}
		return a.key < b.key
	})
	out := make([]Expr, len(ks))
	for i := range ks {
		out[i] = ks[i].e
	}
	return out
}

// complexValue evaluates a closed-form root that may contain I.
func complexValue(e Expr) (complex128, bool) {
	switch v := e.(type) {
	case *Num:
		return complex(v.Float64(), 0), true
	case *Float:
		return complex(v.v, 0), true
	case *Const:
		return complex(v.value, 0), true
	case *Sym:
		if v.name == I.name {
			return 1i, true
		}
	case *Add:
		var acc complex128
		for _, t := range v.terms {
			z, ok := complexValue(t)
			if !ok {
				return 0, false
			}
			acc += z
		}
		return acc, true
	case *Mul:
		acc := complex(1, 0)
		for _, f := range v.factors {
			z, ok := complexValue(f)
			if !ok {
				return 0, false
			}
			acc *= z
		}
		return acc, true
	case *Pow:
		b, ok1 := complexValue(v.base)
		p, ok2 := complexValue(v.exp)
		if ok1 && ok2 {
			return cmplx.Pow(b, p), true
		}
	case *Func:
		if n, ok := v.Eval(); ok {
			return complex(n.Float64(), 0), true
		}
	}
	return 0, false
}
