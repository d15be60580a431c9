package symcalc

import (
	"sort"
)

// maxExpandPower bounds the integer powers Expand multiplies out.
const maxExpandPower = 32

// ============================================================
// Expansion
// ============================================================

// Expand distributes products over sums and multiplies out small
// non-negative integer powers of sums.
func Expand(e Expr) Expr { return expandExpr(e.Simplify()).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			a, ok := f.(*Add)
			if !ok {
				continue
			}
			rest := make([]Expr, 0, len(expanded)-1)
			rest = append(rest, expanded[:i]...)
			rest = append(rest, expanded[i+1:]...)
			terms := make([]Expr, len(a.terms))
			for k, t := range a.terms {
				terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
			}
			return AddOf(terms...)
		}
		return MulOf(expanded...)
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = expandExpr(t)
		}
		return AddOf(terms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			k := n.val.Num().Int64()
			if _, isAdd := base.(*Add); isAdd && k >= 2 && k <= maxExpandPower {
				result := base
				for i := int64(1); i < k; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(base, v.exp)
	case *Func:
		return funcOf(v.name, expandExpr(v.arg)).Simplify()
	}
	return e
}

// distribute multiplies two expanded expressions term by term.
func distribute(a, b Expr) Expr {
	left, right := addTerms(a), addTerms(b)
	terms := make([]Expr, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			terms = append(terms, expandExpr(MulOf(l, r)))
		}
	}
	return AddOf(terms...)
}

func addTerms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Polynomial utilities
// ============================================================

// PolyCoeffs maps each degree of name in the expanded form of e to its
// coefficient. ok is false when e is not a polynomial in name.
func PolyCoeffs(e Expr, name string) (coeffs map[int]Expr, ok bool) {
	coeffs = map[int]Expr{}
	e = Expand(e)
	terms := []Expr{e}
	if a, isAdd := e.(*Add); isAdd {
		terms = a.terms
	}
	for _, t := range terms {
		deg, coeff, isMono := monomial(t, name)
		if !isMono {
			return nil, false
		}
		if prev, seen := coeffs[deg]; seen {
			coeffs[deg] = AddOf(prev, coeff)
		} else {
			coeffs[deg] = coeff
		}
	}
	for d, c := range coeffs {
		if isNumEqual(c, 0) {
			delete(coeffs, d)
		}
	}
	return coeffs, true
}

// monomial splits c*name**deg. Anything else involving name fails.
func monomial(t Expr, name string) (deg int, coeff Expr, ok bool) {
	factors := []Expr{t}
	if m, isMul := t.(*Mul); isMul {
		factors = m.factors
	}
	rest := []Expr{}
	for _, f := range factors {
		switch {
		case !Has(f, name):
			rest = append(rest, f)
		case isSym(f, name):
			deg++
		default:
			p, isPow := f.(*Pow)
			if !isPow || !isSym(p.base, name) {
				return 0, nil, false
			}
			n, isNum := p.exp.(*Num)
			if !isNum || !n.IsInteger() || n.IsNegative() || !n.val.Num().IsInt64() {
				return 0, nil, false
			}
			deg += int(n.val.Num().Int64())
		}
	}
	return deg, MulOf(rest...), true
}

func isSym(e Expr, name string) bool {
	s, ok := e.(*Sym)
	return ok && s.name == name
}

// Degree returns the polynomial degree of e in name, or -1 when e is not
// a polynomial in name.
func Degree(e Expr, name string) int {
	coeffs, ok := PolyCoeffs(e, name)
	if !ok {
		return -1
	}
	deg := 0
	for d := range coeffs {
		if d > deg {
			deg = d
		}
	}
	return deg
}

// Collect rebuilds e as a sum of coefficient*name**k in descending k.
func Collect(e Expr, name string) Expr {
	coeffs, ok := PolyCoeffs(e, name)
	if !ok {
		return e.Simplify()
	}
	degrees := make([]int, 0, len(coeffs))
	for d := range coeffs {
		degrees = append(degrees, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degrees)))
	terms := make([]Expr, 0, len(degrees))
	for _, d := range degrees {
		terms = append(terms, MulOf(coeffs[d], PowOf(S(name), N(int64(d)))))
	}
	return AddOf(terms...)
}

// linearCoeffs matches e against a*name + b with a != 0 free of name.
func linearCoeffs(e Expr, name string) (a, b Expr, ok bool) {
	coeffs, isPoly := PolyCoeffs(e, name)
	if !isPoly {
		return nil, nil, false
	}
	a, hasA := coeffs[1]
	if !hasA || len(coeffs) > 2 {
		return nil, nil, false
	}
	b, hasB := coeffs[0]
	if !hasB && len(coeffs) == 2 {
		return nil, nil, false
	}
	if !hasB {
		b = N(0)
	}
	return a, b, true
}
