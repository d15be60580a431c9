package symcalc

// maxIntegrateDepth bounds recursion through by-parts and expansion.
const maxIntegrateDepth = 8

// ============================================================
// Integral: unevaluated antiderivative
// ============================================================

// Integral stands for an antiderivative no rule could find.
type Integral struct {
	integrand Expr
	name      string
}

func (g *Integral) Simplify() Expr {
	return &Integral{integrand: g.integrand.Simplify(), name: g.name}
}

func (g *Integral) String() string {
	return "Integral(" + g.integrand.String() + ", " + g.name + ")"
}

func (g *Integral) Sub(name string, value Expr) Expr {
	if name == g.name {
		return g
	}
	return &Integral{integrand: Subs(g.integrand, name, value), name: g.name}
}

func (g *Integral) Diff(name string) Expr {
	if name == g.name {
		return g.integrand
	}
	return &Integral{integrand: Diff(g.integrand, name), name: g.name}
}

func (g *Integral) Eval() (*Num, bool) { return nil, false }

func (g *Integral) Equal(other Expr) bool {
	o, ok := other.(*Integral)
	return ok && g.name == o.name && g.integrand.Equal(o.integrand)
}

// ============================================================
// Integration
// ============================================================

// Integrate returns an antiderivative of e with respect to name, without
// a constant of integration. When no rule applies it returns the
// unevaluated Integral and false.
//
// Rules: linearity, x**n and (a*x+b)**n, c**(a*x+b), exp sin cos sinh cosh
// tan and log of linear arguments, integration by parts for polynomials
// times exp sin cos sinh cosh or log, and expansion of products of sums.
func Integrate(e Expr, name string) (Expr, bool) {
	s := e.Simplify()
	if r, ok := integrate(s, name, 0); ok {
		return r, true
	}
	if x := Expand(s); !x.Equal(s) {
		if r, ok := integrate(x, name, 0); ok {
			return r, true
		}
	}
	return &Integral{integrand: s, name: name}, false
}

func integrate(e Expr, name string, depth int) (Expr, bool) {
	if depth > maxIntegrateDepth {
		return nil, false
	}
	if !Has(e, name) {
		return MulOf(e, S(name)), true
	}
	x := S(name)

	switch v := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(x, N(2))), true

	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			r, ok := integrate(t, name, depth)
			if !ok {
				return nil, false
			}
			terms[i] = r
		}
		return AddOf(terms...), true

	case *Mul:
		var consts, deps []Expr
		for _, f := range v.factors {
			if Has(f, name) {
				deps = append(deps, f)
			} else {
				consts = append(consts, f)
			}
		}
		if len(consts) > 0 {
			r, ok := integrate(MulOf(deps...), name, depth)
			if !ok {
				return nil, false
			}
			return MulOf(append(consts, r)...), true
		}
		for _, f := range deps {
			if _, isAdd := f.(*Add); isAdd {
				if ex := Expand(e); !ex.Equal(e) {
					return integrate(ex, name, depth+1)
				}
				break
			}
		}
		return byParts(deps, name, depth)

	case *Pow:
		if !Has(v.exp, name) {
			if n, ok := v.exp.(*Num); ok && n.IsInteger() && !n.IsNegative() {
				if _, isAdd := v.base.(*Add); isAdd {
					return integrate(Expand(e), name, depth+1)
				}
			}
			a, _, linear := linearCoeffs(v.base, name)
			if !linear {
				return nil, false
			}
			if isNumEqual(v.exp, -1) {
				return MulOf(LogOf(v.base), PowOf(a, N(-1))), true
			}
			next := AddOf(v.exp, N(1))
			return MulOf(PowOf(v.base, next), PowOf(MulOf(a, next), N(-1))), true
		}
		if !Has(v.base, name) {
			a, _, linear := linearCoeffs(v.exp, name)
			if !linear {
				return nil, false
			}
			return MulOf(e, PowOf(MulOf(a, LogOf(v.base)), N(-1))), true
		}

	case *Func:
		a, _, linear := linearCoeffs(v.arg, name)
		if !linear {
			return nil, false
		}
		inv := PowOf(a, N(-1))
		switch v.name {
		case "exp":
			return MulOf(e, inv), true
		case "sin":
			return MulOf(N(-1), CosOf(v.arg), inv), true
		case "cos":
			return MulOf(SinOf(v.arg), inv), true
		case "sinh":
			return MulOf(CoshOf(v.arg), inv), true
		case "cosh":
			return MulOf(SinhOf(v.arg), inv), true
		case "tan":
			return MulOf(N(-1), LogOf(CosOf(v.arg)), inv), true
		case "log":
			return MulOf(AddOf(MulOf(v.arg, e), MulOf(N(-1), v.arg)), inv), true
		}
	}
	return nil, false
}

// byParts integrates p*g where p is a polynomial in name and g is a single
// exp, sin, cos, sinh, cosh or log of a linear argument.
func byParts(factors []Expr, name string, depth int) (Expr, bool) {
	var g *Func
	var rest []Expr
	for _, f := range factors {
		fn, ok := f.(*Func)
		if ok && g == nil {
			g = fn
			continue
		}
		rest = append(rest, f)
	}
	if g == nil {
		return nil, false
	}
	p := MulOf(rest...)
	if Degree(p, name) < 1 {
		return nil, false
	}

	switch g.name {
	case "exp", "sin", "cos", "sinh", "cosh":
		// ∫p*g = p*G - ∫p'*G
		G, ok := integrate(g, name, depth+1)
		if !ok {
			return nil, false
		}
		tail, ok := integrate(Expand(MulOf(Diff(p, name), G)), name, depth+1)
		if !ok {
			return nil, false
		}
		return AddOf(MulOf(p, G), MulOf(N(-1), tail)), true
	case "log":
		// ∫p*log(u) = P*log(u) - ∫P*u'/u
		P, ok := integrate(Expand(p), name, depth+1)
		if !ok {
			return nil, false
		}
		tail, ok := integrate(Expand(MulOf(P, Diff(g, name))), name, depth+1)
		if !ok {
			return nil, false
		}
		return AddOf(MulOf(P, g), MulOf(N(-1), tail)), true
	}
	return nil, false
}
