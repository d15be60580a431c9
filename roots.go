package symcalc

import (
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
	"sort"
)

// ============================================================
// Rational polynomial helpers
// ============================================================

// Polynomials here are coefficient slices indexed by degree.

func polyTrim(c []*big.Rat) []*big.Rat {
	for len(c) > 1 && c[len(c)-1].Sign() == 0 {
		c = c[:len(c)-1]
	}
	return c
}

func polyDeriv(c []*big.Rat) []*big.Rat {
	if len(c) <= 1 {
		return []*big.Rat{new(big.Rat)}
	}
	out := make([]*big.Rat, len(c)-1)
	for i := 1; i < len(c); i++ {
		out[i-1] = new(big.Rat).Mul(c[i], big.NewRat(int64(i), 1))
	}
	return out
}

// polyDivMod divides a by b, which must have a non-zero leading coefficient.
func polyDivMod(a, b []*big.Rat) (q, r []*big.Rat) {
	r = make([]*big.Rat, len(a))
	for i, v := range a {
		r[i] = new(big.Rat).Set(v)
	}
	db := len(b) - 1
	if len(a)-1 < db {
		return []*big.Rat{new(big.Rat)}, polyTrim(r)
	}
	q = make([]*big.Rat, len(a)-db)
	for i := range q {
		q[i] = new(big.Rat)
	}
	lead := b[db]
	for d := len(a) - 1; d >= db; d-- {
		if r[d].Sign() == 0 {
			continue
		}
		f := new(big.Rat).Quo(r[d], lead)
		q[d-db] = f
		for i := 0; i <= db; i++ {
			r[d-db+i].Sub(r[d-db+i], new(big.Rat).Mul(f, b[i]))
		}
	}
	return q, polyTrim(r)
}

func polyIsZero(c []*big.Rat) bool { return len(c) == 1 && c[0].Sign() == 0 }

func polyGCD(a, b []*big.Rat) []*big.Rat {
	a, b = polyTrim(a), polyTrim(b)
	for !polyIsZero(b) {
		_, r := polyDivMod(a, b)
		a, b = b, r
	}
	return a
}

// squarefree removes repeated factors: c / gcd(c, c').
func squarefree(c []*big.Rat) []*big.Rat {
	g := polyGCD(c, polyDeriv(c))
	if len(g) <= 1 {
		return c
	}
	q, _ := polyDivMod(c, g)
	return polyTrim(q)
}

// ============================================================
// Complex polynomial roots
// ============================================================

const (
	maxDurandKernerIter = 2000
	// rootCleanTol treats a real or imaginary part this small, relative to
	// the root's modulus, as zero.
	rootCleanTol = 1e-10
)

// complexRoots finds every root of a square-free rational polynomial by
// Durand-Kerner iteration. Real roots come back as decimals, the rest as
// re + im*I. Conjugate roots, and for even polynomials negated roots, share
// identical digits.
func complexRoots(c []*big.Rat) ([]Expr, error) {
	n := len(c) - 1
	lead, _ := c[n].Float64()
	a := make([]complex128, n+1)
	bound := 0.0
	for i, ci := range c {
		f, _ := ci.Float64()
		a[i] = complex(f/lead, 0)
		if i < n {
			bound = math.Max(bound, math.Abs(f/lead))
		}
	}
	eval := func(z complex128) complex128 {
		acc := complex(0, 0)
		for i := n; i >= 0; i-- {
			acc = acc*z + a[i]
		}
		return acc
	}

	radius := 1 + bound
	z := make([]complex128, n)
	for k := range z {
		z[k] = cmplx.Rect(radius, 2*math.Pi*float64(k)/float64(n)+0.4)
	}
	converged := false
	for iter := 0; iter < maxDurandKernerIter && !converged; iter++ {
		converged = true
		for k := range z {
			den := complex(1, 0)
			for j := range z {
				if j != k {
					den *= z[k] - z[j]
				}
			}
			if den == 0 {
				den = complex(1e-12, 1e-12)
			}
			delta := eval(z[k]) / den
			z[k] -= delta
			if cmplx.Abs(delta) > 1e-15*(1+cmplx.Abs(z[k])) {
				converged = false
			}
		}
	}

	for k := range z {
		scale := 0.0
		for i := n; i >= 0; i-- {
			scale += cmplx.Abs(a[i]) * math.Pow(cmplx.Abs(z[k]), float64(i))
		}
		if cmplx.IsNaN(z[k]) || cmplx.Abs(eval(z[k])) > 1e-8*scale {
			return nil, &SolveError{Msg: fmt.Sprintf("could not locate the roots of the degree %d polynomial", n)}
		}
		z[k] = cleanRoot(z[k])
	}

	even := true
	for i := 1; i <= n; i += 2 {
		if c[i].Sign() != 0 {
			even = false
			break
		}
	}
	symmetrize(z, even)

	roots := make([]Expr, len(z))
	for k, v := range z {
		roots[k] = complexExpr(v)
	}
	return roots, nil
}

func cleanRoot(z complex128) complex128 {
	m := cmplx.Abs(z)
	re, im := real(z), imag(z)
	if math.Abs(im) <= rootCleanTol*(1+m) {
		im = 0
	}
	if math.Abs(re) <= rootCleanTol*(1+m) {
		re = 0
	}
	return complex(re, im)
}

// symmetrize gives roots related by conjugation (and by negation when even
// is set) the same magnitudes, averaged over the group.
func symmetrize(z []complex128, even bool) {
	fold := func(v complex128) complex128 {
		re := real(v)
		if even {
			re = math.Abs(re)
		}
		return complex(re, math.Abs(imag(v)))
	}
	used := make([]bool, len(z))
	for i := range z {
		if used[i] {
			continue
		}
		rep := fold(z[i])
		group := []int{i}
		for j := i + 1; j < len(z); j++ {
			if !used[j] && cmplx.Abs(fold(z[j])-rep) <= 1e-7*(1+cmplx.Abs(rep)) {
				group = append(group, j)
			}
		}
		var sum complex128
		for _, m := range group {
			sum += fold(z[m])
		}
		avg := sum / complex(float64(len(group)), 0)
		for _, m := range group {
			used[m] = true
			re, im := real(avg), imag(avg)
			if even && real(z[m]) < 0 {
				re = -re
			}
			if imag(z[m]) < 0 {
				im = -im
			}
			z[m] = complex(re, im)
		}
	}
}

func complexExpr(z complex128) Expr {
	re, im := real(z), imag(z)
	var parts []Expr
	if re != 0 || im == 0 {
		parts = append(parts, NewFloat(re))
	}
	if im > 0 {
		parts = append(parts, MulOf(NewFloat(im), I))
	} else if im < 0 {
		parts = append(parts, MulOf(N(-1), NewFloat(-im), I))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return AddOf(parts...)
}

// ============================================================
// Transcendental equations
// ============================================================

const (
	// transcendentalRange is the half-width of the scan for equations that
	// are not periodic in the unknown.
	transcendentalRange = 100.0
	// maxPeriod bounds, in multiples of pi, the periods scanned as periodic.
	maxPeriod = 64
	// maxNumericRoots caps the roots a scan may report.
	maxNumericRoots = 32
	// maxPiDenominator bounds q when a root is recognized as p*pi/q.
	maxPiDenominator = 24
)

// trigPeriods holds the period of f(x) in multiples of pi.
var trigPeriods = map[string]int64{"sin": 2, "cos": 2, "tan": 1}

// transcendentalRoots locates the real roots of a non-polynomial e in one
// unknown. A periodic e reports the roots in [0, period), with multiples of
// pi made exact; anything else is scanned on [-100, 100].
func transcendentalRoots(e Expr, name string) ([]Expr, error) {
	var (
		xs     []float64
		period float64
	)
	if p, ok := periodOf(e, name); ok && p != nil && p.Cmp(big.NewRat(maxPeriod, 1)) <= 0 {
		f, _ := p.Float64()
		period = f * math.Pi
		xs = newtonScan(e, name, 0, period)
		xs = reduceModulo(e, name, xs, period)
	} else {
		xs = newtonScan(e, name, -transcendentalRange, transcendentalRange)
	}
	if len(xs) == 0 {
		return nil, &SolveError{Msg: fmt.Sprintf("no real solutions found for %s = 0", e)}
	}
	if len(xs) > maxNumericRoots {
		return nil, &SolveError{Msg: fmt.Sprintf("%s = 0 has too many solutions to list", e)}
	}
	roots := make([]Expr, len(xs))
	for i, x := range xs {
		roots[i] = decimalRoot(x, period > 0)
	}
	return roots, nil
}

// periodOf returns the period of e in name as a multiple of pi. A nil
// period with ok set means e does not depend on name.
func periodOf(e Expr, name string) (*big.Rat, bool) {
	if !Has(e, name) {
		return nil, true
	}
	var parts []Expr
	switch v := e.(type) {
	case *Func:
		if base, ok := trigPeriods[v.name]; ok {
			if a, _, ok := linearCoeffs(v.arg, name); ok {
				if n, ok := a.(*Num); ok && !n.IsZero() {
					return new(big.Rat).Quo(big.NewRat(base, 1), new(big.Rat).Abs(n.val)), true
				}
			}
		}
		parts = []Expr{v.arg}
	case *Add:
		parts = v.terms
	case *Mul:
		parts = v.factors
	case *Pow:
		parts = []Expr{v.base, v.exp}
	default:
		return nil, false
	}
	var period *big.Rat
	for _, part := range parts {
		p, ok := periodOf(part, name)
		if !ok {
			return nil, false
		}
		period = lcmRat(period, p)
	}
	return period, true
}

// lcmRat is the least common multiple of two positive rationals; nil is
// the identity.
func lcmRat(a, b *big.Rat) *big.Rat {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	x := new(big.Int).Mul(a.Num(), b.Denom())
	y := new(big.Int).Mul(b.Num(), a.Denom())
	g := new(big.Int).GCD(nil, nil, x, y)
	l := new(big.Int).Mul(x, y)
	l.Quo(l, g)
	return new(big.Rat).SetFrac(l, new(big.Int).Mul(a.Denom(), b.Denom()))
}

// newtonScan runs Newton's method from evenly spaced points of [lo, hi]
// and returns the distinct roots it converges to, ascending.
func newtonScan(e Expr, name string, lo, hi float64) []float64 {
	const (
		starts  = 400
		maxIter = 100
	)
	df := Diff(e, name)
	span := hi - lo
	var found []float64
	for i := 0; i <= starts; i++ {
		x := lo + span*float64(i)/starts
		converged := false
		for iter := 0; iter < maxIter; iter++ {
			fx, ok := floatEval(e, name, x)
			if !ok {
				break
			}
			if fx == 0 {
				converged = true
				break
			}
			dfx, ok := floatEval(df, name, x)
			if !ok || math.Abs(dfx) < 1e-300 {
				break
			}
			step := fx / dfx
			x -= step
			if x < lo-span || x > hi+span {
				break
			}
			if math.Abs(step) <= 1e-13*(1+math.Abs(x)) {
				converged = true
				break
			}
		}
		if converged {
			found = addRoot(found, e, name, x)
		}
	}
	sort.Float64s(found)
	return found
}

// reduceModulo maps roots into [0, period) and drops the duplicates this
// creates.
func reduceModulo(e Expr, name string, xs []float64, period float64) []float64 {
	var out []float64
	for _, x := range xs {
		x = math.Mod(x, period)
		if x < 0 {
			x += period
		}
		if period-x <= 1e-9*period {
			x = 0
		}
		out = addRoot(out, e, name, x)
	}
	sort.Float64s(out)
	return out
}

func addRoot(found []float64, e Expr, name string, x float64) []float64 {
	if fx, ok := floatEval(e, name, x); !ok || math.Abs(fx) > 1e-7 {
		return found
	}
	if math.Abs(x) < 1e-12 {
		x = 0
	}
	for _, r := range found {
		if math.Abs(r-x) <= 1e-7*(1+math.Abs(r)) {
			return found
		}
	}
	return append(found, x)
}

// decimalRoot renders x, as p*pi/q when trig is set and x is such a
// multiple.
func decimalRoot(x float64, trig bool) Expr {
	if x == 0 {
		return N(0)
	}
	if trig {
		t := x / math.Pi
		for q := int64(1); q <= maxPiDenominator; q++ {
			p := math.Round(t * float64(q))
			if math.Abs(t-p/float64(q)) < 1e-12 {
				return MulOf(F(int64(p), q), Pi)
			}
		}
	}
	return NewFloat(x)
}
