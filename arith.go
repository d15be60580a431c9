package symcalc

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

const (
	// maxExactExponent bounds integer powers that are evaluated exactly.
	maxExactExponent = 4096
	// maxExactBits bounds the size of exact power results and radicands.
	maxExactBits = 1 << 14
)

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	constant := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		c, rest := splitCoeff(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], c)
	}

	var real, imag []Expr
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		term := scale(c, rests[key])
		if Has(term, I.name) {
			imag = append(imag, term)
		} else {
			real = append(real, term)
		}
	}
	sortTerms(real)
	sortTerms(imag)

	result := real
	if !constant.IsZero() {
		result = append(result, constant)
	}
	result = append(result, imag...)
	switch len(result) {
	case 0:
		return N(0)
	case 1:
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	var b strings.Builder
	for i, t := range a.terms {
		s := t.String()
		switch {
		case i == 0:
			b.WriteString(s)
		case strings.HasPrefix(s, "-"):
			b.WriteString(" - ")
			b.WriteString(s[1:])
		default:
			b.WriteString(" + ")
			b.WriteString(s)
		}
	}
	return b.String()
}

func (a *Add) Sub(name string, value Expr) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Sub(name, value)
	}
	return AddOf(terms...)
}

func (a *Add) Diff(name string) Expr {
	terms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		terms[i] = t.Diff(name)
	}
	return AddOf(terms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) Terms() []Expr { return a.terms }

// splitCoeff separates the leading rational coefficient of a term.
func splitCoeff(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) > 1 {
		if c, ok := m.factors[0].(*Num); ok {
			if len(m.factors) == 2 {
				return c, m.factors[1]
			}
			return c, &Mul{factors: m.factors[1:]}
		}
	}
	return N(1), e
}

// scale rebuilds c*rest without another simplification pass.
func scale(c *Num, rest Expr) Expr {
	if c.IsOne() {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...)}
	}
	return &Mul{factors: []Expr{c, rest}}
}

// sortTerms orders by descending degree, then by the coefficient-free text.
func sortTerms(terms []Expr) {
	type keyed struct {
		e   Expr
		deg float64
		key string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		_, rest := splitCoeff(t)
		ks[i] = keyed{e: t, deg: termDegree(rest), key: rest.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].deg != ks[j].deg {
			return ks[i].deg > ks[j].deg
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

func termDegree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if n, ok := v.exp.(*Num); ok {
			return termDegree(v.base) * n.Float64()
		}
	case *Mul:
		total := 0.0
		for _, f := range v.factors {
			total += termDegree(f)
		}
		return total
	case *Add:
		best := 0.0
		for _, t := range v.terms {
			best = math.Max(best, termDegree(t))
		}
		return best
	}
	return 0
}

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	// Group equal bases so that x*x**2 becomes x**3.
	type group struct {
		base Expr
		exps []Expr
	}
	coeff := N(1)
	groups := map[string]*group{}
	order := []string{}
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		g, seen := groups[key]
		if !seen {
			g = &group{base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := make([]Expr, 0, len(order))
	regroup := false
	for _, key := range order {
		g := groups[key]
		exp := g.exps[0]
		if len(g.exps) > 1 {
			exp = AddOf(g.exps...)
		}
		var f Expr = g.base
		if !isNumEqual(exp, 1) {
			f = PowOf(g.base, exp)
		}
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			regroup = true
			others = append(others, v.factors...)
		default:
			others = append(others, f)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}
	if regroup {
		return MulOf(append([]Expr{coeff}, others...)...)
	}
	if len(others) == 0 {
		return coeff
	}
	sortFactors(others)

	if !coeff.IsOne() && len(others) == 1 {
		if add, ok := others[0].(*Add); ok {
			terms := make([]Expr, len(add.terms))
			for i, t := range add.terms {
				terms[i] = MulOf(coeff, t)
			}
			return AddOf(terms...)
		}
	}
	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func sortFactors(factors []Expr) {
	type keyed struct {
		e    Expr
		rank int
		key  string
	}
	ks := make([]keyed, len(factors))
	for i, f := range factors {
		base := f
		if p, ok := f.(*Pow); ok {
			base = p.base
		}
		rank := 4
		switch base.(type) {
		case *Num, *Float:
			rank = 0
		case *Sym, *Const:
			rank = 1
		case *Func:
			rank = 2
		case *Add:
			rank = 3
		}
		ks[i] = keyed{e: f, rank: rank, key: base.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].rank != ks[j].rank {
			return ks[i].rank < ks[j].rank
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		factors[i] = ks[i].e
	}
}

// String renders the product as a fraction: negative powers and the
// coefficient's denominator go below the bar.
func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	coeff := N(1)
	factors := m.factors
	if c, ok := factors[0].(*Num); ok {
		coeff = c
		factors = factors[1:]
	}

	var numer, denom []string
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if n, ok := p.exp.(*Num); ok && n.IsNegative() {
				inv := numNeg(n)
				if inv.IsOne() {
					denom = append(denom, factorString(p.base))
				} else {
					denom = append(denom, (&Pow{base: p.base, exp: inv}).String())
				}
				continue
			}
		}
		numer = append(numer, factorString(f))
	}

	abs := new(big.Rat).Abs(coeff.val)
	if abs.Num().Cmp(big.NewInt(1)) != 0 {
		numer = append([]string{abs.Num().String()}, numer...)
	}
	if !abs.IsInt() {
		denom = append([]string{abs.Denom().String()}, denom...)
	}

	s := strings.Join(numer, "*")
	if len(numer) == 0 {
		s = "1"
	}
	if len(denom) > 0 {
		d := strings.Join(denom, "*")
		if len(denom) > 1 {
			d = "(" + d + ")"
		}
		s += "/" + d
	}
	if coeff.IsNegative() {
		s = "-" + s
	}
	return s
}

func factorString(e Expr) string {
	switch e.(type) {
	case *Add, *Mul:
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (m *Mul) Sub(name string, value Expr) Expr {
	factors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		factors[i] = f.Sub(name, value)
	}
	return MulOf(factors...)
}

func (m *Mul) Diff(name string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		factors := make([]Expr, 0, len(m.factors))
		factors = append(factors, fi.Diff(name))
		for j, fj := range m.factors {
			if j != i {
				factors = append(factors, fj)
			}
		}
		terms[i] = MulOf(factors...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow: base**exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	if bn, ok := base.(*Num); ok {
		if bn.IsZero() {
			// 0**-k stays as is so that evaluation can report it.
			if expIsNum && !en.IsNegative() {
				return N(0)
			}
			return &Pow{base: base, exp: exp}
		}
		if bn.IsOne() {
			return N(1)
		}
		if expIsNum {
			if r := numPow(bn, en); r != nil {
				return r
			}
		}
	}
	if c, ok := base.(*Const); ok && c == E {
		return ExpOf(exp)
	}
	if expIsNum && en.IsInteger() {
		switch b := base.(type) {
		case *Pow:
			return PowOf(b.base, MulOf(b.exp, en))
		case *Mul:
			factors := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				factors[i] = PowOf(f, en)
			}
			return MulOf(factors...)
		case *Func:
			if b.name == "exp" {
				return ExpOf(MulOf(en, b.arg))
			}
		}
	}
	// (c*rest)**e = c**e * rest**e holds for c > 0.
	if m, ok := base.(*Mul); ok && expIsNum {
		if c, ok := m.factors[0].(*Num); ok && !c.IsNegative() {
			var rest Expr = &Mul{factors: m.factors[1:]}
			if len(m.factors) == 2 {
				rest = m.factors[1]
			}
			return MulOf(PowOf(c, en), PowOf(rest, en))
		}
	}
	return &Pow{base: base, exp: exp}
}

// numPow evaluates b**e exactly when the result stays rational or a
// reduced radical. It returns nil when the power must stay symbolic.
func numPow(b, e *Num) Expr {
	if e.IsInteger() {
		k := e.val.Num()
		if !k.IsInt64() {
			return nil
		}
		n := k.Int64()
		if n > maxExactExponent || n < -maxExactExponent {
			return nil
		}
		size := int64(b.val.Num().BitLen() + b.val.Denom().BitLen())
		if n < 0 {
			size *= -n
		} else {
			size *= n
		}
		if size > maxExactBits {
			return nil
		}
		return numPowInt(b, n)
	}
	if b.IsNegative() {
		return nil
	}
	q := e.val.Denom()
	if !q.IsInt64() || q.Int64() > 64 {
		return nil
	}
	return radical(b, e)
}

// radical writes (a/d)**(P/Q) as c * m**(1/Q) with an integer radicand m
// free of small Q-th powers and a rational denominator.
func radical(b, e *Num) Expr {
	P := e.val.Num()
	Q := e.val.Denom()
	q := Q.Int64()

	// Split P/Q into a whole part n and a fraction f/Q with 0 < f < Q.
	n, f := new(big.Int).DivMod(P, Q, new(big.Int))
	if !n.IsInt64() || !f.IsInt64() {
		return nil
	}
	whole := numPow(b, &Num{val: new(big.Rat).SetInt(n)})
	if whole == nil {
		return nil
	}
	wholeNum, ok := whole.(*Num)
	if !ok {
		return nil
	}

	fi := f.Int64()
	a := b.val.Num()
	d := b.val.Denom()
	if int64(a.BitLen())*fi*q > maxExactBits || int64(d.BitLen())*fi*q > maxExactBits {
		return nil
	}
	// (a/d)**(f/Q) = (a**f * d**(f*(Q-1)))**(1/Q) / d**f
	radicand := new(big.Int).Exp(a, big.NewInt(fi), nil)
	radicand.Mul(radicand, new(big.Int).Exp(d, big.NewInt(fi*(q-1)), nil))
	below := new(big.Int).Exp(d, big.NewInt(fi), nil)

	k, m := extractRoot(radicand, q)
	coeff := numMul(wholeNum, &Num{val: new(big.Rat).SetFrac(k, below)})
	if m.Cmp(big.NewInt(1)) == 0 {
		return coeff
	}
	rad := &Pow{base: &Num{val: new(big.Rat).SetInt(m)}, exp: F(1, q)}
	if coeff.IsOne() {
		return rad
	}
	return &Mul{factors: []Expr{coeff, rad}}
}

// extractRoot splits r into k**q * m, pulling out small q-th powers and
// finishing with an exact q-th root test on the remainder.
func extractRoot(r *big.Int, q int64) (k, m *big.Int) {
	k = big.NewInt(1)
	m = new(big.Int).Set(r)
	Q := big.NewInt(q)
	rem := new(big.Int)
	quo := new(big.Int)
	for d := int64(2); d <= 1000; d++ {
		dq := new(big.Int).Exp(big.NewInt(d), Q, nil)
		if dq.Cmp(m) > 0 {
			break
		}
		for {
			quo.QuoRem(m, dq, rem)
			if rem.Sign() != 0 {
				break
			}
			m.Set(quo)
			k.Mul(k, big.NewInt(d))
		}
	}
	if root := intRoot(m, q); new(big.Int).Exp(root, Q, nil).Cmp(m) == 0 {
		k.Mul(k, root)
		m = big.NewInt(1)
	}
	return k, m
}

// intRoot returns floor(m**(1/q)) for m >= 0.
func intRoot(m *big.Int, q int64) *big.Int {
	if q == 2 {
		return new(big.Int).Sqrt(m)
	}
	Q := big.NewInt(q)
	lo := big.NewInt(0)
	hi := new(big.Int).Lsh(big.NewInt(1), uint(m.BitLen()/int(q)+1))
	one := big.NewInt(1)
	for lo.Cmp(hi) < 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Add(mid, one)
		mid.Rsh(mid, 1)
		if new(big.Int).Exp(mid, Q, nil).Cmp(m) <= 0 {
			lo = mid
		} else {
			hi = mid.Sub(mid, one)
		}
	}
	return lo
}

func (p *Pow) String() string {
	if isNum(p.exp, 1, 2) {
		return "sqrt(" + p.base.String() + ")"
	}
	if isNum(p.exp, -1, 1) {
		return "1/" + factorString(p.base)
	}
	if isNum(p.exp, -1, 2) {
		return "1/sqrt(" + p.base.String() + ")"
	}
	return powBase(p.base) + "**" + powExp(p.exp)
}

func powBase(e Expr) string {
	switch v := e.(type) {
	case *Add, *Mul, *Pow, *Integral:
		return "(" + e.String() + ")"
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			return "(" + e.String() + ")"
		}
	case *Float:
		if v.v < 0 {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}

func powExp(e Expr) string {
	switch v := e.(type) {
	case *Sym, *Const, *Func:
		return e.String()
	case *Num:
		if !v.IsNegative() && v.IsInteger() {
			return e.String()
		}
	}
	return "(" + e.String() + ")"
}

func (p *Pow) Sub(name string, value Expr) Expr {
	return PowOf(p.base.Sub(name, value), p.exp.Sub(name, value))
}

func (p *Pow) Diff(name string) Expr {
	du := p.base.Diff(name)
	dv := p.exp.Diff(name)
	if !Has(p.exp, name) {
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, N(-1))), du)
	}
	if !Has(p.base, name) {
		return MulOf(PowOf(p.base, p.exp), LogOf(p.base), dv)
	}
	logTerm := MulOf(dv, LogOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if b.IsZero() && e.IsNegative() {
		return nil, false
	}
	if e.IsInteger() {
		if r, ok := numPow(b, e).(*Num); ok {
			return r, true
		}
	}
	bf, _ := b.val.Float64()
	ef, _ := e.val.Float64()
	pf := math.Pow(bf, ef)
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return nil, false
	}
	return NFloat(pf), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }
