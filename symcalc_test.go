package symcalc_test

import (
	"math/big"
	"testing"

	"github.com/njchilds90/symcalc"
)

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := symcalc.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := symcalc.F(2, 6)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_Diff_IsZero(t *testing.T) {
	result := symcalc.N(5).Diff("x")
	if symcalc.String(result) != "0" {
		t.Errorf("d/dx(5) should be 0, got %s", symcalc.String(result))
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Sub_Match(t *testing.T) {
	result := symcalc.Subs(symcalc.S("x"), "x", symcalc.N(3))
	if result.String() != "3" {
		t.Errorf("want 3, got %s", result.String())
	}
}

func TestSym_Sub_NoMatch(t *testing.T) {
	result := symcalc.Subs(symcalc.S("x"), "y", symcalc.N(3))
	if result.String() != "x" {
		t.Errorf("want x, got %s", result.String())
	}
}

// ============================================================
// Add tests
// ============================================================

func TestAdd_Simple(t *testing.T) {
	expr := symcalc.AddOf(symcalc.S("x"), symcalc.N(3))
	if expr.String() != "x + 3" {
		t.Errorf("want 'x + 3', got %s", expr.String())
	}
}

func TestAdd_NegativeConstant(t *testing.T) {
	expr := symcalc.AddOf(symcalc.S("x"), symcalc.N(-4))
	if expr.String() != "x - 4" {
		t.Errorf("want 'x - 4', got %s", expr.String())
	}
}

func TestAdd_LikeTerms(t *testing.T) {
	x := symcalc.S("x")
	expr := symcalc.AddOf(x, x)
	if expr.String() != "2*x" {
		t.Errorf("want '2*x', got %s", expr.String())
	}
}

func TestAdd_CollapseToZero(t *testing.T) {
	x := symcalc.S("x")
	expr := symcalc.AddOf(x, symcalc.MulOf(symcalc.N(-1), x))
	if expr.String() != "0" {
		t.Errorf("want 0, got %s", expr.String())
	}
}

func TestAdd_DegreeOrder(t *testing.T) {
	x := symcalc.S("x")
	expr := symcalc.AddOf(symcalc.N(1), x, symcalc.PowOf(x, symcalc.N(2)))
	if expr.String() != "x**2 + x + 1" {
		t.Errorf("want 'x**2 + x + 1', got %s", expr.String())
	}
}

func TestAdd_Diff(t *testing.T) {
	// d/dx(x^2 + 3x + 1) = 2x + 3
	x := symcalc.S("x")
	expr := symcalc.AddOf(symcalc.PowOf(x, symcalc.N(2)), symcalc.MulOf(symcalc.N(3), x), symcalc.N(1))
	d := symcalc.Diff(expr, "x")
	if d.String() != "2*x + 3" {
		t.Errorf("want '2*x + 3', got %s", d.String())
	}
}

// ============================================================
// Mul tests
// ============================================================

func TestMul_ZeroCollapse(t *testing.T) {
	expr := symcalc.MulOf(symcalc.N(0), symcalc.S("x"))
	if expr.String() != "0" {
		t.Errorf("want 0, got %s", expr.String())
	}
}

func TestMul_Negation(t *testing.T) {
	expr := symcalc.MulOf(symcalc.N(-1), symcalc.S("x"))
	if expr.String() != "-x" {
		t.Errorf("want -x, got %s", expr.String())
	}
}

func TestMul_CombinePowers(t *testing.T) {
	x := symcalc.S("x")
	expr := symcalc.MulOf(x, symcalc.PowOf(x, symcalc.N(2)))
	if expr.String() != "x**3" {
		t.Errorf("want x**3, got %s", expr.String())
	}
}

func TestMul_Cancel(t *testing.T) {
	x := symcalc.S("x")
	expr := symcalc.MulOf(x, symcalc.PowOf(x, symcalc.N(-1)))
	if expr.String() != "1" {
		t.Errorf("want 1, got %s", expr.String())
	}
}

func TestMul_Fraction(t *testing.T) {
	x := symcalc.S("x")
	expr := symcalc.MulOf(symcalc.F(1, 2), symcalc.PowOf(x, symcalc.N(2)))
	if expr.String() != "x**2/2" {
		t.Errorf("want x**2/2, got %s", expr.String())
	}
}

func TestMul_ProductRule(t *testing.T) {
	// d/dx(x*sin(x)) = x*cos(x) + sin(x)
	x := symcalc.S("x")
	d := symcalc.Diff(symcalc.MulOf(x, symcalc.SinOf(x)), "x")
	if d.String() != "x*cos(x) + sin(x)" {
		t.Errorf("want 'x*cos(x) + sin(x)', got %s", d.String())
	}
}

// ============================================================
// Pow tests
// ============================================================

func TestPow_ZeroExp(t *testing.T) {
	if s := symcalc.PowOf(symcalc.S("x"), symcalc.N(0)).String(); s != "1" {
		t.Errorf("want 1, got %s", s)
	}
}

func TestPow_OneExp(t *testing.T) {
	if s := symcalc.PowOf(symcalc.S("x"), symcalc.N(1)).String(); s != "x" {
		t.Errorf("want x, got %s", s)
	}
}

func TestPow_Exact(t *testing.T) {
	if s := symcalc.PowOf(symcalc.N(2), symcalc.N(10)).String(); s != "1024" {
		t.Errorf("want 1024, got %s", s)
	}
	if s := symcalc.PowOf(symcalc.N(2), symcalc.N(-2)).String(); s != "1/4" {
		t.Errorf("want 1/4, got %s", s)
	}
}

func TestPow_Radicals(t *testing.T) {
	cases := map[int64]string{
		4: "2",
		2: "sqrt(2)",
		8: "2*sqrt(2)",
	}
	for n, want := range cases {
		if got := symcalc.SqrtOf(symcalc.N(n)).String(); got != want {
			t.Errorf("sqrt(%d): want %s, got %s", n, want, got)
		}
	}
}

func TestPow_SqrtOfProduct(t *testing.T) {
	expr := symcalc.SqrtOf(symcalc.MulOf(symcalc.N(4), symcalc.S("k")))
	if expr.String() != "2*sqrt(k)" {
		t.Errorf("want 2*sqrt(k), got %s", expr.String())
	}
}

func TestPow_Reciprocal(t *testing.T) {
	if s := symcalc.PowOf(symcalc.S("x"), symcalc.N(-1)).String(); s != "1/x" {
		t.Errorf("want 1/x, got %s", s)
	}
}

func TestPow_Diff_PowerRule(t *testing.T) {
	x := symcalc.S("x")
	d := symcalc.Diff(symcalc.PowOf(x, symcalc.N(3)), "x")
	if d.String() != "3*x**2" {
		t.Errorf("want 3*x**2, got %s", d.String())
	}
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_SpecialValues(t *testing.T) {
	zero := symcalc.N(0)
	cases := []struct {
		got  symcalc.Expr
		want string
	}{
		{symcalc.SinOf(zero), "0"},
		{symcalc.CosOf(zero), "1"},
		{symcalc.ExpOf(zero), "1"},
		{symcalc.LogOf(symcalc.N(1)), "0"},
		{symcalc.LogOf(symcalc.E), "1"},
		{symcalc.CosOf(symcalc.Pi), "-1"},
		{symcalc.AbsOf(symcalc.N(-3)), "3"},
	}
	for _, c := range cases {
		if c.got.String() != c.want {
			t.Errorf("want %s, got %s", c.want, c.got.String())
		}
	}
}

func TestFunc_Parity(t *testing.T) {
	negX := symcalc.MulOf(symcalc.N(-1), symcalc.S("x"))
	if s := symcalc.SinOf(negX).String(); s != "-sin(x)" {
		t.Errorf("want -sin(x), got %s", s)
	}
	if s := symcalc.CosOf(negX).String(); s != "cos(x)" {
		t.Errorf("want cos(x), got %s", s)
	}
}

func TestFunc_Sin_Diff(t *testing.T) {
	d := symcalc.Diff(symcalc.SinOf(symcalc.S("x")), "x")
	if d.String() != "cos(x)" {
		t.Errorf("want cos(x), got %s", d.String())
	}
}

func TestFunc_Exp_ChainRule(t *testing.T) {
	x := symcalc.S("x")
	d := symcalc.Diff(symcalc.ExpOf(symcalc.MulOf(symcalc.N(2), x)), "x")
	if d.String() != "2*exp(2*x)" {
		t.Errorf("want 2*exp(2*x), got %s", d.String())
	}
}

func TestFunc_Log_Diff(t *testing.T) {
	d := symcalc.Diff(symcalc.LogOf(symcalc.S("x")), "x")
	if d.String() != "1/x" {
		t.Errorf("want 1/x, got %s", d.String())
	}
}

func TestFuncOf_Unknown(t *testing.T) {
	if _, ok := symcalc.FuncOf("gamma", symcalc.S("x")); ok {
		t.Error("want unknown function to be rejected")
	}
}

// ============================================================
// Expand / polynomial tests
// ============================================================

func TestExpand_Square(t *testing.T) {
	x := symcalc.S("x")
	expr := symcalc.Expand(symcalc.PowOf(symcalc.AddOf(x, symcalc.N(1)), symcalc.N(2)))
	if expr.String() != "x**2 + 2*x + 1" {
		t.Errorf("want 'x**2 + 2*x + 1', got %s", expr.String())
	}
}

func TestExpand_Distribution(t *testing.T) {
	x := symcalc.S("x")
	expr := symcalc.Expand(symcalc.MulOf(x, symcalc.AddOf(x, symcalc.N(2))))
	if expr.String() != "x**2 + 2*x" {
		t.Errorf("want 'x**2 + 2*x', got %s", expr.String())
	}
}

func TestFreeSymbols(t *testing.T) {
	got := symcalc.FreeSymbols(symcalc.MustParse("z + x*y + pi"))
	want := []string{"x", "y", "z"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("want %v, got %v", want, got)
		}
	}
}

func TestDegree(t *testing.T) {
	cases := map[string]int{
		"7":             0,
		"2*x + 1":       1,
		"(x + 1)**2":    2,
		"x**3 - x":      3,
		"sin(x)":        -1,
		"x**2 + 1/x":    -1,
		"y*x**2 + y**5": 2,
	}
	for text, want := range cases {
		if got := symcalc.Degree(symcalc.MustParse(text), "x"); got != want {
			t.Errorf("Degree(%s): want %d, got %d", text, want, got)
		}
	}
}

func TestPolyCoeffs(t *testing.T) {
	coeffs, ok := symcalc.PolyCoeffs(symcalc.MustParse("3*x**2 - 2*x + 5"), "x")
	if !ok {
		t.Fatal("want polynomial")
	}
	want := map[int]string{2: "3", 1: "-2", 0: "5"}
	for d, w := range want {
		if coeffs[d] == nil || coeffs[d].String() != w {
			t.Errorf("degree %d: want %s, got %v", d, w, coeffs[d])
		}
	}
}

func TestCollect(t *testing.T) {
	expr := symcalc.Collect(symcalc.MustParse("a*x + b*x + 1"), "x")
	if expr.String() != "x*(a + b) + 1" && expr.String() != "(a + b)*x + 1" {
		t.Errorf("unexpected collected form %s", expr.String())
	}
}

// ============================================================
// Formatting tests
// ============================================================

func TestFormatDecimal(t *testing.T) {
	cases := []struct {
		in   *big.Rat
		want string
	}{
		{big.NewRat(11, 1), "11.0000000000000"},
		{big.NewRat(1, 3), "0.333333333333333"},
		{big.NewRat(-5, 2), "-2.50000000000000"},
		{big.NewRat(0, 1), "0"},
		{new(big.Rat).SetInt64(100000000000000000), "1.00000000000000e+17"},
	}
	for _, c := range cases {
		if got := symcalc.FormatDecimal(c.in); got != c.want {
			t.Errorf("FormatDecimal(%s): want %s, got %s", c.in.RatString(), c.want, got)
		}
	}
}

func TestDeterminism(t *testing.T) {
	text := "x**3 + 2*y*x - sin(x)/3 + 7"
	first := symcalc.String(symcalc.MustParse(text))
	for i := 0; i < 20; i++ {
		if got := symcalc.String(symcalc.MustParse(text)); got != first {
			t.Fatalf("non-deterministic rendering: %s vs %s", first, got)
		}
	}
}
