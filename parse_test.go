package symcalc_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/njchilds90/symcalc"
)

// ============================================================
// Parse tests
// ============================================================

func TestParse_Rendering(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2*x + 3", "2*x + 3"},
		{"x^2", "x**2"},
		{"x**2", "x**2"},
		{"-x**2", "-x**2"},
		{"2**-1", "1/2"},
		{"2**3**2", "512"},
		{"(x - 1)*(x + 1)", "(x + 1)*(x - 1)"},
		{"x - 4", "x - 4"},
		{"6/4", "3/2"},
		{"0.5", "1/2"},
		{"ln(x)", "log(x)"},
		{"abs(-3)", "3"},
		{"sqrt(8)", "2*sqrt(2)"},
		{"log(8, 2)", "log(8)/log(2)"},
		{"pi", "pi"},
		{"E", "E"},
		{"sin(-x)", "-sin(x)"},
		{"x**-1", "1/x"},
		{"x^-1", "1/x"},
		{"2*-x", "-2*x"},
		{"x/-2", "-x/2"},
		{"--x", "x"},
		{"-+-x", "x"},
		{"1e-3", "1/1000"},
		{"2.5E3", "2500"},
		{".5", "1/2"},
		{"12345678901234567891", "12345678901234567891"},
	}
	for _, c := range cases {
		e, err := symcalc.Parse(c.in)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", c.in, err)
			continue
		}
		if got := symcalc.String(e); got != c.want {
			t.Errorf("Parse(%q): want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"2x+",
		"(x",
		"x +",
		"sin()",
		"sin(x, y)",
		"x % 2",
		"'abc'",
		"[x]",
		"x = 1",
		"1e99999",
	}
	for _, in := range inputs {
		_, err := symcalc.Parse(in)
		if err == nil {
			t.Errorf("Parse(%q): want error", in)
			continue
		}
		var pe *symcalc.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Parse(%q): want *ParseError, got %T", in, err)
		}
		if err.Error() == "" {
			t.Errorf("Parse(%q): empty error message", in)
		}
	}
}

func TestParse_LargeExponent(t *testing.T) {
	e, err := symcalc.Parse("1e400")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if want := "1" + strings.Repeat("0", 400); symcalc.String(e) != want {
		t.Errorf("want 10**400 written out, got %s", symcalc.String(e))
	}
}

func TestParse_ErrorQuotesSourceNumber(t *testing.T) {
	_, err := symcalc.Parse("2.5x")
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), "2.5") {
		t.Errorf("want the message to quote 2.5, got %q", err.Error())
	}
}

func TestParse_KeepsDivisionByZero(t *testing.T) {
	// 0/0 must survive parsing so that evaluation can reject it.
	if _, err := symcalc.Parse("0/0"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("want panic on malformed input")
		}
	}()
	symcalc.MustParse("2x+")
}
