package symcalc

import (
	"math"
	"math/big"
)

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LogOf(arg Expr) Expr  { return funcOf("log", arg).Simplify() }
func AbsOf(arg Expr) Expr  { return funcOf("Abs", arg).Simplify() }
func AsinOf(arg Expr) Expr { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg).Simplify() }

// FuncOf applies a function by name. ok is false for unknown names.
func FuncOf(name string, arg Expr) (Expr, bool) {
	if _, known := floatFuncs[name]; !known {
		return nil, false
	}
	return funcOf(name, arg).Simplify(), true
}

var floatFuncs = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  tan,
	"asin": math.Asin,
	"acos": math.Acos,
	"atan": math.Atan,
	"sinh": math.Sinh,
	"cosh": math.Cosh,
	"tanh": math.Tanh,
	"exp":  math.Exp,
	"log":  math.Log,
	"Abs":  math.Abs,
}

// tan is undefined where cos vanishes; float64 pi/2 lands near, not on, the pole.
func tan(a float64) float64 {
	if math.Abs(math.Cos(a)) < 1e-12 {
		return math.NaN()
	}
	return math.Tan(a)
}

// Odd functions pull a negative coefficient out; even ones drop it.
var (
	oddFuncs  = map[string]bool{"sin": true, "tan": true, "asin": true, "atan": true, "sinh": true, "tanh": true}
	evenFuncs = map[string]bool{"cos": true, "cosh": true, "Abs": true}
)

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()

	c, rest := splitCoeff(arg)
	if n, ok := arg.(*Num); ok {
		c, rest = n, N(1)
	}
	if c.IsNegative() {
		flipped := MulOf(numNeg(c), rest)
		if oddFuncs[f.name] {
			return MulOf(N(-1), funcOf(f.name, flipped).Simplify())
		}
		if evenFuncs[f.name] {
			return funcOf(f.name, flipped).Simplify()
		}
	}

	switch f.name {
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if isNumEqual(arg, 0) {
			return N(0)
		}
		if arg == Expr(Pi) && (f.name == "sin" || f.name == "tan") {
			return N(0)
		}
	case "cos", "cosh":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if arg == Expr(Pi) && f.name == "cos" {
			return N(-1)
		}
	case "acos":
		if isNumEqual(arg, 1) {
			return N(0)
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if isNumEqual(arg, 1) {
			return E
		}
		if inner, ok := arg.(*Func); ok && inner.name == "log" {
			return inner.arg
		}
	case "log":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if arg == Expr(E) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "Abs":
		if n, ok := arg.(*Num); ok {
			return NRat(new(big.Rat).Abs(n.val))
		}
		if inner, ok := arg.(*Func); ok && inner.name == "Abs" {
			return inner
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) Sub(name string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(name, value)).Simplify()
}

func (f *Func) Diff(name string) Expr {
	du := f.arg.Diff(name)
	if isNumEqual(du.Simplify(), 0) {
		return N(0)
	}
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "log":
		outer = PowOf(f.arg, N(-1))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	case "Abs":
		outer = MulOf(f.arg, PowOf(f, N(-1)))
	default:
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du)
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	fn, known := floatFuncs[f.name]
	if !known {
		return nil, false
	}
	v := fn(n.Float64())
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return NFloat(v), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) Name() string { return f.name }
func (f *Func) Arg() Expr    { return f.arg }
