package symcalc

import "fmt"

// Evalf evaluates e to a decimal with 15 significant digits, the way
// sympy's evalf prints: 3 + 4*2 renders as 11.0000000000000.
//
// An expression with free symbols is returned in its simplified form.
// A division by zero anywhere in e, or a result that is not a finite real
// number, is an *EvalError.
func Evalf(e Expr) (string, error) {
	if err := checkDivision(e); err != nil {
		return "", err
	}
	s := e.Simplify()
	if len(FreeSymbols(s)) > 0 {
		return s.String(), nil
	}
	n, ok := s.Eval()
	if !ok {
		return "", &EvalError{Msg: fmt.Sprintf("cannot evaluate %s to a real number", s)}
	}
	return FormatDecimal(n.val), nil
}

// checkDivision walks e as written and reports a negative power of a base
// that simplifies to zero. Simplification alone would fold 0/0 to 0.
func checkDivision(e Expr) error {
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if err := checkDivision(t); err != nil {
				return err
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if err := checkDivision(f); err != nil {
				return err
			}
		}
	case *Pow:
		if err := checkDivision(v.base); err != nil {
			return err
		}
		if err := checkDivision(v.exp); err != nil {
			return err
		}
		if n, ok := v.exp.Simplify().(*Num); ok && n.IsNegative() && isNumEqual(v.base.Simplify(), 0) {
			return &EvalError{Msg: "division by zero"}
		}
	case *Func:
		return checkDivision(v.arg)
	}
	return nil
}
