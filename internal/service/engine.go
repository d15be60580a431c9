package service

import (
	"strings"

	"github.com/njchilds90/symcalc"
)

// Engine is everything the service needs from a computer-algebra system.
type Engine interface {
	Parse(text string) (symcalc.Expr, error)
	Solve(lhs, rhs symcalc.Expr, variable string) ([]symcalc.Expr, error)
	Diff(expr symcalc.Expr, variable string) symcalc.Expr
	// Integrate returns an unevaluated integral when no closed form exists.
	Integrate(expr symcalc.Expr, variable string) symcalc.Expr
	Evalf(expr symcalc.Expr) (string, error)
	Render(expr symcalc.Expr) string
}

// CAS is the Engine backed by the symcalc package.
type CAS struct{}

var _ Engine = CAS{}

func (CAS) Parse(text string) (symcalc.Expr, error) { return symcalc.Parse(text) }

func (CAS) Solve(lhs, rhs symcalc.Expr, variable string) ([]symcalc.Expr, error) {
	return symcalc.Solve(symcalc.AddOf(lhs, symcalc.MulOf(symcalc.N(-1), rhs)), variable)
}

func (CAS) Diff(expr symcalc.Expr, variable string) symcalc.Expr {
	return symcalc.Diff(expr, variable)
}

func (CAS) Integrate(expr symcalc.Expr, variable string) symcalc.Expr {
	result, _ := symcalc.Integrate(expr, variable)
	return result
}

func (CAS) Evalf(expr symcalc.Expr) (string, error) { return symcalc.Evalf(expr) }

func (CAS) Render(expr symcalc.Expr) string { return symcalc.String(expr) }

// renderList formats roots as [r1, r2, ...] through the engine renderer.
func renderList(e Engine, roots []symcalc.Expr) string {
	parts := make([]string, len(roots))
	for i, r := range roots {
		parts[i] = e.Render(r)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
