package symcalc

// ParseError reports text that could not be turned into an expression.
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string { return e.Msg }

// SolveError reports an equation whose solutions could not be determined.
type SolveError struct{ Msg string }

func (e *SolveError) Error() string { return e.Msg }

// EvalError reports a numeric evaluation that has no finite real value.
type EvalError struct{ Msg string }

func (e *EvalError) Error() string { return e.Msg }
