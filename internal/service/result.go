package service

import (
	"errors"

	"github.com/njchilds90/symcalc"
)

// ErrorKind classifies a failed operation.
type ErrorKind string

const (
	ParseError      ErrorKind = "ParseError"
	SolveError      ErrorKind = "SolveError"
	EvaluationError ErrorKind = "EvaluationError"
)

// Error is the failure half of a Result. Only Message reaches HTTP clients.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// Result is Ok(Value) or Err(Kind, Message). Exactly one half is set.
type Result struct {
	Value string `json:"value,omitempty"`
	Err   *Error `json:"error,omitempty"`
}

func Ok(value string) Result { return Result{Value: value} }

func Err(kind ErrorKind, message string) Result {
	return Result{Err: &Error{Kind: kind, Message: message}}
}

func (r Result) IsOk() bool { return r.Err == nil }

// Outcome is "ok" or the error kind, for logs and metric labels.
func (r Result) Outcome() string {
	if r.Err == nil {
		return "ok"
	}
	return string(r.Err.Kind)
}

// classify maps an engine error onto a Result. Anything unrecognised counts
// as an evaluation failure.
func classify(err error) Result {
	var (
		pe *symcalc.ParseError
		se *symcalc.SolveError
		ee *symcalc.EvalError
	)
	switch {
	case errors.As(err, &pe):
		return Err(ParseError, pe.Msg)
	case errors.As(err, &se):
		return Err(SolveError, se.Msg)
	case errors.As(err, &ee):
		return Err(EvaluationError, ee.Msg)
	}
	return Err(EvaluationError, err.Error())
}
