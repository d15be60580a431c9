// Package service implements the expression service: solving equations,
// evaluating expressions, differentiating and integrating, all delegated to
// an Engine and reported as a Result.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/njchilds90/symcalc/internal/logging"
)

// DefaultVariable is used when a request names no variable.
const DefaultVariable = "x"

// Operation names a service operation.
type Operation string

const (
	OpSolve         Operation = "solve"
	OpEvaluate      Operation = "evaluate"
	OpDifferentiate Operation = "differentiate"
	OpIntegrate     Operation = "integrate"
)

// Request is one unit of work. Variable defaults to DefaultVariable.
type Request struct {
	Op       Operation
	Text     string
	Variable string
}

// Cache memoizes results by request key. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (Result, bool)
	Set(ctx context.Context, key string, r Result)
}

// Observer receives per-operation measurements.
type Observer interface {
	ObserveOperation(op, outcome string, duration time.Duration)
	ObserveCache(hit bool)
}

// Service is safe for concurrent use; it keeps no per-request state.
type Service struct {
	engine   Engine
	cache    Cache
	observer Observer
	logger   logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

func WithCache(c Cache) Option           { return func(s *Service) { s.cache = c } }
func WithObserver(o Observer) Option     { return func(s *Service) { s.observer = o } }
func WithLogger(l *logrus.Logger) Option { return func(s *Service) { s.logger = l } }

// New returns a Service over engine. Without options it neither caches,
// measures nor logs.
func New(engine Engine, opts ...Option) *Service {
	discard := logrus.New()
	discard.SetLevel(logrus.PanicLevel)
	s := &Service{engine: engine, logger: discard}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve solves an equation "lhs = rhs" for variable and renders the roots as
// [r1, r2, ...]. Text without '=' is evaluated numerically instead.
func (s *Service) Solve(ctx context.Context, equation, variable string) Result {
	return s.Do(ctx, Request{Op: OpSolve, Text: equation, Variable: variable})
}

// Evaluate renders the decimal value of an expression.
func (s *Service) Evaluate(ctx context.Context, expression string) Result {
	return s.Do(ctx, Request{Op: OpEvaluate, Text: expression})
}

// Differentiate renders the first derivative with respect to variable.
func (s *Service) Differentiate(ctx context.Context, expression, variable string) Result {
	return s.Do(ctx, Request{Op: OpDifferentiate, Text: expression, Variable: variable})
}

// Integrate renders an antiderivative with respect to variable, without a
// constant of integration. An integral with no closed form renders as
// Integral(expr, x) and still succeeds.
func (s *Service) Integrate(ctx context.Context, expression, variable string) Result {
	return s.Do(ctx, Request{Op: OpIntegrate, Text: expression, Variable: variable})
}

// Do runs req through the cache and the engine.
func (s *Service) Do(ctx context.Context, req Request) Result {
	if req.Variable == "" {
		req.Variable = DefaultVariable
	}
	key := CacheKey(req)
	if s.cache != nil {
		r, hit := s.cache.Get(ctx, key)
		if s.observer != nil {
			s.observer.ObserveCache(hit)
		}
		if hit {
			return r
		}
	}

	start := time.Now()
	r := s.safeRun(ctx, req)
	elapsed := time.Since(start)

	if s.observer != nil {
		s.observer.ObserveOperation(string(req.Op), r.Outcome(), elapsed)
	}
	entry := logging.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"op":          req.Op,
		"outcome":     r.Outcome(),
		"duration_ms": elapsed.Milliseconds(),
	})
	if r.IsOk() {
		entry.Debug("operation complete")
	} else {
		entry.WithField("error", r.Err.Message).Debug("operation failed")
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, r)
	}
	return r
}

// safeRun turns an engine panic into an evaluation failure.
func (s *Service) safeRun(ctx context.Context, req Request) (r Result) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.FromContext(ctx, s.logger).WithFields(logrus.Fields{
				"op":    req.Op,
				"panic": fmt.Sprint(rec),
				"stack": string(debug.Stack()),
			}).Error("engine panic")
			r = Err(EvaluationError, "internal error")
		}
	}()
	return s.run(req)
}

func (s *Service) run(req Request) Result {
	if req.Op != OpEvaluate {
		if r, ok := checkVariable(req.Variable); !ok {
			return r
		}
	}
	switch req.Op {
	case OpSolve:
		return s.solve(req.Text, req.Variable)
	case OpEvaluate:
		return s.evaluate(req.Text)
	case OpDifferentiate:
		expr, err := s.engine.Parse(req.Text)
		if err != nil {
			return classify(err)
		}
		return Ok(s.engine.Render(s.engine.Diff(expr, req.Variable)))
	case OpIntegrate:
		expr, err := s.engine.Parse(req.Text)
		if err != nil {
			return classify(err)
		}
		return Ok(s.engine.Render(s.engine.Integrate(expr, req.Variable)))
	}
	return Err(ParseError, fmt.Sprintf("unknown operation %q", req.Op))
}

func (s *Service) solve(text, variable string) Result {
	sides := strings.Split(text, "=")
	switch len(sides) {
	case 1:
		return s.evaluate(text)
	case 2:
	default:
		return Err(ParseError, fmt.Sprintf("expected at most one '=' in equation, found %d", len(sides)-1))
	}
	lhs, err := s.engine.Parse(sides[0])
	if err != nil {
		return classify(err)
	}
	rhs, err := s.engine.Parse(sides[1])
	if err != nil {
		return classify(err)
	}
	roots, err := s.engine.Solve(lhs, rhs, variable)
	if err != nil {
		return classify(err)
	}
	return Ok(renderList(s.engine, roots))
}

func (s *Service) evaluate(text string) Result {
	expr, err := s.engine.Parse(text)
	if err != nil {
		return classify(err)
	}
	value, err := s.engine.Evalf(expr)
	if err != nil {
		return classify(err)
	}
	return Ok(value)
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkVariable(name string) (Result, bool) {
	if !identifier.MatchString(name) {
		return Err(ParseError, fmt.Sprintf("invalid variable name %q", name)), false
	}
	return Result{}, true
}

// CacheKey identifies a request for memoization.
func CacheKey(req Request) string {
	sum := sha256.Sum256([]byte(string(req.Op) + "|" + req.Variable + "|" + req.Text))
	return hex.EncodeToString(sum[:])
}
