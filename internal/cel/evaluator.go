// Package cel compiles row-filter expressions for the --where flag and the
// interactive where mode. Expressions see the current row as a
// map<string,string> bound to the variable "_", e.g.:
//
//	_.city == "berlin"
//	int(_.age) > 30
//	_.name.startsWith("a")
package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
	celext "github.com/google/cel-go/ext"
)

// Evaluator holds the shared CEL environment for compiling predicates.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the common extension libraries
// enabled so string/list/math helpers are available in filters.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("_", cel.MapType(cel.StringType, cel.StringType)),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Predicate is a compiled boolean row expression. Compile once, evaluate per
// row.
type Predicate struct {
	expr string
	prg  cel.Program
}

// CompilePredicate parses and type-checks expr and rejects expressions that
// cannot produce a boolean.
func (e *Evaluator) CompilePredicate(expr string) (*Predicate, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression %q yields %s, want bool", expr, t)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// Expr returns the source expression.
func (p *Predicate) Expr() string {
	return p.expr
}

// Eval evaluates the predicate against one row.
func (p *Predicate) Eval(row map[string]string) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{"_": row})
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: result %v is not a bool", p.expr, out.Value())
	}
	return b, nil
}

// Match is Eval with per-row errors treated as non-matches. Rows that make
// the expression fail (e.g. int() on a non-numeric field) are filtered out
// rather than aborting the whole view.
func (p *Predicate) Match(row map[string]string) bool {
	ok, err := p.Eval(row)
	return err == nil && ok
}
