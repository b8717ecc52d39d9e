package catalog

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"psbrowse/internal/logger"
	"psbrowse/pkg/pstypes"
)

// Predicate is a compiled CEL boolean expression over a command row.
// Available variables: name, module, commandType, source (all strings).
//
//	commandType == "Cmdlet" && name.startsWith("Get-")
//	module.matches("^Microsoft\\.PowerShell\\.")
type Predicate struct {
	expr string
	prg  cel.Program
}

// CompilePredicate compiles expr. An empty expression yields a nil predicate and no error.
func CompilePredicate(expr string) (*Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("module", cel.StringType),
		cel.Variable("commandType", cel.StringType),
		cel.Variable("source", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000),
	)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	return p.expr
}

// Match evaluates the predicate for one command. Evaluation errors count as no match.
func (p *Predicate) Match(c pstypes.CommandSummary) bool {
	out, _, err := p.prg.Eval(map[string]any{
		"name":        c.Name,
		"module":      c.ModuleName,
		"commandType": c.CommandType.String(),
		"source":      c.Source,
	})
	if err != nil {
		logger.Debug("Predicate evaluation failed", "expr", p.expr, "command", c.Name, "error", err)
		return false
	}
	matched, ok := out.Value().(bool)
	return ok && matched
}
