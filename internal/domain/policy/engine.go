package policy

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/bryanwahyu/smartdocs/internal/domain/analysis"
)

type compiledRule struct {
	Rule
	prg cel.Program
}

// Engine applies a compiled rule table to analysis results. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	rules []compiledRule
}

// NewEngine compiles every rule condition up front.
func NewEngine(rules []Rule) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("topic", cel.StringType),
		cel.Variable("severity", cel.StringType),
		cel.Variable("is_missing", cel.BoolType),
		cel.Variable("is_deviation", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	en := &Engine{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		ast, issues := env.Compile(r.When)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %s: compile error: %w", r.Name, issues.Err())
		}
		if !ast.OutputType().IsExactType(cel.BoolType) {
			return nil, fmt.Errorf("rule %s: condition must be boolean, got %s", r.Name, ast.OutputType())
		}
		prg, err := env.Program(ast, cel.CostLimit(10000))
		if err != nil {
			return nil, fmt.Errorf("rule %s: program creation error: %w", r.Name, err)
		}
		en.rules = append(en.rules, compiledRule{Rule: r, prg: prg})
	}
	return en, nil
}

var defaultEngine = sync.OnceValue(func() *Engine {
	en, err := NewEngine(DefaultRules)
	if err != nil {
		panic(fmt.Sprintf("policy: default rules: %v", err))
	}
	return en
})

// Default returns the engine for DefaultRules.
func Default() *Engine { return defaultEngine() }

// Apply returns a copy of r with the rule table enforced on every clause.
// Rules run in order against the clause as already modified by earlier
// rules; scores only ever go up.
func (en *Engine) Apply(r analysis.Result) (analysis.Result, error) {
	out := r.Clone()
	for i := range out.Clauses {
		c := &out.Clauses[i]
		for _, rule := range en.rules {
			ok, err := rule.matches(c)
			if err != nil {
				return analysis.Result{}, fmt.Errorf("rule %s on clause %q: %w", rule.Name, c.ID, err)
			}
			if !ok {
				continue
			}
			if rule.Severity != "" {
				c.Severity = rule.Severity
			}
			c.RiskScores = rule.Floors.raise(c.RiskScores)
		}
	}
	return out, nil
}

func (r compiledRule) matches(c *analysis.Clause) (bool, error) {
	out, _, err := r.prg.Eval(map[string]any{
		"topic":        string(c.Topic.Normalized()),
		"severity":     string(c.Severity.Normalized()),
		"is_missing":   c.IsMissing,
		"is_deviation": c.IsDeviation,
	})
	if err != nil {
		return false, err
	}
	matched, _ := out.Value().(bool)
	return matched, nil
}
