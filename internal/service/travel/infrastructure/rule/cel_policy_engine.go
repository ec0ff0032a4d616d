package rule

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// CELPolicyEngine implements domain.PolicyEngine with CEL expressions, so
// booking policies (passenger limits, route constraints) are configuration
// rather than code. Compiled programs are cached per expression.
type CELPolicyEngine struct {
	env *cel.Env

	mu       sync.Mutex
	programs map[string]cel.Program
}

func NewCELPolicyEngine() (*CELPolicyEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("customerId", cel.IntType),
		cel.Variable("passengerCount", cel.IntType),
		cel.Variable("departureLocation", cel.StringType),
		cel.Variable("destination", cel.StringType),
		cel.Variable("date", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}
	return &CELPolicyEngine{env: env, programs: make(map[string]cel.Program)}, nil
}

func (e *CELPolicyEngine) Evaluate(expression string, fact map[string]interface{}) (bool, error) {
	prg, err := e.program(expression)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(fact)
	if err != nil {
		return false, fmt.Errorf("evaluate policy: %w", err)
	}
	verdict, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("policy expression must yield a bool, got %T", out.Value())
	}
	return verdict, nil
}

func (e *CELPolicyEngine) program(expression string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if prg, ok := e.programs[expression]; ok {
		return prg, nil
	}
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile policy: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build policy program: %w", err)
	}
	e.programs[expression] = prg
	return prg, nil
}
