package cel

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// ProgramPool caches compiled CEL programs by expression text. It is safe for
// concurrent use.
type ProgramPool struct {
	mu       sync.RWMutex
	programs map[string]cel.Program
	env      *cel.Env
}

// NewProgramPool creates a pool over NewEnvironment.
func NewProgramPool() (*ProgramPool, error) {
	env, err := NewEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create environment: %w", err)
	}
	return NewProgramPoolWithEnv(env)
}

// NewProgramPoolWithEnv creates a pool over a custom CEL environment.
func NewProgramPoolWithEnv(env *cel.Env) (*ProgramPool, error) {
	if env == nil {
		return nil, fmt.Errorf("CEL environment cannot be nil")
	}
	return &ProgramPool{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Program retrieves or compiles an expression. Every free identifier of the
// expression is declared as a dynamic variable.
func (p *ProgramPool) Program(expr string) (cel.Program, error) {
	p.mu.RLock()
	if program, ok := p.programs[expr]; ok {
		p.mu.RUnlock()
		return program, nil
	}
	p.mu.RUnlock()

	var opts []cel.EnvOption
	for _, name := range extractVariables(expr) {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	env, err := p.env.Extend(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to extend environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile expression %q: %w", expr, issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	p.mu.Lock()
	p.programs[expr] = program
	p.mu.Unlock()
	return program, nil
}

// Evaluate compiles (or reuses) expr and evaluates it against vars.
func (p *ProgramPool) Evaluate(expr string, vars map[string]any) (any, error) {
	program, err := p.Program(expr)
	if err != nil {
		return nil, err
	}
	if vars == nil {
		vars = map[string]any{}
	}
	activation, err := cel.NewActivation(vars)
	if err != nil {
		return nil, fmt.Errorf("failed to create activation: %w", err)
	}
	val, _, err := program.Eval(activation)
	if err != nil {
		return nil, fmt.Errorf("expression evaluation error: %w", err)
	}
	return adaptResult(val), nil
}

// EvaluateBool is Evaluate for predicates.
func (p *ProgramPool) EvaluateBool(expr string, vars map[string]any) (bool, error) {
	v, err := p.Evaluate(expr, vars)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %T, not bool", expr, v)
	}
	return b, nil
}

// Len reports how many programs are cached.
func (p *ProgramPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.programs)
}

// adaptResult converts CEL values to Go native types.
func adaptResult(val ref.Val) any {
	switch v := val.(type) {
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.Bool:
		return bool(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	case traits.Lister:
		size := v.Size().(types.Int)
		result := make([]any, size)
		for i := types.Int(0); i < size; i++ {
			result[i] = adaptResult(v.Get(i))
		}
		return result
	case traits.Mapper:
		result := make(map[string]any)
		it := v.Iterator()
		for it.HasNext() == types.True {
			key := it.Next()
			keyStr, ok := key.Value().(string)
			if !ok {
				keyStr = fmt.Sprintf("%v", key.Value())
			}
			result[keyStr] = adaptResult(v.Get(key))
		}
		return result
	default:
		return v.Value()
	}
}

// extractVariables finds the free identifiers of an expression: words that
// are not keywords, not numbers, not inside string literals, not called as
// functions and not selected as fields.
func extractVariables(expr string) []string {
	keywords := map[string]bool{"true": true, "false": true, "null": true, "in": true}
	var vars []string
	seen := make(map[string]bool)

	isWord := func(c byte) bool {
		return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
	}

	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == '"' || c == '\'':
			i++
			for i < len(expr) && expr[i] != c {
				if expr[i] == '\\' {
					i++
				}
				i++
			}
			i++
		case isWord(c):
			start := i
			for i < len(expr) && isWord(expr[i]) {
				i++
			}
			word := expr[start:i]
			j := i
			for j < len(expr) && expr[j] == ' ' {
				j++
			}
			selected := start > 0 && expr[start-1] == '.'
			called := j < len(expr) && expr[j] == '('
			numeric := word[0] >= '0' && word[0] <= '9'
			if !keywords[word] && !seen[word] && !selected && !called && !numeric {
				seen[word] = true
				vars = append(vars, word)
			}
		default:
			i++
		}
	}
	return vars
}
