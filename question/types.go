package question

import (
	"context"
	"fmt"

	"github.com/planagent/planagent/plan"
)

// Generator maps the current plan to the next question to ask. When a
// generator judges the plan complete by its own rules it returns a fixed
// completion sentence; the engine's termination decision stays authoritative
// regardless of that string.
type Generator interface {
	NextQuestion(ctx context.Context, p plan.Plan) (string, error)
}

// FailbackGenerator tries each generator in order and returns the first
// successful question.
type FailbackGenerator struct {
	generators []Generator
}

func NewFailbackGenerator(generators ...Generator) *FailbackGenerator {
	return &FailbackGenerator{generators: generators}
}

func (g *FailbackGenerator) NextQuestion(ctx context.Context, p plan.Plan) (string, error) {
	var lastErr error
	for _, generator := range g.generators {
		q, err := generator.NextQuestion(ctx, p)
		if err == nil {
			return q, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("all question generators failed: %w", lastErr)
}
