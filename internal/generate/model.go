package generate

import "context"

// Model sends a prompt to a generative language model and returns its free-form reply.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(ctx context.Context, prompt string) (string, error)

func (f ModelFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func (f ModelFunc) Name() string { return "func" }
