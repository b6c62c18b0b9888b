// Package generate turns extracted document text into multiple-choice questions
// using a generative language model.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vmxio.com/pdf-quiz/internal/quiz"
)

var (
	// ErrGeneration is returned when the model reply cannot be turned into questions.
	ErrGeneration = errors.New("question generation failed")
	// ErrGenerationTimeout is returned when the model does not answer within the deadline.
	ErrGenerationTimeout = errors.New("question generation timed out")
)

type Generator struct {
	model   Model
	count   int
	timeout time.Duration
	retries int
	log     *slog.Logger
}

type Option func(*Generator)

func WithCount(n int) Option             { return func(g *Generator) { g.count = n } }
func WithTimeout(d time.Duration) Option { return func(g *Generator) { g.timeout = d } }
func WithRetries(n int) Option           { return func(g *Generator) { g.retries = n } }
func WithLogger(l *slog.Logger) Option   { return func(g *Generator) { g.log = l } }

func New(model Model, opts ...Option) *Generator {
	g := &Generator{
		model:   model,
		count:   10,
		timeout: 90 * time.Second,
		retries: 1,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) ModelName() string { return g.model.Name() }

// Generate asks the model for questions about text and decodes the reply.
// Transport failures are retried; a reply that does not decode is final.
func (g *Generator) Generate(ctx context.Context, text string) ([]quiz.Question, error) {
	prompt := BuildPrompt(text, g.count)

	var reply string
	var err error
	for attempt := 0; attempt <= g.retries; attempt++ {
		reply, err = g.call(ctx, prompt)
		if err == nil {
			break
		}
		if errors.Is(err, ErrGenerationTimeout) || ctx.Err() != nil {
			return nil, err
		}
		g.log.Warn("model call failed", "model", g.model.Name(), "attempt", attempt+1, "err", err)
	}
	if err != nil {
		return nil, err
	}

	questions, err := DecodeQuestions(reply)
	if err != nil {
		g.log.Debug("undecodable model reply", "reply", reply)
		return nil, err
	}
	g.log.Info("questions generated", "model", g.model.Name(), "requested", g.count, "got", len(questions))
	return questions, nil
}

func (g *Generator) call(ctx context.Context, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	reply, err := g.model.Generate(cctx, prompt)
	if err == nil {
		return reply, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w after %s", ErrGenerationTimeout, g.timeout)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return "", fmt.Errorf("%w: %v", ErrGeneration, err)
}
