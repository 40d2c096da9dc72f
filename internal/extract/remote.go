package extract

import (
	"context"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
)

// Completer sends one system + user prompt pair to a hosted model and returns its text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// Remote is the model-backed Extractor. Any transport error or malformed answer is
// returned as an error; Resilient decides what to do with it.
type Remote struct {
	completer Completer
}

var _ Extractor = (*Remote)(nil)

// NewRemote wraps a completer
func NewRemote(c Completer) *Remote {
	return &Remote{completer: c}
}

// Name identifies the backing provider
func (r *Remote) Name() string { return r.completer.Name() }

func (r *Remote) Extract(ctx context.Context, text string) (domain.ParsedQueryItem, error) {
	answer, err := r.completer.Complete(ctx, singleSystemPrompt, text)
	if err != nil {
		return domain.ParsedQueryItem{}, err
	}
	return parseSingle(answer)
}

func (r *Remote) ExtractMulti(ctx context.Context, text string) (domain.ParsedBatch, error) {
	answer, err := r.completer.Complete(ctx, multiSystemPrompt, text)
	if err != nil {
		return domain.ParsedBatch{}, err
	}
	return parseBatch(answer)
}
