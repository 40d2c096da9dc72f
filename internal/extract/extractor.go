// Package extract turns a raw customer message into structured query drafts.
//
// Remote implementations call a hosted language model; Fallback is a deterministic
// keyword and pattern scanner. Resilient composes the two so callers always get a result.
package extract

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
)

// ErrInvalidOutput is returned when a model answer does not have the expected shape.
var ErrInvalidOutput = errors.New("invalid extraction output")

// Extractor converts free text into one or several query drafts.
type Extractor interface {
	Extract(ctx context.Context, text string) (domain.ParsedQueryItem, error)
	ExtractMulti(ctx context.Context, text string) (domain.ParsedBatch, error)
}
