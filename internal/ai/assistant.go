package ai

import (
	"context"

	"github.com/spigell/match-responder/internal/matching"
)

// Explanation is a short AI written summary of a match.
type Explanation struct {
	Summary string
	Advice  string
	Raw     string
}

// Explainer writes explanations for matches the service left without a summary.
type Explainer interface {
	Explain(ctx context.Context, match *matching.Result) (*Explanation, error)
}
