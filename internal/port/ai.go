package port

import (
	"context"

	"github.com/repolens/repolens/internal/domain"
)

// EnhanceRequest carries the bounded context handed to the enhancer.
// Every field is already size-capped by the caller; implementations may
// truncate further to fit their own prompt budget.
type EnhanceRequest struct {
	Name          string
	Description   string
	ReadmeExcerpt string
	Languages     []string
	FileTree      []string
	Samples       []domain.CodeSample
}

// Enhancer abstracts the LLM backend used for description enrichment.
// Absence of an Enhancer is a valid configuration: enrichment simply
// never runs and analyses return the baseline description alone.
type Enhancer interface {
	Enhance(ctx context.Context, req EnhanceRequest) (*domain.Enrichment, error)
}
